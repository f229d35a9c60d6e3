package calculator

import (
	"context"
	"math"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-host/registry"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		lh, rh int32
		want   int32
	}{
		{"small", 3, 4, 7},
		{"negative", -5, 2, -3},
		{"wraps past max", math.MaxInt32, 1, math.MinInt32},
		{"unsigned carry", -1, -1, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Add(tt.lh, tt.rh); got != tt.want {
				t.Errorf("Add(%d, %d) = %d, want %d", tt.lh, tt.rh, got, tt.want)
			}
		})
	}
}

func TestDefinitions(t *testing.T) {
	defs, err := Definitions()
	if err != nil {
		t.Fatalf("Definitions: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	add := defs[0]
	if add.Name != "add" {
		t.Errorf("name = %q", add.Name)
	}
	wantParams := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	if len(add.ParamTypes) != 2 || add.ParamTypes[0] != wantParams[0] || add.ParamTypes[1] != wantParams[1] {
		t.Errorf("params = %v", add.ParamTypes)
	}
	if len(add.ResultTypes) != 1 || add.ResultTypes[0] != api.ValueTypeI32 {
		t.Errorf("results = %v", add.ResultTypes)
	}
}

func TestParseWitFunctions(t *testing.T) {
	sigs, err := parseWitFunctions(`
		interface math {
			scale: func(x: f64, factor: u64) -> f64;
			reset: func();
		}`)
	if err != nil {
		t.Fatalf("parseWitFunctions: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(sigs))
	}
	if sigs[0].name != "scale" || len(sigs[0].params) != 2 || len(sigs[0].results) != 1 {
		t.Errorf("scale = %+v", sigs[0])
	}
	if sigs[1].name != "reset" || len(sigs[1].params) != 0 || len(sigs[1].results) != 0 {
		t.Errorf("reset = %+v", sigs[1])
	}

	params, err := lowerTypes(sigs[0].params)
	if err != nil {
		t.Fatalf("lowerTypes: %v", err)
	}
	if params[0] != api.ValueTypeF64 || params[1] != api.ValueTypeI64 {
		t.Errorf("lowered params = %v", params)
	}

	if _, err := parseWitFunctions("interface empty {}"); err == nil {
		t.Error("expected error for text without functions")
	}
}

func TestLowerTypesRejectsAggregates(t *testing.T) {
	sigs, err := parseWitFunctions("greet: func(name: string) -> u32;")
	if err != nil {
		t.Fatalf("parseWitFunctions: %v", err)
	}
	if _, err := lowerTypes(sigs[0].params); err == nil {
		t.Error("expected string to have no scalar representation")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	h, err := New(ctx, rt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.Name() != Namespace || h.Tag() != registry.TagCustom {
		t.Errorf("host module = %s/%s", h.Name(), h.Tag())
	}
	c, ok := h.Lookup("add")
	if !ok {
		t.Fatal("add not exported")
	}
	if got := c.Type().String(); got != "(i32, i32) -> (i32)" {
		t.Errorf("add type = %s", got)
	}

	if _, err := New(ctx, rt); err == nil {
		t.Error("expected second instantiation under the same name to fail")
	}
}
