package registry

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-host/errors"
)

func testStdio() Stdio {
	return Stdio{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
}

func newTestRegistry(t *testing.T) (*Registry, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	reg, err := New(ctx, rt, testStdio())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return reg, rt
}

func TestRegistryNamespaces(t *testing.T) {
	reg, _ := newTestRegistry(t)

	names := reg.Namespaces()
	if len(names) != 2 || names[0] != NamespacePreview1 || names[1] != NamespaceUnstable {
		t.Fatalf("Namespaces() = %v", names)
	}

	tests := []struct {
		name string
		tag  Tag
	}{
		{NamespacePreview1, TagPreview1},
		{NamespaceUnstable, TagUnstable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := reg.Namespace(tt.name)
			if !ok {
				t.Fatalf("namespace %q missing", tt.name)
			}
			if h.Tag() != tt.tag {
				t.Errorf("tag = %s, want %s", h.Tag(), tt.tag)
			}
			if len(h.Symbols()) == 0 {
				t.Error("expected namespace to export symbols")
			}
		})
	}

	if _, ok := reg.Namespace("calculator"); ok {
		t.Error("custom namespaces are not part of the registry")
	}
}

func TestRegistryLookup(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for _, ns := range []string{NamespacePreview1, NamespaceUnstable} {
		t.Run(ns, func(t *testing.T) {
			c, ok := reg.Lookup(ns, "fd_write")
			if !ok {
				t.Fatal("fd_write not found")
			}
			if c.Namespace != ns || c.Symbol != "fd_write" {
				t.Errorf("callable = %s#%s", c.Namespace, c.Symbol)
			}
			if got := c.Type().String(); got != "(i32, i32, i32, i32) -> (i32)" {
				t.Errorf("fd_write type = %s", got)
			}

			if _, ok := reg.Lookup(ns, "no_such_symbol"); ok {
				t.Error("expected missing symbol lookup to fail")
			}
		})
	}

	if _, ok := reg.Lookup("env", "fd_write"); ok {
		t.Error("expected unknown namespace lookup to fail")
	}
}

func TestRegistryNamespacesAreDistinct(t *testing.T) {
	reg, _ := newTestRegistry(t)

	a, _ := reg.Lookup(NamespacePreview1, "proc_exit")
	b, _ := reg.Lookup(NamespaceUnstable, "proc_exit")
	if a == nil || b == nil {
		t.Fatal("proc_exit missing")
	}
	if a == b || a.Namespace == b.Namespace {
		t.Error("expected separate callables per namespace")
	}
}

func TestRegistryInitFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing stream", func(t *testing.T) {
		rt := wazero.NewRuntime(ctx)
		defer rt.Close(ctx)

		stdio := testStdio()
		stdio.Stdout = nil
		_, err := New(ctx, rt, stdio)
		if !stderrors.Is(err, errors.ErrRegistryInit) {
			t.Fatalf("expected registry init error, got %v", err)
		}
	})

	t.Run("namespace already taken", func(t *testing.T) {
		rt := wazero.NewRuntime(ctx)
		defer rt.Close(ctx)

		if _, err := New(ctx, rt, testStdio()); err != nil {
			t.Fatalf("first New: %v", err)
		}
		_, err := New(ctx, rt, testStdio())
		if !stderrors.Is(err, errors.ErrRegistryInit) {
			t.Fatalf("expected registry init error, got %v", err)
		}
	})
}

func TestDefineCustom(t *testing.T) {
	_, rt := newTestRegistry(t)
	ctx := context.Background()

	double := FuncDef{
		Name: "double",
		Handler: func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeI32(api.DecodeI32(stack[0]) * 2)
		},
		ParamTypes:  []api.ValueType{api.ValueTypeI32},
		ResultTypes: []api.ValueType{api.ValueTypeI32},
	}

	h, err := DefineCustom(ctx, rt, "math", double)
	if err != nil {
		t.Fatalf("DefineCustom: %v", err)
	}
	if h.Tag() != TagCustom || h.Name() != "math" {
		t.Errorf("got %s/%s", h.Name(), h.Tag())
	}
	c, ok := h.Lookup("double")
	if !ok {
		t.Fatal("double not found")
	}
	if got := c.Type().String(); got != "(i32) -> (i32)" {
		t.Errorf("double type = %s", got)
	}

	if _, err := DefineCustom(ctx, rt, "dup", double, double); err == nil {
		t.Error("expected duplicate definition to fail")
	}
	if _, err := DefineCustom(ctx, rt, "", double); err == nil {
		t.Error("expected empty name to fail")
	}
}

func TestInheritStdio(t *testing.T) {
	stdio, err := InheritStdio()
	if err != nil {
		t.Skipf("standard streams unavailable: %v", err)
	}
	if stdio.Stdin == nil || stdio.Stdout == nil || stdio.Stderr == nil {
		t.Error("expected all streams to be set")
	}
}

func TestLegacyDifference(t *testing.T) {
	reg, _ := newTestRegistry(t)

	tests := []struct {
		symbol  string
		differs bool
	}{
		{"fd_seek", true},
		{"fd_filestat_get", true},
		{"path_filestat_get", true},
		{"poll_oneoff", true},
		{"fd_write", false},
		{"proc_exit", false},
		{"args_get", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := LegacyDifference(tt.symbol) != ""; got != tt.differs {
				t.Errorf("LegacyDifference(%q) differs = %v, want %v", tt.symbol, got, tt.differs)
			}

			// Both namespaces serve the same preview1 signature either way.
			a, okA := reg.Lookup(NamespacePreview1, tt.symbol)
			b, okB := reg.Lookup(NamespaceUnstable, tt.symbol)
			if !okA || !okB {
				t.Fatalf("%s missing from a namespace", tt.symbol)
			}
			if !a.Type().Equal(b.Type()) {
				t.Errorf("%s: preview1 %s, unstable %s", tt.symbol, a.Type(), b.Type())
			}
		})
	}
}
