// Package calculator provides the fixed "calculator" host namespace.
//
// The namespace's functions are declared in calculator.wit. Their WIT types
// are lowered to core value types and each declaration is bound to a Go
// handler, producing a registry.HostModule tagged TagCustom.
package calculator

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/registry"
)

// Namespace is the import module name guests use.
const Namespace = "calculator"

//go:embed calculator.wit
var description string

// Add sums lh and rh as unsigned 32-bit integers, wrapping on overflow, and
// returns the bit pattern as a signed integer.
func Add(lh, rh int32) int32 {
	return int32(uint32(lh) + uint32(rh))
}

var handlers = map[string]api.GoModuleFunc{
	"add": func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeI32(Add(api.DecodeI32(stack[0]), api.DecodeI32(stack[1])))
	},
}

// Definitions returns the namespace's host functions with signatures taken
// from the embedded description.
func Definitions() ([]registry.FuncDef, error) {
	sigs, err := parseWitFunctions(description)
	if err != nil {
		return nil, err
	}

	defs := make([]registry.FuncDef, 0, len(sigs))
	for _, sig := range sigs {
		handler, ok := handlers[sig.name]
		if !ok {
			return nil, errors.NotFound(errors.PhaseRegistry, "calculator handler", sig.name)
		}
		params, err := lowerTypes(sig.params)
		if err != nil {
			return nil, fmt.Errorf("%s params: %w", sig.name, err)
		}
		results, err := lowerTypes(sig.results)
		if err != nil {
			return nil, fmt.Errorf("%s results: %w", sig.name, err)
		}
		defs = append(defs, registry.FuncDef{
			Name:        sig.name,
			Handler:     handler,
			ParamTypes:  params,
			ResultTypes: results,
		})
	}
	return defs, nil
}

// New instantiates the calculator namespace in rt.
func New(ctx context.Context, rt wazero.Runtime) (*registry.HostModule, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, errors.RegistryInit(Namespace, err)
	}
	h, err := registry.DefineCustom(ctx, rt, Namespace, defs...)
	if err != nil {
		return nil, errors.RegistryInit(Namespace, err)
	}
	return h, nil
}

type funcSignature struct {
	name    string
	params  []wit.Type
	results []wit.Type
}

var funcPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitFunctions extracts function signatures from WIT text in
// declaration order. Pattern: name: func(params) -> result;
func parseWitFunctions(witText string) ([]funcSignature, error) {
	var funcs []funcSignature

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		sig := funcSignature{name: match[1]}

		if paramsStr := strings.TrimSpace(match[2]); paramsStr != "" {
			for _, p := range strings.Split(paramsStr, ",") {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = p[idx+1:]
				}
				t, err := wit.ParseType(strings.TrimSpace(typStr))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse param type "+typStr)
				}
				sig.params = append(sig.params, t)
			}
		}

		if resultStr := strings.TrimSpace(match[3]); resultStr != "" && resultStr != "()" {
			t, err := wit.ParseType(resultStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse result type "+resultStr)
			}
			sig.results = []wit.Type{t}
		}

		funcs = append(funcs, sig)
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return funcs, nil
}

// lowerTypes maps scalar WIT types to the core value types they flatten to.
func lowerTypes(types []wit.Type) ([]api.ValueType, error) {
	out := make([]api.ValueType, 0, len(types))
	for _, t := range types {
		switch t.(type) {
		case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
			out = append(out, api.ValueTypeI32)
		case wit.U64, wit.S64:
			out = append(out, api.ValueTypeI64)
		case wit.F32:
			out = append(out, api.ValueTypeF32)
		case wit.F64:
			out = append(out, api.ValueTypeF64)
		default:
			return nil, fmt.Errorf("WIT type %T has no scalar core representation", t)
		}
	}
	return out, nil
}
