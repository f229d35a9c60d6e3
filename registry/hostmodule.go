package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-host/wasm"
)

// Tag distinguishes the statically known kinds of host module. Resolution
// switches on the tag of the namespace an import names, never on the symbol.
type Tag uint8

const (
	TagPreview1 Tag = iota + 1 // wasi_snapshot_preview1
	TagUnstable                // wasi_unstable
	TagCustom                  // fixed host functions defined by this program
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagPreview1:
		return "preview1"
	case TagUnstable:
		return "unstable"
	case TagCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// FuncDef defines a host function
type FuncDef struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// Callable is a host function resolved by namespace and symbol.
type Callable struct {
	Definition api.FunctionDefinition
	Namespace  string
	Symbol     string
	Params     []api.ValueType
	Results    []api.ValueType
}

// Type returns the callable's signature in decoded module terms, for
// comparison with an import's declared signature.
func (c *Callable) Type() wasm.FuncType {
	return wasm.FuncType{Params: toValTypes(c.Params), Results: toValTypes(c.Results)}
}

func toValTypes(types []api.ValueType) []wasm.ValType {
	if len(types) == 0 {
		return nil
	}
	out := make([]wasm.ValType, len(types))
	for i, t := range types {
		out[i] = wasm.ValType(t)
	}
	return out
}

// HostModule is one namespace of host functions, instantiated in the
// engine under its namespace name. Its contents never change after
// construction.
type HostModule struct {
	module  api.Module
	symbols map[string]*Callable
	name    string
	tag     Tag
}

// Name returns the namespace name guests import from.
func (h *HostModule) Name() string { return h.name }

// Tag returns the host module variant.
func (h *HostModule) Tag() Tag { return h.tag }

// Lookup returns the callable exported under symbol.
func (h *HostModule) Lookup(symbol string) (*Callable, bool) {
	c, ok := h.symbols[symbol]
	return c, ok
}

// Symbols returns the exported symbol names in sorted order.
func (h *HostModule) Symbols() []string {
	names := make([]string, 0, len(h.symbols))
	for name := range h.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the engine-side module.
func (h *HostModule) Close(ctx context.Context) error {
	if h.module == nil {
		return nil
	}
	return h.module.Close(ctx)
}

// DefineCustom instantiates a fixed host namespace from defs.
func DefineCustom(ctx context.Context, rt wazero.Runtime, name string, defs ...FuncDef) (*HostModule, error) {
	if name == "" {
		return nil, fmt.Errorf("host module name cannot be empty")
	}
	builder := rt.NewHostModuleBuilder(name)
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if seen[def.Name] {
			return nil, fmt.Errorf("duplicate host function %s#%s", name, def.Name)
		}
		seen[def.Name] = true
		builder.NewFunctionBuilder().
			WithGoModuleFunction(def.Handler, def.ParamTypes, def.ResultTypes).
			WithName(def.Name).
			Export(def.Name)
	}
	return instantiate(ctx, builder, name, TagCustom)
}

func instantiate(ctx context.Context, builder wazero.HostModuleBuilder, name string, tag Tag) (*HostModule, error) {
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate host module %q: %w", name, err)
	}

	defs := mod.ExportedFunctionDefinitions()
	h := &HostModule{
		module:  mod,
		name:    name,
		tag:     tag,
		symbols: make(map[string]*Callable, len(defs)),
	}
	for symbol, def := range defs {
		h.symbols[symbol] = &Callable{
			Namespace:  name,
			Symbol:     symbol,
			Definition: def,
			Params:     def.ParamTypes(),
			Results:    def.ResultTypes(),
		}
	}
	return h, nil
}
