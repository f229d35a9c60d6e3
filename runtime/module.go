package runtime

import (
	"context"

	"github.com/wippyai/wasm-host/engine"
	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/invoke"
	"github.com/wippyai/wasm-host/linker"
	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/wasm"
)

// Module is a compiled module bound to the runtime that loaded it.
type Module struct {
	runtime  *Runtime
	compiled *engine.WazeroModule
}

// Descriptor returns the module's decoded imports, exports and types.
func (m *Module) Descriptor() *wasm.Module {
	return m.compiled.Descriptor()
}

// Link resolves the module's imports against the runtime's namespaces under
// the configured policy.
func (m *Module) Link() (*linker.LinkSet, error) {
	return linker.Resolve(m.Descriptor(), m.runtime.registry, m.runtime.calculator, m.runtime.cfg.linkerOptions())
}

// Instantiate links the module and creates an instance wired to the
// runtime's stdio.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	return m.InstantiateWithStdio(ctx, m.runtime.cfg.Stdio)
}

// InstantiateWithStdio is like Instantiate but gives the instance its own
// streams, for callers that capture guest output per call.
func (m *Module) InstantiateWithStdio(ctx context.Context, stdio registry.Stdio) (*Instance, error) {
	ls, err := m.Link()
	if err != nil {
		return nil, err
	}

	inst, err := m.compiled.Instantiate(ctx, ls, &engine.InstanceConfig{
		Stdin:  stdio.Stdin,
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
	})
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return &Instance{module: m, links: ls, inst: inst}, nil
}

// Close releases the compiled code.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// Export describes one export for listing.
type Export struct {
	Name      string
	Kind      wasm.ExternKind
	Signature invoke.Signature
}

// String renders a function export as "name(i32, i32) -> (i32)" and any
// other export as "name: kind".
func (e Export) String() string {
	if e.Kind != wasm.KindFunc {
		return e.Name + ": " + e.Kind.String()
	}
	return e.Name + e.Signature.String()
}

// Exports lists the module's exports in declaration order.
func (m *Module) Exports() []Export {
	desc := m.Descriptor()
	exports := make([]Export, 0, len(desc.Exports))
	for _, exp := range desc.Exports {
		e := Export{Name: exp.Name, Kind: exp.Kind}
		if exp.Kind == wasm.KindFunc {
			// Decoded function exports always carry a signature.
			e.Signature, _ = invoke.LookupExport(desc, exp.Name)
		}
		exports = append(exports, e)
	}
	return exports
}
