package registry

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/wasm-host/errors"
)

// Namespace names of the built-in system interface generations.
const (
	NamespacePreview1 = wasi_snapshot_preview1.ModuleName
	NamespaceUnstable = "wasi_unstable"
)

// legacyLayout names the symbols whose wasi_unstable ABI disagrees with the
// preview1 implementation serving them. Guests calling these with legacy
// arguments or buffers get preview1 semantics.
var legacyLayout = map[string]string{
	"fd_seek":           "whence is numbered cur, end, set instead of set, cur, end",
	"fd_filestat_get":   "filestat is 56 bytes with a 32-bit nlink instead of 64 with a 64-bit nlink",
	"path_filestat_get": "filestat is 56 bytes with a 32-bit nlink instead of 64 with a 64-bit nlink",
	"poll_oneoff":       "clock subscriptions carry an extra identifier field",
}

// LegacyDifference describes how symbol's wasi_unstable ABI differs from the
// preview1 behaviour it is served with. It returns "" when the two agree.
func LegacyDifference(symbol string) string {
	return legacyLayout[symbol]
}

// Registry holds the built-in host namespaces for one process run. It is
// built once and read-only afterwards, so it is safe for concurrent reads.
type Registry struct {
	modules map[string]*HostModule
	stdio   Stdio
	names   []string
}

// New instantiates both system interface generations in rt with the given
// guest stdio. Any failure is a registry initialization error.
func New(ctx context.Context, rt wazero.Runtime, stdio Stdio) (*Registry, error) {
	builtins := []struct {
		name string
		tag  Tag
	}{
		{NamespacePreview1, TagPreview1},
		{NamespaceUnstable, TagUnstable},
	}

	if err := stdio.check(); err != nil {
		return nil, errors.RegistryInit(builtins[0].name, err)
	}

	r := &Registry{
		modules: make(map[string]*HostModule, len(builtins)),
		stdio:   stdio,
	}
	for _, b := range builtins {
		builder := rt.NewHostModuleBuilder(b.name)
		wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)

		h, err := instantiate(ctx, builder, b.name, b.tag)
		if err != nil {
			_ = r.Close(ctx)
			return nil, errors.RegistryInit(b.name, err)
		}
		r.modules[b.name] = h
		r.names = append(r.names, b.name)
	}
	return r, nil
}

// Lookup resolves symbol within namespace only.
func (r *Registry) Lookup(namespace, symbol string) (*Callable, bool) {
	h, ok := r.modules[namespace]
	if !ok {
		return nil, false
	}
	return h.Lookup(symbol)
}

// Namespace returns the host module registered under name.
func (r *Registry) Namespace(name string) (*HostModule, bool) {
	h, ok := r.modules[name]
	return h, ok
}

// Namespaces returns the registered namespace names in construction order.
func (r *Registry) Namespaces() []string {
	return append([]string(nil), r.names...)
}

// Stdio returns the streams guests inherit.
func (r *Registry) Stdio() Stdio {
	return r.stdio
}

// Close releases all host modules.
func (r *Registry) Close(ctx context.Context) error {
	var first error
	for _, name := range r.names {
		if err := r.modules[name].Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
