package engine

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/linker"
	"github.com/wippyai/wasm-host/wasm"
)

// Reactor initialization export, run once after instantiation when present.
const initializeExport = "_initialize"

// WazeroEngine compiles and instantiates core modules on a wazero runtime.
type WazeroEngine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// CloseOnContextDone makes guest calls observe context cancellation and
	// deadlines, at some cost in execution speed.
	CloseOnContextDone bool
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime}, nil
}

// Runtime returns the underlying wazero runtime, in which host namespaces
// are instantiated.
func (e *WazeroEngine) Runtime() wazero.Runtime {
	return e.runtime
}

// Close releases the runtime and every module instantiated in it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// WazeroModule is a compiled core module together with its descriptor.
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
	desc     *wasm.Module
}

// LoadModule compiles wasmBytes. desc must be the descriptor decoded from
// the same bytes.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte, desc *wasm.Module) (*WazeroModule, error) {
	if desc == nil {
		return nil, fmt.Errorf("module descriptor is required")
	}
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	return &WazeroModule{engine: e, compiled: compiled, desc: desc}, nil
}

// Descriptor returns the decoded module descriptor.
func (m *WazeroModule) Descriptor() *wasm.Module {
	return m.desc
}

// Close releases the compiled code.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Name   string
}

// Instantiate binds the module to ls and instantiates it. Imports ls left
// unresolved are satisfied by trap stubs owned by the returned instance.
func (m *WazeroModule) Instantiate(ctx context.Context, ls *linker.LinkSet, cfg *InstanceConfig) (*WazeroInstance, error) {
	if ls == nil || !ls.Covers(m.desc) {
		return nil, fmt.Errorf("link set does not cover every import")
	}
	if cfg == nil {
		cfg = &InstanceConfig{}
	}

	stubs, err := m.instantiateStubs(ctx, ls)
	if err != nil {
		return nil, err
	}

	modConfig := wazero.NewModuleConfig().
		WithName(cfg.Name).
		WithStartFunctions(initializeExport).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(crand.Reader)
	if cfg.Stdin != nil {
		modConfig = modConfig.WithStdin(cfg.Stdin)
	}
	if cfg.Stdout != nil {
		modConfig = modConfig.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modConfig = modConfig.WithStderr(cfg.Stderr)
	}

	instance, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		closeAll(ctx, stubs)
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}

	Logger().Debug("module instantiated",
		zap.Int("imports", len(m.desc.Imports)),
		zap.Int("stubs", len(stubs)))

	return &WazeroInstance{
		module:   m,
		instance: instance,
		stubs:    stubs,
	}, nil
}

// instantiateStubs creates one host module per unrecognized namespace whose
// functions carry the guest's declared signatures and trap when called.
// Non-function imports cannot be stubbed and are left for the runtime to
// reject.
func (m *WazeroModule) instantiateStubs(ctx context.Context, ls *linker.LinkSet) ([]api.Module, error) {
	var stubs []api.Module
	for namespace, bindings := range ls.Unresolved() {
		builder := m.engine.runtime.NewHostModuleBuilder(namespace)
		exported := 0
		for _, b := range bindings {
			trap, ok := b.Source.(linker.TrapFunc)
			if !ok || b.Import.Kind != wasm.KindFunc {
				continue
			}
			builder.NewFunctionBuilder().
				WithGoModuleFunction(trap.Handler(), apiTypes(b.Declared.Params), apiTypes(b.Declared.Results)).
				WithName(b.Import.Name).
				Export(b.Import.Name)
			exported++
		}
		if exported == 0 {
			continue
		}
		mod, err := builder.Instantiate(ctx)
		if err != nil {
			closeAll(ctx, stubs)
			return nil, fmt.Errorf("instantiate stubs for %q: %w", namespace, err)
		}
		Logger().Debug("trap stubs instantiated", zap.String("namespace", namespace), zap.Int("functions", exported))
		stubs = append(stubs, mod)
	}
	return stubs, nil
}

func apiTypes(types []wasm.ValType) []api.ValueType {
	if len(types) == 0 {
		return nil
	}
	out := make([]api.ValueType, len(types))
	for i, t := range types {
		out[i] = api.ValueType(t)
	}
	return out
}

func closeAll(ctx context.Context, mods []api.Module) {
	for _, mod := range mods {
		if err := mod.Close(ctx); err != nil {
			Logger().Warn("close module", zap.String("name", mod.Name()), zap.Error(err))
		}
	}
}

// WazeroInstance is a live module instance. It is not safe for concurrent
// calls.
type WazeroInstance struct {
	module   *WazeroModule
	instance api.Module
	stubs    []api.Module
}

// Module returns the descriptor of the instantiated module.
func (i *WazeroInstance) Module() *wasm.Module {
	return i.module.desc
}

// ExportedFunction returns the named exported function, or nil.
func (i *WazeroInstance) ExportedFunction(name string) api.Function {
	return i.instance.ExportedFunction(name)
}

// Call invokes the exported function name with flattened params. Guest
// faults are returned as *Trap and guest exits as *Exit.
func (i *WazeroInstance) Call(ctx context.Context, name string, params []uint64) ([]uint64, error) {
	fn := i.instance.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("function %q not exported", name)
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, classify(name, err)
	}
	return results, nil
}

// Close releases the instance and its trap stubs.
func (i *WazeroInstance) Close(ctx context.Context) error {
	var firstErr error
	if i.instance != nil {
		if err := i.instance.Close(ctx); err != nil {
			firstErr = err
		}
		i.instance = nil
	}
	for _, stub := range i.stubs {
		if err := stub.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	i.stubs = nil
	return firstErr
}
