package runtime

import (
	"bytes"
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/calculator"
	"github.com/wippyai/wasm-host/engine"
	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/wasm"
	"github.com/wippyai/wasm-host/wat"
)

var binaryMagic = []byte{0x00, 'a', 's', 'm'}

// Runtime owns the engine, the capability registry and the custom
// namespace. All three are built once and shared by every module loaded
// into it.
type Runtime struct {
	engine     *engine.WazeroEngine
	registry   *registry.Registry
	calculator *registry.HostModule
	cfg        Config
}

// New validates cfg and builds the host environment.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Stdio.Stdin == nil && cfg.Stdio.Stdout == nil && cfg.Stdio.Stderr == nil {
		stdio, err := registry.InheritStdio()
		if err != nil {
			return nil, errors.RegistryInit(registry.NamespacePreview1, err)
		}
		cfg.Stdio = stdio
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &engine.Config{
		MemoryLimitPages:   cfg.MemoryLimitPages,
		CloseOnContextDone: cfg.Timeout > 0,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRegistry, errors.KindRegistryInit, err, "create engine")
	}

	reg, err := registry.New(ctx, eng.Runtime(), cfg.Stdio)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	calc, err := calculator.New(ctx, eng.Runtime())
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}

	Logger().Debug("runtime ready",
		zap.String("policy", cfg.Policy),
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages),
		zap.Duration("timeout", cfg.Timeout),
		zap.Strings("namespaces", append(reg.Namespaces(), calc.Name())))

	return &Runtime{
		engine:     eng,
		registry:   reg,
		calculator: calc,
		cfg:        cfg,
	}, nil
}

// Registry returns the capability registry.
func (r *Runtime) Registry() *registry.Registry {
	return r.registry
}

// Calculator returns the custom namespace.
func (r *Runtime) Calculator() *registry.HostModule {
	return r.calculator
}

// Config returns the validated configuration, with stdio filled in.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Close releases all runtime resources.
// All instances must be closed before calling this.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

// Load decodes and compiles a core module. Input that does not start with
// the binary magic is treated as text format and compiled first.
func (r *Runtime) Load(ctx context.Context, data []byte) (*Module, error) {
	if len(data) > 0 && !bytes.HasPrefix(data, binaryMagic) {
		bin, err := wat.Compile(string(data))
		if err != nil {
			return nil, errors.ParseFailed("text module", err)
		}
		Logger().Debug("compiled text module", zap.Int("size", len(bin)))
		data = bin
	}

	desc, err := wasm.ParseModule(data)
	if err != nil {
		if stderrors.Is(err, wasm.ErrComponent) {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Detail("only core modules are accepted").
				Cause(err).
				Build()
		}
		return nil, errors.ParseFailed("module", err)
	}

	compiled, err := r.engine.LoadModule(ctx, data, desc)
	if err != nil {
		return nil, errors.ParseFailed("module", err)
	}

	Logger().Debug("module loaded",
		zap.Int("imports", len(desc.Imports)),
		zap.Int("exports", len(desc.Exports)))

	return &Module{runtime: r, compiled: compiled}, nil
}
