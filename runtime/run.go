package runtime

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/value"
)

// ReadModule reads a module binary from path.
func ReadModule(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Path(path).
			Detail("read module").
			Cause(err).
			Build()
	}
	return data, nil
}

// Run performs one complete invocation: read and decode the module at
// path, build the host environment, link, instantiate, invoke export with
// args and print the results to cfg's stdout.
func Run(ctx context.Context, cfg Config, path, export string, args []string) ([]value.Value, error) {
	data, err := ReadModule(path)
	if err != nil {
		return nil, err
	}
	return RunBytes(ctx, cfg, data, export, args)
}

// RunBytes is Run for a module already in memory.
func RunBytes(ctx context.Context, cfg Config, data []byte, export string, args []string) ([]value.Value, error) {
	rt, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, data)
	if err != nil {
		return nil, err
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	defer inst.Close(ctx)

	Logger().Debug("invoking", zap.String("export", export), zap.Int("args", len(args)))
	return inst.Invoke(ctx, export, args, rt.cfg.Stdio.Stdout)
}
