package runtime

import (
	"context"
	"io"

	"github.com/wippyai/wasm-host/engine"
	"github.com/wippyai/wasm-host/invoke"
	"github.com/wippyai/wasm-host/linker"
	"github.com/wippyai/wasm-host/value"
)

// Instance is an instantiated module ready to be invoked.
type Instance struct {
	module *Module
	links  *linker.LinkSet
	inst   *engine.WazeroInstance
}

// Links returns the link set the instance was bound with.
func (i *Instance) Links() *linker.LinkSet {
	return i.links
}

// Invoke calls the export name with textual args and writes the rendered
// results to out. The configured timeout, if any, bounds the call.
func (i *Instance) Invoke(ctx context.Context, name string, args []string, out io.Writer, opts ...invoke.Option) ([]value.Value, error) {
	if timeout := i.module.runtime.cfg.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return invoke.NewDriver(i.inst, out, opts...).Run(ctx, name, args)
}

func (i *Instance) Close(ctx context.Context) error {
	return i.inst.Close(ctx)
}
