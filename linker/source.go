package linker

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/registry"
)

// Source describes what satisfies an import.
type Source interface {
	isSource()
}

// HostFunc binds an import to a host namespace callable.
type HostFunc struct {
	Callable *registry.Callable
	Tag      registry.Tag
}

func (HostFunc) isSource() {}

// TrapFunc represents an unresolved function that will trap if called.
type TrapFunc struct {
	Name   string // The function name for error messages
	Reason string // Why the function is unresolved
}

func (TrapFunc) isSource() {}

// Handler returns a host function that fails the guest call with a
// descriptive message.
func (t TrapFunc) Handler() api.GoModuleFunc {
	name, reason := t.Name, t.Reason
	return func(_ context.Context, _ api.Module, _ []uint64) {
		Logger().Error("trap stub called", zap.String("import", name), zap.String("reason", reason))
		panic(fmt.Sprintf("unresolved import %s called: %s", name, reason))
	}
}
