package invoke

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/engine"
	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/value"
	"github.com/wippyai/wasm-host/wasm"
)

// Instance is a callable module instance.
type Instance interface {
	Module() *wasm.Module
	Call(ctx context.Context, name string, params []uint64) ([]uint64, error)
}

// Signature is an export's declared parameter and result kinds.
type Signature struct {
	Params  []value.Kind
	Results []value.Kind
}

// Driver performs one invocation of a named export. A Driver is single use.
type Driver struct {
	inst         Instance
	out          io.Writer
	onTransition func(from, to State)
	err          error
	state        State
}

// Option configures a Driver.
type Option func(*Driver)

// WithTransitionHook calls fn on every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(d *Driver) {
		d.onTransition = fn
	}
}

// NewDriver returns a driver calling into inst and writing rendered results
// to out, one per line.
func NewDriver(inst Instance, out io.Writer, opts ...Option) *Driver {
	d := &Driver{inst: inst, out: out}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Err returns the failure reason once the driver reached StateFailed.
func (d *Driver) Err() error {
	return d.err
}

func (d *Driver) enter(s State) {
	from := d.state
	d.state = s
	Logger().Debug("invoke transition", zap.Stringer("from", from), zap.Stringer("to", s))
	if d.onTransition != nil {
		d.onTransition(from, s)
	}
}

func (d *Driver) fail(err error) error {
	d.err = err
	d.enter(StateFailed)
	return err
}

// Run invokes the export name with textual args. On success the results
// are written to the output and returned in declared order. A guest that
// exits cleanly before returning produces no results.
func (d *Driver) Run(ctx context.Context, name string, args []string) ([]value.Value, error) {
	if d.state != StateIdle {
		return nil, fmt.Errorf("driver already used (state %s)", d.state)
	}

	d.enter(StateExportLookup)
	sig, err := LookupExport(d.inst.Module(), name)
	if err != nil {
		return nil, d.fail(err)
	}

	d.enter(StateArityCheck)
	if len(args) != len(sig.Params) {
		return nil, d.fail(errors.ArityMismatch(name, len(sig.Params), len(args)))
	}

	d.enter(StateArgumentCoercion)
	params, err := coerce(name, sig.Params, args)
	if err != nil {
		return nil, d.fail(err)
	}

	d.enter(StateCall)
	stack, err := d.inst.Call(ctx, name, value.Encode(params))
	if err != nil {
		var exit *engine.Exit
		if stderrors.As(err, &exit) && exit.Success() {
			Logger().Debug("guest exited cleanly", zap.String("export", name))
			d.enter(StateResultRender)
			d.enter(StateDone)
			return nil, nil
		}
		Logger().Debug("guest trap", zap.String("export", name), zap.Error(err))
		return nil, d.fail(errors.GuestTrap(name, err))
	}

	d.enter(StateResultRender)
	results, ok := value.Decode(sig.Results, stack)
	if !ok {
		return nil, d.fail(errors.New(errors.PhaseInvoke, errors.KindGuestTrap).
			Path(name).
			Detail("engine returned %d slot(s) for %d result(s)", len(stack), len(sig.Results)).
			Build())
	}
	for _, v := range results {
		if _, err := fmt.Fprintln(d.out, value.Render(v)); err != nil {
			return nil, d.fail(errors.Wrap(errors.PhaseInvoke, errors.KindInvalidData, err, "write result"))
		}
	}

	d.enter(StateDone)
	return results, nil
}

// LookupExport resolves name to a function export and its signature.
func LookupExport(m *wasm.Module, name string) (Signature, error) {
	exp, ok := m.Export(name)
	if !ok {
		return Signature{}, errors.ExportNotFound(name)
	}
	if exp.Kind != wasm.KindFunc {
		return Signature{}, errors.NotCallable(name, exp.Kind.String())
	}
	ft, ok := m.FuncType(exp.Idx)
	if !ok {
		return Signature{}, errors.NotCallable(name, "function without a signature")
	}

	sig := Signature{
		Params:  make([]value.Kind, len(ft.Params)),
		Results: make([]value.Kind, len(ft.Results)),
	}
	for i, t := range ft.Params {
		k, ok := value.FromValType(t)
		if !ok {
			return Signature{}, errors.UnsupportedParameterKind(name, i, t.String())
		}
		sig.Params[i] = k
	}
	for i, t := range ft.Results {
		k, ok := value.FromValType(t)
		if !ok {
			return Signature{}, errors.NotCallable(name, "function with result type "+t.String())
		}
		sig.Results[i] = k
	}
	return sig, nil
}

// coerce rejects parameters that have no text form before parsing any
// argument, then parses args in order, stopping at the first failure.
func coerce(name string, kinds []value.Kind, args []string) ([]value.Value, error) {
	for i, k := range kinds {
		if !k.Numeric() {
			return nil, errors.UnsupportedParameterKind(name, i, k.String())
		}
	}
	params := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := value.Parse(arg, kinds[i])
		if err != nil {
			return nil, errors.Argument(name, i, kinds[i].String(), err)
		}
		params[i] = v
	}
	return params, nil
}

// Invoke runs a fresh Driver.
func Invoke(ctx context.Context, inst Instance, name string, args []string, out io.Writer) ([]value.Value, error) {
	return NewDriver(inst, out).Run(ctx, name, args)
}

// String renders the signature as "(i32, i32) -> (i32)".
func (s Signature) String() string {
	return kindList(s.Params) + " -> " + kindList(s.Results)
}

func kindList(kinds []value.Kind) string {
	s := "("
	for i, k := range kinds {
		if i > 0 {
			s += ", "
		}
		s += k.String()
	}
	return s + ")"
}
