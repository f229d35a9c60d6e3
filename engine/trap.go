package engine

import (
	stderrors "errors"
	"fmt"

	"github.com/tetratelabs/wazero/sys"
)

// Trap is a runtime fault raised while the guest executed.
type Trap struct {
	Cause  error
	Export string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap in %q: %v", t.Export, t.Cause)
}

func (t *Trap) Unwrap() error {
	return t.Cause
}

// Exit reports that the guest terminated the call through proc_exit, or
// that the call was aborted because its context ended.
type Exit struct {
	Cause  *sys.ExitError
	Export string
	Code   uint32
}

func (e *Exit) Error() string {
	switch e.Code {
	case sys.ExitCodeDeadlineExceeded:
		return fmt.Sprintf("%q exceeded its deadline", e.Export)
	case sys.ExitCodeContextCanceled:
		return fmt.Sprintf("%q was canceled", e.Export)
	default:
		return fmt.Sprintf("%q exited with code %d", e.Export, e.Code)
	}
}

func (e *Exit) Unwrap() error {
	return e.Cause
}

// Success reports a clean exit with status 0.
func (e *Exit) Success() bool {
	return e.Code == 0
}

func classify(export string, err error) error {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return &Exit{Export: export, Code: exitErr.ExitCode(), Cause: exitErr}
	}
	return &Trap{Export: export, Cause: err}
}
