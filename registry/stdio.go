package registry

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
)

var errMissingStream = stderrors.New("standard stream unavailable")

// Stdio is the set of streams every guest inherits.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s Stdio) check() error {
	switch {
	case s.Stdin == nil:
		return fmt.Errorf("stdin: %w", errMissingStream)
	case s.Stdout == nil:
		return fmt.Errorf("stdout: %w", errMissingStream)
	case s.Stderr == nil:
		return fmt.Errorf("stderr: %w", errMissingStream)
	}
	return nil
}

// InheritStdio returns the process's standard streams, failing when any of
// them is closed or otherwise unusable.
func InheritStdio() (Stdio, error) {
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if f == nil {
			return Stdio{}, errMissingStream
		}
		if _, err := f.Stat(); err != nil {
			return Stdio{}, fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}, nil
}
