package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseInvoke,
				Kind:      KindArgument,
				Path:      []string{"add", "arg1"},
				ValueKind: "i32",
				Detail:    "cannot convert",
			},
			contains: []string{"[invoke]", "argument", "add#arg1", "kind i32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseParse,
				Kind:  KindInvalidData,
			},
			contains: []string{"[parse]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseInvoke,
				Kind:   KindGuestTrap,
				Detail: "failed to invoke",
				Cause:  errors.New("unreachable"),
			},
			contains: []string{"[invoke]", "guest_trap", "failed to invoke", "caused by", "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseInstantiate,
		Kind:  KindInstantiation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := UnresolvedImport("wasi_unstable", "fd_foo")

	if !errors.Is(err, ErrUnresolvedImport) {
		t.Error("errors.Is should match same phase and kind")
	}
	if errors.Is(err, ErrExportNotFound) {
		t.Error("errors.Is should not match a different kind")
	}
	if err.Is(&Error{Phase: PhaseInvoke, Kind: KindUnresolvedImport}) {
		t.Error("Is should not match a different phase")
	}
}

func TestError_IsThroughChain(t *testing.T) {
	codec := ParseFailure("x", "i32", errors.New("bad digit"))
	arg := Argument("add", 0, "i32", codec)

	if !errors.Is(arg, ErrArgument) {
		t.Error("argument error should match ErrArgument")
	}
	if !errors.Is(arg, ErrParseFailure) {
		t.Error("argument error should expose the codec failure")
	}

	var e *Error
	if !errors.As(arg, &e) || e.Value != 0 {
		t.Errorf("errors.As = %+v, want position 0", e)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLinking, KindUnresolvedImport).
		Path("calculator", "sub").
		ValueKind("i32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "add", "sub").
		Build()

	if err.Phase != PhaseLinking {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLinking)
	}
	if err.Kind != KindUnresolvedImport {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnresolvedImport)
	}
	if len(err.Path) != 2 || err.Path[0] != "calculator" || err.Path[1] != "sub" {
		t.Errorf("Path = %v, want [calculator sub]", err.Path)
	}
	if err.ValueKind != "i32" {
		t.Errorf("ValueKind = %v, want 'i32'", err.ValueKind)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected add, got sub" {
		t.Errorf("Detail = %v, want 'expected add, got sub'", err.Detail)
	}
}

func TestConstructors(t *testing.T) {
	t.Run("ArityMismatch", func(t *testing.T) {
		err := ArityMismatch("add", 2, 3)
		arity, ok := err.Value.(Arity)
		if !ok || arity.Expected != 2 || arity.Got != 3 {
			t.Errorf("Value = %#v, want Arity{2, 3}", err.Value)
		}
		if !strings.Contains(err.Error(), "expected 2 argument(s), got 3") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("UnresolvedImport", func(t *testing.T) {
		err := UnresolvedImport("wasi_snapshot_preview1", "nope")
		if err.Path[0] != "wasi_snapshot_preview1" || err.Path[1] != "nope" {
			t.Errorf("Path = %v", err.Path)
		}
	})

	t.Run("NotCallable", func(t *testing.T) {
		err := NotCallable("memory", "memory")
		if err.Kind != KindNotCallable {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("UnsupportedParameterKind", func(t *testing.T) {
		err := UnsupportedParameterKind("f", 1, "v128")
		if err.ValueKind != "v128" || err.Value != 1 {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("RegistryInit", func(t *testing.T) {
		cause := errors.New("stdout closed")
		err := RegistryInit("wasi_unstable", cause)
		if !errors.Is(err, ErrRegistryInit) || !errors.Is(err, cause) {
			t.Errorf("got %v", err)
		}
	})
}
