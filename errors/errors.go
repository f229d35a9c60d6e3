package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in a run the error occurred
type Phase string

const (
	PhaseParse       Phase = "parse"       // module decoding
	PhaseRegistry    Phase = "registry"    // capability registry construction
	PhaseLinking     Phase = "linking"     // import resolution
	PhaseInstantiate Phase = "instantiate" // engine instantiation
	PhaseInvoke      Phase = "invoke"      // export invocation
	PhaseCodec       Phase = "codec"       // text <-> value conversion
	PhaseConfig      Phase = "config"      // run configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData              Kind = "invalid_data"
	KindInvalidInput             Kind = "invalid_input"
	KindNotFound                 Kind = "not_found"
	KindUnsupportedInputKind     Kind = "unsupported_input_kind"
	KindParseFailure             Kind = "parse_failure"
	KindRegistryInit             Kind = "registry_init"
	KindUnresolvedImport         Kind = "unresolved_import"
	KindInstantiation            Kind = "instantiation"
	KindExportNotFound           Kind = "export_not_found"
	KindNotCallable              Kind = "not_callable"
	KindArityMismatch            Kind = "arity_mismatch"
	KindArgument                 Kind = "argument"
	KindUnsupportedParameterKind Kind = "unsupported_parameter_kind"
	KindGuestTrap                Kind = "guest_trap"
)

// Error is the structured error type used throughout the host
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	ValueKind string
	Detail    string
	Path      []string
}

// Arity is carried as Value by arity mismatch errors.
type Arity struct {
	Expected int
	Got      int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "#"))
	}

	if e.ValueKind != "" {
		b.WriteString(": kind ")
		b.WriteString(e.ValueKind)
	}

	if e.Detail != "" {
		if e.ValueKind != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (namespace and symbol, or export and position)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// ValueKind sets the value kind name
func (b *Builder) ValueKind(k string) *Builder {
	b.err.ValueKind = k
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Codec constructors

// UnsupportedInputKind reports a request to parse text into a kind that has no
// textual input form.
func UnsupportedInputKind(kind string) *Error {
	return &Error{
		Phase:     PhaseCodec,
		Kind:      KindUnsupportedInputKind,
		ValueKind: kind,
		Detail:    "kind cannot be parsed from text",
	}
}

// ParseFailure reports text that is not valid for the requested kind.
func ParseFailure(text, kind string, cause error) *Error {
	return &Error{
		Phase:     PhaseCodec,
		Kind:      KindParseFailure,
		ValueKind: kind,
		Value:     text,
		Detail:    fmt.Sprintf("invalid value %q", text),
		Cause:     cause,
	}
}

// Loading and linking constructors

// ParseFailed creates a module decoding error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// RegistryInit reports that a built-in namespace could not be provided.
func RegistryInit(namespace string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistryInit,
		Path:   []string{namespace},
		Detail: "host environment cannot provide namespace",
		Cause:  cause,
	}
}

// UnresolvedImport reports an import from a recognized namespace that does not
// provide the requested symbol.
func UnresolvedImport(namespace, symbol string) *Error {
	return &Error{
		Phase:  PhaseLinking,
		Kind:   KindUnresolvedImport,
		Path:   []string{namespace, symbol},
		Detail: fmt.Sprintf("namespace %q has no symbol %q", namespace, symbol),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Invocation constructors

// ExportNotFound reports a missing export.
func ExportNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindExportNotFound,
		Path:   []string{name},
		Detail: fmt.Sprintf("failed to find export %q in module", name),
	}
}

// NotCallable reports an export that exists but is not a function.
func NotCallable(name, externKind string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindNotCallable,
		Path:   []string{name},
		Detail: fmt.Sprintf("export %q is a %s, not a function", name, externKind),
	}
}

// ArityMismatch reports a wrong number of supplied arguments.
func ArityMismatch(name string, expected, got int) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindArityMismatch,
		Path:   []string{name},
		Value:  Arity{Expected: expected, Got: got},
		Detail: fmt.Sprintf("expected %d argument(s), got %d", expected, got),
	}
}

// Argument wraps a codec failure for the argument at position.
func Argument(name string, position int, kind string, cause error) *Error {
	return &Error{
		Phase:     PhaseInvoke,
		Kind:      KindArgument,
		Path:      []string{name, fmt.Sprintf("arg%d", position)},
		ValueKind: kind,
		Value:     position,
		Cause:     cause,
	}
}

// UnsupportedParameterKind reports an export whose parameter cannot be supplied
// as text.
func UnsupportedParameterKind(name string, position int, kind string) *Error {
	return &Error{
		Phase:     PhaseInvoke,
		Kind:      KindUnsupportedParameterKind,
		Path:      []string{name, fmt.Sprintf("arg%d", position)},
		ValueKind: kind,
		Value:     position,
		Detail:    "parameter cannot be supplied from the command line",
	}
}

// GuestTrap wraps a runtime fault raised while the guest executed.
func GuestTrap(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindGuestTrap,
		Path:   []string{name},
		Detail: fmt.Sprintf("failed to invoke %q", name),
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Sentinels for errors.Is matching on phase and kind.
var (
	ErrParse                    = &Error{Phase: PhaseParse, Kind: KindInvalidData}
	ErrRegistryInit             = &Error{Phase: PhaseRegistry, Kind: KindRegistryInit}
	ErrUnresolvedImport         = &Error{Phase: PhaseLinking, Kind: KindUnresolvedImport}
	ErrInstantiation            = &Error{Phase: PhaseInstantiate, Kind: KindInstantiation}
	ErrExportNotFound           = &Error{Phase: PhaseInvoke, Kind: KindExportNotFound}
	ErrNotCallable              = &Error{Phase: PhaseInvoke, Kind: KindNotCallable}
	ErrArityMismatch            = &Error{Phase: PhaseInvoke, Kind: KindArityMismatch}
	ErrArgument                 = &Error{Phase: PhaseInvoke, Kind: KindArgument}
	ErrUnsupportedParameterKind = &Error{Phase: PhaseInvoke, Kind: KindUnsupportedParameterKind}
	ErrGuestTrap                = &Error{Phase: PhaseInvoke, Kind: KindGuestTrap}
	ErrUnsupportedInputKind     = &Error{Phase: PhaseCodec, Kind: KindUnsupportedInputKind}
	ErrParseFailure             = &Error{Phase: PhaseCodec, Kind: KindParseFailure}
)
