package invoke

// State is a step of a single export invocation.
type State uint8

const (
	StateIdle State = iota
	StateExportLookup
	StateArityCheck
	StateArgumentCoercion
	StateCall
	StateResultRender
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExportLookup:
		return "export-lookup"
	case StateArityCheck:
		return "arity-check"
	case StateArgumentCoercion:
		return "argument-coercion"
	case StateCall:
		return "call"
	case StateResultRender:
		return "result-render"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
