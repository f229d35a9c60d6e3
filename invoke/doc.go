// Package invoke drives a single call of an exported function.
//
// A Driver moves through a fixed sequence of states:
//
//	idle -> export-lookup -> arity-check -> argument-coercion -> call -> result-render -> done
//
// and enters failed from any state with the reason available from Err. The
// arity check runs before any argument is parsed, and an export with a
// parameter kind that has no text form is rejected before parsing as well.
// Results are rendered in declared order, one line each.
package invoke
