// Package errors provides structured error types for the host.
//
// Errors are categorized by Phase (where in a run the error occurred) and Kind
// (error category). The Error type carries the offending location (namespace
// and symbol, or export and argument position), the value kind involved, and
// the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLinking, errors.KindUnresolvedImport).
//		Path("wasi_unstable", "fd_foo").
//		Detail("no such symbol").
//		Build()
//
// Or use the constructor for each taxonomy entry:
//
//	err := errors.ArityMismatch("add", 2, 1)
//	err := errors.GuestTrap("run", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any error of the same phase and kind.
package errors
