// Package engine runs core WebAssembly modules on wazero.
//
// The engine package provides three main types:
//
//	WazeroEngine   - owns the wazero runtime shared by host namespaces and guests
//	WazeroModule   - a compiled module plus its decoded descriptor
//	WazeroInstance - a live instance whose exports can be called
//
// Instantiation takes a linker.LinkSet. Host namespaces named by resolved
// bindings must already be instantiated in the engine's runtime; namespaces
// left unresolved are served by per-instance trap stubs. wazero checks each
// import's signature against the providing function and rejects mismatches.
//
// Guests get the configured stdio, real clocks and cryptographic randomness.
// A module exporting _initialize has it run during instantiation; _start is
// never run implicitly.
//
// Call failures are classified: proc_exit and context expiry surface as
// *Exit, every other fault as *Trap.
//
// WazeroEngine and WazeroModule are safe for concurrent use.
// WazeroInstance is NOT thread-safe and should be used by a single goroutine.
package engine
