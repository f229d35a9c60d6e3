// Package wat compiles WebAssembly text format into core module binaries.
//
// The host accepts a guest either as a binary module or as its text form;
// text input goes through Compile before decoding, so both paths share the
// same import analysis and linking:
//
//	bin, err := wat.Compile(`(module
//		(func (export "add") (param i32 i32) (result i32)
//			(i32.add (local.get 0) (local.get 1)))
//	)`)
//
// Supported:
//   - Functions with params, results and locals (named and indexed)
//   - Multi-value returns and block parameters
//   - Memory, global and table declarations with imports and exports
//   - Structured control flow, br_table, call and call_indirect
//   - Integer and float arithmetic, conversions and sign extension
//   - Loads and stores with offset/align, bulk memory and table ops
//   - Reference types and typed select
//   - Active, passive and declarative data and elem segments
//   - Line (;;) and block (; ;) comments
//
// Not supported: SIMD (v128), threads, exception handling and GC types.
package wat
