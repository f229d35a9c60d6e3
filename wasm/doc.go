// Package wasm decodes the descriptor of a core WebAssembly module.
//
// Only the sections that matter to the host are decoded: the type section
// (function signatures), the import section (ordered import declarations),
// the function section (signature of each declared function) and the export
// section. Every other section is skipped by size; full validation of code
// and data is left to the execution engine, which compiles the same bytes.
//
//	mod, err := wasm.ParseModule(data)
//	if err != nil {
//	    return err
//	}
//	for _, imp := range mod.ImportedFuncs() {
//	    sig, _ := mod.ImportType(imp)
//	    fmt.Println(imp.Module, imp.Name, sig)
//	}
//
// Component-model binaries are rejected with ErrComponent.
package wasm
