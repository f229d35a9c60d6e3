package wasm

// Module is the descriptor of a parsed core WebAssembly module: its
// function signatures, ordered import declarations and exports. Sections that
// do not affect linking or invocation are skipped.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []uint32 // Type indices for declared functions
	Exports []Export
}

// FuncType represents a WebAssembly function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Equal reports whether both signatures have identical parameters and results.
func (f FuncType) Equal(o FuncType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// String renders the signature as "(i32, i32) -> (i32)".
func (f FuncType) String() string {
	return valTypeList(f.Params) + " -> " + valTypeList(f.Results)
}

func valTypeList(ts []ValType) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}

// Import is a single import declaration. TypeIdx is meaningful only for
// function imports.
type Import struct {
	Module  string
	Name    string
	Kind    ExternKind
	TypeIdx uint32
}

// Export is a single export entry. Idx indexes the space selected by Kind.
type Export struct {
	Name string
	Kind ExternKind
	Idx  uint32
}

// ValType represents a WebAssembly value type.
type ValType byte

// String returns the text-format name of the value type.
func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExternRef:
		return "externref"
	case ValAnyRef:
		return "anyref"
	default:
		return "unknown"
	}
}

// ExternKind identifies the type of an imported or exported item.
type ExternKind byte

// String returns the text-format name of the extern kind.
func (k ExternKind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindTable:
		return "table"
	case KindMemory:
		return "memory"
	case KindGlobal:
		return "global"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// ImportedFuncs returns the function imports in declaration order.
func (m *Module) ImportedFuncs() []Import {
	var out []Import
	for _, imp := range m.Imports {
		if imp.Kind == KindFunc {
			out = append(out, imp)
		}
	}
	return out
}

// ImportType returns the signature of a function import.
func (m *Module) ImportType(imp Import) (FuncType, bool) {
	if imp.Kind != KindFunc || int(imp.TypeIdx) >= len(m.Types) {
		return FuncType{}, false
	}
	return m.Types[imp.TypeIdx], true
}

// FuncType returns the signature of the function at idx in the function
// index space (imported functions first, then declared ones).
func (m *Module) FuncType(idx uint32) (FuncType, bool) {
	imported := uint32(0)
	for _, imp := range m.Imports {
		if imp.Kind != KindFunc {
			continue
		}
		if imported == idx {
			return m.ImportType(imp)
		}
		imported++
	}

	local := idx - imported
	if int(local) >= len(m.Funcs) {
		return FuncType{}, false
	}
	typeIdx := m.Funcs[local]
	if int(typeIdx) >= len(m.Types) {
		return FuncType{}, false
	}
	return m.Types[typeIdx], true
}

// Export looks up an export by name.
func (m *Module) Export(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
