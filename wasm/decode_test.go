package wasm_test

import (
	"errors"
	"testing"

	"github.com/wippyai/wasm-host/wasm"
	"github.com/wippyai/wasm-host/wat"
)

var (
	i32 = wasm.ValI32
	i64 = wasm.ValI64
)

func TestParseMinimalModule(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Imports) != 0 || len(m.Exports) != 0 {
		t.Errorf("expected empty module, got %+v", m)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	_, err := wasm.ParseModule(data)
	if !errors.Is(err, wasm.ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestParseComponentRejected(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x0d, 0x00, 0x01, 0x00}
	if !wasm.IsComponent(data) {
		t.Fatal("expected component preamble to be detected")
	}
	_, err := wasm.ParseModule(data)
	if !errors.Is(err, wasm.ErrComponent) {
		t.Errorf("expected ErrComponent, got %v", err)
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	_, err := wasm.ParseModule([]byte{0x00, 0x61, 0x73})
	if err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestParseTruncatedSection(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, 0x01, 0x10, 0x00}
	_, err := wasm.ParseModule(data)
	if !errors.Is(err, wasm.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestParseSectionOutOfOrder(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x03, 0x01, 0x00, // function section, zero entries
		0x01, 0x01, 0x00, // type section, zero entries
	}
	if _, err := wasm.ParseModule(data); err == nil {
		t.Error("expected error for out of order sections")
	}
}

func TestParseImportsInOrder(t *testing.T) {
	m, err := wasm.ParseModule(wat.MustCompile(`(module
		(import "wasi_snapshot_preview1" "fd_write" (func (param i32 i32 i32 i32) (result i32)))
		(import "env" "memory" (memory 1))
		(import "calculator" "add" (func (param i32 i32) (result i32)))
		(import "env" "log" (func (param i64))))`))
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	want := []struct {
		module, name string
		kind         wasm.ExternKind
	}{
		{"wasi_snapshot_preview1", "fd_write", wasm.KindFunc},
		{"env", "memory", wasm.KindMemory},
		{"calculator", "add", wasm.KindFunc},
		{"env", "log", wasm.KindFunc},
	}
	if len(m.Imports) != len(want) {
		t.Fatalf("expected %d imports, got %d", len(want), len(m.Imports))
	}
	for i, w := range want {
		imp := m.Imports[i]
		if imp.Module != w.module || imp.Name != w.name || imp.Kind != w.kind {
			t.Errorf("import %d: got %s#%s (%s), want %s#%s (%s)", i, imp.Module, imp.Name, imp.Kind, w.module, w.name, w.kind)
		}
	}

	funcs := m.ImportedFuncs()
	if len(funcs) != 3 {
		t.Fatalf("expected 3 function imports, got %d", len(funcs))
	}
	sig, ok := m.ImportType(funcs[1])
	if !ok {
		t.Fatal("expected signature for calculator#add")
	}
	if got := sig.String(); got != "(i32, i32) -> (i32)" {
		t.Errorf("calculator#add signature = %s", got)
	}
}

func TestParseExportsAndFuncTypes(t *testing.T) {
	m, err := wasm.ParseModule(wat.MustCompile(`(module
		(import "env" "tick" (func $tick))
		(global $answer i32 (i32.const 5))
		(func $add (param i32 i32) (result i32)
			(i32.add (local.get 0) (local.get 1)))
		(func $pair (result i64 f64)
			(i64.const 7)
			(f64.const 9))
		(export "add" (func $add))
		(export "pair" (func $pair))
		(export "tick" (func $tick))
		(export "answer" (global $answer)))`))
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	tests := []struct {
		name string
		kind wasm.ExternKind
		sig  string
	}{
		{"add", wasm.KindFunc, "(i32, i32) -> (i32)"},
		{"pair", wasm.KindFunc, "() -> (i64, f64)"},
		{"tick", wasm.KindFunc, "() -> ()"},
		{"answer", wasm.KindGlobal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := m.Export(tt.name)
			if !ok {
				t.Fatalf("export %q not found", tt.name)
			}
			if e.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", e.Kind, tt.kind)
			}
			if tt.kind != wasm.KindFunc {
				return
			}
			sig, ok := m.FuncType(e.Idx)
			if !ok {
				t.Fatalf("no signature for function %d", e.Idx)
			}
			if sig.String() != tt.sig {
				t.Errorf("signature = %s, want %s", sig, tt.sig)
			}
		})
	}

	if _, ok := m.Export("missing"); ok {
		t.Error("unexpected export \"missing\"")
	}
}

func TestParseDuplicateExport(t *testing.T) {
	data := wat.MustCompile(`(module
		(func $run)
		(export "run" (func $run))
		(export "run" (func $run)))`)
	if _, err := wasm.ParseModule(data); err == nil {
		t.Error("expected error for duplicate export name")
	}
}

func TestParseTypeIndexOutOfRange(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x05, // one function referencing type 5
	}
	if _, err := wasm.ParseModule(data); err == nil {
		t.Error("expected error for type index out of range")
	}
}

func TestFuncTypeEqual(t *testing.T) {
	a := wasm.FuncType{Params: []wasm.ValType{i32, i32}, Results: []wasm.ValType{i32}}
	b := wasm.FuncType{Params: []wasm.ValType{i32, i32}, Results: []wasm.ValType{i32}}
	c := wasm.FuncType{Params: []wasm.ValType{i64, i64}, Results: []wasm.ValType{i64}}
	if !a.Equal(b) {
		t.Error("expected identical signatures to be equal")
	}
	if a.Equal(c) {
		t.Error("expected different signatures to differ")
	}
}

func TestParseOversizedCounts(t *testing.T) {
	header := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	huge := []byte{0xff, 0xff, 0xff, 0xff, 0x0f}

	section := func(id byte, body ...byte) []byte {
		out := append([]byte{}, header...)
		out = append(out, id, byte(len(body)))
		return append(out, body...)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"type", section(wasm.SectionType, huge...)},
		{"import", section(wasm.SectionImport, huge...)},
		{"function", section(wasm.SectionFunction, huge...)},
		{"export", section(wasm.SectionExport, huge...)},
		{"params", section(wasm.SectionType, append([]byte{0x01, wasm.FuncTypeByte}, huge...)...)},
		{"one past the end", section(wasm.SectionFunction, 0x02, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ParseModule(tt.data)
			if !errors.Is(err, wasm.ErrCountTooLarge) {
				t.Fatalf("expected ErrCountTooLarge, got %v", err)
			}
		})
	}
}
