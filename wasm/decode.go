package wasm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
	ErrComponent      = errors.New("component binaries are not supported, expected a core module")
)

// IsComponent reports whether data carries the component-model preamble.
func IsComponent(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return false
	}
	return binary.LittleEndian.Uint32(data[4:8]) > Version
}

// ParseModule decodes the linking-relevant sections of a core module binary.
func ParseModule(data []byte) (*Module, error) {
	r := newReader(data, 0)

	magic, err := r.readU32LE()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.readU32LE()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if version != Version {
		if IsComponent(data) {
			return nil, ErrComponent
		}
		return nil, ErrInvalidVersion
	}

	m := &Module{}
	var lastSectionOrder int

	for !r.done() {
		sectionID, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("section header: %w", err)
		}

		// Custom sections can appear anywhere
		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, fmt.Errorf("unknown section ID: 0x%02x", sectionID)
			}
			if order <= lastSectionOrder {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.readU32()
		if err != nil {
			return nil, fmt.Errorf("section size: %w", err)
		}

		start := r.pos
		sectionData, err := r.readBytes(int(sectionSize))
		if err != nil {
			return nil, fmt.Errorf("section data: %w", err)
		}

		sr := newReader(sectionData, start)

		switch sectionID {
		case SectionType:
			err = parseTypeSection(sr, m)
		case SectionImport:
			err = parseImportSection(sr, m)
		case SectionFunction:
			err = parseFunctionSection(sr, m)
		case SectionExport:
			err = parseExportSection(sr, m)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s section: %w", sectionName(sectionID), err)
		}
		if !sr.done() {
			return nil, fmt.Errorf("%s section: %d trailing bytes", sectionName(sectionID), len(sectionData)-sr.pos)
		}
	}

	return m, nil
}

// sectionOrder returns the canonical ordering for a section ID, which differs
// from the numeric IDs for the data count and tag sections.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

func sectionName(id byte) string {
	switch id {
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionExport:
		return "export"
	default:
		return fmt.Sprintf("id %d", id)
	}
}

func parseTypeSection(r *reader, m *Module) error {
	count, err := r.readCount()
	if err != nil {
		return err
	}
	m.Types = make([]FuncType, 0, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.readByte()
		if err != nil {
			return err
		}
		if form != FuncTypeByte {
			return fmt.Errorf("type %d: unsupported type form 0x%02x", i, form)
		}
		params, err := readValTypes(r)
		if err != nil {
			return fmt.Errorf("type %d params: %w", i, err)
		}
		results, err := readValTypes(r)
		if err != nil {
			return fmt.Errorf("type %d results: %w", i, err)
		}
		m.Types = append(m.Types, FuncType{Params: params, Results: results})
	}
	return nil
}

func readValTypes(r *reader) ([]ValType, error) {
	count, err := r.readCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	types := make([]ValType, count)
	for i := range types {
		types[i], err = readValType(r)
		if err != nil {
			return nil, err
		}
	}
	return types, nil
}

func readValType(r *reader) (ValType, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch ValType(b) {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExternRef, ValAnyRef:
		return ValType(b), nil
	default:
		return 0, fmt.Errorf("unsupported value type 0x%02x", b)
	}
}

func parseImportSection(r *reader, m *Module) error {
	count, err := r.readCount()
	if err != nil {
		return err
	}
	m.Imports = make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		module, err := r.readName()
		if err != nil {
			return err
		}
		name, err := r.readName()
		if err != nil {
			return err
		}
		kind, err := r.readByte()
		if err != nil {
			return err
		}

		imp := Import{Module: module, Name: name, Kind: ExternKind(kind)}

		switch imp.Kind {
		case KindFunc:
			imp.TypeIdx, err = r.readU32()
			if err == nil && int(imp.TypeIdx) >= len(m.Types) {
				err = fmt.Errorf("import %s#%s: type index %d out of range", module, name, imp.TypeIdx)
			}
		case KindTable:
			if _, err = readValType(r); err == nil {
				err = skipLimits(r)
			}
		case KindMemory:
			err = skipLimits(r)
		case KindGlobal:
			if _, err = readValType(r); err == nil {
				_, err = r.readByte()
			}
		case KindTag:
			if _, err = r.readByte(); err == nil {
				_, err = r.readU32()
			}
		default:
			err = fmt.Errorf("unknown import kind: %d", kind)
		}
		if err != nil {
			return err
		}

		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func skipLimits(r *reader) error {
	flags, err := r.readByte()
	if err != nil {
		return err
	}
	read := func() error {
		if flags&LimitsMemory64 != 0 {
			_, err := r.readU64()
			return err
		}
		_, err := r.readU32()
		return err
	}
	if err := read(); err != nil {
		return err
	}
	if flags&LimitsHasMax != 0 {
		return read()
	}
	return nil
}

func parseFunctionSection(r *reader, m *Module) error {
	count, err := r.readCount()
	if err != nil {
		return err
	}
	m.Funcs = make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		m.Funcs[i], err = r.readU32()
		if err != nil {
			return err
		}
		if int(m.Funcs[i]) >= len(m.Types) {
			return fmt.Errorf("function %d: type index %d out of range", i, m.Funcs[i])
		}
	}
	return nil
}

func parseExportSection(r *reader, m *Module) error {
	count, err := r.readCount()
	if err != nil {
		return err
	}
	m.Exports = make([]Export, 0, count)
	seen := make(map[string]bool, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.readName()
		if err != nil {
			return err
		}
		kind, err := r.readByte()
		if err != nil {
			return err
		}
		if ExternKind(kind) > KindTag {
			return fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate export name %q", name)
		}
		seen[name] = true
		m.Exports = append(m.Exports, Export{Name: name, Kind: ExternKind(kind), Idx: idx})
	}
	return nil
}
