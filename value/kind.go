package value

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-host/wasm"
)

// Kind is the closed set of value kinds a guest signature can declare.
type Kind uint8

const (
	KindI32 Kind = iota + 1
	KindI64
	KindF32
	KindF64
	KindFuncRef
	KindAnyRef
	KindV128
)

// String returns the text-format name of the kind.
func (k Kind) String() string {
	switch k {
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindFuncRef:
		return "funcref"
	case KindAnyRef:
		return "anyref"
	case KindV128:
		return "v128"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this kind can be parsed from text.
func (k Kind) Numeric() bool {
	return k >= KindI32 && k <= KindF64
}

// Slots returns how many uint64 stack slots a value of this kind occupies.
func (k Kind) Slots() int {
	if k == KindV128 {
		return 2
	}
	return 1
}

// FromValType maps a decoded value type to its kind. Extern and any
// references are both reported as KindAnyRef.
func FromValType(t wasm.ValType) (Kind, bool) {
	switch t {
	case wasm.ValI32:
		return KindI32, true
	case wasm.ValI64:
		return KindI64, true
	case wasm.ValF32:
		return KindF32, true
	case wasm.ValF64:
		return KindF64, true
	case wasm.ValFuncRef:
		return KindFuncRef, true
	case wasm.ValExternRef, wasm.ValAnyRef:
		return KindAnyRef, true
	case wasm.ValV128:
		return KindV128, true
	default:
		return 0, false
	}
}

// FromAPI maps a wazero value type to its kind. wazero shares the binary
// encoding of value types, so this defers to FromValType.
func FromAPI(t api.ValueType) (Kind, bool) {
	return FromValType(wasm.ValType(t))
}

// Kinds maps a list of wazero value types, failing on the first unknown one.
func Kinds(types []api.ValueType) ([]Kind, bool) {
	out := make([]Kind, len(types))
	for i, t := range types {
		k, ok := FromAPI(t)
		if !ok {
			return nil, false
		}
		out[i] = k
	}
	return out, true
}

// SlotCount returns the number of stack slots needed for kinds.
func SlotCount(kinds []Kind) int {
	n := 0
	for _, k := range kinds {
		n += k.Slots()
	}
	return n
}
