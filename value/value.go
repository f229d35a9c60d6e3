package value

import (
	"math"

	"github.com/tetratelabs/wazero/api"
)

// Value is a tagged datum of one Kind. Numeric kinds keep their bit pattern
// in lo; v128 uses lo and hi; references keep the engine's opaque handle.
type Value struct {
	lo   uint64
	hi   uint64
	kind Kind
}

func I32(v int32) Value { return Value{kind: KindI32, lo: api.EncodeI32(v)} }
func I64(v int64) Value { return Value{kind: KindI64, lo: api.EncodeI64(v)} }
func F32(v float32) Value { return Value{kind: KindF32, lo: api.EncodeF32(v)} }
func F64(v float64) Value { return Value{kind: KindF64, lo: api.EncodeF64(v)} }
func FuncRef(ref uint64) Value { return Value{kind: KindFuncRef, lo: ref} }
func AnyRef(ref uint64) Value { return Value{kind: KindAnyRef, lo: ref} }

// V128 builds a vector value from its low and high 64-bit lanes.
func V128(lo, hi uint64) Value { return Value{kind: KindV128, lo: lo, hi: hi} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

func (v Value) I32() int32 { return api.DecodeI32(v.lo) }
func (v Value) I64() int64 { return int64(v.lo) }
func (v Value) F32() float32 { return api.DecodeF32(v.lo) }
func (v Value) F64() float64 { return api.DecodeF64(v.lo) }
func (v Value) Ref() uint64 { return v.lo }
func (v Value) Lanes() (lo, hi uint64) { return v.lo, v.hi }

// Equal compares kind and bit pattern, so NaNs with the same payload are equal.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.lo == o.lo && v.hi == o.hi
}

// String renders the value.
func (v Value) String() string {
	return Render(v)
}

// AppendSlots appends the value's stack representation to stack.
func (v Value) AppendSlots(stack []uint64) []uint64 {
	switch v.kind {
	case KindV128:
		return append(stack, v.lo, v.hi)
	case KindI32:
		// Upper bits of an i32 slot are ignored by the engine but kept zero.
		return append(stack, v.lo&math.MaxUint32)
	default:
		return append(stack, v.lo)
	}
}

// Encode flattens values into engine stack slots.
func Encode(values []Value) []uint64 {
	stack := make([]uint64, 0, len(values))
	for _, v := range values {
		stack = v.AppendSlots(stack)
	}
	return stack
}

// Decode reads one value per kind from stack. It returns false when stack
// holds fewer slots than kinds require.
func Decode(kinds []Kind, stack []uint64) ([]Value, bool) {
	if len(stack) < SlotCount(kinds) {
		return nil, false
	}
	out := make([]Value, len(kinds))
	pos := 0
	for i, k := range kinds {
		switch k {
		case KindV128:
			out[i] = V128(stack[pos], stack[pos+1])
			pos += 2
		case KindI32:
			out[i] = Value{kind: k, lo: stack[pos] & math.MaxUint32}
			pos++
		default:
			out[i] = Value{kind: k, lo: stack[pos]}
			pos++
		}
	}
	return out, true
}
