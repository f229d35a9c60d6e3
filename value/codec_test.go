package value

import (
	stderrors "errors"
	"math"
	"testing"
	"testing/quick"

	"github.com/wippyai/wasm-host/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		want Value
	}{
		{"i32 positive", "7", KindI32, I32(7)},
		{"i32 negative", "-42", KindI32, I32(-42)},
		{"i32 plus sign", "+3", KindI32, I32(3)},
		{"i32 max", "2147483647", KindI32, I32(math.MaxInt32)},
		{"i32 min", "-2147483648", KindI32, I32(math.MinInt32)},
		{"i64 large", "9223372036854775807", KindI64, I64(math.MaxInt64)},
		{"f32 fraction", "1.5", KindF32, F32(1.5)},
		{"f32 exponent", "2e3", KindF32, F32(2000)},
		{"f32 overflow saturates", "1e39", KindF32, F32(float32(math.Inf(1)))},
		{"f64 fraction", "-0.25", KindF64, F64(-0.25)},
		{"f64 inf", "inf", KindF64, F64(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.kind)
			if err != nil {
				t.Fatalf("Parse(%q, %s): %v", tt.text, tt.kind, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q, %s) = %s, want %s", tt.text, tt.kind, got, tt.want)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{"empty", "", KindI32},
		{"word", "seven", KindI32},
		{"i32 overflow", "2147483648", KindI32},
		{"float for int", "1.5", KindI64},
		{"hex int", "0x10", KindI32},
		{"hex float", "0x1p-2", KindF64},
		{"trailing junk", "3abc", KindF32},
		{"underscore", "1_000", KindI64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, tt.kind)
			if err == nil {
				t.Fatalf("Parse(%q, %s) succeeded, want failure", tt.text, tt.kind)
			}
			if !stderrors.Is(err, errors.ErrParseFailure) {
				t.Errorf("expected parse failure, got %v", err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Value != tt.text || e.ValueKind != tt.kind.String() {
				t.Errorf("error carries %v/%s, want %q/%s", e.Value, e.ValueKind, tt.text, tt.kind)
			}
		})
	}
}

func TestParseUnsupportedKind(t *testing.T) {
	for _, k := range []Kind{KindFuncRef, KindAnyRef, KindV128} {
		t.Run(k.String(), func(t *testing.T) {
			_, err := Parse("0", k)
			if !stderrors.Is(err, errors.ErrUnsupportedInputKind) {
				t.Errorf("expected unsupported input kind, got %v", err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		want string
		v    Value
	}{
		{"7", I32(7)},
		{"-1", I32(-1)},
		{"-9223372036854775808", I64(math.MinInt64)},
		{"1.5", F32(1.5)},
		{"0.1", F32(0.1)},
		{"0.1", F64(0.1)},
		{"100000000000000000000", F64(1e20)},
		{"-0", F64(math.Copysign(0, -1))},
		{"inf", F64(math.Inf(1))},
		{"-inf", F32(float32(math.Inf(-1)))},
		{"NaN", F64(math.NaN())},
		{"<funcref>", FuncRef(0)},
		{"<anyref>", AnyRef(12)},
		{"0", V128(0, 0)},
		{"18446744073709551615", V128(math.MaxUint64, 0)},
		{"18446744073709551616", V128(0, 1)},
		{"340282366920938463463374607431768211455", V128(math.MaxUint64, math.MaxUint64)},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Render(tt.v); got != tt.want {
				t.Errorf("Render(%s value) = %q, want %q", tt.v.Kind(), got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	check := func(v Value) bool {
		got, err := Parse(Render(v), v.Kind())
		return err == nil && got.Equal(v)
	}

	if err := quick.Check(func(n int32) bool { return check(I32(n)) }, nil); err != nil {
		t.Errorf("i32: %v", err)
	}
	if err := quick.Check(func(n int64) bool { return check(I64(n)) }, nil); err != nil {
		t.Errorf("i64: %v", err)
	}
	if err := quick.Check(func(bits uint32) bool {
		f := math.Float32frombits(bits)
		if f != f {
			return true
		}
		return check(F32(f))
	}, nil); err != nil {
		t.Errorf("f32: %v", err)
	}
	if err := quick.Check(func(bits uint64) bool {
		f := math.Float64frombits(bits)
		if math.IsNaN(f) {
			return true
		}
		return check(F64(f))
	}, nil); err != nil {
		t.Errorf("f64: %v", err)
	}
}

func TestRoundTripEdgeValues(t *testing.T) {
	values := []Value{
		I32(math.MaxInt32), I32(math.MinInt32), I32(0),
		I64(math.MaxInt64), I64(math.MinInt64),
		F32(math.MaxFloat32), F32(math.SmallestNonzeroFloat32), F32(float32(math.Inf(-1))),
		F64(math.MaxFloat64), F64(math.SmallestNonzeroFloat64), F64(math.Copysign(0, -1)),
	}
	for _, v := range values {
		text := Render(v)
		got, err := Parse(text, v.Kind())
		if err != nil {
			t.Errorf("Parse(%q, %s): %v", text, v.Kind(), err)
			continue
		}
		if !got.Equal(v) {
			t.Errorf("round trip of %s %q produced %s", v.Kind(), text, got)
		}
	}
}
