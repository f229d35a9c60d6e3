package value

import (
	stderrors "errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-host/errors"
)

var errHexFloat = stderrors.New("hexadecimal floats are not accepted")

// Parse converts decimal text into a value of the given numeric kind.
// Reference and vector kinds have no textual input form.
func Parse(text string, kind Kind) (Value, error) {
	switch kind {
	case KindI32:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, errors.ParseFailure(text, kind.String(), unwrapNum(err))
		}
		return I32(int32(n)), nil
	case KindI64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, errors.ParseFailure(text, kind.String(), unwrapNum(err))
		}
		return I64(n), nil
	case KindF32:
		f, err := parseFloat(text, 32)
		if err != nil {
			return Value{}, errors.ParseFailure(text, kind.String(), err)
		}
		return F32(float32(f)), nil
	case KindF64:
		f, err := parseFloat(text, 64)
		if err != nil {
			return Value{}, errors.ParseFailure(text, kind.String(), err)
		}
		return F64(f), nil
	default:
		return Value{}, errors.UnsupportedInputKind(kind.String())
	}
}

// parseFloat accepts decimal notation, including exponents, inf and nan.
// Out of range magnitudes saturate to infinity.
func parseFloat(text string, bits int) (float64, error) {
	t := strings.TrimLeft(text, "+-")
	if len(t) > 1 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X') {
		return 0, errHexFloat
	}
	f, err := strconv.ParseFloat(text, bits)
	if err != nil {
		if stderrors.Is(err, strconv.ErrRange) {
			return f, nil
		}
		return 0, unwrapNum(err)
	}
	return f, nil
}

func unwrapNum(err error) error {
	var ne *strconv.NumError
	if stderrors.As(err, &ne) {
		return ne.Err
	}
	return err
}

// Render formats any value as text. Numbers render in decimal, references
// as a placeholder naming their kind, and v128 as the unsigned integer of
// its 128-bit pattern.
func Render(v Value) string {
	switch v.kind {
	case KindI32:
		return strconv.FormatInt(int64(v.I32()), 10)
	case KindI64:
		return strconv.FormatInt(v.I64(), 10)
	case KindF32:
		return formatFloat(float64(v.F32()), 32)
	case KindF64:
		return formatFloat(v.F64(), 64)
	case KindFuncRef:
		return "<funcref>"
	case KindAnyRef:
		return "<anyref>"
	case KindV128:
		n := new(big.Int).SetUint64(v.hi)
		n.Lsh(n, 64)
		n.Or(n, new(big.Int).SetUint64(v.lo))
		return n.String()
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
