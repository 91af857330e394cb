package xank

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// NumberKind is the active variant of a Number.
type NumberKind int8

const (
	// NumberNone is the kind of the zero Number, which holds no value.
	NumberNone NumberKind = iota
	// NumberInteger is an arbitrary-precision signed integer.
	NumberInteger
	// NumberFloat is an arbitrary-precision binary floating-point number.
	NumberFloat
)

func (k NumberKind) String() string {
	switch k {
	case NumberInteger:
		return "integer"
	case NumberFloat:
		return "float"
	default:
		return "none"
	}
}

// Number is an integer or a float. Exactly one of the two is populated,
// according to Kind. The zero Number holds no value and is not valid as an
// operand.
type Number struct {
	kind NumberKind
	i    *big.Int
	f    *big.Float
}

// NewInteger creates an integer Number. The Number takes ownership of x.
func NewInteger(x *big.Int) Number {
	return Number{kind: NumberInteger, i: x}
}

// NewFloat creates a float Number. The Number takes ownership of x.
func NewFloat(x *big.Float) Number {
	return Number{kind: NumberFloat, f: x}
}

// IntegerOf is a shortcut to create an integer Number from an int64.
func IntegerOf(v int64) Number {
	return NewInteger(big.NewInt(v))
}

// Kind returns the active variant of n.
func (n Number) Kind() NumberKind {
	return n.kind
}

// IsInteger returns whether n is an integer.
func (n Number) IsInteger() bool {
	return n.kind == NumberInteger
}

// IsFloat returns whether n is a float.
func (n Number) IsFloat() bool {
	return n.kind == NumberFloat
}

// Int returns the integer value of n, or nil if n is not an integer.
func (n Number) Int() *big.Int {
	if n.kind != NumberInteger {
		return nil
	}
	return n.i
}

// Float returns the float value of n, or nil if n is not a float.
func (n Number) Float() *big.Float {
	if n.kind != NumberFloat {
		return nil
	}
	return n.f
}

// AsFloat returns a new float holding the value of n rounded to prec bits. n
// is not modified. The result is nil if n holds no value.
func (n Number) AsFloat(prec uint) *big.Float {
	switch n.kind {
	case NumberInteger:
		return new(big.Float).SetPrec(prec).SetInt(n.i)
	case NumberFloat:
		return new(big.Float).SetPrec(prec).Set(n.f)
	default:
		return nil
	}
}

// Sign returns -1, 0, or +1 depending on the sign of n.
func (n Number) Sign() int {
	switch n.kind {
	case NumberInteger:
		return n.i.Sign()
	case NumberFloat:
		return n.f.Sign()
	default:
		return 0
	}
}

// String formats n. Integers are formatted in decimal; floats use the
// shortest decimal representation that rounds back to the same value.
func (n Number) String() string {
	return n.Text('g', -1)
}

// Text formats n. For integers, format and prec are ignored. For floats,
// format and prec are as for big.Float.Text.
func (n Number) Text(format byte, prec int) string {
	switch n.kind {
	case NumberInteger:
		return n.i.String()
	case NumberFloat:
		return n.f.Text(format, prec)
	default:
		return "<none>"
	}
}

// errNoDecimal indicates a Number with no finite decimal representation.
var errNoDecimal = errors.New("xank: number has no decimal representation")

// Decimal converts n to a decimal. Infinite floats and empty numbers cannot be
// converted.
func (n Number) Decimal() (decimal.Decimal, error) {
	switch n.kind {
	case NumberInteger:
		return decimal.NewFromBigInt(n.i, 0), nil
	case NumberFloat:
		if n.f.IsInf() {
			return decimal.Decimal{}, errNoDecimal
		}
		return decimal.NewFromString(n.f.Text('f', -1))
	default:
		return decimal.Decimal{}, errNoDecimal
	}
}

// parseNumber converts a scanned literal to a Number. Floats are always
// decimal. The result is false if the literal does not convert.
func parseNumber(text string, radix int, float bool, prec uint) (Number, bool) {
	if float {
		if radix != 10 {
			return Number{}, false
		}
		f, _, err := new(big.Float).SetPrec(prec).Parse(text, 10)
		if err != nil {
			return Number{}, false
		}
		return NewFloat(f), true
	}
	i, ok := new(big.Int).SetString(text, radix)
	if !ok {
		return Number{}, false
	}
	return NewInteger(i), true
}

// promote finds the largest kind among args. Integers are smaller than floats.
func promote(args []Number) (NumberKind, error) {
	k := NumberNone
	for i, a := range args {
		if a.kind == NumberNone {
			return NumberNone, &Error{Code: InvalidAtomTypeForOperation, Col: -1, Msg: "operand " + strconv.Itoa(i+1) + " holds no value"}
		}
		if a.kind > k {
			k = a.kind
		}
	}
	return k, nil
}

// floats promotes each of args to a new float with precision prec.
func floats(args []Number, prec uint) []*big.Float {
	r := make([]*big.Float, len(args))
	for i, a := range args {
		r[i] = a.AsFloat(prec)
	}
	return r
}

// cmpNumbers compares two numbers, promoting to float if either is a float.
func cmpNumbers(a, b Number, prec uint) int {
	if a.kind == NumberInteger && b.kind == NumberInteger {
		return a.i.Cmp(b.i)
	}
	return a.AsFloat(prec).Cmp(b.AsFloat(prec))
}
