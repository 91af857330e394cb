package xank

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Assoc is the associativity of an operator.
type Assoc uint8

const (
	// AssocNone is for operators which do not associate, i.e. parentheses.
	AssocNone Assoc = iota
	// AssocLeft operators group left to right. A left-associative operator
	// is only recognized after a complete operand.
	AssocLeft
	// AssocRight operators group right to left. Prefix unary operators are
	// right-associative.
	AssocRight
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// OperatorID identifies an operator within a registry. The IDs below
// OperatorIDGeneric are reserved for operators with special roles in parsing;
// every other operator is generic.
type OperatorID uint32

const (
	OpenParenID OperatorID = iota
	CloseParenID
	ParamSeparatorID
	AssignmentID

	// OperatorIDGeneric is the first ID a generic operator may use.
	OperatorIDGeneric OperatorID = 16
)

// MaxOperatorParams is the largest number of operands an operator may take.
const MaxOperatorParams = 2

// Func evaluates an operator or function. args holds the operands in
// left-to-right order; len(args) is the operator's Params, or for a function
// the number of arguments in the call. Func may modify the elements of args.
// The result must not share memory with any operand other than args[0].
type Func func(ev *Evaluator, args []Number) (Number, error)

// Operator describes an operator. Operators are compared by value; Evaluators
// refer to the copies held in their Registry.
type Operator struct {
	// ID identifies the operator's role. No two operators in a registry may
	// share an ID.
	ID OperatorID
	// Priority is the operator precedence. Higher values bind tighter.
	Priority int
	// Assoc is the operator associativity.
	Assoc Assoc
	// Params is the number of operands, at most MaxOperatorParams.
	Params int
	// Name is the operator symbol as it appears in expressions.
	Name string
	// Fn evaluates the operator. It is nil for the special operators.
	Fn Func
	// Short and Long are help texts.
	Short, Long string
}

func (op *Operator) IsOpenParen() bool      { return op.ID == OpenParenID }
func (op *Operator) IsCloseParen() bool     { return op.ID == CloseParenID }
func (op *Operator) IsParamSeparator() bool { return op.ID == ParamSeparatorID }
func (op *Operator) IsAssignment() bool     { return op.ID == AssignmentID }

// IsGeneric returns whether op has no special role in parsing.
func (op *Operator) IsGeneric() bool { return op.ID > AssignmentID }

// isPrefix returns whether op is a prefix unary operator.
func (op *Operator) isPrefix() bool {
	return op.Params == 1 && op.Assoc != AssocLeft
}

// DefaultOperators returns a new copy of the default operator table.
func DefaultOperators() []Operator {
	return []Operator{
		// Special operators.
		{OpenParenID, 99, AssocNone, 0, "(", nil, "(<expr>", "Begin subexpression or function."},
		{CloseParenID, 99, AssocNone, 0, ")", nil, "<expr>)", "End subexpression or function."},
		{ParamSeparatorID, 0, AssocLeft, 2, ",", nil, "<expr>, <expr>", "Function parameter separator."},
		{AssignmentID, 0, AssocLeft, 2, "=", nil, "<lval>=<rval>", "Assignment operator."},

		// Bitwise.
		{OperatorIDGeneric + 0, 10, AssocLeft, 2, "|", opOr, "<int> | <int>", "Bitwise OR of two integers."},
		{OperatorIDGeneric + 1, 12, AssocLeft, 2, "&", opAnd, "<int> & <int>", "Bitwise AND of two integers."},
		{OperatorIDGeneric + 2, 14, AssocLeft, 2, "<<", opShl, "<int> << <int>", "Shift an integer left by a number of bits."},
		{OperatorIDGeneric + 3, 14, AssocLeft, 2, ">>", opShr, "<int> >> <int>", "Shift an integer right by a number of bits."},

		// Arithmetic.
		{OperatorIDGeneric + 4, 20, AssocLeft, 2, "+", opAdd, "<expr> + <expr>", "Addition."},
		{OperatorIDGeneric + 5, 20, AssocLeft, 2, "-", opSub, "<expr> - <expr>", "Subtraction."},
		{OperatorIDGeneric + 6, 30, AssocLeft, 2, "*", opMul, "<expr> * <expr>", "Multiplication."},
		{OperatorIDGeneric + 7, 30, AssocLeft, 2, "/", opDiv, "<expr> / <expr>", "Division. Integer quotients stay integers when exact."},
		{OperatorIDGeneric + 8, 30, AssocLeft, 2, "%", opRem, "<int> % <int>", "Remainder of truncated integer division."},
		{OperatorIDGeneric + 9, 40, AssocRight, 2, "^", opPow, "<expr> ^ <expr>", "Exponentiation."},

		// Unary.
		{OperatorIDGeneric + 10, 35, AssocRight, 1, "-", opNeg, "-<expr>", "Negation."},
		{OperatorIDGeneric + 11, 35, AssocRight, 1, "+", opPlus, "+<expr>", "Unary plus."},
		{OperatorIDGeneric + 12, 35, AssocRight, 1, "~", opNot, "~<int>", "Bitwise NOT of an integer."},
	}
}

// maxExponent bounds integer exponents and shift counts so that a short
// expression cannot demand unbounded memory.
const maxExponent = 1 << 20

// invalid creates an error for an operand of the wrong type.
func invalid(name, msg string) error {
	return &Error{Code: InvalidAtomTypeForOperation, Col: -1, Msg: name + ": " + msg}
}

// undefined creates an error for an operation whose result is undefined.
func undefined(name, msg string) error {
	return &Error{Code: UndefinedBehaviour, Col: -1, Msg: name + ": " + msg}
}

// integers checks that every operand is an integer.
func integers(name string, args []Number) error {
	if _, err := promote(args); err != nil {
		return err
	}
	for _, a := range args {
		if a.kind != NumberInteger {
			return invalid(name, "operands must be integers")
		}
	}
	return nil
}

// arith creates a binary operator that computes exactly on integers and at
// the evaluator's precision on floats.
func arith(ints func(z, x, y *big.Int) *big.Int, flts func(z, x, y *big.Float) *big.Float) Func {
	return func(ev *Evaluator, args []Number) (Number, error) {
		k, err := promote(args)
		if err != nil {
			return Number{}, err
		}
		if k == NumberInteger {
			return NewInteger(ints(new(big.Int), args[0].i, args[1].i)), nil
		}
		x := floats(args, ev.Prec())
		return NewFloat(flts(x[0], x[0], x[1])), nil
	}
}

var (
	opAdd = arith((*big.Int).Add, (*big.Float).Add)
	opSub = arith((*big.Int).Sub, (*big.Float).Sub)
	opMul = arith((*big.Int).Mul, (*big.Float).Mul)
)

func opDiv(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	if args[1].Sign() == 0 {
		return Number{}, undefined("/", "division by zero")
	}
	if k == NumberInteger {
		q, r := new(big.Int).QuoRem(args[0].i, args[1].i, new(big.Int))
		if r.Sign() == 0 {
			return NewInteger(q), nil
		}
	}
	x := floats(args, ev.Prec())
	return NewFloat(x[0].Quo(x[0], x[1])), nil
}

func opRem(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("%", args); err != nil {
		return Number{}, err
	}
	if args[1].i.Sign() == 0 {
		return Number{}, undefined("%", "division by zero")
	}
	return NewInteger(new(big.Int).Rem(args[0].i, args[1].i)), nil
}

func opPow(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	prec := ev.Prec()
	if k == NumberInteger {
		b, e := args[0].i, args[1].i
		if b.CmpAbs(bigOne) > 0 && (!e.IsInt64() || e.Int64() > maxExponent || e.Int64() < -maxExponent) {
			return Number{}, undefined("^", "exponent "+e.String()+" too large")
		}
		if e.Sign() >= 0 {
			return NewInteger(new(big.Int).Exp(b, e, nil)), nil
		}
		if b.Sign() == 0 {
			return Number{}, undefined("^", "zero to a negative power")
		}
		d := new(big.Int).Exp(b, new(big.Int).Neg(e), nil)
		r := new(big.Float).SetPrec(prec).SetInt64(1)
		return NewFloat(r.Quo(r, new(big.Float).SetPrec(prec).SetInt(d))), nil
	}
	x := floats(args, prec)
	r, err := floatPow(x[0], x[1], prec)
	if err != nil {
		return Number{}, err
	}
	return NewFloat(r), nil
}

var bigOne = big.NewInt(1)

// floatPow computes x^y. Integral exponents allow negative bases.
func floatPow(x, y *big.Float, prec uint) (*big.Float, error) {
	if y.IsInt() {
		n, acc := y.Int64()
		if acc == big.Exact && n >= -maxExponent && n <= maxExponent {
			if x.Sign() == 0 && n < 0 {
				return nil, undefined("^", "zero to a negative power")
			}
			return powInt(x, n, prec), nil
		}
	}
	switch x.Sign() {
	case -1:
		return nil, &Error{Code: InvalidParameter, Col: -1, Msg: "^: negative base " + x.String() + " with non-integer exponent"}
	case 0:
		if y.Sign() < 0 {
			return nil, undefined("^", "zero to a negative power")
		}
		return new(big.Float).SetPrec(prec), nil
	}
	r := new(big.Float).SetPrec(prec)
	return bigfloat.Pow(r, x, y), nil
}

// powInt computes x^n by squaring.
func powInt(x *big.Float, n int64, prec uint) *big.Float {
	neg := n < 0
	if neg {
		n = -n
	}
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	b := new(big.Float).SetPrec(prec).Set(x)
	for n > 0 {
		if n&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		n >>= 1
	}
	if neg {
		r.Quo(new(big.Float).SetPrec(prec).SetInt64(1), r)
	}
	return r
}

func opNeg(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	if k == NumberInteger {
		return NewInteger(new(big.Int).Neg(args[0].i)), nil
	}
	return NewFloat(new(big.Float).Neg(args[0].f)), nil
}

func opPlus(ev *Evaluator, args []Number) (Number, error) {
	if _, err := promote(args); err != nil {
		return Number{}, err
	}
	return args[0], nil
}

func opNot(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("~", args); err != nil {
		return Number{}, err
	}
	return NewInteger(new(big.Int).Not(args[0].i)), nil
}

func opAnd(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("&", args); err != nil {
		return Number{}, err
	}
	return NewInteger(new(big.Int).And(args[0].i, args[1].i)), nil
}

func opOr(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("|", args); err != nil {
		return Number{}, err
	}
	return NewInteger(new(big.Int).Or(args[0].i, args[1].i)), nil
}

// shiftCount gets a shift count from an operand.
func shiftCount(name string, n Number) (uint, error) {
	c := n.i
	if c.Sign() < 0 || !c.IsInt64() || c.Int64() > maxExponent {
		return 0, undefined(name, "invalid shift count "+c.String())
	}
	return uint(c.Int64()), nil
}

func opShl(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("<<", args); err != nil {
		return Number{}, err
	}
	c, err := shiftCount("<<", args[1])
	if err != nil {
		return Number{}, err
	}
	return NewInteger(new(big.Int).Lsh(args[0].i, c)), nil
}

func opShr(ev *Evaluator, args []Number) (Number, error) {
	if err := integers(">>", args); err != nil {
		return Number{}, err
	}
	c, err := shiftCount(">>", args[1])
	if err != nil {
		return Number{}, err
	}
	return NewInteger(new(big.Int).Rsh(args[0].i, c)), nil
}
