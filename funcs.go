package xank

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// MaxArity is the parameter count limit meaning a function accepts any number
// of arguments.
const MaxArity = math.MaxInt32

// Function describes a named function. A function call is always written with
// its arguments in parentheses, e.g. "avg(1, 2)" or "pi()".
type Function struct {
	// Name is the function name as it appears in expressions.
	Name string
	// MinParams and MaxParams bound the number of arguments, inclusive.
	// MaxParams may be MaxArity for functions of any number of arguments.
	MinParams, MaxParams int
	// Fn evaluates the function.
	Fn Func
	// Short and Long are help texts.
	Short, Long string
}

// CanCall returns whether the function can be called with n arguments.
func (f *Function) CanCall(n int) bool {
	return f.MinParams <= n && n <= f.MaxParams
}

// DefaultFunctions returns a new copy of the default function table.
func DefaultFunctions() []Function {
	return []Function{
		{"avg", 1, MaxArity, fnAvg, "Average", "Returns the arithmetic average of its arguments."},
		{"sum", 1, MaxArity, fnSum, "Sum", "Returns the sum of its arguments."},
		{"min", 1, MaxArity, fnMin, "Minimum", "Returns the smallest of its arguments."},
		{"max", 1, MaxArity, fnMax, "Maximum", "Returns the largest of its arguments."},
		{"gcd", 2, MaxArity, fnGCD, "Greatest common divisor", "Returns the greatest common divisor of integers."},
		{"fact", 1, 1, fnFact, "Factorial", "Returns the factorial of a non-negative integer."},
		{"abs", 1, 1, fnAbs, "Absolute value", "Returns the absolute value."},
		{"sqrt", 1, 1, fnSqrt, "Square root", "Returns the square root of a non-negative number."},
		{"exp", 1, 1, monadic("exp", bigfloat.Exp), "Exponential", "Returns e raised to the argument."},
		{"ln", 1, 1, fnLn, "Natural logarithm", "Returns the natural logarithm of a positive number."},
		{"log", 1, 2, fnLog, "Logarithm", "Returns the logarithm of the first argument to the base of the second, default 10."},
		{"pow", 2, 2, opPow, "Power", "Returns the first argument raised to the second."},
		{"int", 1, 1, fnInt, "Integer part", "Truncates toward zero and returns an integer."},
		{"float", 1, 1, fnFloat, "Float", "Converts the argument to a float."},
		{"pi", 0, 0, niladic(bigfloat.Pi), "Pi", "Returns the ratio of a circle's circumference to its diameter."},
		{"e", 0, 0, niladic(euler), "Euler's number", "Returns the base of the natural logarithm."},
	}
}

// domain creates an error for an argument outside a function's domain.
func domain(name string, arg int, x Number) error {
	return &Error{Code: InvalidParameter, Col: -1, Msg: x.String() + " outside domain of " + name + " (argument " + strconv.Itoa(arg) + ")"}
}

// sumNumbers adds args, exactly if all are integers.
func sumNumbers(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	if k == NumberInteger {
		r := new(big.Int)
		for _, a := range args {
			r.Add(r, a.i)
		}
		return NewInteger(r), nil
	}
	r := new(big.Float).SetPrec(ev.Prec())
	for _, a := range floats(args, ev.Prec()) {
		r.Add(r, a)
	}
	return NewFloat(r), nil
}

func fnSum(ev *Evaluator, args []Number) (Number, error) {
	return sumNumbers(ev, args)
}

func fnAvg(ev *Evaluator, args []Number) (Number, error) {
	s, err := sumNumbers(ev, args)
	if err != nil {
		return Number{}, err
	}
	return opDiv(ev, []Number{s, IntegerOf(int64(len(args)))})
}

// extreme returns the smallest argument if want is -1 or the largest if want
// is 1, promoted to the largest kind among args.
func extreme(ev *Evaluator, args []Number, want int) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	best := 0
	for i, a := range args[1:] {
		if cmpNumbers(a, args[best], ev.Prec()) == want {
			best = i + 1
		}
	}
	r := args[best]
	switch {
	case k == NumberFloat && r.kind == NumberInteger:
		return NewFloat(r.AsFloat(ev.Prec())), nil
	case best == 0:
		return r, nil
	case r.kind == NumberInteger:
		return NewInteger(new(big.Int).Set(r.i)), nil
	default:
		return NewFloat(new(big.Float).Copy(r.f)), nil
	}
}

func fnMin(ev *Evaluator, args []Number) (Number, error) {
	return extreme(ev, args, -1)
}

func fnMax(ev *Evaluator, args []Number) (Number, error) {
	return extreme(ev, args, 1)
}

func fnGCD(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("gcd", args); err != nil {
		return Number{}, err
	}
	r := new(big.Int).Abs(args[0].i)
	for _, a := range args[1:] {
		r.GCD(nil, nil, r, new(big.Int).Abs(a.i))
	}
	return NewInteger(r), nil
}

// maxFactorial bounds the argument to fact.
const maxFactorial = 1 << 16

func fnFact(ev *Evaluator, args []Number) (Number, error) {
	if err := integers("fact", args); err != nil {
		return Number{}, err
	}
	n := args[0].i
	if n.Sign() < 0 || !n.IsInt64() || n.Int64() > maxFactorial {
		return Number{}, domain("fact", 1, args[0])
	}
	return NewInteger(new(big.Int).MulRange(1, n.Int64())), nil
}

func fnAbs(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	if k == NumberInteger {
		return NewInteger(new(big.Int).Abs(args[0].i)), nil
	}
	return NewFloat(new(big.Float).Abs(args[0].f)), nil
}

func fnSqrt(ev *Evaluator, args []Number) (Number, error) {
	if _, err := promote(args); err != nil {
		return Number{}, err
	}
	if args[0].Sign() < 0 {
		return Number{}, domain("sqrt", 1, args[0])
	}
	x := args[0].AsFloat(ev.Prec())
	return NewFloat(x.Sqrt(x)), nil
}

// monadic wraps a function of one float. The argument is promoted first.
// Panics with big.ErrNaN from f are converted to domain errors.
func monadic(name string, f func(out, in *big.Float) *big.Float) Func {
	return func(ev *Evaluator, args []Number) (r Number, err error) {
		if _, err := promote(args); err != nil {
			return Number{}, err
		}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if _, ok := p.(big.ErrNaN); !ok {
				panic(p)
			}
			r, err = Number{}, domain(name, 1, args[0])
		}()
		in := args[0].AsFloat(ev.Prec())
		out := new(big.Float).SetPrec(ev.Prec())
		f(out, in)
		return NewFloat(out), nil
	}
}

var lnf = monadic("ln", bigfloat.Log)

func fnLn(ev *Evaluator, args []Number) (Number, error) {
	if _, err := promote(args); err != nil {
		return Number{}, err
	}
	if args[0].Sign() <= 0 {
		return Number{}, domain("ln", 1, args[0])
	}
	return lnf(ev, args)
}

func fnLog(ev *Evaluator, args []Number) (Number, error) {
	if _, err := promote(args); err != nil {
		return Number{}, err
	}
	if args[0].Sign() <= 0 {
		return Number{}, domain("log", 1, args[0])
	}
	base := IntegerOf(10)
	if len(args) > 1 {
		base = args[1]
		if base.Sign() <= 0 || cmpNumbers(base, IntegerOf(1), ev.Prec()) == 0 {
			return Number{}, domain("log", 2, base)
		}
	}
	x, err := lnf(ev, args[:1])
	if err != nil {
		return Number{}, err
	}
	b, err := lnf(ev, []Number{base})
	if err != nil {
		return Number{}, err
	}
	return NewFloat(x.f.Quo(x.f, b.f)), nil
}

func fnInt(ev *Evaluator, args []Number) (Number, error) {
	k, err := promote(args)
	if err != nil {
		return Number{}, err
	}
	if k == NumberInteger {
		return args[0], nil
	}
	if args[0].f.IsInf() {
		return Number{}, domain("int", 1, args[0])
	}
	i, _ := args[0].f.Int(nil)
	return NewInteger(i), nil
}

func fnFloat(ev *Evaluator, args []Number) (Number, error) {
	if _, err := promote(args); err != nil {
		return Number{}, err
	}
	return NewFloat(args[0].AsFloat(ev.Prec())), nil
}

// niladic wraps a function computing a constant.
func niladic(f func(out *big.Float) *big.Float) Func {
	return func(ev *Evaluator, args []Number) (Number, error) {
		out := new(big.Float).SetPrec(ev.Prec())
		f(out)
		return NewFloat(out), nil
	}
}

func euler(out *big.Float) *big.Float {
	var one big.Float
	one.SetPrec(out.Prec()).SetInt64(1)
	return bigfloat.Exp(out, &one)
}
