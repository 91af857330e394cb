package xank_test

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/teknomancer/xank"
)

func evaluate(t *testing.T, src string, opts ...xank.Option) (xank.Number, error) {
	t.Helper()
	ev := xank.NewEvaluator(opts...)
	if err := ev.Init(); err != nil {
		t.Fatalf("couldn't init: %v", err)
	}
	if err := ev.Parse(src); err != nil {
		t.Fatalf("%q failed to parse: %v", src, err)
	}
	r, err := ev.Evaluate()
	if ev.Live() != 0 {
		t.Errorf("evaluating %q leaked %d atoms", src, ev.Live())
	}
	return r, err
}

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    string
		kind xank.NumberKind
	}{
		{"num", "1", "1", xank.NumberInteger},
		{"precedence", "2 + 3 * 4", "14", xank.NumberInteger},
		{"sub", "4-5-6", "-7", xank.NumberInteger},
		{"mul", "4*5*6", "120", xank.NumberInteger},
		{"div-exact", "8/2", "4", xank.NumberInteger},
		{"div-inexact", "7/2", "3.5", xank.NumberFloat},
		{"rem", "7 % 3", "1", xank.NumberInteger},
		{"rem-neg", "-7 % 3", "-1", xank.NumberInteger},
		{"pow", "2^10", "1024", xank.NumberInteger},
		{"pow-right", "2^3^2", "512", xank.NumberInteger},
		{"pow-neg-exp", "2^-1", "0.5", xank.NumberFloat},
		{"neg-pow", "-2^2", "-4", xank.NumberInteger},
		{"group-pow", "(-2)^2", "4", xank.NumberInteger},
		{"float-pow-int", "1.5^2", "2.25", xank.NumberFloat},
		{"neg-float-pow-int", "(-1.5)^3", "-3.375", xank.NumberFloat},
		{"plus", "+1", "1", xank.NumberInteger},
		{"neg-neg", "--1", "1", xank.NumberInteger},
		{"float", "2.5 * 2", "5", xank.NumberFloat},
		{"promote", "1 + 0.5", "1.5", xank.NumberFloat},
		{"literals", "0b101 + 017 + 0x1F", "51", xank.NumberInteger},
		{"hex", "ff + 1", "256", xank.NumberInteger},
		{"shl", "1 << 10", "1024", xank.NumberInteger},
		{"shr", "1024 >> 3", "128", xank.NumberInteger},
		{"and", "6 & 3", "2", xank.NumberInteger},
		{"or", "6 | 3", "7", xank.NumberInteger},
		{"not", "~0", "-1", xank.NumberInteger},
		{"avg-exact", "avg(1, 2, 3)", "2", xank.NumberInteger},
		{"avg-inexact", "avg(1, 2)", "1.5", xank.NumberFloat},
		{"avg-nested", "avg(1, avg(2, 4), 5) * 2", "6", xank.NumberInteger},
		{"sum", "sum(1, 2, 3, 4)", "10", xank.NumberInteger},
		{"min", "min(3, 1.5, 2)", "1.5", xank.NumberFloat},
		{"max", "max(3, 1.5, 2)", "3", xank.NumberFloat},
		{"max-int", "max(3, -1, 2)", "3", xank.NumberInteger},
		{"gcd", "gcd(12, -18, 30)", "6", xank.NumberInteger},
		{"fact", "fact(20)", "2432902008176640000", xank.NumberInteger},
		{"fact0", "fact(0)", "1", xank.NumberInteger},
		{"abs", "abs(-3)", "3", xank.NumberInteger},
		{"abs-float", "abs(-2.5)", "2.5", xank.NumberFloat},
		{"sqrt", "sqrt(16)", "4", xank.NumberFloat},
		{"int", "int(3.7)", "3", xank.NumberInteger},
		{"int-neg", "int(-3.7)", "-3", xank.NumberInteger},
		{"float-conv", "float(3)", "3", xank.NumberFloat},
		{"pow-func", "pow(2, 10)", "1024", xank.NumberInteger},
		{"big", strings.Repeat("9", 100) + " + 1", "1" + strings.Repeat("0", 100), xank.NumberInteger},
		{"big-mul", "2^200 * 2^200 - 2^400", "0", xank.NumberInteger},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := evaluate(t, c.src)
			if err != nil {
				t.Fatalf("evaluating %q failed: %v", c.src, err)
			}
			if r.String() != c.r {
				t.Errorf("wrong result for %q: want %s, got %s", c.src, c.r, r)
			}
			if r.Kind() != c.kind {
				t.Errorf("wrong kind for %q: want %v, got %v", c.src, c.kind, r.Kind())
			}
		})
	}
}

func TestEvalApprox(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"pi", "pi()", math.Pi},
		{"e", "e()", math.E},
		{"exp", "exp(1)", math.E},
		{"ln", "ln(e())", 1},
		{"log", "log(1000)", 3},
		{"log-base", "log(8, 2)", 3},
		{"sqrt", "sqrt(2)", math.Sqrt2},
		{"pow-frac", "2^0.5", math.Sqrt2},
		{"third", "1/3", 1.0 / 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := evaluate(t, c.src)
			if err != nil {
				t.Fatalf("evaluating %q failed: %v", c.src, err)
			}
			if !r.IsFloat() {
				t.Fatalf("%q gave non-float %v", c.src, r)
			}
			f, _ := r.Float().Float64()
			if math.Abs(f-c.r) > 1e-12 {
				t.Errorf("wrong result for %q: want %g, got %g", c.src, c.r, f)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code xank.Code
		pos  int
	}{
		{"div-zero", "1/0", xank.UndefinedBehaviour, 1},
		{"div-zero-float", "1.5/0.0", xank.UndefinedBehaviour, 3},
		{"rem-zero", "1 % 0", xank.UndefinedBehaviour, 2},
		{"rem-float", "1.5 % 1", xank.InvalidAtomTypeForOperation, 4},
		{"and-float", "1.5 & 1", xank.InvalidAtomTypeForOperation, 4},
		{"not-float", "~1.5", xank.InvalidAtomTypeForOperation, 0},
		{"shift-neg", "1 << -1", xank.UndefinedBehaviour, 2},
		{"pow-zero-neg", "0^-1", xank.UndefinedBehaviour, 1},
		{"pow-huge", "2^10000000", xank.UndefinedBehaviour, 1},
		{"pow-neg-frac", "(-8)^0.5", xank.InvalidParameter, 4},
		{"sqrt", "sqrt(-1)", xank.InvalidParameter, 0},
		{"ln", "ln(0)", xank.InvalidParameter, 0},
		{"log-base", "log(8, 1)", xank.InvalidParameter, 0},
		{"fact-neg", "fact(-1)", xank.InvalidParameter, 0},
		{"fact-float", "fact(1.5)", xank.InvalidAtomTypeForOperation, 0},
		{"gcd-float", "gcd(1.5, 2)", xank.InvalidAtomTypeForOperation, 0},
		{"too-few", "2 +", xank.TooFewParameters, 2},
		{"excess", "2 3", xank.ExpressionInvalid, -1},
		{"inner", "avg(1, 2/0, 3)", xank.UndefinedBehaviour, 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := evaluate(t, c.src)
			if err == nil {
				t.Fatalf("evaluating %q gave no error, result %v", c.src, r)
			}
			if !errors.Is(err, c.code) {
				t.Errorf("wrong error for %q: want %v, got %v", c.src, c.code, err)
			}
			var ie xank.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%v is not an InputError", err)
			}
			if ie.Pos() != c.pos {
				t.Errorf("wrong position for %q: want %d, got %d", c.src, c.pos, ie.Pos())
			}
			if r.Kind() != xank.NumberNone {
				t.Errorf("error with result %v", r)
			}
		})
	}
}

func TestEvaluateState(t *testing.T) {
	ev := xank.NewEvaluator()
	if _, err := ev.Evaluate(); !errors.Is(err, xank.NotInitialized) {
		t.Errorf("Evaluate before Init gave %v", err)
	}
	if err := ev.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := ev.Evaluate(); !errors.Is(err, xank.UnparsedExpression) {
		t.Errorf("Evaluate before Parse gave %v", err)
	}
	if err := ev.Parse("1 + 1"); err != nil {
		t.Fatal(err)
	}
	r, err := ev.Evaluate()
	if err != nil || r.String() != "2" {
		t.Errorf("wrong result: want 2, got %v, %v", r, err)
	}
	if code, msg := ev.LastError(); code != xank.Success || msg != "" {
		t.Errorf("error recorded after success: %v %q", code, msg)
	}
	if _, err := ev.Evaluate(); !errors.Is(err, xank.UnparsedExpression) {
		t.Errorf("second Evaluate gave %v", err)
	}
	if code, _ := ev.LastError(); code != xank.UnparsedExpression {
		t.Errorf("wrong last error: %v", code)
	}
	if ev.Live() != 0 {
		t.Errorf("%d atoms leaked", ev.Live())
	}
}

func TestEvalFuncError(t *testing.T) {
	boom := errors.New("boom")
	fns := append(xank.DefaultFunctions(), xank.Function{
		Name:      "boom",
		MinParams: 0,
		MaxParams: 1,
		Fn: func(ev *xank.Evaluator, args []xank.Number) (xank.Number, error) {
			return xank.Number{}, boom
		},
		Short: "Boom",
		Long:  "Always fails.",
	})
	for _, src := range []string{"boom()", "1 + boom(2)"} {
		_, err := evaluate(t, src, xank.WithFunctions(fns))
		if !errors.Is(err, boom) {
			t.Errorf("%q: error %v doesn't wrap the callback's", src, err)
		}
		if !errors.Is(err, xank.InvalidParameter) {
			t.Errorf("%q: error %v doesn't have a code", src, err)
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("%q: message %q lost the callback's error", src, err.Error())
		}
	}
}

func TestEvalString(t *testing.T) {
	r, err := xank.EvalString("avg(0x10, b101, 3) * -3")
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "-24" {
		t.Errorf("wrong result: want -24, got %v", r)
	}
	if _, err := xank.EvalString("1 + 2 x"); !errors.Is(err, xank.ExpressionInvalid) {
		t.Errorf("trailing text gave %v", err)
	}
	if _, err := xank.EvalString("(1"); !errors.Is(err, xank.ParenthesisUnbalanced) {
		t.Errorf("unbalanced gave %v", err)
	}
	if _, err := xank.EvalString("1", xank.WithOperators([]xank.Operator{})); !errors.Is(err, xank.MissingBasicOperator) {
		t.Errorf("bad registry gave %v", err)
	}
}

func TestEvalPrec(t *testing.T) {
	for _, prec := range []uint{24, 64, 200} {
		r, err := xank.EvalString("1/3", xank.Prec(prec))
		if err != nil {
			t.Fatal(err)
		}
		if got := r.Float().Prec(); got != prec {
			t.Errorf("wrong precision: want %d, got %d", prec, got)
		}
	}
	r, err := xank.EvalString("1/3", xank.Prec(200))
	if err != nil {
		t.Fatal(err)
	}
	want := new(big.Float).SetPrec(200)
	want.Quo(new(big.Float).SetPrec(200).SetInt64(1), new(big.Float).SetPrec(200).SetInt64(3))
	if r.Float().Cmp(want) != 0 {
		t.Errorf("wrong result at 200 bits: want %v, got %v", want, r)
	}
}

func TestDecimal(t *testing.T) {
	cases := []struct {
		src    string
		places int32
		want   string
	}{
		{"1/4", 3, "0.250"},
		{"2^70", 0, "1180591620717411303424"},
		{"2/3", 4, "0.6667"},
		{"-7/2", 1, "-3.5"},
	}
	for _, c := range cases {
		r, err := xank.EvalString(c.src)
		if err != nil {
			t.Fatal(err)
		}
		d, err := r.Decimal()
		if err != nil {
			t.Fatalf("%q: %v", c.src, err)
		}
		if got := d.StringFixed(c.places); got != c.want {
			t.Errorf("%q: want %s, got %s", c.src, c.want, got)
		}
	}
	if _, err := (xank.Number{}).Decimal(); err == nil {
		t.Error("empty number converted to decimal")
	}
}

func BenchmarkEval(b *testing.B) {
	ev := xank.NewEvaluator()
	if err := ev.Init(); err != nil {
		b.Fatal(err)
	}
	const expr = "max(0x10, b101, 017, 2.5) * avg(1, 2, 3) ^ -2 - fact(20) % 7"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := ev.Parse(expr); err != nil {
			b.Fatal(err)
		}
		if _, err := ev.Evaluate(); err != nil {
			b.Fatal(err)
		}
	}
}
