package xank

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRPN(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		rpn      string
		unparsed string
	}{
		{"precedence", "2 + 3 * 4", "2 3 4 * +", ""},
		{"precedence-left", "2 * 3 + 4", "2 3 * 4 +", ""},
		{"group", "(2 + 3) * 4", "2 3 + 4 *", ""},
		{"left", "2 - 3 - 4", "2 3 - 4 -", ""},
		{"right", "2 ^ 3 ^ 2", "2 3 2 ^ ^", ""},
		{"neg-pow", "-2 ^ 2", "2 2 ^ -", ""},
		{"pow-neg", "2 ^ -3", "2 3 - ^", ""},
		{"mul-neg", "2 * -3 + 1", "2 3 - * 1 +", ""},
		{"neg-neg", "--1", "1 - -", ""},
		{"plus", "+1 + +2", "1 + 2 + +", ""},
		{"shift", "1 << 2 + 3", "1 2 3 + <<", ""},
		{"bitwise", "1 | 2 & 3", "1 2 3 & |", ""},
		{"not", "~1 & 3", "1 ~ 3 &", ""},
		{"close-binary", "(1)-4", "1 4 -", ""},
		{"nested", "((1))", "1", ""},
		{"literals", "0b101 + 017 + 0x1F", "5 15 + 31 +", ""},
		{"float", "3.14 * 2", "3.14 2 *", ""},
		{"avg", "avg(1, 2, 3)", "1 2 3 avg:3", ""},
		{"avg1", "avg(1)", "1 avg:1", ""},
		{"niladic", "pi()", "pi:0", ""},
		{"niladic-space", "pi ( ) * 2", "pi:0 2 *", ""},
		{"args", "avg(1+2, 3*4)", "1 2 + 3 4 * avg:2", ""},
		{"calls", "max(1, min(2, 3))", "1 2 3 min:2 max:2", ""},
		{"call-in-call", "log(abs(-8), 2)", "8 - abs:1 2 log:2", ""},
		{"call-op", "fact(3) + 1", "3 fact:1 1 +", ""},
		{"call-group", "sum((1), (2))", "1 2 sum:2", ""},
		{"trailing", "2 + 3 $", "2 3 +", "$"},
		{"trailing-name", "1 x", "1", "x"},
		{"juxtaposed", "2 3", "2 3", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := initialized(t)
			if err := ev.Parse(c.src); err != nil {
				t.Fatalf("couldn't parse %q: %v", c.src, err)
			}
			if got := ev.RPN(); got != c.rpn {
				t.Errorf("wrong rpn for %q: want %q, got %q", c.src, c.rpn, got)
			}
			if got := ev.Unparsed(); got != c.unparsed {
				t.Errorf("wrong unparsed text for %q: want %q, got %q", c.src, c.unparsed, got)
			}
			if ev.Live() != ev.rpn.len() {
				t.Errorf("%d atoms live for %d in rpn", ev.Live(), ev.rpn.len())
			}
			if code, msg := ev.LastError(); code != Success || msg != "" {
				t.Errorf("error recorded after success: %v %q", code, msg)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code Code
		pos  int
	}{
		{"missing-close", "(2 + 3", ParenthesisUnbalanced, 0},
		{"stray-close", "2 + 3)", ParenthesisUnbalanced, 5},
		{"unclosed-call", "avg(1, 2", ParenthesisUnbalanced, 3},
		{"separator-first", "avg(,1)", ParenthesisUnbalanced, 3},
		{"avg-empty", "avg()", TooFewParameters, 0},
		{"pow-one", "pow(1)", TooFewParameters, 0},
		{"fact-two", "fact(1, 2)", TooManyParameters, 6},
		{"pow-three", "pow(1, 2, 3)", TooManyParameters, 8},
		{"pi-one", "pi(1)", TooManyParameters, 0},
		{"separator-last", "avg(1,)", ParenthesisSeparatorUnexpected, 6},
		{"separator-bare", "1, 2", ParenthesisSeparatorUnexpected, 1},
		{"separator-group", "(1, 2)", ParenthesisSeparatorUnexpected, 2},
		{"separator-nested", "avg((1, 2))", ParenthesisSeparatorUnexpected, 6},
		{"empty", "", ExpressionInvalid, 0},
		{"spaces", "   ", ExpressionInvalid, 3},
		{"garbage", "$", ExpressionInvalid, 0},
		{"suffix", "2mb", ExpressionInvalid, 0},
		{"empty-group", "()", ExpressionInvalid, 1},
		{"assign", "1 = 2", NotSupported, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := initialized(t)
			err := ev.Parse(c.src)
			if err == nil {
				t.Fatalf("no error parsing %q, got rpn %q", c.src, ev.RPN())
			}
			if !errors.Is(err, c.code) {
				t.Errorf("wrong error for %q: want %v, got %v", c.src, c.code, err)
			}
			var ie InputError
			if !errors.As(err, &ie) {
				t.Fatalf("error %v is not an InputError", err)
			}
			if ie.Pos() != c.pos {
				t.Errorf("wrong position for %q: want %d, got %d", c.src, c.pos, ie.Pos())
			}
			if ev.Live() != 0 {
				t.Errorf("%d atoms leaked", ev.Live())
			}
			code, msg := ev.LastError()
			if code != c.code {
				t.Errorf("wrong last error code: want %v, got %v", c.code, code)
			}
			if msg != err.Error() {
				t.Errorf("wrong last error message: want %q, got %q", err.Error(), msg)
			}
		})
	}
}

func TestParseKeepsRPN(t *testing.T) {
	ev := initialized(t)
	if err := ev.Parse("1 + 2 $"); err != nil {
		t.Fatal(err)
	}
	if err := ev.Parse("(1 + 2"); err == nil {
		t.Fatal("no error from unbalanced parse")
	}
	if got := ev.RPN(); got != "1 2 +" {
		t.Errorf("failed parse changed rpn to %q", got)
	}
	if got := ev.Unparsed(); got != "$" {
		t.Errorf("failed parse changed unparsed text to %q", got)
	}
	if ev.Live() != 3 {
		t.Errorf("wrong live count: want 3, got %d", ev.Live())
	}
	if err := ev.Parse("4 * 5"); err != nil {
		t.Fatal(err)
	}
	if got := ev.RPN(); got != "4 5 *" {
		t.Errorf("parse didn't replace rpn: got %q", got)
	}
	if got := ev.Unparsed(); got != "" {
		t.Errorf("parse didn't replace unparsed text: got %q", got)
	}
	if ev.Live() != 3 {
		t.Errorf("old rpn leaked: %d live", ev.Live())
	}
}

func TestParseNotInitialized(t *testing.T) {
	ev := NewEvaluator()
	err := ev.Parse("1")
	if !errors.Is(err, NotInitialized) {
		t.Errorf("wrong error: want %v, got %v", NotInitialized, err)
	}
	if ev.Live() != 0 {
		t.Errorf("%d atoms leaked", ev.Live())
	}
}

func TestParseDeterministic(t *testing.T) {
	exprs := []string{
		"2 + 3 * 4",
		"avg(1, 2, 3) ^ -2",
		"max(0x10, b101, 017, 2.5) - fact(5) % 7",
		"log(abs(-8), 2) << 1",
	}
	seen := make(map[uint64]string)
	for _, expr := range exprs {
		a, b := initialized(t), initialized(t)
		if err := a.Parse(expr); err != nil {
			t.Fatal(err)
		}
		if err := b.Parse(expr); err != nil {
			t.Fatal(err)
		}
		if a.RPN() != b.RPN() {
			t.Errorf("%q parsed differently: %q and %q", expr, a.RPN(), b.RPN())
		}
		if a.Fingerprint() != b.Fingerprint() {
			t.Errorf("%q fingerprints differ: %x and %x", expr, a.Fingerprint(), b.Fingerprint())
		}
		if other, ok := seen[a.Fingerprint()]; ok {
			t.Errorf("%q and %q have the same fingerprint", expr, other)
		}
		seen[a.Fingerprint()] = expr
	}
}

func TestParseFunctionCount(t *testing.T) {
	ev := initialized(t)
	if err := ev.Parse("avg(1,2,3)"); err != nil {
		t.Fatal(err)
	}
	var fn *atom
	ev.rpn.each(func(a *atom) {
		if a.kind == atomFunction {
			fn = a
		}
	})
	if fn == nil {
		t.Fatalf("no function in %q", ev.RPN())
	}
	if fn.fn.Name != "avg" || fn.params != 3 {
		t.Errorf("wrong call: want avg with 3 arguments, got %s with %d", fn.fn.Name, fn.params)
	}
}

func TestParseSink(t *testing.T) {
	var got []Code
	var msgs []string
	sink := SinkFunc(func(code Code, msg string) {
		got = append(got, code)
		msgs = append(msgs, msg)
	})
	ev := initialized(t, WithSink(sink))
	ev.Parse("avg()")
	ev.Parse("1 + 2")
	ev.Parse("2 + 3)")
	want := []Code{TooFewParameters, ParenthesisUnbalanced}
	if len(got) != len(want) {
		t.Fatalf("wrong reports: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wrong report %d: want %v, got %v", i, want[i], got[i])
		}
	}
	if !strings.HasPrefix(msgs[1], "5: ") {
		t.Errorf("report without position: %q", msgs[1])
	}
}

func BenchmarkParse(b *testing.B) {
	ev := initialized(b)
	const expr = "max(0x10, b101, 017, 2.5) * avg(1, 2, 3) ^ -2 - fact(5) % 7"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := ev.Parse(expr); err != nil {
			b.Fatal(err)
		}
	}
}
