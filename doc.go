// Package xank implements an arbitrary-precision expression evaluator.
//
// An Evaluator tokenizes an expression such as "avg(0x10, b101, 2.5) * -3",
// converts it to postfix order with the shunting-yard algorithm, and reduces
// the postfix sequence to a single Number. Integers are exact at any size;
// floats are computed to the Evaluator's precision. Integer operands are
// promoted to floats only when an operation involves a float.
//
// Operators and functions come from a Registry, which is validated once and
// may be shared read-only by any number of Evaluators. An Evaluator itself is
// not safe for concurrent use.
//
//	ev := xank.NewEvaluator(xank.Prec(128))
//	if err := ev.Init(); err != nil {
//		// bad registry
//	}
//	if err := ev.Parse("2 + 3 * 4"); err != nil {
//		// syntax error
//	}
//	r, err := ev.Evaluate() // 14
//
package xank
