package xank

import (
	"errors"
	"strconv"
	"strings"

	"fortio.org/log"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/tevino/abool/v2"
)

// Evaluator parses expressions to RPN and evaluates them. It is not safe to
// use an Evaluator concurrently, but any number of Evaluators may share a
// Registry.
type Evaluator struct {
	// reg is the registry in use after Init.
	reg         *Registry
	initialized *abool.AtomicBool

	// ops, fns, and given are the registry configuration from options.
	ops   []Operator
	fns   []Function
	given *Registry

	prec uint
	sink Sink

	lastCode Code
	lastMsg  string

	// rpn is the current parsed expression.
	rpn      atomQueue
	unparsed string
	// live is the number of atoms allocated and not yet released.
	live int
}

// NewEvaluator creates an evaluator. It must be initialized with Init before
// use. If no precision is given, the default is 64.
func NewEvaluator(opts ...Option) *Evaluator {
	ev := Evaluator{
		initialized: abool.New(),
		prec:        64,
		rpn:         newAtomQueue(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case precopt:
			if opt != 0 {
				ev.prec = uint(opt)
			}
		case opsopt:
			ev.ops = opt
		case fnsopt:
			ev.fns = opt
		case regopt:
			ev.given = opt.r
		case sinkopt:
			ev.sink = opt.s
		default:
			panic("xank: unknown option type")
		}
	}
	return &ev
}

// Init validates the evaluator's operators and functions. With WithRegistry,
// the given registry is used as is. Otherwise, the tables from WithOperators
// and WithFunctions, or the defaults for each that is not given, are checked
// with NewRegistry. Init may be called again; a failed Init leaves the
// evaluator uninitialized.
func (ev *Evaluator) Init() error {
	ev.clearError()
	ev.initialized.UnSet()
	r := ev.given
	switch {
	case r != nil:
		// Use it.
	case ev.ops == nil && ev.fns == nil:
		r = defaultRegistry
	default:
		ops, fns := ev.ops, ev.fns
		if ops == nil {
			ops = DefaultOperators()
		}
		if fns == nil {
			fns = DefaultFunctions()
		}
		var err error
		r, err = NewRegistry(ops, fns)
		if err != nil {
			return ev.record(err)
		}
	}
	if ev.reg != r {
		// Atoms in the current RPN refer into the old registry.
		ev.rpn.release(ev)
	}
	ev.reg = r
	ev.initialized.Set()
	log.LogVf("init: %d operators, %d functions, %d bits", len(r.ops), len(r.fns), ev.prec)
	return nil
}

// Evaluate evaluates the current RPN sequence and consumes it. A second
// Evaluate without a Parse between fails with UnparsedExpression.
func (ev *Evaluator) Evaluate() (Number, error) {
	ev.clearError()
	if !ev.initialized.IsSet() {
		return Number{}, ev.record(fail(NotInitialized, -1, "Evaluate before Init"))
	}
	if ev.rpn.len() == 0 {
		return Number{}, ev.record(fail(UnparsedExpression, -1, ""))
	}
	rpn := ev.rpn
	ev.rpn = newAtomQueue()
	operands := newAtomStack()
	r, err := ev.reduce(rpn, operands)
	rpn.release(ev)
	operands.release(ev)
	if err != nil {
		return Number{}, ev.record(err)
	}
	log.LogVf("evaluate: %s", r)
	return r, nil
}

// reduce evaluates rpn using operands as the operand stack. The atoms
// remaining in both on return belong to the caller.
func (ev *Evaluator) reduce(rpn atomQueue, operands atomStack) (Number, error) {
	for a := rpn.shift(); a != nil; a = rpn.shift() {
		switch a.kind {
		case atomInteger, atomFloat:
			operands.push(a)
		case atomOperator:
			if a.op.Fn == nil {
				err := fail(NotSupported, a.pos, "operator "+strconv.Quote(a.op.Name)+" cannot be evaluated")
				ev.release(a)
				return Number{}, err
			}
			if err := ev.call(a, a.op.Fn, a.op.Params, operands); err != nil {
				return Number{}, err
			}
		case atomFunction:
			if err := ev.call(a, a.fn.Fn, a.params, operands); err != nil {
				return Number{}, err
			}
		case atomVariable:
			err := fail(NotSupported, a.pos, "variable "+strconv.Quote(a.name)+" cannot be evaluated")
			ev.release(a)
			return Number{}, err
		default:
			log.LogVf("evaluate: discarding %s atom at %d", a.kind, a.pos)
			ev.release(a)
		}
	}
	if n := operands.len(); n != 1 {
		return Number{}, fail(ExpressionInvalid, -1, "excess atoms: "+strconv.Itoa(n)+" operands remain")
	}
	return operands.top().num, nil
}

// call applies f to the top n operands. The result replaces the first
// operand, or the atom a itself if n is 0. call releases a and every other
// operand it pops.
func (ev *Evaluator) call(a *atom, f Func, n int, operands atomStack) error {
	if operands.len() < n {
		err := fail(TooFewParameters, a.pos, a.String()+" needs "+strconv.Itoa(n)+" operands, have "+strconv.Itoa(operands.len()))
		ev.release(a)
		return err
	}
	atoms := make([]*atom, n)
	args := make([]Number, n)
	for i := n - 1; i >= 0; i-- {
		atoms[i] = operands.pop()
		args[i] = atoms[i].num
	}
	r, err := f(ev, args)
	if err == nil && r.kind == NumberNone {
		err = fail(InvalidAtomTypeForOperation, a.pos, a.String()+" produced no value")
	}
	if err != nil {
		err = at(err, a.pos)
		ev.release(a)
		for _, t := range atoms {
			ev.release(t)
		}
		return err
	}
	log.LogVf("evaluate: %s %v -> %s", a, args, r)
	if n == 0 {
		a.setNumber(r)
		operands.push(a)
		return nil
	}
	ev.release(a)
	for _, t := range atoms[1:] {
		ev.release(t)
	}
	atoms[0].setNumber(r)
	operands.push(atoms[0])
	return nil
}

// at gives an error from a callback the position of the atom that called it.
func at(err error, pos int) *Error {
	if c, ok := err.(Code); ok {
		return fail(c, pos, "")
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Code: InvalidParameter, Col: pos, Err: err}
	}
	if e.Col >= 0 {
		return e
	}
	c := *e
	c.Col = pos
	return &c
}

func (ev *Evaluator) clearError() {
	ev.lastCode, ev.lastMsg = Success, ""
}

// record sets err as the last error and reports it to the sink.
func (ev *Evaluator) record(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Code: InvalidParameter, Col: -1, Err: err}
	}
	ev.lastCode, ev.lastMsg = e.Code, e.Error()
	if ev.sink != nil {
		ev.sink.Report(e.Code, ev.lastMsg)
	}
	return e
}

// LastError returns the code and message of the error from the last call to
// Init, Parse, or Evaluate. The code is Success if that call succeeded.
func (ev *Evaluator) LastError() (Code, string) {
	return ev.lastCode, ev.lastMsg
}

// Prec returns the precision of floats created by the evaluator.
func (ev *Evaluator) Prec() uint {
	return ev.prec
}

// RPN formats the current RPN sequence with atoms separated by spaces.
// Function calls are formatted as name:count.
func (ev *Evaluator) RPN() string {
	var b strings.Builder
	ev.rpn.each(func(a *atom) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.String())
	})
	return b.String()
}

// Fingerprint returns a hash of the structure of the current RPN sequence.
// Parsing the same expression with the same registry always produces the
// same fingerprint.
func (ev *Evaluator) Fingerprint() uint64 {
	h := fnv1a.Init64
	ev.rpn.each(func(a *atom) {
		h = fnv1a.AddUint64(h, uint64(a.kind))
		h = fnv1a.AddString64(h, a.String())
	})
	return h
}

// Unparsed returns the text after the last atom recognized by the last
// successful Parse.
func (ev *Evaluator) Unparsed() string {
	return ev.unparsed
}

// Live returns the number of atoms the evaluator holds. After Parse it is the
// length of the RPN sequence; after Evaluate or any error it is zero or the
// length of the RPN sequence kept from before.
func (ev *Evaluator) Live() int {
	return ev.live
}

// Operators returns the evaluator's operators in recognition order, or nil
// before Init.
func (ev *Evaluator) Operators() []Operator {
	if ev.reg == nil {
		return nil
	}
	return ev.reg.Operators()
}

// Functions returns the evaluator's functions in recognition order, or nil
// before Init.
func (ev *Evaluator) Functions() []Function {
	if ev.reg == nil {
		return nil
	}
	return ev.reg.Functions()
}

// EvalString is a shortcut to initialize an evaluator, parse an expression,
// and evaluate it. Unlike Parse, text after the expression is an error.
func EvalString(expr string, opts ...Option) (Number, error) {
	ev := NewEvaluator(opts...)
	if err := ev.Init(); err != nil {
		return Number{}, err
	}
	if err := ev.Parse(expr); err != nil {
		return Number{}, err
	}
	if rest := ev.Unparsed(); rest != "" {
		ev.rpn.release(ev)
		return Number{}, ev.record(fail(ExpressionInvalid, len(expr)-len(rest), "unexpected "+strconv.Quote(rest)))
	}
	return ev.Evaluate()
}
