package xank

import (
	"strconv"

	"fortio.org/log"
)

// parser holds the transient state of one Parse. Every atom it holds is in
// exactly one of stack, out, or prev.
type parser struct {
	ev *Evaluator
	l  *lexer
	// stack holds operators, open parentheses, and functions awaiting their
	// operands.
	stack atomStack
	// out is the RPN output.
	out atomQueue
	// prev is the last atom scanned. It is owned by the parser only when it
	// is a marker, which goes to neither stack nor out.
	prev *atom
}

// Parse converts an expression to RPN, replacing the evaluator's current RPN
// sequence. Parsing stops at the first text that is not an atom; Unparsed
// returns that text. If an error occurs, the current RPN sequence is kept.
func (ev *Evaluator) Parse(expr string) error {
	ev.clearError()
	if !ev.initialized.IsSet() {
		return ev.record(fail(NotInitialized, -1, "Parse before Init"))
	}
	p := parser{
		ev:    ev,
		l:     lex(ev, expr),
		stack: newAtomStack(),
		out:   newAtomQueue(),
	}
	if err := p.run(); err != nil {
		p.abort()
		return ev.record(err)
	}
	ev.rpn.release(ev)
	ev.rpn = p.out
	ev.unparsed = p.l.rest()
	log.LogVf("parse: %q -> %s (unparsed %q)", expr, ev.RPN(), ev.unparsed)
	return nil
}

func (p *parser) run() *Error {
	for {
		a := p.l.next(p.prev)
		if a == nil {
			p.dropMarker()
			break
		}
		last := p.prev
		p.prev = a
		err := p.atom(a, last)
		if last != nil && last.isMarker() {
			p.ev.release(last)
		}
		if err != nil {
			return err
		}
	}
	return p.drain()
}

// dropMarker releases the previous atom if the parser owns it.
func (p *parser) dropMarker() {
	if p.prev != nil && p.prev.isMarker() {
		p.ev.release(p.prev)
	}
	p.prev = nil
}

// atom handles a scanned atom. last is the atom scanned before it.
func (p *parser) atom(a, last *atom) *Error {
	switch a.kind {
	case atomInteger, atomFloat:
		p.out.push(a)
		return nil
	case atomFunction:
		p.stack.push(a)
		return nil
	case atomOperator:
		return p.operator(a, last)
	case atomVariable:
		p.discard(a)
		return fail(NotSupported, a.pos, "variables are not supported")
	default:
		err := fail(ExpressionInvalid, a.pos, "unexpected "+a.kind.String()+" atom")
		p.discard(a)
		return err
	}
}

func (p *parser) operator(a, last *atom) *Error {
	switch {
	case a.op.IsOpenParen():
		p.stack.push(a)
		return nil
	case a.op.IsCloseParen():
		return p.closeParen(a, last)
	case a.op.IsParamSeparator():
		return p.separator(a)
	case a.op.IsAssignment():
		p.discard(a)
		return fail(NotSupported, a.pos, "assignment is not supported")
	}
	if !a.op.isPrefix() {
		for t := p.stack.top(); t != nil && t.kind == atomOperator && !t.op.IsOpenParen(); t = p.stack.top() {
			if !firesFirst(a.op, t.op) {
				break
			}
			p.out.push(p.stack.pop())
		}
	}
	p.stack.push(a)
	return nil
}

// firesFirst returns whether the operator top on the stack is output before
// pushing cur.
func firesFirst(cur, top *Operator) bool {
	switch cur.Assoc {
	case AssocLeft:
		return cur.Priority <= top.Priority
	case AssocRight:
		return cur.Priority < top.Priority
	default:
		return false
	}
}

// unwind moves atoms from the stack to the output up to the nearest open
// parenthesis, which it pops and returns. The result is nil if the stack has
// no open parenthesis.
func (p *parser) unwind() *atom {
	for t := p.stack.pop(); t != nil; t = p.stack.pop() {
		if t.isOpenParen() {
			return t
		}
		p.out.push(t)
	}
	return nil
}

func (p *parser) closeParen(a, last *atom) *Error {
	if last != nil && last.isParamSeparator() {
		return fail(ParenthesisSeparatorUnexpected, a.pos, "missing argument before "+strconv.Quote(a.op.Name))
	}
	open := p.unwind()
	if open == nil {
		return fail(ParenthesisUnbalanced, a.pos, "no match for "+strconv.Quote(a.op.Name))
	}
	empty := last == open
	p.ev.release(open)
	fn := p.stack.top()
	if fn == nil || fn.kind != atomFunction {
		if empty {
			return fail(ExpressionInvalid, a.pos, "empty parentheses")
		}
		return nil
	}
	p.out.push(p.stack.pop())
	if !empty {
		fn.params++
	}
	switch {
	case fn.params > fn.fn.MaxParams:
		return fail(TooManyParameters, fn.pos, fn.fn.Name+" takes at most "+strconv.Itoa(fn.fn.MaxParams)+" arguments, have "+strconv.Itoa(fn.params))
	case fn.params < fn.fn.MinParams:
		return fail(TooFewParameters, fn.pos, fn.fn.Name+" takes at least "+strconv.Itoa(fn.fn.MinParams)+" arguments, have "+strconv.Itoa(fn.params))
	}
	return nil
}

func (p *parser) separator(a *atom) *Error {
	pos := a.pos
	open := p.unwind()
	if open == nil {
		return fail(ParenthesisSeparatorUnexpected, pos, "separator outside parentheses")
	}
	fn := p.stack.top()
	if fn == nil || fn.kind != atomFunction {
		p.ev.release(open)
		return fail(ParenthesisSeparatorUnexpected, pos, "separator outside function call")
	}
	fn.params++
	p.stack.push(open)
	if fn.params >= fn.fn.MaxParams {
		return fail(TooManyParameters, pos, fn.fn.Name+" takes at most "+strconv.Itoa(fn.fn.MaxParams)+" arguments")
	}
	return nil
}

// drain moves the remaining stack to the output.
func (p *parser) drain() *Error {
	for t := p.stack.pop(); t != nil; t = p.stack.pop() {
		if t.isOpenParen() {
			err := fail(ParenthesisUnbalanced, t.pos, "no match for "+strconv.Quote(t.op.Name))
			p.ev.release(t)
			return err
		}
		p.out.push(t)
	}
	if p.out.len() == 0 {
		return fail(ExpressionInvalid, p.l.pos, "no atoms detected")
	}
	return nil
}

// discard releases an atom that goes nowhere.
func (p *parser) discard(a *atom) {
	if p.prev == a {
		p.prev = nil
	}
	p.ev.release(a)
}

// abort releases everything the parser holds.
func (p *parser) abort() {
	p.dropMarker()
	p.stack.release(p.ev)
	p.out.release(p.ev)
}
