package xank

import "strconv"

// atom is one parsed unit of an expression. Numbers own their value;
// operators and functions borrow their descriptor from the Registry.
type atom struct {
	kind atomKind
	// pos is the byte offset of the atom in the expression.
	pos int

	num Number
	op  *Operator
	fn  *Function
	// params is the number of arguments seen for a function atom.
	params int
	// name is the name of a variable atom.
	name string
}

type atomKind int8

const (
	atomEmpty atomKind = iota

	atomInteger  // num is an integer
	atomFloat    // num is a float
	atomOperator // op is the operator
	atomFunction // fn is the function, params counts arguments
	atomVariable // name is the variable; reserved, never evaluated

	// atomReleased marks an atom after its owner has released it.
	atomReleased
)

func (k atomKind) String() string {
	switch k {
	case atomEmpty:
		return "Empty"
	case atomInteger:
		return "Integer"
	case atomFloat:
		return "Float"
	case atomOperator:
		return "Operator"
	case atomFunction:
		return "Function"
	case atomVariable:
		return "Variable"
	case atomReleased:
		return "Released"
	default:
		return "atomKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// setNumber makes a a number atom holding n.
func (a *atom) setNumber(n Number) {
	switch n.kind {
	case NumberInteger:
		a.kind = atomInteger
	case NumberFloat:
		a.kind = atomFloat
	default:
		a.kind = atomEmpty
	}
	a.num = n
	a.op, a.fn, a.params, a.name = nil, nil, 0, ""
}

func (a *atom) isNumber() bool {
	return a.kind == atomInteger || a.kind == atomFloat
}

func (a *atom) isOpenParen() bool {
	return a.kind == atomOperator && a.op.IsOpenParen()
}

func (a *atom) isCloseParen() bool {
	return a.kind == atomOperator && a.op.IsCloseParen()
}

func (a *atom) isParamSeparator() bool {
	return a.kind == atomOperator && a.op.IsParamSeparator()
}

// isMarker returns whether a is an atom that only guides parsing and never
// appears in RPN.
func (a *atom) isMarker() bool {
	return a.isCloseParen() || a.isParamSeparator()
}

// String formats the atom as it appears in an RPN sequence.
func (a *atom) String() string {
	switch a.kind {
	case atomInteger, atomFloat:
		return a.num.String()
	case atomOperator:
		return a.op.Name
	case atomFunction:
		return a.fn.Name + ":" + strconv.Itoa(a.params)
	case atomVariable:
		return a.name
	default:
		return "<" + a.kind.String() + ">"
	}
}

// newAtom allocates an atom owned by the evaluator.
func (ev *Evaluator) newAtom(kind atomKind, pos int) *atom {
	ev.live++
	return &atom{kind: kind, pos: pos}
}

// release ends the lifetime of an atom. Every atom from newAtom must be
// released exactly once.
func (ev *Evaluator) release(a *atom) {
	if a.kind == atomReleased {
		panic("xank: atom at " + strconv.Itoa(a.pos) + " released twice")
	}
	*a = atom{kind: atomReleased, pos: a.pos}
	ev.live--
}
