package xank

import (
	"sort"
	"strconv"
)

// Registry is a validated catalog of operators and functions. A Registry is
// immutable and safe to share between Evaluators in any number of goroutines.
type Registry struct {
	ops  []Operator
	fns  []Function
	open *Operator
}

// NewRegistry validates and copies operator and function tables. The
// resulting registry orders operators so that longer symbols precede their
// prefixes and, for equal symbols, operators with more operands come first.
func NewRegistry(ops []Operator, fns []Function) (*Registry, error) {
	for i := range ops {
		if err := checkOperator(&ops[i]); err != nil {
			return nil, err
		}
	}
	for i := range ops {
		for j := i + 1; j < len(ops); j++ {
			if err := checkOperatorPair(&ops[i], &ops[j]); err != nil {
				return nil, err
			}
		}
	}
	for i := range fns {
		if err := checkFunction(&fns[i]); err != nil {
			return nil, err
		}
		for j := 0; j < i; j++ {
			if fns[i].Name == fns[j].Name {
				return nil, &Error{Code: DuplicateFunctor, Col: -1, Msg: strconv.Quote(fns[i].Name)}
			}
		}
	}

	r := Registry{
		ops: append([]Operator(nil), ops...),
		fns: append([]Function(nil), fns...),
	}
	sort.SliceStable(r.ops, func(i, j int) bool {
		a, b := &r.ops[i], &r.ops[j]
		if a.Name != b.Name {
			return a.Name > b.Name
		}
		return a.Params > b.Params
	})
	sort.SliceStable(r.fns, func(i, j int) bool {
		return r.fns[i].Name > r.fns[j].Name
	})

	var close, sep *Operator
	for i := range r.ops {
		switch op := &r.ops[i]; {
		case op.IsOpenParen():
			r.open = op
		case op.IsCloseParen():
			close = op
		case op.IsParamSeparator():
			sep = op
		}
	}
	switch {
	case r.open == nil:
		return nil, &Error{Code: MissingBasicOperator, Col: -1, Msg: "no open parenthesis operator"}
	case close == nil:
		return nil, &Error{Code: MissingBasicOperator, Col: -1, Msg: "no close parenthesis operator"}
	case sep == nil:
		return nil, &Error{Code: MissingBasicOperator, Col: -1, Msg: "no parameter separator operator"}
	}
	return &r, nil
}

func checkOperator(op *Operator) error {
	bad := func(msg string) error {
		return &Error{Code: InvalidOperator, Col: -1, Msg: "operator " + strconv.Quote(op.Name) + " " + msg}
	}
	switch {
	case op.Name == "":
		return bad("has no name")
	case op.Short == "", op.Long == "":
		return bad("has no help text")
	case op.Name == ".", '0' <= op.Name[0] && op.Name[0] <= '9':
		return bad("could be part of a number")
	case op.Params < 0 || op.Params > MaxOperatorParams:
		return bad("takes " + strconv.Itoa(op.Params) + " operands")
	case op.IsGeneric() && op.Fn == nil:
		return bad("has no evaluation function")
	}
	return nil
}

func checkOperatorPair(a, b *Operator) error {
	switch {
	case a.ID == b.ID:
		return &Error{Code: ConflictingOperators, Col: -1, Msg: strconv.Quote(a.Name) + " and " + strconv.Quote(b.Name) + " share ID " + strconv.FormatUint(uint64(a.ID), 10)}
	case a.Name != b.Name || a.Assoc != b.Assoc:
		return nil
	case a.Params == b.Params:
		return &Error{Code: DuplicateOperator, Col: -1, Msg: strconv.Quote(a.Name)}
	default:
		return &Error{Code: ConflictingOperators, Col: -1, Msg: strconv.Quote(a.Name) + " is " + a.Assoc.String() + "-associative with both " + strconv.Itoa(a.Params) + " and " + strconv.Itoa(b.Params) + " operands"}
	}
}

func checkFunction(fn *Function) error {
	bad := func(msg string) error {
		return &Error{Code: InvalidFunctor, Col: -1, Msg: "function " + strconv.Quote(fn.Name) + " " + msg}
	}
	switch {
	case fn.Name == "":
		return bad("has no name")
	case fn.Short == "", fn.Long == "":
		return bad("has no help text")
	case '0' <= fn.Name[0] && fn.Name[0] <= '9':
		return bad("could be part of a number")
	case fn.Fn == nil:
		return bad("has no evaluation function")
	case fn.MinParams < 0 || fn.MinParams > fn.MaxParams || fn.MaxParams > MaxArity:
		return bad("has invalid parameter bounds " + strconv.Itoa(fn.MinParams) + ".." + strconv.Itoa(fn.MaxParams))
	}
	return nil
}

// Operators returns a copy of the registry's operators in recognition order.
func (r *Registry) Operators() []Operator {
	return append([]Operator(nil), r.ops...)
}

// Functions returns a copy of the registry's functions in recognition order.
func (r *Registry) Functions() []Function {
	return append([]Function(nil), r.fns...)
}

// defaultRegistry is built from the default tables. The default tables are
// known to be valid, so failure here is a programming error.
var defaultRegistry = func() *Registry {
	r, err := NewRegistry(DefaultOperators(), DefaultFunctions())
	if err != nil {
		panic("xank: invalid default registry: " + err.Error())
	}
	return r
}()

// DefaultRegistry returns the shared registry of the default operators and
// functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
