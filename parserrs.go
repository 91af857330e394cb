package xank

import "strconv"

// Code is a status code identifying the kind of failure of an Evaluator
// operation. A Code is also an error, so that errors returned by this package
// can be tested with errors.Is(err, xank.ParenthesisUnbalanced).
type Code int

const (
	Success Code = 0

	// Registry validation.
	InvalidOperator      Code = -106
	DuplicateOperator    Code = -104
	ConflictingOperators Code = -105
	MissingBasicOperator Code = -116
	InvalidFunctor       Code = -107
	DuplicateFunctor     Code = -108

	// Parsing.
	ExpressionInvalid              Code = -111
	ParenthesisUnbalanced          Code = -115
	ParenthesisSeparatorUnexpected Code = -117
	TooManyParameters              Code = -118
	TooFewParameters               Code = -119

	// Evaluation.
	InvalidParameter            Code = -102
	UnparsedExpression          Code = -110
	InvalidAtomTypeForOperation Code = -122
	NotInitialized              Code = -301
	NotSupported                Code = -303
	UndefinedBehaviour          Code = -668
)

var codeNames = map[Code]struct{ name, desc string }{
	Success:                        {"Success", "success"},
	InvalidOperator:                {"InvalidOperator", "invalid operator"},
	DuplicateOperator:              {"DuplicateOperator", "duplicate operator"},
	ConflictingOperators:           {"ConflictingOperators", "conflicting operators"},
	MissingBasicOperator:           {"MissingBasicOperator", "some fundamental operator missing"},
	InvalidFunctor:                 {"InvalidFunctor", "invalid function"},
	DuplicateFunctor:               {"DuplicateFunctor", "duplicate function"},
	ExpressionInvalid:              {"ExpressionInvalid", "invalid expression"},
	ParenthesisUnbalanced:          {"ParenthesisUnbalanced", "parenthesis unbalanced"},
	ParenthesisSeparatorUnexpected: {"ParenthesisSeparatorUnexpected", "invalid parameter separator position"},
	TooManyParameters:              {"TooManyParameters", "too many parameters"},
	TooFewParameters:               {"TooFewParameters", "too few parameters"},
	InvalidParameter:               {"InvalidParameter", "invalid parameter to function"},
	UnparsedExpression:             {"UnparsedExpression", "no parsed expression to evaluate"},
	InvalidAtomTypeForOperation:    {"InvalidAtomTypeForOperation", "invalid operand type for operation"},
	NotInitialized:                 {"NotInitialized", "evaluator not initialized"},
	NotSupported:                   {"NotSupported", "operation not supported"},
	UndefinedBehaviour:             {"UndefinedBehaviour", "evaluation would invoke undefined behaviour"},
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n.name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Error returns a human-readable description of the code.
func (c Code) Error() string {
	if n, ok := codeNames[c]; ok {
		return n.desc
	}
	return "unknown status " + strconv.Itoa(int(c))
}

// Error is an error from initializing, parsing, or evaluating. It implements
// InputError and unwraps to its Code and to Err.
type Error struct {
	// Code is the kind of failure.
	Code Code
	// Col is the byte offset in the expression of the atom that caused the
	// error, or -1 if the error is not associated with a position.
	Col int
	// Msg gives details of the failure.
	Msg string
	// Err is the error returned by an operator or function callback, if the
	// failure came from one that does not use this package's errors.
	Err error
}

func (err *Error) Error() string {
	msg := err.Code.Error()
	switch {
	case err.Msg != "":
		msg += ": " + err.Msg
	case err.Err != nil:
		msg += ": " + err.Err.Error()
	}
	if err.Col < 0 {
		return msg
	}
	return errpos(err.Col, msg)
}

func (err *Error) Unwrap() []error {
	if err.Err == nil {
		return []error{err.Code}
	}
	return []error{err.Code, err.Err}
}

func (err *Error) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// fail creates an error with a position.
func fail(code Code, pos int, msg string) *Error {
	return &Error{Code: code, Col: pos, Msg: msg}
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the byte offset of the atom that caused the error, or -1.
	Pos() int
}

var _ InputError = (*Error)(nil)
