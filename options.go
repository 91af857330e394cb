package xank

// Option is an option used when creating an evaluator.
type Option interface {
	evOption()
}

type (
	precopt uint
	opsopt  []Operator
	fnsopt  []Function
	regopt  struct{ r *Registry }
	sinkopt struct{ s Sink }
)

func (precopt) evOption() {}
func (opsopt) evOption()  {}
func (fnsopt) evOption()  {}
func (regopt) evOption()  {}
func (sinkopt) evOption() {}

// Prec sets the precision in bits of float literals and float results. A
// precision of 0 keeps the default.
func Prec(prec uint) Option {
	return precopt(prec)
}

// WithOperators sets the operator table for Init to validate in place of the
// default operators.
func WithOperators(ops []Operator) Option {
	return opsopt(ops)
}

// WithFunctions sets the function table for Init to validate in place of the
// default functions.
func WithFunctions(fns []Function) Option {
	return fnsopt(fns)
}

// WithRegistry sets an already validated registry. It takes precedence over
// WithOperators and WithFunctions.
func WithRegistry(r *Registry) Option {
	return regopt{r}
}

// WithSink sets the sink that receives every error the evaluator records.
func WithSink(s Sink) Option {
	return sinkopt{s}
}
