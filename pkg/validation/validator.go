package validation

import "github.com/goliatone/go-extparams/pkg/parameter"

// Observer receives every aggregate result produced by a Validator. It is
// the hook metrics recorders plug into.
type Observer interface {
	ObserveResult(extension string, res Result)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(extension string, res Result)

// ObserveResult delegates to the underlying function.
func (fn ObserverFunc) ObserveResult(extension string, res Result) {
	fn(extension, res)
}

// Option configures a Validator.
type Option func(*Validator)

// WithObserver registers an observer. Nil observers are ignored.
func WithObserver(obs Observer) Option {
	return func(v *Validator) {
		if obs != nil {
			v.observers = append(v.observers, obs)
		}
	}
}

// Validator wraps ValidateParameters with observers. It holds no mutable
// state once constructed and is safe for concurrent use.
type Validator struct {
	observers []Observer
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate runs ValidateParameters and notifies the observers. extension
// labels the result for observers and may be empty.
func (v *Validator) Validate(extension string, defs []parameter.Definition, values parameter.Values) Result {
	res := ValidateParameters(defs, values)
	if v == nil {
		return res
	}
	for _, obs := range v.observers {
		obs.ObserveResult(extension, res)
	}
	return res
}
