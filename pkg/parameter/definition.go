package parameter

import "github.com/goliatone/go-extparams/pkg/condition"

// Option configures a Definition built by one of the constructors.
type Option func(*Definition)

// Required marks the parameter as mandatory while it is active.
func Required() Option {
	return func(d *Definition) {
		d.Required = true
	}
}

// ReadOnly marks the parameter as not editable by users.
func ReadOnly() Option {
	return func(d *Definition) {
		d.ReadOnly = true
	}
}

// WithDefault sets the value hosts prefill.
func WithDefault(value string) Option {
	return func(d *Definition) {
		d.Default = value
	}
}

// WithPlaceholder sets the hint hosts show in empty inputs.
func WithPlaceholder(text string) Option {
	return func(d *Definition) {
		d.Placeholder = text
	}
}

// WithCondition gates the parameter on other parameters' values.
func WithCondition(cond condition.Condition) Option {
	return func(d *Definition) {
		d.Condition = cond
	}
}

// New builds a definition around an explicit Spec.
func New(id, name string, spec Spec, opts ...Option) Definition {
	def := Definition{ID: id, Name: name, Spec: spec}
	for _, opt := range opts {
		if opt != nil {
			opt(&def)
		}
	}
	return def
}

// String builds a free text parameter.
func String(id, name string, opts ...Option) Definition {
	return New(id, name, StringSpec{}, opts...)
}

// Pattern builds a string parameter whose value must fully match regex.
func Pattern(id, name, regex string, opts ...Option) Definition {
	return New(id, name, StringSpec{Regex: regex}, opts...)
}

// Select builds a parameter restricted to the given options.
func Select(id, name string, options SelectOptions, opts ...Option) Definition {
	return New(id, name, SelectSpec{Options: options}, opts...)
}

// Boolean builds a "true"/"false" parameter.
func Boolean(id, name string, opts ...Option) Definition {
	return New(id, name, BooleanSpec{}, opts...)
}
