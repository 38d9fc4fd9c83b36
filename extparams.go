// Package extparams is the entry point for hosts that validate extension
// instance parameters. It re-exports the common types and wraps the
// document, validation and extension packages for the typical flow: load
// documents, check values, then hand them to an extension.
package extparams

import (
	"io/fs"

	"github.com/goliatone/go-extparams/pkg/condition"
	"github.com/goliatone/go-extparams/pkg/document"
	"github.com/goliatone/go-extparams/pkg/extension"
	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/validation"
)

// Definition describes one instance parameter.
type Definition = parameter.Definition

// Values maps parameter ids to raw string values.
type Values = parameter.Values

// Condition gates whether a parameter is active.
type Condition = condition.Condition

// Result is the outcome of a validation.
type Result = validation.Result

// Document is a parsed parameter document.
type Document = document.Document

// ValidateParameter checks a single value against its definition, ignoring
// conditions.
func ValidateParameter(def Definition, value string) Result {
	return validation.ValidateParameter(def, value)
}

// Validate checks every active parameter of defs against values and
// aggregates the failures.
func Validate(defs []Definition, values Values) Result {
	return validation.ValidateParameters(defs, values)
}

// ActiveParameters returns the definitions whose conditions hold for values,
// in declaration order.
func ActiveParameters(defs []Definition, values Values) []Definition {
	return validation.ActiveParameters(defs, values)
}

// ValidateDocument validates values against a document's parameters. The
// document's own sample values are not merged in.
func ValidateDocument(doc Document, values Values) Result {
	return validation.ValidateParameters(doc.Parameters, values)
}

// ParseDocument parses a JSON or YAML parameter document. source names the
// document in errors.
func ParseDocument(data []byte, source string) (Document, error) {
	return document.Parse(data, source)
}

// LoadDocuments parses every document under fsys.
func LoadDocuments(fsys fs.FS) (*document.Store, error) {
	return document.LoadFS(fsys)
}

// NewController builds a controller over a fresh registry holding exts.
func NewController(exts []extension.Extension, options ...extension.ControllerOption) (*extension.Controller, error) {
	registry := extension.NewRegistry()
	for _, ext := range exts {
		if err := registry.Register(ext); err != nil {
			return nil, err
		}
	}
	return extension.NewController(registry, options...), nil
}
