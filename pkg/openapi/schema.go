// Package openapi exports parameter definitions as an OpenAPI schema so a
// host can publish the request body of its "add instance" endpoint.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-extparams/pkg/condition"
	"github.com/goliatone/go-extparams/pkg/parameter"
)

// Extension keys attached to generated property schemas.
const (
	ExtensionCondition     = "x-condition"
	ExtensionParameterType = "x-parameter-type"
	ExtensionPlaceholder   = "x-placeholder"
	ExtensionOptionLabels  = "x-option-labels"
	// ExtensionTrimWhitespace marks patterns that are matched against the
	// value with surrounding whitespace removed.
	ExtensionTrimWhitespace = "x-trim-whitespace"
)

// Schema builds an object schema with one string property per definition.
// Conditions cannot be expressed in OpenAPI, so a conditional parameter is
// described as if it were active and its condition is recorded under
// x-condition. Only unconditioned required parameters are listed as
// required. Empty values are expected to be omitted from the body.
//
// Regexes are checked against the trimmed value, so the exported pattern
// allows leading and trailing whitespace around the full match and the
// property carries x-trim-whitespace. Hosts that run their own matcher on
// the raw pattern should trim values first.
func Schema(defs []parameter.Definition) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for _, def := range defs {
		if def.ID == "" {
			continue
		}
		schema.WithProperty(def.ID, property(def))
		if def.Required && def.Condition == nil {
			schema.Required = append(schema.Required, def.ID)
		}
	}
	return schema
}

// RequestBody wraps Schema in a JSON request body.
func RequestBody(defs []parameter.Definition) *openapi3.RequestBody {
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(Schema(defs))
}

func property(def parameter.Definition) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	prop.Title = def.Name
	prop.ReadOnly = def.ReadOnly
	if def.Default != "" {
		prop.Default = def.Default
	}
	if def.Required && def.Condition == nil {
		prop.MinLength = 1
	}

	ext := map[string]any{ExtensionParameterType: string(def.Type())}
	if def.Placeholder != "" {
		ext[ExtensionPlaceholder] = def.Placeholder
	}
	if def.Condition != nil {
		ext[ExtensionCondition] = condition.String(def.Condition)
	}

	switch spec := def.Spec.(type) {
	case parameter.StringSpec:
		if spec.Regex != "" {
			if _, err := parameter.CompileRegex(spec.Regex); err == nil {
				prop.Pattern = `^\s*(?:` + spec.Regex + `)\s*$`
				ext[ExtensionTrimWhitespace] = true
			}
		}
	case parameter.SelectSpec:
		ids := spec.Options.IDs()
		enum := make([]any, 0, len(ids))
		for _, id := range ids {
			enum = append(enum, id)
		}
		prop.Enum = enum
		labels := make(map[string]any, len(spec.Options))
		for _, opt := range spec.Options {
			labels[opt.ID] = opt.Label
		}
		ext[ExtensionOptionLabels] = labels
	case parameter.BooleanSpec:
		prop.Enum = []any{"true", "false"}
	}

	prop.Extensions = ext
	return prop
}
