package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-extparams/pkg/condition"
	"github.com/goliatone/go-extparams/pkg/parameter"
)

// Canonical finding messages.
const (
	MessageRequired       = "This is a required parameter."
	MessageInvalidFormat  = "The value has an invalid format."
	MessageInvalidBoolean = "Boolean value must be 'true' or 'false'."
)

// IsActive reports whether def takes part in validation for values: it has
// no condition or its condition holds.
func IsActive(def parameter.Definition, values parameter.Values) bool {
	return def.Condition == nil || condition.Evaluate(def.Condition, values)
}

// ActiveParameters returns the active definitions in definition order.
func ActiveParameters(defs []parameter.Definition, values parameter.Values) []parameter.Definition {
	out := make([]parameter.Definition, 0, len(defs))
	for _, def := range defs {
		if IsActive(def, values) {
			out = append(out, def)
		}
	}
	return out
}

// ValidateParameter checks a single value against its definition. An empty
// value passes unless the parameter is required.
func ValidateParameter(def parameter.Definition, value string) Result {
	res := check(def, value)
	if res == nil {
		return success()
	}
	out := failure(*res)
	out.Findings[0].Parameter = def.ID
	out.Findings[0].Name = def.Name
	return out
}

func check(def parameter.Definition, value string) *finding {
	if value == "" {
		if def.Required {
			return &finding{kind: KindMissingRequired, message: MessageRequired}
		}
		return nil
	}

	switch spec := def.Spec.(type) {
	case parameter.StringSpec:
		return checkString(spec, value)
	case parameter.SelectSpec:
		return checkSelect(spec, value)
	case parameter.BooleanSpec:
		if value == "true" || value == "false" {
			return nil
		}
		return &finding{kind: KindInvalidBoolean, message: MessageInvalidBoolean}
	default:
		return &finding{
			kind:    KindUnsupportedType,
			message: fmt.Sprintf("Unsupported parameter type '%s'.", def.Type()),
		}
	}
}

func checkString(spec parameter.StringSpec, value string) *finding {
	if spec.Regex == "" {
		return nil
	}
	re, err := parameter.CompileRegex(spec.Regex)
	if err != nil {
		return &finding{
			kind:    KindInvalidFormat,
			message: fmt.Sprintf("The format pattern '%s' is invalid.", spec.Regex),
		}
	}
	if !re.MatchString(strings.TrimSpace(value)) {
		return &finding{kind: KindInvalidFormat, message: MessageInvalidFormat}
	}
	return nil
}

func checkSelect(spec parameter.SelectSpec, value string) *finding {
	if spec.Options.Contains(value) {
		return nil
	}
	quoted := make([]string, 0, len(spec.Options))
	for _, id := range spec.Options.IDs() {
		quoted = append(quoted, "'"+id+"'")
	}
	return &finding{
		kind:    KindInvalidOption,
		message: fmt.Sprintf("The value must be one of %s.", strings.Join(quoted, ", ")),
	}
}

// ValidateParameters validates the active parameters of defs against values
// and aggregates the findings in definition order. Inactive parameters are
// skipped even when required. A condition naming a parameter outside defs is
// reported against the parameter that owns it.
func ValidateParameters(defs []parameter.Definition, values parameter.Values) Result {
	var findings []Finding
	for _, def := range defs {
		if dangling := parameter.DanglingReferences(def, defs); len(dangling) > 0 {
			for _, ref := range dangling {
				findings = append(findings, Finding{
					Parameter: def.ID,
					Name:      def.Name,
					Kind:      KindDanglingReference,
					Message:   fmt.Sprintf("Condition references unknown parameter '%s'.", ref),
				})
			}
			continue
		}
		if !IsActive(def, values) {
			continue
		}
		if res := check(def, values[def.ID]); res != nil {
			findings = append(findings, Finding{
				Parameter: def.ID,
				Name:      def.Name,
				Kind:      res.kind,
				Message:   res.message,
			})
		}
	}
	return aggregate(findings)
}
