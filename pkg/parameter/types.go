package parameter

import (
	"regexp"

	"github.com/goliatone/go-extparams/pkg/condition"
)

// Type is the parameter type tag as it appears in definition documents.
type Type string

const (
	TypeString  Type = "string"
	TypeSelect  Type = "select"
	TypeBoolean Type = "boolean"
)

// Definition describes one instance parameter of an extension. The type
// specific payload lives in Spec, so a regex can only accompany a string
// parameter and options only a select parameter.
type Definition struct {
	ID          string
	Name        string
	Required    bool
	Default     string
	Placeholder string
	ReadOnly    bool
	// Condition gates the parameter; nil means always active.
	Condition condition.Condition
	Spec      Spec
}

// Type reports the type tag derived from the definition's Spec.
func (d Definition) Type() Type {
	if d.Spec == nil {
		return ""
	}
	return d.Spec.Type()
}

// Spec is the closed set of type specific payloads.
type Spec interface {
	Type() Type
	isSpec()
}

// StringSpec holds free text. Regex, when set, must match the whole value.
type StringSpec struct {
	Regex string
}

// SelectSpec restricts values to one of the option ids.
type SelectSpec struct {
	Options SelectOptions
}

// BooleanSpec accepts the literals "true" and "false".
type BooleanSpec struct{}

// UnknownSpec preserves a type tag this package does not understand so the
// problem can be reported against the parameter instead of failing a whole
// document.
type UnknownSpec struct {
	Tag string
}

func (StringSpec) Type() Type    { return TypeString }
func (SelectSpec) Type() Type    { return TypeSelect }
func (BooleanSpec) Type() Type   { return TypeBoolean }
func (s UnknownSpec) Type() Type { return Type(s.Tag) }

func (StringSpec) isSpec()  {}
func (SelectSpec) isSpec()  {}
func (BooleanSpec) isSpec() {}
func (UnknownSpec) isSpec() {}

// CompileRegex compiles a string parameter pattern with full-match
// semantics.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// Values maps parameter ids to submitted values. An absent key means no value
// was supplied.
type Values = condition.Values

// Value is a single entry of the list form used by extension manager hosts.
type Value struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ValueList is the `{"values": [...]}` payload hosts exchange.
type ValueList struct {
	Values []Value `json:"values" yaml:"values"`
}

// FromList converts the list form into a Values map. Later entries win.
func FromList(list []Value) Values {
	out := make(Values, len(list))
	for _, entry := range list {
		out[entry.Name] = entry.Value
	}
	return out
}

// ToList converts values into the list form ordered by definition order;
// values without a matching definition follow in key order.
func ToList(defs []Definition, values Values) []Value {
	out := make([]Value, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, def := range defs {
		if v, ok := values[def.ID]; ok {
			out = append(out, Value{Name: def.ID, Value: v})
			seen[def.ID] = struct{}{}
		}
	}
	for _, key := range sortedKeys(values) {
		if _, ok := seen[key]; ok {
			continue
		}
		out = append(out, Value{Name: key, Value: values[key]})
	}
	return out
}

// Find returns the definition with the given id.
func Find(defs []Definition, id string) (Definition, bool) {
	for _, def := range defs {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}
