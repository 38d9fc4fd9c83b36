package parameter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-extparams/pkg/condition"
	"github.com/goliatone/go-extparams/pkg/condition/expr"
)

type definitionJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Required    bool            `json:"required,omitempty"`
	Default     json.RawMessage `json:"default,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	ReadOnly    bool            `json:"readOnly,omitempty"`
	Regex       *string         `json:"regex,omitempty"`
	Options     *SelectOptions  `json:"options,omitempty"`
	Condition   json.RawMessage `json:"condition,omitempty"`
}

// MarshalJSON writes the definition in extension document form.
func (d Definition) MarshalJSON() ([]byte, error) {
	out := definitionJSON{
		ID:          d.ID,
		Name:        d.Name,
		Type:        string(d.Type()),
		Required:    d.Required,
		Placeholder: d.Placeholder,
		ReadOnly:    d.ReadOnly,
	}
	if d.Default != "" {
		raw, err := json.Marshal(d.Default)
		if err != nil {
			return nil, err
		}
		out.Default = raw
	}
	switch spec := d.Spec.(type) {
	case StringSpec:
		if spec.Regex != "" {
			regex := spec.Regex
			out.Regex = &regex
		}
	case SelectSpec:
		options := spec.Options
		if options == nil {
			options = SelectOptions{}
		}
		out.Options = &options
	}
	if d.Condition != nil {
		raw, err := json.Marshal(d.Condition)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", d.ID, err)
		}
		out.Condition = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a definition. The condition may be an object tree or an
// expression string. A regex on a non-string type or options on a non-select
// type are rejected.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var in definitionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parameter: %w", err)
	}

	def := Definition{
		ID:          strings.TrimSpace(in.ID),
		Name:        in.Name,
		Required:    in.Required,
		Placeholder: in.Placeholder,
		ReadOnly:    in.ReadOnly,
	}

	if len(in.Default) > 0 {
		value, err := scalarText(in.Default)
		if err != nil {
			return fmt.Errorf("parameter %q: default: %w", def.ID, err)
		}
		def.Default = value
	}

	tag := strings.TrimSpace(in.Type)
	if in.Regex != nil && tag != string(TypeString) {
		return fmt.Errorf("parameter %q: regex is only allowed on string parameters", def.ID)
	}
	if in.Options != nil && tag != string(TypeSelect) {
		return fmt.Errorf("parameter %q: options are only allowed on select parameters", def.ID)
	}

	switch Type(tag) {
	case TypeString:
		spec := StringSpec{}
		if in.Regex != nil {
			spec.Regex = *in.Regex
		}
		def.Spec = spec
	case TypeSelect:
		spec := SelectSpec{}
		if in.Options != nil {
			spec.Options = *in.Options
		}
		def.Spec = spec
	case TypeBoolean:
		def.Spec = BooleanSpec{}
	default:
		def.Spec = UnknownSpec{Tag: tag}
	}

	cond, err := decodeCondition(in.Condition)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", def.ID, err)
	}
	def.Condition = cond

	*d = def
	return nil
}

func decodeCondition(raw json.RawMessage) (condition.Condition, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return expr.Parse(text)
	}
	return condition.Decode(trimmed)
}

func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch typed := v.(type) {
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %s", string(trimmed))
	}
}
