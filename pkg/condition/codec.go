package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type rawNode struct {
	Parameter *string           `json:"parameter"`
	Operator  *Operator         `json:"operator"`
	Value     json.RawMessage   `json:"value"`
	And       []json.RawMessage `json:"and"`
	Or        []json.RawMessage `json:"or"`
	Not       json.RawMessage   `json:"not"`
}

// Decode reads a condition tree from its JSON object form:
//
//	{"parameter": "amount", "operator": "LESS", "value": 2}
//	{"and": [...]} | {"or": [...]} | {"not": {...}}
func Decode(data []byte) (Condition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("condition: empty condition")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("condition: expected an object, got %s", abbreviate(trimmed))
	}

	var raw rawNode
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}

	shapes := 0
	if raw.Parameter != nil || raw.Operator != nil || len(raw.Value) > 0 {
		shapes++
	}
	if raw.And != nil {
		shapes++
	}
	if raw.Or != nil {
		shapes++
	}
	if present(raw.Not) {
		shapes++
	}
	if shapes != 1 {
		return nil, fmt.Errorf("condition: object must be exactly one of comparison, and, or, not: %s", abbreviate(trimmed))
	}

	switch {
	case raw.And != nil:
		children, err := decodeChildren(raw.And)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case raw.Or != nil:
		children, err := decodeChildren(raw.Or)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case present(raw.Not):
		child, err := Decode(raw.Not)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	default:
		return decodeComparison(raw)
	}
}

func decodeChildren(items []json.RawMessage) ([]Condition, error) {
	children := make([]Condition, 0, len(items))
	for idx, item := range items {
		child, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("%w (child %d)", err, idx)
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeComparison(raw rawNode) (Condition, error) {
	if raw.Parameter == nil || strings.TrimSpace(*raw.Parameter) == "" {
		return nil, errors.New("condition: comparison requires a parameter")
	}
	if raw.Operator == nil {
		return nil, fmt.Errorf("condition: comparison on %q requires an operator", *raw.Parameter)
	}
	if !present(raw.Value) {
		return nil, fmt.Errorf("condition: comparison on %q requires a value", *raw.Parameter)
	}
	value, err := decodeScalar(raw.Value)
	if err != nil {
		return nil, fmt.Errorf("condition: comparison on %q: %w", *raw.Parameter, err)
	}
	return Comparison{
		Parameter: strings.TrimSpace(*raw.Parameter),
		Operator:  *raw.Operator,
		Value:     value,
	}, nil
}

// decodeScalar keeps numbers in their literal text so 2 and "2" compare equal.
func decodeScalar(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return "", errors.New("empty value")
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case bytes.Equal(trimmed, []byte("true")), bytes.Equal(trimmed, []byte("false")):
		return string(trimmed), nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", fmt.Errorf("value must be a string, number or boolean, got %s", abbreviate(trimmed))
		}
		return n.String(), nil
	}
}

func present(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func abbreviate(data []byte) string {
	const limit = 64
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}

// MarshalJSON encodes the comparison. Values that read as numbers are
// written as JSON numbers.
func (c Comparison) MarshalJSON() ([]byte, error) {
	var value any = c.Value
	if isNumberLiteral(c.Value) {
		value = json.Number(c.Value)
	}
	return json.Marshal(struct {
		Parameter string   `json:"parameter"`
		Operator  Operator `json:"operator"`
		Value     any      `json:"value"`
	}{c.Parameter, c.Operator, value})
}

func (a And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Condition{"and": nonNil(a.Children)})
}

func (o Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Condition{"or": nonNil(o.Children)})
}

func (n Not) MarshalJSON() ([]byte, error) {
	if n.Child == nil {
		return nil, errors.New("condition: not requires a child")
	}
	return json.Marshal(map[string]Condition{"not": n.Child})
}

func nonNil(children []Condition) []Condition {
	if children == nil {
		return []Condition{}
	}
	return children
}

func isNumberLiteral(raw string) bool {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return false
	}
	if !json.Valid([]byte(raw)) {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

// String renders cond in the expression syntax understood by
// condition/expr.Parse.
func String(cond Condition) string {
	var b strings.Builder
	write(&b, cond, false)
	return b.String()
}

func write(b *strings.Builder, cond Condition, nested bool) {
	switch node := cond.(type) {
	case nil:
		b.WriteString("true")
	case Comparison:
		writeParameter(b, node.Parameter)
		b.WriteString(" ")
		b.WriteString(node.Operator.Symbol())
		b.WriteString(" ")
		if isNumberLiteral(node.Value) {
			b.WriteString(node.Value)
		} else {
			b.WriteString(strconv.Quote(node.Value))
		}
	case And:
		writeJoined(b, node.Children, " && ", "true", nested)
	case Or:
		writeJoined(b, node.Children, " || ", "false", nested)
	case Not:
		b.WriteString("!(")
		write(b, node.Child, false)
		b.WriteString(")")
	}
}

func writeJoined(b *strings.Builder, children []Condition, sep, empty string, nested bool) {
	if len(children) == 0 {
		b.WriteString(empty)
		return
	}
	if len(children) == 1 {
		write(b, children[0], nested)
		return
	}
	if nested {
		b.WriteString("(")
	}
	for idx, child := range children {
		if idx > 0 {
			b.WriteString(sep)
		}
		write(b, child, true)
	}
	if nested {
		b.WriteString(")")
	}
}

// writeParameter writes id bare when it reads as a single word and in
// backticks otherwise.
func writeParameter(b *strings.Builder, id string) {
	if IsPlainIdentifier(id) {
		b.WriteString(id)
		return
	}
	b.WriteByte('`')
	b.WriteString(id)
	b.WriteByte('`')
}

// IsPlainIdentifier reports whether id can appear unquoted in the expression
// syntax: it is not empty, not a boolean or number, and holds no whitespace,
// operator, parenthesis or quote characters.
func IsPlainIdentifier(id string) bool {
	if id == "" || id == "true" || id == "false" {
		return false
	}
	switch id[0] {
	case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return false
	}
	return !strings.ContainsAny(id, " \t\n\r()!=<>&|\"'`")
}
