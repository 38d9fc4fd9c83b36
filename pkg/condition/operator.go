package condition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator is the comparison applied by a Comparison. The ordinal values
// match the numeric enum used by extension documents.
type Operator int

const (
	OpEqual Operator = iota
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
)

var operatorNames = [...]string{
	OpEqual:        "EQ",
	OpLess:         "LESS",
	OpGreater:      "GREATER",
	OpLessEqual:    "LESS_EQUAL",
	OpGreaterEqual: "GREATER_EQUAL",
}

// String returns the canonical operator name.
func (o Operator) String() string {
	if o.Valid() {
		return operatorNames[o]
	}
	return "Operator(" + strconv.Itoa(int(o)) + ")"
}

// Symbol returns the operator as written in the expression syntax.
func (o Operator) Symbol() string {
	switch o {
	case OpEqual:
		return "=="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessEqual:
		return "<="
	case OpGreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Valid reports whether o is one of the known operators.
func (o Operator) Valid() bool {
	return o >= OpEqual && o <= OpGreaterEqual
}

// ParseOperator accepts an operator name (case-insensitive, GREATER_EQ is an
// alias of GREATER_EQUAL), an expression symbol, or the numeric ordinal.
func ParseOperator(raw string) (Operator, error) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "EQ", "==", "=":
		return OpEqual, nil
	case "LESS", "<":
		return OpLess, nil
	case "GREATER", ">":
		return OpGreater, nil
	case "LESS_EQUAL", "LESS_EQ", "<=":
		return OpLessEqual, nil
	case "GREATER_EQUAL", "GREATER_EQ", ">=":
		return OpGreaterEqual, nil
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		if op := Operator(n); op.Valid() {
			return op, nil
		}
	}
	return 0, fmt.Errorf("condition: unknown operator %q", raw)
}

// MarshalJSON encodes the operator by name.
func (o Operator) MarshalJSON() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("condition: cannot marshal invalid operator %d", int(o))
	}
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts either the operator name or its ordinal.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("condition: decode operator: %w", err)
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("condition: operator must be a string or number, got %s", string(data))
	}
	op, err := ParseOperator(text)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (o *Operator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("condition: operator must be a scalar (line %d)", node.Line)
	}
	op, err := ParseOperator(node.Value)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
