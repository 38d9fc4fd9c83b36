package condition

import (
	"strconv"
	"strings"
)

// Values is the candidate value assignment a condition is evaluated against.
// An absent key means the parameter has no value.
type Values = map[string]string

// Condition is a boolean expression over other parameters' candidate values.
// The set of implementations is closed: Comparison, And, Or and Not.
type Condition interface {
	isCondition()
}

// Comparison compares the current value of Parameter with Value.
type Comparison struct {
	Parameter string
	Operator  Operator
	Value     string
}

// And holds when every child holds. An empty And is true.
type And struct {
	Children []Condition
}

// Or holds when at least one child holds. An empty Or is false.
type Or struct {
	Children []Condition
}

// Not negates its child.
type Not struct {
	Child Condition
}

func (Comparison) isCondition() {}
func (And) isCondition()        {}
func (Or) isCondition()         {}
func (Not) isCondition()        {}

// Evaluate reports whether cond holds for values. A nil condition always
// holds. Comparisons against parameters without a value are false.
func Evaluate(cond Condition, values Values) bool {
	switch node := cond.(type) {
	case nil:
		return true
	case Comparison:
		return node.eval(values)
	case And:
		return evalAnd(node.Children, values)
	case Or:
		return evalOr(node.Children, values)
	case Not:
		return !Evaluate(node.Child, values)
	default:
		return false
	}
}

func evalAnd(children []Condition, values Values) bool {
	for _, child := range children {
		if !Evaluate(child, values) {
			return false
		}
	}
	return true
}

func evalOr(children []Condition, values Values) bool {
	for _, child := range children {
		if Evaluate(child, values) {
			return true
		}
	}
	return false
}

func (c Comparison) eval(values Values) bool {
	got, ok := values[c.Parameter]
	if !ok {
		return false
	}

	if c.Operator == OpEqual {
		if got == c.Value {
			return true
		}
		left, lok := parseNumber(got)
		right, rok := parseNumber(c.Value)
		return lok && rok && left == right
	}

	left, ok := parseNumber(got)
	if !ok {
		return false
	}
	right, ok := parseNumber(c.Value)
	if !ok {
		return false
	}

	switch c.Operator {
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}

func parseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// References returns the parameter ids referenced by cond in first-seen
// order without duplicates.
func References(cond Condition) []string {
	var out []string
	seen := make(map[string]struct{})
	walk(cond, func(c Comparison) {
		if _, ok := seen[c.Parameter]; ok {
			return
		}
		seen[c.Parameter] = struct{}{}
		out = append(out, c.Parameter)
	})
	return out
}

func walk(cond Condition, visit func(Comparison)) {
	switch node := cond.(type) {
	case Comparison:
		visit(node)
	case And:
		for _, child := range node.Children {
			walk(child, visit)
		}
	case Or:
		for _, child := range node.Children {
			walk(child, visit)
		}
	case Not:
		walk(node.Child, visit)
	}
}
