package condition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluateComparison(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		cond   Comparison
		values Values
		want   bool
	}{
		{name: "eq string", cond: Comparison{"direction", OpEqual, "Import"}, values: Values{"direction": "Import"}, want: true},
		{name: "eq string mismatch", cond: Comparison{"direction", OpEqual, "Import"}, values: Values{"direction": "Export"}},
		{name: "eq numeric fallback", cond: Comparison{"amount", OpEqual, "2"}, values: Values{"amount": "2.0"}, want: true},
		{name: "eq non numeric", cond: Comparison{"amount", OpEqual, "2"}, values: Values{"amount": "two"}},
		{name: "eq absent", cond: Comparison{"direction", OpEqual, ""}, values: Values{}},
		{name: "eq empty present", cond: Comparison{"direction", OpEqual, ""}, values: Values{"direction": ""}, want: true},
		{name: "less", cond: Comparison{"amount", OpLess, "2"}, values: Values{"amount": "1"}, want: true},
		{name: "less equal boundary", cond: Comparison{"amount", OpLess, "2"}, values: Values{"amount": "2"}},
		{name: "less_equal", cond: Comparison{"amount", OpLessEqual, "2"}, values: Values{"amount": " 2 "}, want: true},
		{name: "greater", cond: Comparison{"amount", OpGreater, "2"}, values: Values{"amount": "2.5"}, want: true},
		{name: "greater_equal", cond: Comparison{"amount", OpGreaterEqual, "-1"}, values: Values{"amount": "-1"}, want: true},
		{name: "numeric op unparsable value", cond: Comparison{"amount", OpLess, "2"}, values: Values{"amount": "abc"}},
		{name: "numeric op unparsable literal", cond: Comparison{"amount", OpLess, "abc"}, values: Values{"amount": "1"}},
		{name: "numeric op absent", cond: Comparison{"amount", OpGreater, "0"}, values: nil},
		{name: "unknown operator", cond: Comparison{"amount", Operator(42), "1"}, values: Values{"amount": "1"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Evaluate(tc.cond, tc.values); got != tc.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", String(tc.cond), got, tc.want)
			}
		})
	}
}

func TestEvaluateComposition(t *testing.T) {
	t.Parallel()

	importSmall := And{Children: []Condition{
		Comparison{Parameter: "direction", Operator: OpEqual, Value: "Import"},
		Comparison{Parameter: "amount", Operator: OpLess, Value: "2"},
	}}

	cases := []struct {
		name   string
		cond   Condition
		values Values
		want   bool
	}{
		{name: "nil holds", cond: nil, want: true},
		{name: "empty and is true", cond: And{}, want: true},
		{name: "empty or is false", cond: Or{}},
		{name: "and all true", cond: importSmall, values: Values{"direction": "Import", "amount": "1"}, want: true},
		{name: "and one false", cond: importSmall, values: Values{"direction": "Import", "amount": "3"}},
		{name: "and gating absent", cond: importSmall, values: Values{"amount": "1"}},
		{name: "or any true", cond: Or{Children: []Condition{
			Comparison{Parameter: "a", Operator: OpEqual, Value: "x"},
			Comparison{Parameter: "b", Operator: OpEqual, Value: "y"},
		}}, values: Values{"b": "y"}, want: true},
		{name: "not", cond: Not{Child: Comparison{Parameter: "a", Operator: OpEqual, Value: "x"}}, values: Values{"a": "z"}, want: true},
		{name: "not of absent comparison", cond: Not{Child: Comparison{Parameter: "a", Operator: OpEqual, Value: "x"}}, want: true},
		{name: "self reference", cond: Comparison{Parameter: "self", Operator: OpEqual, Value: "on"}, values: Values{"self": "on"}, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Evaluate(tc.cond, tc.values); got != tc.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", String(tc.cond), got, tc.want)
			}
		})
	}
}

func TestEvaluateDoesNotMutateValues(t *testing.T) {
	t.Parallel()

	values := Values{"direction": "Import"}
	cond := And{Children: []Condition{
		Comparison{Parameter: "direction", Operator: OpEqual, Value: "Import"},
		Comparison{Parameter: "missing", Operator: OpLess, Value: "1"},
	}}

	first := Evaluate(cond, values)
	second := Evaluate(cond, values)
	if first != second {
		t.Fatalf("evaluation not repeatable: %v vs %v", first, second)
	}
	if diff := cmp.Diff(Values{"direction": "Import"}, values); diff != "" {
		t.Fatalf("values mutated (-want +got):\n%s", diff)
	}
}

func TestReferences(t *testing.T) {
	t.Parallel()

	cond := Or{Children: []Condition{
		And{Children: []Condition{
			Comparison{Parameter: "direction", Operator: OpEqual, Value: "Import"},
			Comparison{Parameter: "amount", Operator: OpLess, Value: "2"},
		}},
		Not{Child: Comparison{Parameter: "direction", Operator: OpEqual, Value: "Export"}},
		Comparison{Parameter: "mode", Operator: OpEqual, Value: "x"},
	}}

	want := []string{"direction", "amount", "mode"}
	if diff := cmp.Diff(want, References(cond)); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
	if got := References(nil); got != nil {
		t.Fatalf("expected no references for nil condition, got %v", got)
	}
}
