package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-extparams/pkg/condition"
)

func TestParseComparisons(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  condition.Condition
	}{
		{input: `direction == "Import"`, want: condition.Comparison{Parameter: "direction", Operator: condition.OpEqual, Value: "Import"}},
		{input: `direction == 'Im"port'`, want: condition.Comparison{Parameter: "direction", Operator: condition.OpEqual, Value: `Im"port`}},
		{input: `amount < 2`, want: condition.Comparison{Parameter: "amount", Operator: condition.OpLess, Value: "2"}},
		{input: `amount<=2.5`, want: condition.Comparison{Parameter: "amount", Operator: condition.OpLessEqual, Value: "2.5"}},
		{input: `amount > -1`, want: condition.Comparison{Parameter: "amount", Operator: condition.OpGreater, Value: "-1"}},
		{input: `amount >= 0`, want: condition.Comparison{Parameter: "amount", Operator: condition.OpGreaterEqual, Value: "0"}},
		{input: `mode == fast`, want: condition.Comparison{Parameter: "mode", Operator: condition.OpEqual, Value: "fast"}},
		{input: `enabled == true`, want: condition.Comparison{Parameter: "enabled", Operator: condition.OpEqual, Value: "true"}},
		{input: `mode != "fast"`, want: condition.Not{Child: condition.Comparison{Parameter: "mode", Operator: condition.OpEqual, Value: "fast"}}},
		{input: `true`, want: condition.And{}},
		{input: `false`, want: condition.Or{}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

func TestParseComposition(t *testing.T) {
	t.Parallel()

	got, err := Parse(`direction == "Import" && amount < 2 || !(mode == "x") && a == 1 && b == 2`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := condition.Or{Children: []condition.Condition{
		condition.And{Children: []condition.Condition{
			condition.Comparison{Parameter: "direction", Operator: condition.OpEqual, Value: "Import"},
			condition.Comparison{Parameter: "amount", Operator: condition.OpLess, Value: "2"},
		}},
		condition.And{Children: []condition.Condition{
			condition.Not{Child: condition.Comparison{Parameter: "mode", Operator: condition.OpEqual, Value: "x"}},
			condition.Comparison{Parameter: "a", Operator: condition.OpEqual, Value: "1"},
			condition.Comparison{Parameter: "b", Operator: condition.OpEqual, Value: "2"},
		}},
	}}
	if diff := cmp.Diff(condition.Condition(want), got); diff != "" {
		t.Fatalf("composition mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`direction == "Import" && amount < 2`,
		`(a >= 1 && b == "x y") || !(c == "true")`,
		`!(a == 1 || b == 2) && c <= 3`,
		"`1st` == 1 && `a=b` < 2",
		"`my id` == \"x\" || `true` == \"false\"",
	}
	for _, input := range inputs {
		cond, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", input, err)
		}
		rendered := condition.String(cond)
		if rendered != input {
			t.Fatalf("String(Parse(%q)) = %q", input, rendered)
		}
		again, err := Parse(rendered)
		if err != nil {
			t.Fatalf("reparse %q: %v", rendered, err)
		}
		if diff := cmp.Diff(cond, again); diff != "" {
			t.Fatalf("reparse mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	inputs := []string{
		``,
		`   `,
		`amount`,
		`amount = 2`,
		`amount < `,
		`a == 1 &`,
		`a == 1 | b == 2`,
		`(a == 1`,
		`a == 1)`,
		`== 1`,
		`a == "open`,
		`a == 1 b == 2`,
		`a == 1.2.3`,
		`a == (`,
		"`open == 1",
		"`` == 1",
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParsedConditionEvaluates(t *testing.T) {
	t.Parallel()

	cond := MustParse(`direction == "Import" && amount < 2`)
	if !condition.Evaluate(cond, condition.Values{"direction": "Import", "amount": "1"}) {
		t.Fatalf("expected condition to hold")
	}
	if condition.Evaluate(cond, condition.Values{"amount": "1"}) {
		t.Fatalf("expected condition to fail without direction")
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse(`a ==`)
}

func TestParseQuotedParameter(t *testing.T) {
	t.Parallel()

	got, err := Parse("`1st choice` == \"a\" && `x(y)` >= 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := condition.And{Children: []condition.Condition{
		condition.Comparison{Parameter: "1st choice", Operator: condition.OpEqual, Value: "a"},
		condition.Comparison{Parameter: "x(y)", Operator: condition.OpGreaterEqual, Value: "2"},
	}}
	if diff := cmp.Diff(condition.Condition(want), got); diff != "" {
		t.Fatalf("quoted parameter mismatch (-want +got):\n%s", diff)
	}
}
