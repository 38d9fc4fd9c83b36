package parameter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-extparams/pkg/condition"
)

// Issue is a structural problem found in a definition list.
type Issue struct {
	Parameter string `json:"parameter"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	if i.Parameter == "" {
		return i.Message
	}
	return i.Parameter + ": " + i.Message
}

// Lint checks a definition list for definition-time errors: missing or
// duplicate ids, ids containing a backtick (they cannot be quoted in the
// expression syntax), missing names, selects without options, malformed
// regexes, unknown types and conditions referencing parameters outside the
// list.
// Issues are returned in definition order.
func Lint(defs []Definition) []Issue {
	var issues []Issue
	add := func(id, format string, args ...any) {
		issues = append(issues, Issue{Parameter: id, Message: fmt.Sprintf(format, args...)})
	}

	ids := make(map[string]int, len(defs))
	for _, def := range defs {
		if def.ID != "" {
			ids[def.ID]++
		}
	}

	reported := make(map[string]bool)
	for idx, def := range defs {
		id := def.ID
		if strings.TrimSpace(id) == "" {
			add(fmt.Sprintf("#%d", idx), "id is required")
		} else if ids[id] > 1 && !reported[id] {
			reported[id] = true
			add(id, "id is defined %d times", ids[id])
		}
		if strings.ContainsRune(id, '`') {
			add(id, "id must not contain a backtick")
		}
		if strings.TrimSpace(def.Name) == "" {
			add(id, "name is required")
		}

		switch spec := def.Spec.(type) {
		case nil:
			add(id, "type is required")
		case StringSpec:
			if spec.Regex != "" {
				if _, err := CompileRegex(spec.Regex); err != nil {
					add(id, "regex %q is invalid: %v", spec.Regex, err)
				}
			}
		case SelectSpec:
			if len(spec.Options) == 0 {
				add(id, "select parameter has no options")
			}
			seen := make(map[string]struct{}, len(spec.Options))
			for _, opt := range spec.Options {
				if _, dup := seen[opt.ID]; dup {
					add(id, "option %q is defined more than once", opt.ID)
				}
				seen[opt.ID] = struct{}{}
			}
		case UnknownSpec:
			add(id, "unsupported type %q", spec.Tag)
		}

		for _, ref := range condition.References(def.Condition) {
			if _, ok := ids[ref]; !ok {
				add(id, "condition references unknown parameter %q", ref)
			}
		}
	}
	return issues
}

// DanglingReferences returns the parameters referenced by def's condition
// that are not defined in defs.
func DanglingReferences(def Definition, defs []Definition) []string {
	refs := condition.References(def.Condition)
	if len(refs) == 0 {
		return nil
	}
	var out []string
	for _, ref := range refs {
		if _, ok := Find(defs, ref); !ok {
			out = append(out, ref)
		}
	}
	return out
}
