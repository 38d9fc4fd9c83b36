package validation

import "strings"

// Kind classifies a validation finding.
type Kind string

const (
	KindMissingRequired   Kind = "missing_required"
	KindInvalidFormat     Kind = "invalid_format"
	KindInvalidOption     Kind = "invalid_option"
	KindInvalidBoolean    Kind = "invalid_boolean"
	KindUnsupportedType   Kind = "unsupported_type"
	KindDanglingReference Kind = "dangling_reference"
)

// Finding is one failed check attributed to a parameter.
type Finding struct {
	Parameter string `json:"parameter"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
}

// Result is the verdict handed back to the host. Message is empty on success
// and otherwise holds one "<name>: <message>" line per finding in definition
// order. Findings carries the same information in structured form.
type Result struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Findings []Finding `json:"-"`
}

// Kind returns the kind of the first finding, or "" for a successful result.
func (r Result) Kind() Kind {
	if len(r.Findings) == 0 {
		return ""
	}
	return r.Findings[0].Kind
}

func success() Result {
	return Result{Success: true}
}

func failure(f finding) Result {
	return Result{
		Success:  false,
		Message:  f.message,
		Findings: []Finding{{Kind: f.kind, Message: f.message}},
	}
}

type finding struct {
	kind    Kind
	message string
}

func aggregate(findings []Finding) Result {
	if len(findings) == 0 {
		return success()
	}
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, f.Name+": "+f.Message)
	}
	return Result{
		Success:  false,
		Message:  strings.Join(lines, "\n"),
		Findings: findings,
	}
}
