package conformance

import (
	"fmt"
	"strings"
)

// Severity ranks a report entry.
type Severity string

const (
	SeverityDebug   Severity = "debug"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Code classifies a violation. Framing entries carry no code.
type Code string

const (
	CodeUnknownEventClass    Code = "unknown_event_class"
	CodeUnknownField         Code = "unknown_field"
	CodeMissingRequiredField Code = "missing_required_field"
	CodeShapeViolation       Code = "shape_violation"
	CodeUnresolvedObjectType Code = "unresolved_object_type"
	CodeMalformedCandidate   Code = "malformed_candidate"
	CodeInternal             Code = "internal_error"
)

// Entry is one line of the report log.
type Entry struct {
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
	Code     Code     `json:"code,omitempty" yaml:"code,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
}

// OutputKey is the key under which the checked candidate is echoed in Report.Output.
const OutputKey = "transformer_output"

// Report is the outcome of one validation run. Entries are append-only and
// Passed is decided once, after every check has run.
type Report struct {
	Input   string         `json:"input" yaml:"input"`
	Output  map[string]any `json:"output" yaml:"output"`
	Entries []Entry        `json:"report_entries" yaml:"report_entries"`
	Passed  bool           `json:"passed" yaml:"passed"`

	// Err is set when the run could not start, e.g. the event class is unknown.
	Err error `json:"-" yaml:"-"`
}

func newReport(input string, candidate any) *Report {
	return &Report{
		Input:   input,
		Output:  map[string]any{OutputKey: candidate},
		Entries: []Entry{},
	}
}

func (r *Report) info(format string, args ...any) {
	r.Entries = append(r.Entries, Entry{Message: fmt.Sprintf(format, args...), Severity: SeverityInfo})
}

func (r *Report) violation(sev Severity, code Code, path, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Code:     code,
		Path:     path,
	})
}

// Failures returns the entries that cite a violation.
func (r *Report) Failures() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Code != "" {
			out = append(out, e)
		}
	}
	return out
}

// Summary is a single-line description of the failures, suitable for an
// error message.
func (r *Report) Summary() string {
	if r.Passed {
		return "passed"
	}
	failures := r.Failures()
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%d violation(s): %s", len(failures), strings.Join(msgs, "; "))
}
