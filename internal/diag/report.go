package diag

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flylang/flyc/internal/ast"
)

// Report is the canonical structured diagnostic. Every phase builder
// returns *Report rather than a bare error, so callers that need the
// structure (the CLI's JSON output mode, a future LSP) can recover it
// through errors.As without re-parsing a message string.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity Severity       `json:"-"`
	Message  string         `json:"message"`
	Span     *ast.SourceSpan `json:"span,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Hint     string         `json:"hint,omitempty"`
}

const schemaVersion = "flylang.diag/v1"

// New builds an error-severity Report.
func New(code string, span ast.SourceSpan, message string) *Report {
	return &Report{
		Schema:   schemaVersion,
		Code:     code,
		Phase:    phaseOf(code),
		Severity: SeverityError,
		Message:  message,
		Span:     &span,
	}
}

// NewWarning builds a warning-severity Report.
func NewWarning(code string, span ast.SourceSpan, message string) *Report {
	r := New(code, span, message)
	r.Severity = SeverityWarning
	return r
}

// WithHint attaches a one-line suggested fix.
func (r *Report) WithHint(hint string) *Report {
	r.Hint = hint
	return r
}

// WithData attaches structured data, e.g. the candidate names for a
// RES002 ambiguous-import report.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ReportError adapts a Report to the error interface, preserving the
// structure through wrapping so callers can recover it with AsReport.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	if e.Rep.Span != nil {
		return fmt.Sprintf("%s: %s: %s", e.Rep.Span, e.Rep.Code, e.Rep.Message)
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// AsReport recovers a Report from an error chain, if one is present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// ToJSON renders the Report as deterministic JSON.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
