package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorCyan   = color.New(color.FgCyan).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

// Sink accumulates diagnostics emitted across every compiler phase. A
// single Sink is threaded through lexing, parsing, resolution, semantic
// analysis, and codegen so that a single compile can surface errors from
// more than one phase at once.
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// Add records a diagnostic.
func (s *Sink) Add(r *Report) { s.reports = append(s.reports, r) }

// Reports returns every recorded diagnostic in emission order.
func (s *Sink) Reports() []*Report { return s.reports }

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given severity.
func (s *Sink) Count(sev Severity) int {
	n := 0
	for _, r := range s.reports {
		if r.Severity == sev {
			n++
		}
	}
	return n
}

// Sorted returns the recorded diagnostics ordered by source position,
// file first, so multi-file output is stable and deterministic.
func (s *Sink) Sorted() []*Report {
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Span == nil || b.Span == nil {
			return b.Span != nil
		}
		if a.Span.File != b.Span.File {
			return a.Span.File < b.Span.File
		}
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		return a.Span.StartCol < b.Span.StartCol
	})
	return out
}

// Render writes one line per diagnostic, with an indented hint line
// where present. Colored output uses red/yellow/cyan/bold via
// fatih/color; Plain disables color for non-TTY output (CI logs, piped
// output).
func Render(w io.Writer, reports []*Report, plain bool) {
	for _, r := range reports {
		sevLabel := r.Severity.String()
		loc := "?"
		if r.Span != nil {
			loc = r.Span.String()
		}
		if plain {
			fmt.Fprintf(w, "%s: %s: [%s] %s\n", loc, sevLabel, r.Code, r.Message)
		} else {
			label := colorRed(sevLabel)
			if r.Severity == SeverityWarning {
				label = colorYellow(sevLabel)
			}
			fmt.Fprintf(w, "%s: %s: %s %s\n", colorBold(loc), label, colorCyan("["+r.Code+"]"), r.Message)
		}
		if r.Hint != "" {
			fmt.Fprintf(w, "    hint: %s\n", r.Hint)
		}
	}
}
