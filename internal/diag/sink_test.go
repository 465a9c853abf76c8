package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flylang/flyc/internal/ast"
)

func TestSinkHasErrorsAndCounts(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatalf("empty sink must not report errors")
	}
	s.Add(NewWarning(RES003, ast.NoSpan, "shadowed binding"))
	if s.HasErrors() {
		t.Fatalf("a warning must not count as an error")
	}
	s.Add(New(TC002, ast.NoSpan, "await outside async context"))
	if !s.HasErrors() {
		t.Fatalf("expected HasErrors after adding an error report")
	}
	if s.Count(SeverityWarning) != 1 || s.Count(SeverityError) != 1 {
		t.Fatalf("expected 1 warning and 1 error, got %d/%d", s.Count(SeverityWarning), s.Count(SeverityError))
	}
}

func TestSinkSortedOrdersByPosition(t *testing.T) {
	s := NewSink()
	late := ast.SourceSpan{File: "a.fly", StartLine: 10, StartCol: 1}
	early := ast.SourceSpan{File: "a.fly", StartLine: 2, StartCol: 1}
	s.Add(New(PAR001, late, "second"))
	s.Add(New(PAR001, early, "first"))
	sorted := s.Sorted()
	if sorted[0].Message != "first" || sorted[1].Message != "second" {
		t.Fatalf("expected position-sorted order, got %q then %q", sorted[0].Message, sorted[1].Message)
	}
}

func TestRenderPlainIncludesCodeAndHint(t *testing.T) {
	r := New(TRAIT005, ast.SourceSpan{File: "x.fly", StartLine: 3, StartCol: 5}, "missing method `area`").
		WithHint("implement `area` on the impl block")
	var buf bytes.Buffer
	Render(&buf, []*Report{r}, true)
	out := buf.String()
	if !strings.Contains(out, "TRAIT005") {
		t.Fatalf("expected code in output: %q", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Fatalf("expected hint line in output: %q", out)
	}
}

func TestAsReportRoundTrips(t *testing.T) {
	r := New(RES001, ast.NoSpan, "unresolved name `foo`")
	err := Wrap(r)
	got, ok := AsReport(err)
	if !ok || got != r {
		t.Fatalf("expected AsReport to recover the original report")
	}
}
