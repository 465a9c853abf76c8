package ast

import (
	"strings"
	"testing"
)

func span(sl, sc, el, ec uint32) SourceSpan {
	return SourceSpan{File: "t.fly", StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}
}

func TestSourceSpanContains(t *testing.T) {
	parent := span(1, 1, 10, 1)
	child := span(2, 1, 3, 5)
	if !parent.Contains(child) {
		t.Fatalf("expected parent to contain child")
	}
	if child.Contains(parent) {
		t.Fatalf("child must not contain parent")
	}
	other := SourceSpan{File: "other.fly", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	if parent.Contains(other) {
		t.Fatalf("spans in different files must never contain one another")
	}
}

func TestNodeIDsAreUniqueAndMonotonic(t *testing.T) {
	a := NewBase(span(1, 1, 1, 1))
	b := NewBase(span(1, 1, 1, 1))
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct NodeIDs, got %d twice", a.ID())
	}
	if b.ID() <= a.ID() {
		t.Fatalf("expected monotonically increasing NodeIDs")
	}
}

func TestUseDeclString(t *testing.T) {
	cases := []struct {
		u    *UseDecl
		want string
	}{
		{&UseDecl{ModulePath: DottedPath{"a", "b"}, Item: "C"}, "use a::b::C"},
		{&UseDecl{ModulePath: DottedPath{"a"}, Item: "C", Alias: "D"}, "use a::C as D"},
		{&UseDecl{ModulePath: DottedPath{"a"}, Items: []string{"X", "Y"}}, "use a::{X, Y}"},
		{&UseDecl{ModulePath: DottedPath{"a"}, Wildcard: true}, "use a::*"},
	}
	for _, c := range cases {
		if got := c.u.String(); got != c.want {
			t.Errorf("UseDecl.String() = %q, want %q", got, c.want)
		}
	}
}

func TestCompilationUnitRoundTripShape(t *testing.T) {
	cu := NewCompilationUnit(span(1, 1, 5, 1), DottedPath{"app", "main"}, nil, []TopDecl{
		&FunctionDecl{
			DeclCommon: DeclCommon{Base: NewBase(span(2, 1, 4, 1)), Name: "fly", Visibility: Public},
			Params:     nil,
			ReturnType: NewPrimitiveType(span(2, 1, 2, 1), UnitKind),
			Body:       &Block{ExprBase: ExprBase{NewBase(span(2, 10, 4, 1))}},
		},
	})
	out := Print(cu)
	if !strings.Contains(out, "module app::main") {
		t.Fatalf("printed output missing module header: %q", out)
	}
	if !strings.Contains(out, "pub fn fly()") {
		t.Fatalf("printed output missing function signature: %q", out)
	}
}

func TestDeclCommonSatisfiesTopDecl(t *testing.T) {
	var decls []TopDecl
	decls = append(decls,
		&ClassDecl{DeclCommon: DeclCommon{Name: "Foo"}},
		&StructDecl{DeclCommon: DeclCommon{Name: "Bar", Visibility: Public}},
		&EnumDecl{DeclCommon: DeclCommon{Name: "Color"}},
	)
	for _, d := range decls {
		if d.DeclName() == "" {
			t.Errorf("expected non-empty DeclName for %T", d)
		}
	}
	if decls[1].DeclVisibility() != Public {
		t.Errorf("expected StructDecl Bar to be public")
	}
}
