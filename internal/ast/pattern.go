package ast

import (
	"fmt"
	"strings"
)

// Pattern is the closed family of pattern nodes.
type Pattern interface {
	Node
	patternNode()
}

type PatternBase struct{ Base }

func (PatternBase) patternNode() {}

// LiteralPattern matches an exact scalar value.
type LiteralPattern struct {
	PatternBase
	Kind  LiteralKind
	Value interface{}
}

func (l *LiteralPattern) String() string { return fmt.Sprintf("%v", l.Value) }

// VariablePattern binds the scrutinee (or a destructured part of it) to
// a name. Typed/untyped and mutable/immutable.
type VariablePattern struct {
	PatternBase
	Name    string
	Type    Type // optional type annotation
	Mutable bool
}

func (v *VariablePattern) String() string {
	if v.Mutable {
		return "mut " + v.Name
	}
	return v.Name
}

// WildcardPattern: `_`.
type WildcardPattern struct{ PatternBase }

func (w *WildcardPattern) String() string { return "_" }

// FieldPattern is one `name: pattern` inside a StructPattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// StructPattern: `Type { field: pat, ... }`, optionally with a `..` rest
// marker.
type StructPattern struct {
	PatternBase
	Type   Type // may be nil for an untyped record pattern
	Fields []FieldPattern
	Rest   bool
}

func (s *StructPattern) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Pattern)
	}
	if s.Rest {
		parts = append(parts, "..")
	}
	return fmt.Sprintf("%s { %s }", typeOrEmpty(s.Type), strings.Join(parts, ", "))
}

func typeOrEmpty(t Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// TupleStructPattern: `Variant(p1, p2, ...)` — matches a sum-type
// variant or positional-field constructor.
type TupleStructPattern struct {
	PatternBase
	Name     string
	Elements []Pattern
}

func (t *TupleStructPattern) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}

// TuplePattern: `(p1, p2, ...)`.
type TuplePattern struct {
	PatternBase
	Elements []Pattern
}

func (t *TuplePattern) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// ArrayPattern: `[p1, p2, ...rest]` with an optional rest binding.
type ArrayPattern struct {
	PatternBase
	Elements []Pattern
	Rest     *VariablePattern // nil if no rest
}

func (a *ArrayPattern) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	if a.Rest != nil {
		parts = append(parts, "..."+a.Rest.Name)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// RangePattern: `lo..hi` or `lo..=hi` as a pattern.
type RangePattern struct {
	PatternBase
	Lo, Hi    Expr
	Inclusive bool
}

func (r *RangePattern) String() string {
	if r.Inclusive {
		return fmt.Sprintf("%s..=%s", r.Lo, r.Hi)
	}
	return fmt.Sprintf("%s..%s", r.Lo, r.Hi)
}

// OrPattern: `p1 | p2 | ...`.
type OrPattern struct {
	PatternBase
	Alternatives []Pattern
}

func (o *OrPattern) String() string {
	parts := make([]string, len(o.Alternatives))
	for i, a := range o.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

// GuardPattern attaches a `when expr` clause to a pattern. Guarded
// patterns are non-exhaustive for subsumption purposes.
type GuardPattern struct {
	PatternBase
	Inner Pattern
	Guard Expr
}

func (g *GuardPattern) String() string { return fmt.Sprintf("%s when %s", g.Inner, g.Guard) }
