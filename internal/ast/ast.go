// Package ast defines Flylang's typed, location-tagged abstract syntax
// tree. The tree is a closed family of tagged variants built once by the
// AST builder and never mutated afterward: downstream phases
// attach data in side tables keyed by node identity, not on the nodes
// themselves.
package ast

import (
	"fmt"
	"strings"
)

// SourceSpan locates a range of source text. Every node owns one.
type SourceSpan struct {
	File      string
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
}

// NoSpan is the canonical sentinel for an unknown span.
var NoSpan = SourceSpan{}

func (s SourceSpan) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
}

// Contains reports whether s fully contains other, used by the span
// coverage invariant: every node's span lies within its
// parent's.
func (s SourceSpan) Contains(other SourceSpan) bool {
	if s.File != other.File {
		return false
	}
	if other.StartLine < s.StartLine || (other.StartLine == s.StartLine && other.StartCol < s.StartCol) {
		return false
	}
	if other.EndLine > s.EndLine || (other.EndLine == s.EndLine && other.EndCol > s.EndCol) {
		return false
	}
	return true
}

// NodeID is a stable integer identity for a node, used by side tables
// (type-of-node, symbol-of-node, slot-of-node) instead of mutating the
// node or keying off of pointer identity plus a generation counter.
type NodeID uint64

// Node is the base interface every AST node satisfies.
type Node interface {
	Span() SourceSpan
	ID() NodeID
	String() string
}

// idGen hands out NodeIDs as nodes are constructed by the builder.
// Deterministic and monotonic: given the same input, the same program
// always receives the same IDs, which the determinism property
// relies on indirectly (stable codegen ordering).
type idGen struct{ next NodeID }

func (g *idGen) gen() NodeID {
	g.next++
	return g.next
}

// IDGen is the package-level allocator used by the AST builder.
var IDGen = &idGen{}

// base is embedded by every concrete node to provide Span/ID plumbing.
type Base struct {
	span SourceSpan
	id   NodeID
}

func NewBase(span SourceSpan) Base { return Base{span: span, id: IDGen.gen()} }

func (b Base) Span() SourceSpan { return b.span }
func (b Base) ID() NodeID       { return b.id }

// DottedPath is a module path like `a::b::c`.
type DottedPath []string

func (p DottedPath) String() string { return strings.Join(p, "::") }

// Visibility is default-private.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// Annotation is a `@Name(args...)` decoration on a declaration.
type Annotation struct {
	Name string
	Args []string
}

// CompilationUnit is the AST root. Module declaration is mandatory;
// its absence is a hard error raised by the AST builder.
type CompilationUnit struct {
	Base
	ModulePath DottedPath
	Uses       []*UseDecl
	Decls      []TopDecl
}

func (c *CompilationUnit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", c.ModulePath)
	for _, u := range c.Uses {
		b.WriteString(u.String())
		b.WriteByte('\n')
	}
	for _, d := range c.Decls {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func NewCompilationUnit(span SourceSpan, modulePath DottedPath, uses []*UseDecl, decls []TopDecl) *CompilationUnit {
	return &CompilationUnit{Base: NewBase(span), ModulePath: modulePath, Uses: uses, Decls: decls}
}

// UseDecl is a `use` declaration: a single item (optionally aliased), a
// brace-enclosed item list, or a wildcard.
type UseDecl struct {
	Base
	ModulePath DottedPath
	Item       string   // single-item form; empty if Items or Wildcard is used
	Alias      string   // optional alias for Item
	Items      []string // brace-enclosed list form
	Wildcard   bool
}

func (u *UseDecl) String() string {
	switch {
	case u.Wildcard:
		return fmt.Sprintf("use %s::*", u.ModulePath)
	case len(u.Items) > 0:
		return fmt.Sprintf("use %s::{%s}", u.ModulePath, strings.Join(u.Items, ", "))
	case u.Alias != "":
		return fmt.Sprintf("use %s::%s as %s", u.ModulePath, u.Item, u.Alias)
	default:
		return fmt.Sprintf("use %s::%s", u.ModulePath, u.Item)
	}
}

// TopDecl is any top-level (or nested) declaration.
type TopDecl interface {
	Node
	topDeclNode()
	DeclName() string
	DeclVisibility() Visibility
}

// DeclCommon is embedded by every TopDecl variant.
type DeclCommon struct {
	Base
	Name        string
	Visibility  Visibility
	TypeParams  []*TypeParamDecl
	Annotations []Annotation
	DocComment  string
	Nested      []TopDecl // nested classes/interfaces/enums/sparks/structs/data
}

func (d DeclCommon) topDeclNode()              {}
func (d DeclCommon) DeclName() string          { return d.Name }
func (d DeclCommon) DeclVisibility() Visibility { return d.Visibility }

// TypeParamDecl declares a generic type parameter with optional bounds.
type TypeParamDecl struct {
	Name   string
	Bounds []Type
}

// ClassDecl: `class Name(Super, Iface1, Iface2) { ... }`.
type ClassDecl struct {
	DeclCommon
	Superclass Type
	Interfaces []Type
	Fields     []*FieldDecl
	Methods    []*FunctionDecl
}

func (c *ClassDecl) String() string { return fmt.Sprintf("class %s", c.Name) }

// InterfaceDecl: `interface Name { fn foo() -> T; ... }`.
type InterfaceDecl struct {
	DeclCommon
	Supers  []Type
	Methods []*FunctionDecl
}

func (i *InterfaceDecl) String() string { return fmt.Sprintf("interface %s", i.Name) }

// EnumDecl: a closed set of nullary/parameterized cases, distinct from
// Data in that enum cases carry no field names, only positional types.
type EnumDecl struct {
	DeclCommon
	Cases []*EnumCase
}

type EnumCase struct {
	Name   string
	Fields []Type
}

func (e *EnumDecl) String() string { return fmt.Sprintf("enum %s", e.Name) }

// DataDecl: a sum type with one named variant per alternative, each
// carrying named fields (a tagged union of named variants).
type DataDecl struct {
	DeclCommon
	Variants []*DataVariant
}

type DataVariant struct {
	Name   string
	Fields []*FieldDecl
}

func (d *DataDecl) String() string { return fmt.Sprintf("data %s", d.Name) }

// StructDecl: a plain product type with named fields.
type StructDecl struct {
	DeclCommon
	Fields []*FieldDecl
}

func (s *StructDecl) String() string { return fmt.Sprintf("struct %s", s.Name) }

// SparkDecl: an immutable record with validation/hooks/computed props.
type SparkDecl struct {
	DeclCommon
	Fields       []*FieldDecl
	Validation   Expr // optional post-construction validation block
	BeforeUpdate Expr // optional `before update` hook
	AfterUpdate  Expr // optional `after update` hook
	Computed     []*FunctionDecl
	Methods      []*FunctionDecl
}

func (s *SparkDecl) String() string { return fmt.Sprintf("spark %s", s.Name) }

// TraitDecl / ProtocolDecl: a named set of required method signatures.
// Protocol is kept distinct from Trait but shares
// shape; Flylang's protocols additionally allow default method bodies on
// the same footing as traits.
type TraitDecl struct {
	DeclCommon
	Methods []*FunctionDecl // signatures, Body nil unless a default impl
}

func (t *TraitDecl) String() string { return fmt.Sprintf("trait %s", t.Name) }

type ProtocolDecl struct {
	DeclCommon
	Methods []*FunctionDecl
}

func (p *ProtocolDecl) String() string { return fmt.Sprintf("protocol %s", p.Name) }

// ImplDecl: `impl Trait for Type { ... }` or inherent `impl Type { ... }`
// when Trait is empty.
type ImplDecl struct {
	DeclCommon
	Trait   Type // nil for inherent impls
	Target  Type
	Methods []*FunctionDecl
}

func (i *ImplDecl) String() string {
	if i.Trait != nil {
		return fmt.Sprintf("impl %s for %s", i.Trait, i.Target)
	}
	return fmt.Sprintf("impl %s", i.Target)
}

// TypeAliasDecl: `type Name = Type`.
type TypeAliasDecl struct {
	DeclCommon
	Target Type
}

func (t *TypeAliasDecl) String() string { return fmt.Sprintf("type %s = %s", t.Name, t.Target) }

// ExtendDecl adds methods to an existing type from outside its
// declaration, Flylang's extension-method facility.
type ExtendDecl struct {
	DeclCommon
	Target  Type
	Methods []*FunctionDecl
}

func (e *ExtendDecl) String() string { return fmt.Sprintf("extend %s", e.Target) }

// ContextDecl / SupervisorDecl / FlowDecl: source-level concurrency
// constructs whose runtime semantics belong to the external runtime;
// the core preserves their declared structure only.
type ContextDecl struct {
	DeclCommon
	Fields  []*FieldDecl
	Methods []*FunctionDecl
}

func (c *ContextDecl) String() string { return fmt.Sprintf("context %s", c.Name) }

type SupervisorDecl struct {
	DeclCommon
	Children []Type
	Methods  []*FunctionDecl
}

func (s *SupervisorDecl) String() string { return fmt.Sprintf("supervisor %s", s.Name) }

type FlowDecl struct {
	DeclCommon
	Stages  []*FunctionDecl
	Methods []*FunctionDecl
}

func (f *FlowDecl) String() string { return fmt.Sprintf("flow %s", f.Name) }

// MacroDecl is preserved only at the grammar level.
type MacroDecl struct {
	DeclCommon
	Params []*Param
	Body   Expr
}

func (m *MacroDecl) String() string { return fmt.Sprintf("macro %s", m.Name) }

// ExceptionDecl: `exception Name(Super) { fields }`.
type ExceptionDecl struct {
	DeclCommon
	Superclass Type // defaults to the root exception type if nil
	Fields     []*FieldDecl
}

func (e *ExceptionDecl) String() string { return fmt.Sprintf("exception %s", e.Name) }

// FunctionDecl is a top-level function or a method nested in a class/
// interface/trait/impl/etc.
type FunctionDecl struct {
	DeclCommon
	Params     []*Param
	ReturnType Type
	Effects    []string // `! {Eff1, Eff2}` annotation
	Requires   Expr     // optional `requires expr` clause
	IsAsync    bool
	IsStatic   bool
	Body       Expr // nil for abstract/interface signatures
}

func (f *FunctionDecl) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(parts, ", "))
}

// FieldDecl is a class/struct/spark/data/exception field.
type FieldDecl struct {
	Name       string
	Type       Type
	Default    Expr // optional default value
	Visibility Visibility
	Mutable    bool
}

// Param is a function/method/lambda parameter.
type Param struct {
	Name string
	Type Type // may be nil where inferable (lambda params)
	Span SourceSpan
}

func (p *Param) String() string {
	if p.Type != nil {
		return fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return p.Name
}
