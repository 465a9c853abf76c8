package ast

import (
	"fmt"
	"strings"
)

// Type is the closed family of type expressions.
type Type interface {
	Node
	typeNode()
}

type TypeBase struct{ Base }

func (TypeBase) typeNode() {}

// PrimitiveKind enumerates the VM's primitive types.
type PrimitiveKind int

const (
	IntKind PrimitiveKind = iota
	LongKind
	FloatKind // always the VM's 64-bit descriptor
	DoubleKind
	BoolKind
	CharKind
	ByteKind
	ShortKind
	StringKind
	VoidKind
	UnitKind // alias of VoidKind, resolves identically
)

func (k PrimitiveKind) String() string {
	switch k {
	case IntKind:
		return "Int"
	case LongKind:
		return "Long"
	case FloatKind:
		return "Float"
	case DoubleKind:
		return "Double"
	case BoolKind:
		return "Bool"
	case CharKind:
		return "Char"
	case ByteKind:
		return "Byte"
	case ShortKind:
		return "Short"
	case StringKind:
		return "String"
	case VoidKind:
		return "Void"
	case UnitKind:
		return "Unit"
	}
	return "?"
}

// PrimitiveType is one of Int/Long/Float/Double/Bool/Char/Byte/Short/
// String/Void/Unit.
type PrimitiveType struct {
	TypeBase
	Kind PrimitiveKind
}

func (p *PrimitiveType) String() string { return p.Kind.String() }

func NewPrimitiveType(span SourceSpan, kind PrimitiveKind) *PrimitiveType {
	return &PrimitiveType{TypeBase{NewBase(span)}, kind}
}

// NamedType is a reference to a declared or imported type, possibly with
// generic arguments: `path::to::Type[Arg1, Arg2]`.
type NamedType struct {
	TypeBase
	Path DottedPath
	Args []Type
}

func (n *NamedType) String() string {
	if len(n.Args) == 0 {
		return n.Path.String()
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", n.Path, strings.Join(parts, ", "))
}

// OptionalType: `T?`.
type OptionalType struct {
	TypeBase
	Inner Type
}

func (o *OptionalType) String() string { return o.Inner.String() + "?" }

// ArrayType: `[T]`.
type ArrayType struct {
	TypeBase
	Elem Type
}

func (a *ArrayType) String() string { return fmt.Sprintf("[%s]", a.Elem) }

// MapType: `[K: V]`.
type MapType struct {
	TypeBase
	Key Type
	Val Type
}

func (m *MapType) String() string { return fmt.Sprintf("[%s: %s]", m.Key, m.Val) }

// ReferenceType: `&T` or `&mut T`.
type ReferenceType struct {
	TypeBase
	Inner Type
	Mut   bool
}

func (r *ReferenceType) String() string {
	if r.Mut {
		return "&mut " + r.Inner.String()
	}
	return "&" + r.Inner.String()
}

// FunctionType: `(P1, P2) -> R`.
type FunctionType struct {
	TypeBase
	Params []Type
	Ret    Type
}

func (f *FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}

// TupleType: `(T1, T2, ...)`.
type TupleType struct {
	TypeBase
	Elems []Type
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// UnionType: `A | B`.
type UnionType struct {
	TypeBase
	A, B Type
}

func (u *UnionType) String() string { return fmt.Sprintf("%s | %s", u.A, u.B) }

// IntersectionType: `A & B`.
type IntersectionType struct {
	TypeBase
	A, B Type
}

func (i *IntersectionType) String() string { return fmt.Sprintf("%s & %s", i.A, i.B) }

// TypeParamRef is a use of a declared generic type parameter.
type TypeParamRef struct {
	TypeBase
	Name   string
	Bounds []Type
}

func (t *TypeParamRef) String() string { return t.Name }

// GenericType is an explicit `Base[Arg1, Arg2]` instantiation, kept
// distinct from NamedType-with-args for contexts (e.g. trait bound
// checking) that need to talk about "the base plus its arguments" as a
// standalone node rather than always through a path lookup.
type GenericType struct {
	TypeBase
	BaseName string
	Args     []Type
}

func (g *GenericType) String() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", g.BaseName, strings.Join(parts, ", "))
}
