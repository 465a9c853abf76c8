package sema

import "github.com/flylang/flyc/internal/ast"

// exprType is the side table mapping an expression node's identity to
// its synthesized type.
type exprType struct {
	byID map[ast.NodeID]ast.Type
}

func newExprTypes() *exprType { return &exprType{byID: map[ast.NodeID]ast.Type{}} }

func (t *exprType) set(n ast.Node, ty ast.Type) { t.byID[n.ID()] = ty }
func (t *exprType) get(n ast.Node) (ast.Type, bool) {
	ty, ok := t.byID[n.ID()]
	return ty, ok
}

// builtin type singletons, used as sentinel values when a span-carrying
// node isn't available; callers that need a span build their own
// PrimitiveType with ast.NewPrimitiveType instead.
var (
	tInt    = &ast.PrimitiveType{Kind: ast.IntKind}
	tLong   = &ast.PrimitiveType{Kind: ast.LongKind}
	tFloat  = &ast.PrimitiveType{Kind: ast.FloatKind}
	tDouble = &ast.PrimitiveType{Kind: ast.DoubleKind}
	tBool   = &ast.PrimitiveType{Kind: ast.BoolKind}
	tChar   = &ast.PrimitiveType{Kind: ast.CharKind}
	tString = &ast.PrimitiveType{Kind: ast.StringKind}
	tVoid   = &ast.PrimitiveType{Kind: ast.VoidKind}
)

// primKind reports the PrimitiveKind of t if t is (or unwraps to) a
// primitive type; ok is false for any reference/aggregate type.
func primKind(t ast.Type) (ast.PrimitiveKind, bool) {
	switch v := t.(type) {
	case *ast.PrimitiveType:
		return v.Kind, true
	case *ast.ReferenceType:
		return primKind(v.Inner)
	}
	return 0, false
}

func isNumeric(t ast.Type) bool {
	k, ok := primKind(t)
	if !ok {
		return false
	}
	switch k {
	case ast.IntKind, ast.LongKind, ast.FloatKind, ast.DoubleKind, ast.ByteKind, ast.ShortKind:
		return true
	}
	return false
}

func isFloating(t ast.Type) bool {
	k, ok := primKind(t)
	return ok && (k == ast.FloatKind || k == ast.DoubleKind)
}

// numericRank orders numeric kinds for promotion.
func numericRank(k ast.PrimitiveKind) int {
	switch k {
	case ast.ByteKind:
		return 0
	case ast.ShortKind:
		return 1
	case ast.IntKind:
		return 2
	case ast.LongKind:
		return 3
	case ast.DoubleKind:
		return 4
	case ast.FloatKind:
		return 4
	}
	return -1
}

// promote computes the arithmetic promotion of two numeric types per
// the bidirectional type checker.
func promote(a, b ast.Type) ast.Type {
	ka, _ := primKind(a)
	kb, _ := primKind(b)
	if isFloating(a) || isFloating(b) {
		return tFloat
	}
	if numericRank(ka) >= numericRank(kb) {
		return a
	}
	return b
}

// typesEqual is a structural comparison used for signature matching
// (trait conformance) and pattern/scrutinee compatibility checks. It is
// intentionally shallow: named-type identity is compared by path string,
// not by resolving through the ClassEnvironment, since the analyzer only
// needs to distinguish "same spelling" from "different spelling" for the
// checks it performs.
func typesEqual(a, b ast.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *ast.PrimitiveType:
		bv, ok := b.(*ast.PrimitiveType)
		return ok && normalizeUnit(av.Kind) == normalizeUnit(bv.Kind)
	case *ast.NamedType:
		bv, ok := b.(*ast.NamedType)
		if !ok || av.Path.String() != bv.Path.String() || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !typesEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *ast.OptionalType:
		bv, ok := b.(*ast.OptionalType)
		return ok && typesEqual(av.Inner, bv.Inner)
	case *ast.ArrayType:
		bv, ok := b.(*ast.ArrayType)
		return ok && typesEqual(av.Elem, bv.Elem)
	case *ast.MapType:
		bv, ok := b.(*ast.MapType)
		return ok && typesEqual(av.Key, bv.Key) && typesEqual(av.Val, bv.Val)
	case *ast.ReferenceType:
		bv, ok := b.(*ast.ReferenceType)
		return ok && av.Mut == bv.Mut && typesEqual(av.Inner, bv.Inner)
	case *ast.FunctionType:
		bv, ok := b.(*ast.FunctionType)
		if !ok || len(av.Params) != len(bv.Params) || !typesEqual(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !typesEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *ast.TupleType:
		bv, ok := b.(*ast.TupleType)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !typesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *ast.TypeParamRef:
		bv, ok := b.(*ast.TypeParamRef)
		return ok && av.Name == bv.Name
	}
	return typeName(a) == typeName(b)
}

func normalizeUnit(k ast.PrimitiveKind) ast.PrimitiveKind {
	if k == ast.UnitKind {
		return ast.VoidKind
	}
	return k
}

func typeName(t ast.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
