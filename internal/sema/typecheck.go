package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/resolver"
)

// checkTypes is sub-check 3: a bidirectional pass.
// Expressions carry an expected type down (check) and synthesize a type
// upward (synth). Every synthesized/checked type is recorded in the
// a.types side table so later checks (bounds, pattern matching, options)
// and codegen can recover it by node identity without re-running
// inference.
func (a *Analyzer) checkTypes() {
	for _, fc := range a.allFunctions() {
		a.checkFunctionBody(fc)
	}
}

func (a *Analyzer) checkFunctionBody(fc funcCtx) {
	fn := fc.fn
	if fn.Body == nil {
		return // abstract/interface signature, no body to check
	}
	tc := &typeCheckPass{a: a}
	a.resolver.SymbolTable().PushScope()
	defer a.resolver.SymbolTable().PopScope()

	if fc.isMethod {
		a.resolver.SymbolTable().Define(&resolver.Symbol{Name: "this", Kind: resolver.SymParam, Slot: -1})
	}
	for _, p := range fn.Params {
		a.resolver.SymbolTable().Define(&resolver.Symbol{Name: p.Name, Kind: resolver.SymParam, Type: p.Type, Span: p.Span, Slot: -1})
	}

	ret := fn.ReturnType
	if ret == nil {
		ret = tVoid
	}
	tc.expectedReturn = ret
	tc.check(fn.Body, ret)
}

// typeCheckPass carries the per-function state the bidirectional pass
// needs (the enclosing function's declared return type, for checking
// `return e` and trailing-block-value expressions).
type typeCheckPass struct {
	a              *Analyzer
	expectedReturn ast.Type
}

// synth synthesizes e's type bottom-up, recording it in a.types.
func (t *typeCheckPass) synth(e ast.Expr) ast.Type {
	if e == nil {
		return tVoid
	}
	ty := t.synthRaw(e)
	t.a.types.set(e, ty)
	return ty
}

// check verifies e against an expected type flowing down from context,
// falling back to synth+compatibility for anything not specially
// handled. Always records the synthesized type so downstream checks can
// query it uniformly through a.types regardless of which direction
// produced it.
func (t *typeCheckPass) check(e ast.Expr, expected ast.Type) ast.Type {
	if e == nil {
		return tVoid
	}
	switch v := e.(type) {
	case *ast.Lambda:
		ty := t.synthLambda(v, expected)
		t.a.types.set(e, ty)
		return ty
	case *ast.Block:
		return t.checkBlock(v, expected)
	case *ast.If:
		return t.checkIf(v, expected)
	case *ast.Coalesce:
		lt := t.synth(v.Value)
		inner := lt
		if opt, ok := lt.(*ast.OptionalType); ok {
			inner = opt.Inner
		}
		dt := t.check(v.Default, inner)
		common := commonSupertype(inner, dt)
		t.a.types.set(e, common)
		return common
	}
	got := t.synth(e)
	if expected != nil && !compatible(got, expected) {
		t.a.errorf(diag.TC001, e.Span(), "type mismatch: expected %s, got %s", typeName(expected), typeName(got))
	}
	return got
}

func (t *typeCheckPass) checkBlock(b *ast.Block, expected ast.Type) ast.Type {
	t.a.resolver.SymbolTable().PushScope()
	defer t.a.resolver.SymbolTable().PopScope()
	for _, s := range b.Stmts {
		t.synthStmt(s)
	}
	if b.Tail == nil {
		if expected != nil && !compatible(tVoid, expected) {
			t.a.errorf(diag.TC001, b.Span(), "block has no value but %s was expected", typeName(expected))
		}
		t.a.types.set(b, tVoid)
		return tVoid
	}
	ty := t.check(b.Tail, expected)
	t.a.types.set(b, ty)
	return ty
}

// synthStmt handles a non-tail block statement: `let`, bare expression,
// assignment. Its value (always Unit) is discarded.
func (t *typeCheckPass) synthStmt(s ast.Expr) {
	if let, ok := s.(*ast.Let); ok {
		t.checkLet(let)
		return
	}
	t.synth(s)
}

func (t *typeCheckPass) checkLet(l *ast.Let) {
	var declared ast.Type
	if l.Type != nil {
		declared = l.Type
	}
	var valTy ast.Type = tVoid
	if l.Value != nil {
		if declared != nil {
			valTy = t.check(l.Value, declared)
		} else {
			valTy = t.synth(l.Value)
		}
	}
	bindTy := declared
	if bindTy == nil {
		bindTy = valTy
	}
	bindPatternVars(t.a, l.Pattern, bindTy, l.Mut)
}

// bindPatternVars defines every variable a let/match/for pattern
// introduces in the current scope, so later references resolve.
func bindPatternVars(a *Analyzer, p ast.Pattern, ty ast.Type, mut bool) {
	switch v := p.(type) {
	case *ast.VariablePattern:
		bt := ty
		if v.Type != nil {
			bt = v.Type
		}
		if shadowed := a.resolver.SymbolTable().Define(&resolver.Symbol{
			Name: v.Name, Kind: resolver.SymLocalVar, Type: bt, Span: v.Span(), Mutable: v.Mutable || mut, Slot: -1,
		}); shadowed {
			a.errorf(diag.RES003, v.Span(), "duplicate binding %q in this scope", v.Name)
		}
	case *ast.TuplePattern:
		var elems []ast.Type
		if tt, ok := ty.(*ast.TupleType); ok {
			elems = tt.Elems
		}
		for i, el := range v.Elements {
			var et ast.Type
			if i < len(elems) {
				et = elems[i]
			}
			bindPatternVars(a, el, et, mut)
		}
	case *ast.ArrayPattern:
		var et ast.Type
		if at, ok := ty.(*ast.ArrayType); ok {
			et = at.Elem
		}
		for _, el := range v.Elements {
			bindPatternVars(a, el, et, mut)
		}
		if v.Rest != nil {
			bindPatternVars(a, v.Rest, ty, mut)
		}
	case *ast.StructPattern:
		for _, f := range v.Fields {
			bindPatternVars(a, f.Pattern, nil, mut)
		}
	case *ast.TupleStructPattern:
		for _, el := range v.Elements {
			bindPatternVars(a, el, nil, mut)
		}
	case *ast.OrPattern:
		for _, alt := range v.Alternatives {
			bindPatternVars(a, alt, ty, mut)
		}
	case *ast.GuardPattern:
		bindPatternVars(a, v.Inner, ty, mut)
	}
}

func (t *typeCheckPass) checkIf(i *ast.If, expected ast.Type) ast.Type {
	t.check(i.Cond, tBool)
	thenTy := t.check(i.Then, expected)
	if i.Else == nil {
		t.a.types.set(i, tVoid)
		return tVoid
	}
	elseTy := t.check(i.Else, expected)
	result := thenTy
	if expected == nil {
		result = commonSupertype(thenTy, elseTy)
	}
	t.a.types.set(i, result)
	return result
}

func (t *typeCheckPass) synthLambda(l *ast.Lambda, expected ast.Type) ast.Type {
	var paramTypes []ast.Type
	var retHint ast.Type
	if ft, ok := expected.(*ast.FunctionType); ok {
		paramTypes = ft.Params
		retHint = ft.Ret
	}
	t.a.resolver.SymbolTable().PushScope()
	defer t.a.resolver.SymbolTable().PopScope()
	for i, p := range l.Params {
		pt := p.Type
		if pt == nil && i < len(paramTypes) {
			pt = paramTypes[i]
		}
		t.a.resolver.SymbolTable().Define(&resolver.Symbol{Name: p.Name, Kind: resolver.SymParam, Type: pt, Span: p.Span, Slot: -1})
	}
	bodyTy := t.check(l.Body, retHint)
	types := make([]ast.Type, len(l.Params))
	for i, p := range l.Params {
		if p.Type != nil {
			types[i] = p.Type
		} else if i < len(paramTypes) {
			types[i] = paramTypes[i]
		} else {
			types[i] = tVoid
		}
	}
	return &ast.FunctionType{Params: types, Ret: bodyTy}
}

// synthRaw is synth's actual implementation, split out so synth can
// uniformly record the result regardless of which case produced it.
func (t *typeCheckPass) synthRaw(e ast.Expr) ast.Type {
	switch v := e.(type) {
	case *ast.Literal:
		return synthLiteral(v)
	case *ast.Identifier:
		if sym, ok := t.a.resolver.SymbolTable().Lookup(v.Name); ok && sym.Type != nil {
			return sym.Type
		}
		return tVoid
	case *ast.Path:
		return tVoid // fully resolved by the ClassEnvironment at codegen time
	case *ast.Binary:
		return t.synthBinary(v)
	case *ast.Unary:
		operand := t.synth(v.Expr)
		if v.Op == ast.OpNot {
			return tBool
		}
		return operand
	case *ast.Call:
		return t.synthCall(v)
	case *ast.MethodCall:
		for _, a := range v.Args {
			t.synth(a)
		}
		t.synth(v.Receiver)
		return tVoid // method return types require ClassInfo lookup (§6.2); codegen resolves via resolver
	case *ast.StaticCall:
		for _, a := range v.Args {
			t.synth(a)
		}
		return tVoid
	case *ast.FieldAccess:
		recv := t.synth(v.Receiver)
		if ft, ok := t.a.fieldType(recv, v.Field); ok {
			return ft
		}
		return tVoid
	case *ast.SafeAccess:
		recv := t.synth(v.Receiver)
		inner, ok := recv.(*ast.OptionalType)
		if !ok {
			t.a.sink.Add(diag.NewWarning(diag.OPT002, v.Span(), "`?.` used on a non-optional receiver"))
			inner = &ast.OptionalType{Inner: recv}
		}
		ft, ok := t.a.fieldType(inner.Inner, v.Field)
		if !ok {
			ft = tVoid
		}
		return &ast.OptionalType{Inner: ft}
	case *ast.IndexAccess:
		recv := t.synth(v.Receiver)
		t.synth(v.Index)
		if at, ok := recv.(*ast.ArrayType); ok {
			return at.Elem
		}
		if mt, ok := recv.(*ast.MapType); ok {
			return mt.Val
		}
		return tVoid
	case *ast.Block:
		return t.checkBlock(v, nil)
	case *ast.If:
		return t.checkIf(v, nil)
	case *ast.Match:
		return t.synthMatch(v)
	case *ast.For:
		bindPatternVars(t.a, v.Binding, nil, false)
		t.synth(v.Iterable)
		t.synth(v.Body)
		return tVoid
	case *ast.While:
		t.check(v.Cond, tBool)
		t.synth(v.Body)
		return tVoid
	case *ast.Lambda:
		return t.synthLambda(v, nil)
	case *ast.Return:
		if v.Value != nil {
			t.check(v.Value, t.expectedReturn)
		}
		return tVoid
	case *ast.Break:
		if v.Value != nil {
			t.synth(v.Value)
		}
		return tVoid
	case *ast.Continue:
		return tVoid
	case *ast.Await:
		inner := t.synth(v.Value)
		if ft, ok := inner.(*ast.NamedType); ok && len(ft.Args) == 1 {
			return ft.Args[0]
		}
		return tVoid
	case *ast.Throw:
		t.synth(v.Value)
		return tVoid
	case *ast.Try:
		ty := t.synth(v.Body)
		for _, c := range v.Catches {
			t.a.resolver.SymbolTable().PushScope()
			bindPatternVars(t.a, c.Pattern, c.ExcType, false)
			t.synth(c.Body)
			t.a.resolver.SymbolTable().PopScope()
		}
		if v.Finally != nil {
			t.synth(v.Finally)
		}
		return ty
	case *ast.Concurrent:
		for _, b := range v.Bindings {
			vt := t.synth(b.Value)
			t.a.resolver.SymbolTable().Define(&resolver.Symbol{Name: b.Name, Kind: resolver.SymLocalVar, Type: vt, Span: b.Span, Slot: -1})
		}
		return tVoid
	case *ast.Race:
		var last ast.Type = tVoid
		for _, c := range v.Clauses {
			last = t.synth(c)
		}
		return last
	case *ast.Timeout:
		t.check(v.Duration, nil)
		return t.synth(v.Body)
	case *ast.With:
		for _, a := range v.Args {
			t.synth(a)
		}
		return t.synth(v.Body)
	case *ast.New:
		for _, a := range v.Args {
			t.synth(a)
		}
		return v.Type
	case *ast.StructLit:
		for _, f := range v.Fields {
			t.synth(f.Value)
		}
		return v.Type
	case *ast.ArrayLit:
		var elemTy ast.Type = tVoid
		for i, el := range v.Elems {
			ty := t.synth(el)
			if i == 0 {
				elemTy = ty
			}
		}
		return &ast.ArrayType{Elem: elemTy}
	case *ast.MapLit:
		var kt, vt ast.Type = tVoid, tVoid
		for i, en := range v.Entries {
			k := t.synth(en.Key)
			val := t.synth(en.Value)
			if i == 0 {
				kt, vt = k, val
			}
		}
		return &ast.MapType{Key: kt, Val: vt}
	case *ast.TupleLit:
		elems := make([]ast.Type, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = t.synth(el)
		}
		return &ast.TupleType{Elems: elems}
	case *ast.Cast:
		t.synth(v.Value)
		return v.Type
	case *ast.TypeCheck:
		t.synth(v.Value)
		return tBool
	case *ast.Coalesce:
		return t.check(e, nil)
	case *ast.Elvis:
		vt := t.synth(v.Value)
		dt := t.synth(v.Default)
		return commonSupertype(vt, dt)
	case *ast.Range, *ast.RangeInclusive:
		return tVoid
	case *ast.ForceUnwrap:
		inner := t.synth(v.Value)
		opt, ok := inner.(*ast.OptionalType)
		if !ok {
			t.a.errorf(diag.OPT001, v.Span(), "`!!` used on a non-optional value")
			return inner
		}
		return opt.Inner
	case *ast.Unwrap:
		inner := t.synth(v.Value)
		opt, ok := inner.(*ast.OptionalType)
		if !ok {
			t.a.errorf(diag.OPT001, v.Span(), "`?` used on a non-optional value")
			return inner
		}
		return opt.Inner
	case *ast.Assignment:
		ty := t.synth(v.Target)
		t.check(v.Value, ty)
		return tVoid
	case *ast.CompoundAssignment:
		ty := t.synth(v.Target)
		t.check(v.Value, ty)
		return tVoid
	case *ast.Let:
		t.checkLet(v)
		return tVoid
	}
	return tVoid
}

func synthLiteral(l *ast.Literal) ast.Type {
	switch l.Kind {
	case ast.IntLit:
		return tInt
	case ast.FloatLit:
		return tFloat // float literals default to the 64-bit type
	case ast.StringLit, ast.InterpStringLit:
		return tString
	case ast.BoolLit:
		return tBool
	case ast.CharLit:
		return tChar
	case ast.NullLit:
		return &ast.OptionalType{Inner: tVoid}
	}
	return tVoid
}

func (t *typeCheckPass) synthBinary(b *ast.Binary) ast.Type {
	lt := t.synth(b.Left)
	rt := t.synth(b.Right)
	switch b.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte, ast.OpAnd, ast.OpOr:
		return tBool
	default:
		if isNumeric(lt) && isNumeric(rt) {
			return promote(lt, rt)
		}
		if _, ok := primKind(lt); !ok {
			t.a.errorf(diag.TC001, b.Span(), "non-numeric operand to operator %s", b.Op)
		}
		return lt
	}
}

func (t *typeCheckPass) synthCall(c *ast.Call) ast.Type {
	for _, a := range c.Args {
		t.synth(a)
	}
	if id, ok := c.Callee.(*ast.Identifier); ok {
		if sym, ok := t.a.resolver.SymbolTable().Lookup(id.Name); ok {
			if ft, ok := sym.Type.(*ast.FunctionType); ok {
				return ft.Ret
			}
		}
		if fn, ok := t.a.typeDecls[id.Name].(*ast.FunctionDecl); ok {
			if fn.ReturnType != nil {
				return fn.ReturnType
			}
		}
	}
	return tVoid
}

func (t *typeCheckPass) synthMatch(m *ast.Match) ast.Type {
	t.synth(m.Scrutinee)
	var result ast.Type
	for _, arm := range m.Arms {
		t.a.resolver.SymbolTable().PushScope()
		bindPatternVars(t.a, arm.Pattern, nil, false)
		if arm.Guard != nil {
			t.check(arm.Guard, tBool)
		}
		bodyTy := t.synth(arm.Body)
		t.a.resolver.SymbolTable().PopScope()
		if result == nil {
			result = bodyTy
		} else {
			result = commonSupertype(result, bodyTy)
		}
	}
	if result == nil {
		result = tVoid
	}
	return result
}

// compatible is the assignability check used when a checked expression's
// synthesized type is compared against the expected type flowing down.
// Numeric widening and the Optional/null relationship are permitted;
// everything else requires structural equality. A Void-typed expected
// slot (most statement contexts) accepts anything.
func compatible(got, expected ast.Type) bool {
	if expected == nil {
		return true
	}
	if k, ok := primKind(expected); ok && normalizeUnit(k) == ast.VoidKind {
		return true
	}
	if typesEqual(got, expected) {
		return true
	}
	if isNumeric(got) && isNumeric(expected) {
		return true // widening permitted; narrowing is a later lint, not a hard error here
	}
	if opt, ok := expected.(*ast.OptionalType); ok {
		if gk, ok := primKind(got); ok && normalizeUnit(gk) == ast.VoidKind {
			return true // `null` literal
		}
		return compatible(got, opt.Inner) || typesEqual(got, expected)
	}
	return false
}

// commonSupertype implements "`??` returns the common supertype of
// its branches" and the analogous rule for if/match arm results. Lacking
// a declared inheritance lattice to consult in the core (that's the
// ClassEnvironment's job at codegen time), two structurally different
// reference types widen to the root object type; two compatible
// primitive types promote numerically.
func commonSupertype(a, b ast.Type) ast.Type {
	if typesEqual(a, b) {
		return a
	}
	if isNumeric(a) && isNumeric(b) {
		return promote(a, b)
	}
	return &ast.NamedType{Path: ast.DottedPath{"lang", "Object"}}
}
