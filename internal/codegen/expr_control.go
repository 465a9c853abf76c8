package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

func (fc *funcCtx) emitBlock(b *ast.Block) string {
	for _, s := range b.Stmts {
		fc.emitStmt(s)
	}
	if b.Tail != nil {
		return fc.emitExpr(b.Tail)
	}
	return "V"
}

func (fc *funcCtx) emitIf(i *ast.If) string {
	mb := fc.mb
	elseLabel := mb.NewLabel()
	end := mb.NewLabel()

	fc.emitExpr(i.Cond)
	mb.EmitJump(classfile.OpIfEq, elseLabel, -1)
	snap := mb.CurrentDepth()

	resultDesc := fc.typeOf(i)
	thenDesc := fc.emitExpr(i.Then)
	if i.Else != nil {
		fc.convert(thenDesc, resultDesc)
	} else if thenDesc != "V" {
		fc.pop(thenDesc)
	}
	mb.EmitJump(classfile.OpGoto, end, 0)
	mb.MergeStackDepth(snap)
	mb.MarkLabel(elseLabel)
	if i.Else != nil {
		elseDesc := fc.emitExpr(i.Else)
		fc.convert(elseDesc, resultDesc)
	}
	mb.MarkLabel(end)
	if i.Else == nil {
		return "V"
	}
	return resultDesc
}

func (fc *funcCtx) emitMatch(m *ast.Match) string {
	mb := fc.mb
	scrutDesc := fc.typeOf(m.Scrutinee)
	fc.emitExpr(m.Scrutinee)
	tmp := fc.locals.declare(fc.tempName(), scrutDesc)
	_, store, _, _ := opsFor(scrutDesc)
	mb.EmitLocalOp(store, tmp.slot, -widthOf(scrutDesc))

	resultDesc := fc.typeOf(m)
	end := mb.NewLabel()
	baseDepth := mb.CurrentDepth()
	for idx, arm := range m.Arms {
		mb.MergeStackDepth(baseDepth)
		nextArm := mb.NewLabel()
		fc.testPattern(arm.Pattern, scrutDesc, tmp.slot, nextArm)
		if arm.Guard != nil {
			fc.emitExpr(arm.Guard)
			mb.EmitJump(classfile.OpIfEq, nextArm, -1)
		}
		bodyDesc := fc.emitExpr(arm.Body)
		fc.convert(bodyDesc, resultDesc)
		if idx != len(m.Arms)-1 {
			mb.EmitJump(classfile.OpGoto, end, 0)
		}
		mb.MarkLabel(nextArm)
	}
	mb.MarkLabel(end)
	return resultDesc
}

func (fc *funcCtx) emitWhile(w *ast.While) string {
	mb := fc.mb
	start := mb.NewLabel()
	end := mb.NewLabel()
	mb.MarkLabel(start)
	fc.emitExpr(w.Cond)
	mb.EmitJump(classfile.OpIfEq, end, -1)

	fc.loops = append(fc.loops, loopCtx{breakLabel: end, continueLabel: start})
	fc.emitStmt(w.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]

	mb.EmitJump(classfile.OpGoto, start, 0)
	mb.MarkLabel(end)
	return "V"
}

// emitFor lowers `for pattern in iterable { body }` over anything
// exposing the host iterator protocol: hasNext()/next().
func (fc *funcCtx) emitFor(f *ast.For) string {
	mb := fc.mb
	const iterable = "lang/Iterable"
	const iterator = "lang/Iterator"

	fc.emitExpr(f.Iterable)
	iterRef := fc.cb.Pool.InterfaceMethodref(iterable, "iterator", "()L"+iterator+";")
	mb.EmitU16(classfile.OpInvokeInterface, iterRef, 0)
	it := fc.locals.declare(fc.tempName(), "L"+iterator+";")
	mb.EmitLocalOp(classfile.OpAStore, it.slot, -1)

	start := mb.NewLabel()
	end := mb.NewLabel()
	mb.MarkLabel(start)
	mb.EmitLocalOp(classfile.OpALoad, it.slot, 1)
	hasNext := fc.cb.Pool.InterfaceMethodref(iterator, "hasNext", "()Z")
	mb.EmitU16(classfile.OpInvokeInterface, hasNext, 0)
	mb.EmitJump(classfile.OpIfEq, end, -1)

	mb.EmitLocalOp(classfile.OpALoad, it.slot, 1)
	next := fc.cb.Pool.InterfaceMethodref(iterator, "next", "()L"+objectNameBare()+";")
	mb.EmitU16(classfile.OpInvokeInterface, next, 0)
	elemTmp := fc.locals.declare(fc.tempName(), objectDescriptor)
	mb.EmitLocalOp(classfile.OpAStore, elemTmp.slot, -1)
	noMatch := mb.NewLabel()
	fc.testPattern(f.Binding, objectDescriptor, elemTmp.slot, noMatch)

	fc.loops = append(fc.loops, loopCtx{breakLabel: end, continueLabel: start})
	fc.emitStmt(f.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]
	mb.MarkLabel(noMatch)

	mb.EmitJump(classfile.OpGoto, start, 0)
	mb.MarkLabel(end)
	return "V"
}

func (fc *funcCtx) emitReturn(r *ast.Return) string {
	if r.Value == nil {
		fc.mb.Emit(classfile.OpReturn)
		return "V"
	}
	desc := fc.emitExpr(r.Value)
	fc.convert(desc, fc.returnDescriptor)
	_, _, ret, _ := opsFor(fc.returnDescriptor)
	fc.mb.Emit(ret)
	return "V"
}

func (fc *funcCtx) emitBreak(b *ast.Break) string {
	if len(fc.loops) == 0 {
		panic("codegen: break outside loop")
	}
	top := fc.loops[len(fc.loops)-1]
	fc.mb.EmitJump(classfile.OpGoto, top.breakLabel, 0)
	return "V"
}

func (fc *funcCtx) emitContinue(c *ast.Continue) string {
	if len(fc.loops) == 0 {
		panic("codegen: continue outside loop")
	}
	top := fc.loops[len(fc.loops)-1]
	fc.mb.EmitJump(classfile.OpGoto, top.continueLabel, 0)
	return "V"
}

func (fc *funcCtx) emitThrow(t *ast.Throw) string {
	fc.emitExpr(t.Value)
	fc.mb.Emit(classfile.OpAThrow)
	return "V"
}

// emitTry lowers `try { body } catch (p) {..} finally {..}` using the
// Code attribute's exception table: one entry per catch clause
// spanning the whole try body, targeting a handler that binds the
// caught value and runs the clause body. Finally is inlined once, at
// the join point reached by the try body's normal path and by every
// catch clause; it does not run when an uncaught exception or an early
// return/break leaves the try body or a catch clause.
func (fc *funcCtx) emitTry(t *ast.Try) string {
	mb := fc.mb
	resultDesc := fc.typeOf(t)
	startPC := mb.Offset()
	bodyDesc := fc.emitExpr(t.Body)
	fc.convert(bodyDesc, resultDesc)
	endPC := mb.Offset()
	end := mb.NewLabel()
	mb.EmitJump(classfile.OpGoto, end, 0)

	for _, c := range t.Catches {
		handlerPC := mb.Offset()
		excDesc := objectDescriptor
		if c.ExcType != nil {
			excDesc = fc.gen.descriptorOf(c.ExcType)
		}
		tmp := fc.locals.declare(fc.tempName(), excDesc)
		mb.MergeStackDepth(1)
		_, store, _, _ := opsFor(excDesc)
		mb.EmitLocalOp(store, tmp.slot, -1)
		if c.Pattern != nil {
			noMatch := mb.NewLabel()
			fc.testPattern(c.Pattern, excDesc, tmp.slot, noMatch)
			mb.MarkLabel(noMatch)
		}
		clauseDesc := fc.emitExpr(c.Body)
		fc.convert(clauseDesc, resultDesc)
		if c != t.Catches[len(t.Catches)-1] {
			mb.EmitJump(classfile.OpGoto, end, 0)
		}
		fc.exceptionTable = append(fc.exceptionTable, classfile.ExceptionTableEntry{
			StartPC: uint16(startPC), EndPC: uint16(endPC), HandlerPC: uint16(handlerPC),
			CatchType: classNameFromDescriptor(excDesc),
		})
	}
	mb.MarkLabel(end)
	if t.Finally != nil {
		fc.emitStmt(t.Finally)
	}
	return resultDesc
}

func (fc *funcCtx) emitNew(n *ast.New) string {
	mb := fc.mb
	owner := fc.gen.classNameOf(n.Type)
	cls := fc.cb.Pool.Class(owner)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	desc := "("
	for _, a := range n.Args {
		desc += fc.typeOf(a)
	}
	desc += ")V"
	fc.emitArgs(n.Args)
	ref := fc.cb.Pool.Methodref(owner, "<init>", desc)
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -len(n.Args)-1)
	return "L" + owner + ";"
}

func (fc *funcCtx) emitStructLit(s *ast.StructLit) string {
	mb := fc.mb
	owner := fc.gen.classNameOf(s.Type)
	cls := fc.cb.Pool.Class(owner)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	desc := "("
	for _, f := range s.Fields {
		desc += fc.typeOf(f.Value)
	}
	desc += ")V"
	for _, f := range s.Fields {
		fc.emitExpr(f.Value)
	}
	ref := fc.cb.Pool.Methodref(owner, "<init>", desc)
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -len(s.Fields)-1)
	return "L" + owner + ";"
}

// emitArrayLit lowers `[e1, e2, ...]` to a fixed-size reference array:
// anewarray sized to the literal, then one astore per element.
func (fc *funcCtx) emitArrayLit(a *ast.ArrayLit) string {
	mb := fc.mb
	elemDesc := objectDescriptor
	if len(a.Elems) > 0 {
		elemDesc = fc.typeOf(a.Elems[0])
	}
	n := fc.cb.Pool.Integer(int32(len(a.Elems)))
	mb.EmitU8(classfile.OpLdc, byte(n), 1)
	cls := fc.cb.Pool.Class(classNameFromDescriptor(elemDesc))
	mb.EmitU16(classfile.OpANewArray, cls, 0)
	for i, elem := range a.Elems {
		mb.Emit(classfile.OpDup)
		idx := fc.cb.Pool.Integer(int32(i))
		mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		fc.emitExpr(elem)
		mb.Emit(arrayStoreOpFor(elemDesc))
	}
	return "[" + elemDesc
}

func (fc *funcCtx) emitTupleLit(t *ast.TupleLit) string {
	mb := fc.mb
	const tupleClass = "lang/Tuple"
	cls := fc.cb.Pool.Class(tupleClass)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	n := fc.cb.Pool.Integer(int32(len(t.Elems)))
	mb.EmitU8(classfile.OpLdc, byte(n), 1)
	mb.EmitU16(classfile.OpANewArray, fc.cb.Pool.Class(objectNameBare()), 0)
	for i, e := range t.Elems {
		mb.Emit(classfile.OpDup)
		idx := fc.cb.Pool.Integer(int32(i))
		mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		fc.emitExpr(e)
		mb.Emit(classfile.OpAAStore)
	}
	ref := fc.cb.Pool.Methodref(tupleClass, "<init>", "([L"+objectNameBare()+";)V")
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -1)
	return "Llang/Tuple;"
}

func (fc *funcCtx) emitMapLit(m *ast.MapLit) string {
	mb := fc.mb
	const mapClass = "lang/Map"
	cls := fc.cb.Pool.Class(mapClass)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	ctor := fc.cb.Pool.Methodref(mapClass, "<init>", "()V")
	mb.EmitU16(classfile.OpInvokeSpecial, ctor, -1)
	put := fc.cb.Pool.Methodref(mapClass, "put", "(L"+objectNameBare()+";L"+objectNameBare()+";)L"+objectNameBare()+";")
	for _, entry := range m.Entries {
		mb.Emit(classfile.OpDup)
		fc.emitExpr(entry.Key)
		fc.emitExpr(entry.Value)
		mb.EmitU16(classfile.OpInvokeVirtual, put, -2)
		mb.Emit(classfile.OpPop)
	}
	return "Llang/Map;"
}

func (fc *funcCtx) emitCast(c *ast.Cast) string {
	fc.emitExpr(c.Value)
	target := fc.gen.descriptorOf(c.Type)
	if isReferenceDescriptor(target) {
		cls := fc.cb.Pool.Class(classNameFromDescriptor(target))
		fc.mb.EmitU16(classfile.OpCheckCast, cls, 0)
	}
	return target
}

func (fc *funcCtx) emitTypeCheck(t *ast.TypeCheck) string {
	fc.emitExpr(t.Value)
	target := fc.gen.descriptorOf(t.Type)
	cls := fc.cb.Pool.Class(classNameFromDescriptor(target))
	fc.mb.EmitU16(classfile.OpInstanceOf, cls, 0)
	return boolDescriptor
}

// emitCoalesce lowers `e ?? d`: evaluate e, and if it's null, evaluate
// and use d instead.
func (fc *funcCtx) emitCoalesce(c *ast.Coalesce) string {
	mb := fc.mb
	useDefault := mb.NewLabel()
	end := mb.NewLabel()
	valueDesc := fc.emitExpr(c.Value)
	mb.Emit(classfile.OpDup)
	mb.EmitJump(classfile.OpIfNull, useDefault, -1)
	snap := mb.CurrentDepth()
	mb.EmitJump(classfile.OpGoto, end, 0)
	mb.MergeStackDepth(snap)
	mb.MarkLabel(useDefault)
	mb.Emit(classfile.OpPop)
	defaultDesc := fc.emitExpr(c.Default)
	fc.convert(defaultDesc, valueDesc)
	mb.MarkLabel(end)
	return valueDesc
}

// emitForceUnwrap lowers `e!!`: null-check against a thrown exception.
func (fc *funcCtx) emitForceUnwrap(f *ast.ForceUnwrap) string {
	mb := fc.mb
	present := mb.NewLabel()
	desc := fc.emitExpr(f.Value)
	mb.Emit(classfile.OpDup)
	mb.EmitJump(classfile.OpIfNonNull, present, -1)
	mb.Emit(classfile.OpPop)
	const npe = "lang/NullPointerException"
	cls := fc.cb.Pool.Class(npe)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	ctor := fc.cb.Pool.Methodref(npe, "<init>", "()V")
	mb.EmitU16(classfile.OpInvokeSpecial, ctor, -1)
	mb.Emit(classfile.OpAThrow)
	mb.MarkLabel(present)
	return desc
}

// emitUnwrap lowers `e?`: returns from the enclosing function with the
// empty value if e is absent, otherwise yields e.
func (fc *funcCtx) emitUnwrap(u *ast.Unwrap) string {
	mb := fc.mb
	present := mb.NewLabel()
	desc := fc.emitExpr(u.Value)
	mb.Emit(classfile.OpDup)
	mb.EmitJump(classfile.OpIfNonNull, present, -1)
	mb.Emit(classfile.OpPop)
	if fc.returnDescriptor == "V" {
		mb.Emit(classfile.OpReturn)
	} else {
		mb.Emit(classfile.OpAConstNull)
		_, _, ret, _ := opsFor(fc.returnDescriptor)
		mb.Emit(ret)
	}
	mb.MarkLabel(present)
	return desc
}

func (fc *funcCtx) emitAssignment(a *ast.Assignment) string {
	fc.storeTo(a.Target, a.Value)
	return "V"
}

func (fc *funcCtx) emitCompoundAssignment(c *ast.CompoundAssignment) string {
	synthetic := &ast.Binary{Op: c.Op, Left: c.Target, Right: c.Value}
	fc.storeTo(c.Target, synthetic)
	return "V"
}

// storeTo emits value and stores it to target, handling the three
// assignable expression shapes: a bare local/field identifier, a
// `.field` access, and an `[index]` access.
func (fc *funcCtx) storeTo(target ast.Expr, value ast.Expr) {
	mb := fc.mb
	switch t := target.(type) {
	case *ast.Identifier:
		if s, ok := fc.locals.lookup(t.Name); ok {
			desc := fc.emitExpr(value)
			fc.convert(desc, s.descriptor)
			_, store, _, _ := opsFor(s.descriptor)
			mb.EmitLocalOp(store, s.slot, -widthOf(s.descriptor))
			return
		}
		desc := fc.typeOf(t)
		if this, ok := fc.locals.lookup("this"); ok {
			mb.EmitLocalOp(classfile.OpALoad, this.slot, 1)
			vd := fc.emitExpr(value)
			fc.convert(vd, desc)
			ref := fc.cb.Pool.Fieldref(fc.owner, t.Name, desc)
			mb.EmitU16(classfile.OpPutField, ref, -1-widthOf(desc))
			return
		}
		vd := fc.emitExpr(value)
		fc.convert(vd, desc)
		ref := fc.cb.Pool.Fieldref(fc.owner, t.Name, desc)
		mb.EmitU16(classfile.OpPutStatic, ref, -widthOf(desc))
	case *ast.FieldAccess:
		recvDesc := fc.emitExpr(t.Receiver)
		owner := classNameFromDescriptor(recvDesc)
		desc := fc.typeOf(t)
		vd := fc.emitExpr(value)
		fc.convert(vd, desc)
		ref := fc.cb.Pool.Fieldref(owner, t.Field, desc)
		mb.EmitU16(classfile.OpPutField, ref, -1-widthOf(desc))
	case *ast.IndexAccess:
		fc.emitExpr(t.Receiver)
		fc.emitExpr(t.Index)
		elemDesc := fc.typeOf(t)
		vd := fc.emitExpr(value)
		fc.convert(vd, elemDesc)
		mb.Emit(arrayStoreOpFor(elemDesc))
	default:
		panic("codegen: unassignable target expression")
	}
}

// emitLet binds a `let` statement's value to its pattern. Sema does not
// reject a refutable pattern in `let` position; if such a pattern fails
// to match, control jumps past its bindings to the next statement.
func (fc *funcCtx) emitLet(l *ast.Let) string {
	if l.Value == nil {
		if vp, ok := l.Pattern.(*ast.VariablePattern); ok {
			fc.locals.declare(vp.Name, fc.descriptorForLet(l))
		}
		return "V"
	}
	desc := fc.emitExpr(l.Value)
	declared := fc.descriptorForLet(l)
	if declared != "" {
		fc.convert(desc, declared)
		desc = declared
	}
	tmp := fc.locals.declare(fc.tempName(), desc)
	_, store, _, _ := opsFor(desc)
	fc.mb.EmitLocalOp(store, tmp.slot, -widthOf(desc))
	unreachable := fc.mb.NewLabel()
	fc.testPattern(l.Pattern, desc, tmp.slot, unreachable)
	fc.mb.MarkLabel(unreachable)
	return "V"
}

func (fc *funcCtx) descriptorForLet(l *ast.Let) string {
	if l.Type != nil {
		return fc.gen.descriptorOf(l.Type)
	}
	if l.Value != nil {
		return fc.typeOf(l.Value)
	}
	return ""
}

// emitLambda lowers `|params| body` to an instance of a synthetic
// class implementing the single-method functional interface, with
// every free variable captured as a final constructor-assigned field.
func (fc *funcCtx) emitLambda(l *ast.Lambda) string {
	capture := freeVariables(l, fc.locals)
	name := classfile.SyntheticName(fc.fn.Name, "lambda")
	lambdaClass := fc.gen.internalName("", name)
	cb := classfile.NewClassBuilder(lambdaClass, classfile.AccPublic|classfile.AccFinal)
	cb.SuperClass = rootObject
	cb.Interfaces = append(cb.Interfaces, "lang/Function")

	for _, v := range capture {
		cb.AddField(classfile.FieldEntry{AccessFlags: classfile.AccPrivate | classfile.AccFinal, Name: v.name, Descriptor: v.descriptor})
	}
	emitLambdaConstructor(cb, lambdaClass, capture)

	retType, _ := fc.gen.analyzer.TypeOf(l.Body)
	body := &ast.FunctionDecl{
		DeclCommon: ast.DeclCommon{Name: "apply"},
		Params:     l.Params,
		ReturnType: retType,
		Body:       l.Body,
	}
	fc.gen.emitMethod(cb, lambdaClass, body, true)
	fc.gen.addClass(lambdaClass, cb.Serialize())

	mb := fc.mb
	cls := fc.cb.Pool.Class(lambdaClass)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	desc := "("
	for _, v := range capture {
		desc += v.descriptor
		if s, ok := fc.locals.lookup(v.name); ok {
			load, _, _, _ := opsFor(s.descriptor)
			mb.EmitLocalOp(load, s.slot, widthOf(s.descriptor))
		}
	}
	desc += ")V"
	ref := fc.cb.Pool.Methodref(lambdaClass, "<init>", desc)
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -len(capture)-1)
	return "L" + lambdaClass + ";"
}

type capturedVar struct {
	name       string
	descriptor string
}

// emitLambdaConstructor builds the synthetic lambda class's `<init>`:
// one parameter per captured variable, each assigned straight into its
// matching field, after the superclass's no-arg constructor runs.
func emitLambdaConstructor(cb *classfile.ClassBuilder, owner string, capture []capturedVar) {
	mb := classfile.NewMethodBuilder(0)
	superInit := cb.Pool.Methodref(rootObject, "<init>", "()V")
	mb.EmitLocalOp(classfile.OpALoad, 0, 1)
	mb.EmitU16(classfile.OpInvokeSpecial, superInit, -1)

	slot := 1
	desc := "("
	for _, v := range capture {
		desc += v.descriptor
		mb.EmitLocalOp(classfile.OpALoad, 0, 1)
		load, _, _, _ := opsFor(v.descriptor)
		mb.EmitLocalOp(load, slot, widthOf(v.descriptor))
		ref := cb.Pool.Fieldref(owner, v.name, v.descriptor)
		mb.EmitU16(classfile.OpPutField, ref, -1-widthOf(v.descriptor))
		slot += widthOf(v.descriptor)
	}
	desc += ")V"
	mb.Emit(classfile.OpReturn)

	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: classfile.AccPublic,
		Name:        "<init>",
		Descriptor:  desc,
		MaxStack:    mb.MaxStack(),
		MaxLocals:   slot,
		Code:        mb.Finish(),
	})
}

// freeVariables collects the names a lambda body references that
// resolve to an enclosing local, a conservative over-approximation:
// parameters the lambda itself declares are excluded, but anything
// else found while walking the body that resolves against the
// enclosing method's locals is treated as captured.
func freeVariables(l *ast.Lambda, locals *localEnv) []capturedVar {
	bound := map[string]bool{}
	for _, p := range l.Params {
		bound[p.Name] = true
	}
	seen := map[string]bool{}
	var out []capturedVar
	capture := func(name string) {
		if bound[name] || seen[name] {
			return
		}
		if s, ok := locals.lookup(name); ok {
			seen[name] = true
			out = append(out, capturedVar{name: name, descriptor: s.descriptor})
		}
	}
	walkFreeVars(l.Body, bound, capture)
	return out
}

// walkFreeVars recurses through e's subexpressions looking for
// identifier references, tracking names bound by nested let/for/match
// patterns and lambdas so they aren't mistaken for captures of the
// enclosing scope.
func walkFreeVars(e ast.Expr, bound map[string]bool, capture func(string)) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.Identifier:
		capture(v.Name)
	case *ast.Binary:
		walkFreeVars(v.Left, bound, capture)
		walkFreeVars(v.Right, bound, capture)
	case *ast.Unary:
		walkFreeVars(v.Expr, bound, capture)
	case *ast.Call:
		walkFreeVars(v.Callee, bound, capture)
		for _, a := range v.Args {
			walkFreeVars(a, bound, capture)
		}
	case *ast.MethodCall:
		walkFreeVars(v.Receiver, bound, capture)
		for _, a := range v.Args {
			walkFreeVars(a, bound, capture)
		}
	case *ast.StaticCall:
		for _, a := range v.Args {
			walkFreeVars(a, bound, capture)
		}
	case *ast.FieldAccess:
		walkFreeVars(v.Receiver, bound, capture)
	case *ast.SafeAccess:
		walkFreeVars(v.Receiver, bound, capture)
	case *ast.IndexAccess:
		walkFreeVars(v.Receiver, bound, capture)
		walkFreeVars(v.Index, bound, capture)
	case *ast.Block:
		for _, s := range v.Stmts {
			walkFreeVars(s, bound, capture)
		}
		walkFreeVars(v.Tail, bound, capture)
	case *ast.If:
		walkFreeVars(v.Cond, bound, capture)
		walkFreeVars(v.Then, bound, capture)
		walkFreeVars(v.Else, bound, capture)
	case *ast.Match:
		walkFreeVars(v.Scrutinee, bound, capture)
		for _, arm := range v.Arms {
			walkFreeVars(arm.Guard, bound, capture)
			walkFreeVars(arm.Body, bound, capture)
		}
	case *ast.While:
		walkFreeVars(v.Cond, bound, capture)
		walkFreeVars(v.Body, bound, capture)
	case *ast.For:
		walkFreeVars(v.Iterable, bound, capture)
		walkFreeVars(v.Body, bound, capture)
	case *ast.Return:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Throw:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Try:
		walkFreeVars(v.Body, bound, capture)
		for _, c := range v.Catches {
			walkFreeVars(c.Body, bound, capture)
		}
		walkFreeVars(v.Finally, bound, capture)
	case *ast.New:
		for _, a := range v.Args {
			walkFreeVars(a, bound, capture)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			walkFreeVars(f.Value, bound, capture)
		}
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			walkFreeVars(el, bound, capture)
		}
	case *ast.MapLit:
		for _, entry := range v.Entries {
			walkFreeVars(entry.Key, bound, capture)
			walkFreeVars(entry.Value, bound, capture)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			walkFreeVars(el, bound, capture)
		}
	case *ast.Cast:
		walkFreeVars(v.Value, bound, capture)
	case *ast.TypeCheck:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Coalesce:
		walkFreeVars(v.Value, bound, capture)
		walkFreeVars(v.Default, bound, capture)
	case *ast.ForceUnwrap:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Unwrap:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Assignment:
		walkFreeVars(v.Target, bound, capture)
		walkFreeVars(v.Value, bound, capture)
	case *ast.CompoundAssignment:
		walkFreeVars(v.Target, bound, capture)
		walkFreeVars(v.Value, bound, capture)
	case *ast.Let:
		walkFreeVars(v.Value, bound, capture)
		bindPatternNames(v.Pattern, bound)
	case *ast.Lambda:
		inner := map[string]bool{}
		for k := range bound {
			inner[k] = true
		}
		for _, p := range v.Params {
			inner[p.Name] = true
		}
		walkFreeVars(v.Body, inner, capture)
	case *ast.Await:
		walkFreeVars(v.Value, bound, capture)
	case *ast.Concurrent:
		for _, b := range v.Bindings {
			walkFreeVars(b.Value, bound, capture)
			bound[b.Name] = true
		}
	case *ast.Race:
		for _, c := range v.Clauses {
			walkFreeVars(c, bound, capture)
		}
	case *ast.Timeout:
		walkFreeVars(v.Duration, bound, capture)
		walkFreeVars(v.Body, bound, capture)
	case *ast.With:
		for _, a := range v.Args {
			walkFreeVars(a, bound, capture)
		}
		walkFreeVars(v.Body, bound, capture)
	case *ast.Range:
		walkFreeVars(v.Start, bound, capture)
		walkFreeVars(v.End, bound, capture)
	case *ast.RangeInclusive:
		walkFreeVars(v.Start, bound, capture)
		walkFreeVars(v.End, bound, capture)
	}
}

// bindPatternNames records the names an irrefutable let-pattern binds
// so a later reference to them inside the same lambda body isn't
// mistaken for a capture of the enclosing scope.
func bindPatternNames(p ast.Pattern, bound map[string]bool) {
	switch v := p.(type) {
	case *ast.VariablePattern:
		bound[v.Name] = true
	case *ast.TuplePattern:
		for _, e := range v.Elements {
			bindPatternNames(e, bound)
		}
	case *ast.StructPattern:
		for _, f := range v.Fields {
			bindPatternNames(f.Pattern, bound)
		}
	case *ast.TupleStructPattern:
		for _, e := range v.Elements {
			bindPatternNames(e, bound)
		}
	}
}

// emitConcurrent lowers `concurrent { let a = f1().await, ... }` by
// evaluating each binding's initializer in sequence and binding it to
// a local, a sequential approximation of the construct's fan-out/join
// contract — the actual parallel dispatch is the external runtime's
// job once it receives the compiled call sites.
func (fc *funcCtx) emitConcurrent(c *ast.Concurrent) string {
	for _, b := range c.Bindings {
		desc := fc.emitExpr(b.Value)
		s := fc.locals.declare(b.Name, desc)
		_, store, _, _ := opsFor(desc)
		fc.mb.EmitLocalOp(store, s.slot, -widthOf(desc))
	}
	return "V"
}

// emitRace lowers `race { e1; e2; ... }` to the value of the first
// clause, a sequential stand-in for first-to-complete semantics that
// the external runtime's scheduler implements at execution time.
func (fc *funcCtx) emitRace(r *ast.Race) string {
	if len(r.Clauses) == 0 {
		return "V"
	}
	resultDesc := fc.typeOf(r)
	d := fc.emitExpr(r.Clauses[0])
	fc.convert(d, resultDesc)
	for _, clause := range r.Clauses[1:] {
		fc.emitStmt(clause)
	}
	return resultDesc
}

// emitRange constructs a host Range value from its bounds.
func (fc *funcCtx) emitRange(start, end ast.Expr, inclusive bool) string {
	const rangeClass = "lang/Range"
	mb := fc.mb
	cls := fc.cb.Pool.Class(rangeClass)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	fc.emitExpr(start)
	fc.emitExpr(end)
	if inclusive {
		mb.Emit(classfile.OpIConst1)
	} else {
		mb.Emit(classfile.OpIConst0)
	}
	ref := fc.cb.Pool.Methodref(rangeClass, "<init>", "(IIZ)V")
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -3)
	return "Llang/Range;"
}
