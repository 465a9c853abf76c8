package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

// callDescriptor builds a `(arg1,arg2,...)ret` descriptor from the
// argument expressions' synthesized types and the call's own result
// type, used when no declared FunctionDecl signature is available
// (the callee is itself an expression, not a looked-up declaration).
func (fc *funcCtx) callDescriptor(args []ast.Expr, ret string) string {
	desc := "("
	for _, a := range args {
		desc += fc.typeOf(a)
	}
	desc += ")" + ret
	return desc
}

func (fc *funcCtx) emitArgs(args []ast.Expr) {
	for _, a := range args {
		fc.emitExpr(a)
	}
}

// emitCall lowers a bare `f(args)` call. A free function compiles to a
// static method on the enclosing package's synthetic Functions holder
// class.
func (fc *funcCtx) emitCall(c *ast.Call) string {
	name, ok := calleeName(c.Callee)
	if !ok {
		// An indirect call through a function-typed value: invoke its
		// functional interface's single abstract method.
		fc.emitExpr(c.Callee)
		fc.emitArgs(c.Args)
		ret := fc.typeOf(c)
		desc := fc.callDescriptor(c.Args, ret)
		ref := fc.cb.Pool.InterfaceMethodref("lang/Function", "apply", desc)
		fc.mb.EmitU16(classfile.OpInvokeInterface, ref, invokeDelta(c.Args, ret)-1)
		return ret
	}
	holder := fc.gen.internalName("", "Functions")
	ret := fc.typeOf(c)
	desc := fc.callDescriptor(c.Args, ret)
	fc.emitArgs(c.Args)
	ref := fc.cb.Pool.Methodref(holder, name, desc)
	fc.mb.EmitU16(classfile.OpInvokeStatic, ref, invokeDelta(c.Args, ret))
	return ret
}

func calleeName(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.Identifier:
		return v.Name, true
	case *ast.Path:
		return v.Segments[len(v.Segments)-1], true
	}
	return "", false
}

// invokeDelta computes the net stack effect of an invoke instruction:
// pop every argument, push the return value unless it's void.
func invokeDelta(args []ast.Expr, ret string) int {
	delta := -len(args)
	if ret != "V" {
		delta++
	}
	return delta
}

func (fc *funcCtx) emitMethodCall(m *ast.MethodCall) string {
	recvDesc := fc.emitExpr(m.Receiver)
	owner := classNameFromDescriptor(recvDesc)
	ret := fc.typeOf(m)
	desc := fc.callDescriptor(m.Args, ret)
	fc.emitArgs(m.Args)
	ref := fc.cb.Pool.Methodref(owner, m.Name, desc)
	// Invocation pops the receiver in addition to its arguments.
	fc.mb.EmitU16(classfile.OpInvokeVirtual, ref, invokeDelta(m.Args, ret)-1)
	return ret
}

func (fc *funcCtx) emitStaticCall(s *ast.StaticCall) string {
	owner := fc.gen.classNameOf(s.Type)
	ret := fc.typeOf(s)
	desc := fc.callDescriptor(s.Args, ret)
	fc.emitArgs(s.Args)
	ref := fc.cb.Pool.Methodref(owner, s.Name, desc)
	fc.mb.EmitU16(classfile.OpInvokeStatic, ref, invokeDelta(s.Args, ret))
	return ret
}

func (fc *funcCtx) emitFieldAccess(f *ast.FieldAccess) string {
	recvDesc := fc.emitExpr(f.Receiver)
	owner := classNameFromDescriptor(recvDesc)
	desc := fc.typeOf(f)
	ref := fc.cb.Pool.Fieldref(owner, f.Field, desc)
	fc.mb.EmitU16(classfile.OpGetField, ref, widthOf(desc)-1)
	return desc
}

// emitSafeAccess lowers `recv?.field`: if recv is null, short-circuit
// to a null reference without reading the field; otherwise load the
// field's value as is (no boxing).
func (fc *funcCtx) emitSafeAccess(s *ast.SafeAccess) string {
	mb := fc.mb
	nullLabel := mb.NewLabel()
	end := mb.NewLabel()

	recvDesc := fc.emitExpr(s.Receiver)
	_ = recvDesc
	mb.Emit(classfile.OpDup)
	mb.EmitJump(classfile.OpIfNull, nullLabel, -1)
	owner := classNameFromDescriptor(recvDesc)
	desc := fc.typeOf(s)
	ref := fc.cb.Pool.Fieldref(owner, s.Field, desc)
	mb.EmitU16(classfile.OpGetField, ref, widthOf(desc)-1)
	snap := mb.CurrentDepth()
	mb.EmitJump(classfile.OpGoto, end, 0)
	mb.MergeStackDepth(snap)
	mb.MarkLabel(nullLabel)
	mb.Emit(classfile.OpPop)
	mb.Emit(classfile.OpAConstNull)
	mb.MarkLabel(end)
	return desc
}

func (fc *funcCtx) emitIndexAccess(idx *ast.IndexAccess) string {
	recvDesc := fc.emitExpr(idx.Receiver)
	fc.emitExpr(idx.Index)
	elemDesc := fc.typeOf(idx)
	_, _, _, _ = opsFor(elemDesc)
	op := arrayLoadOpFor(elemDesc)
	_ = recvDesc
	fc.mb.Emit(op)
	return elemDesc
}

func arrayLoadOpFor(elemDescriptor string) classfile.Opcode {
	switch elemDescriptor {
	case "I":
		return classfile.OpIALoad
	case "J":
		return classfile.OpLALoad
	case "D":
		return classfile.OpDALoad
	case "C":
		return classfile.OpCALoad
	case "B", "Z":
		return classfile.OpBALoad
	case "S":
		return classfile.OpSALoad
	default:
		return classfile.OpAALoad
	}
}

func arrayStoreOpFor(elemDescriptor string) classfile.Opcode {
	switch elemDescriptor {
	case "I":
		return classfile.OpIAStore
	case "J":
		return classfile.OpLAStore
	case "D":
		return classfile.OpDAStore
	case "C":
		return classfile.OpCAStore
	case "B", "Z":
		return classfile.OpBAStore
	case "S":
		return classfile.OpSAStore
	default:
		return classfile.OpAAStore
	}
}
