package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

// methodDescriptor builds a method's `(params)return` descriptor from
// its declared parameter and return types.
func (g *Generator) methodDescriptor(fn *ast.FunctionDecl) string {
	desc := "("
	for _, p := range fn.Params {
		desc += g.descriptorOf(p.Type)
	}
	desc += ")"
	if fn.ReturnType == nil {
		desc += "V"
	} else {
		desc += g.descriptorOf(fn.ReturnType)
	}
	return desc
}

// opsFor resolves the load/store/return opcode triple for a VM
// descriptor, mirroring the resolver's PrimitiveInfo table so codegen
// picks the same opcode family the type resolver already committed to
// for that descriptor.
func opsFor(descriptor string) (load, store, ret classfile.Opcode, wide bool) {
	switch descriptor {
	case "I", "Z", "C", "B", "S":
		return classfile.OpILoad, classfile.OpIStore, classfile.OpIReturn, false
	case "J":
		return classfile.OpLLoad, classfile.OpLStore, classfile.OpLReturn, true
	case "D":
		return classfile.OpDLoad, classfile.OpDStore, classfile.OpDReturn, true
	case "V":
		return classfile.OpNop, classfile.OpNop, classfile.OpReturn, false
	default:
		return classfile.OpALoad, classfile.OpAStore, classfile.OpAReturn, false
	}
}

// emitConstructor builds the `<init>` method: call the superclass's
// no-arg constructor, then store one constructor parameter per field
// into that field, in declaration order. extraInit runs after fields
// are assigned (e.g. a Spark's post-construction validation call).
func (g *Generator) emitConstructor(cb *classfile.ClassBuilder, owner, super string, fields []*ast.FieldDecl, extraInit func(mb *classfile.MethodBuilder, locals *localEnv)) {
	locals := newLocalEnv()
	locals.declare("this", "L"+owner+";")
	for _, f := range fields {
		locals.declare(f.Name, g.descriptorOf(f.Type))
	}

	mb := classfile.NewMethodBuilder(0)
	superInit := cb.Pool.Methodref(super, "<init>", "()V")
	mb.EmitLocalOp(classfile.OpALoad, 0, 1)
	mb.EmitU16(classfile.OpInvokeSpecial, superInit, -1)

	for _, f := range fields {
		s := locals.vars[f.Name]
		mb.EmitLocalOp(classfile.OpALoad, 0, 1)
		load, _, _, _ := opsFor(s.descriptor)
		mb.EmitLocalOp(load, s.slot, widthOf(s.descriptor))
		fieldRef := cb.Pool.Fieldref(owner, f.Name, s.descriptor)
		mb.EmitU16(classfile.OpPutField, fieldRef, -2)
	}

	if extraInit != nil {
		extraInit(mb, locals)
	}

	mb.Emit(classfile.OpReturn)

	desc := "("
	for _, f := range fields {
		desc += g.descriptorOf(f.Type)
	}
	desc += ")V"

	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: classfile.AccPublic,
		Name:        "<init>",
		Descriptor:  desc,
		MaxStack:    mb.MaxStack(),
		MaxLocals:   locals.maxLocals(),
		Code:        mb.Finish(),
	})
}

// widthOf returns the stack-effect delta of pushing one value of the
// given descriptor: 2 for wide (Long/Double) locals, 1 otherwise.
func widthOf(descriptor string) int {
	if descriptor == "J" || descriptor == "D" {
		return 2
	}
	return 1
}

// emitMethod emits one function/method body. instance controls whether
// slot 0 is reserved for `this`; free functions (instance == false) and
// static trait/impl helpers start parameter allocation at slot 0.
func (g *Generator) emitMethod(cb *classfile.ClassBuilder, owner string, fn *ast.FunctionDecl, instance bool) {
	locals := newLocalEnv()
	if instance && !fn.IsStatic {
		locals.declare("this", "L"+owner+";")
	}
	for _, p := range fn.Params {
		locals.declare(p.Name, g.descriptorOf(p.Type))
	}

	fc := &funcCtx{gen: g, cb: cb, locals: locals, owner: owner, fn: fn}
	mb := classfile.NewMethodBuilder(0)
	fc.mb = mb

	if fn.Body != nil {
		retDesc := "V"
		if fn.ReturnType != nil {
			retDesc = g.descriptorOf(fn.ReturnType)
		}
		fc.returnDescriptor = retDesc
		fc.emitBodyAsReturn(fn.Body)
	} else {
		mb.Emit(classfile.OpReturn)
	}

	access := uint16(classfile.AccPublic)
	if fn.IsStatic || !instance {
		access |= classfile.AccStatic
	}

	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: access,
		Name:        fn.Name,
		Descriptor:  g.methodDescriptor(fn),
		MaxStack:    mb.MaxStack(),
		MaxLocals:   locals.maxLocals(),
		Code:        mb.Finish(),
		Exceptions:  fc.exceptionTable,
	})
}
