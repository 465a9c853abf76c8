package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

// emitValueClass emits an immutable record type (struct/spark/context/
// supervisor/flow all reduce to this shape): private final fields, a
// constructor assigning them in order, one getter per field, and a
// `withField` copy method per field. A Spark's validation expression
// runs at the end of the constructor; its before/after-update hooks
// and computed properties attach as ordinary instance methods.
func (g *Generator) emitValueClass(common ast.DeclCommon, outer string, superclass ast.Type, fields []*ast.FieldDecl, validation, beforeUpdate, afterUpdate ast.Expr, computed []*ast.FunctionDecl, methods []*ast.FunctionDecl) {
	name := g.internalName(outer, common.Name)
	super := g.superclassName(superclass)
	if super == "" {
		super = rootObject
	}
	cb := classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccFinal)
	cb.SuperClass = super

	for _, f := range fields {
		cb.AddField(classfile.FieldEntry{AccessFlags: classfile.AccPrivate | classfile.AccFinal, Name: f.Name, Descriptor: g.descriptorOf(f.Type)})
	}

	extraInit := func(mb *classfile.MethodBuilder, locals *localEnv) {
		if validation == nil {
			return
		}
		fc := &funcCtx{gen: g, cb: cb, mb: mb, locals: locals, owner: name, returnDescriptor: "V"}
		fc.emitStmt(validation)
	}
	g.emitConstructor(cb, name, super, fields, extraInit)

	for _, f := range fields {
		g.emitGetter(cb, name, f)
		g.emitWither(cb, name, fields, f)
	}

	if beforeUpdate != nil {
		g.emitHookMethod(cb, name, "beforeUpdate", beforeUpdate)
	}
	if afterUpdate != nil {
		g.emitHookMethod(cb, name, "afterUpdate", afterUpdate)
	}
	for _, c := range computed {
		g.emitMethod(cb, name, c, true)
	}
	for _, m := range methods {
		g.emitMethod(cb, name, m, true)
	}

	g.addClass(name, cb.Serialize())
	g.emitNestedDecls(common.Nested, name)
}

// emitGetter emits a zero-arg accessor returning the named field.
func (g *Generator) emitGetter(cb *classfile.ClassBuilder, owner string, f *ast.FieldDecl) {
	mb := classfile.NewMethodBuilder(0)
	desc := g.descriptorOf(f.Type)
	mb.EmitLocalOp(classfile.OpALoad, 0, 1)
	ref := cb.Pool.Fieldref(owner, f.Name, desc)
	mb.EmitU16(classfile.OpGetField, ref, widthOf(desc)-1)
	_, _, ret, _ := opsFor(desc)
	mb.Emit(ret)
	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: classfile.AccPublic,
		Name:        f.Name,
		Descriptor:  "()" + desc,
		MaxStack:    mb.MaxStack(),
		MaxLocals:   1,
		Code:        mb.Finish(),
	})
}

// emitWither emits `withField(newValue)`, a copy of the receiver with
// one field replaced, built by re-reading every other field off the
// receiver and passing the parameter through for target.
func (g *Generator) emitWither(cb *classfile.ClassBuilder, owner string, fields []*ast.FieldDecl, target *ast.FieldDecl) {
	locals := newLocalEnv()
	locals.declare("this", "L"+owner+";")
	paramDesc := g.descriptorOf(target.Type)
	paramSlot := locals.declare("0new", paramDesc)

	mb := classfile.NewMethodBuilder(0)
	cls := cb.Pool.Class(owner)
	mb.EmitU16(classfile.OpNew, cls, 1)
	mb.Emit(classfile.OpDup)
	ctorDesc := "("
	for _, f := range fields {
		fd := g.descriptorOf(f.Type)
		ctorDesc += fd
		if f.Name == target.Name {
			load, _, _, _ := opsFor(paramDesc)
			mb.EmitLocalOp(load, paramSlot.slot, widthOf(paramDesc))
			continue
		}
		mb.EmitLocalOp(classfile.OpALoad, 0, 1)
		ref := cb.Pool.Fieldref(owner, f.Name, fd)
		mb.EmitU16(classfile.OpGetField, ref, widthOf(fd)-1)
	}
	ctorDesc += ")V"
	ref := cb.Pool.Methodref(owner, "<init>", ctorDesc)
	mb.EmitU16(classfile.OpInvokeSpecial, ref, -len(fields)-1)
	mb.Emit(classfile.OpAReturn)

	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: classfile.AccPublic,
		Name:        "with" + capitalize(target.Name),
		Descriptor:  "(" + paramDesc + ")L" + owner + ";",
		MaxStack:    mb.MaxStack(),
		MaxLocals:   locals.maxLocals(),
		Code:        mb.Finish(),
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// emitHookMethod wraps a Spark's before/after-update expression as a
// void instance method the runtime invokes around a `with` copy.
func (g *Generator) emitHookMethod(cb *classfile.ClassBuilder, owner, name string, body ast.Expr) {
	locals := newLocalEnv()
	locals.declare("this", "L"+owner+";")
	mb := classfile.NewMethodBuilder(0)
	fc := &funcCtx{gen: g, cb: cb, mb: mb, locals: locals, owner: owner, returnDescriptor: "V"}
	fc.emitBodyAsReturn(body)
	cb.AddMethod(classfile.MethodEntry{
		AccessFlags: classfile.AccPublic,
		Name:        name,
		Descriptor:  "()V",
		MaxStack:    mb.MaxStack(),
		MaxLocals:   locals.maxLocals(),
		Code:        mb.Finish(),
	})
}

// emitData emits an abstract base class plus one final nested subclass
// per variant. Each variant's fields compile under positional names
// ("_0", "_1", ...), the same convention pattern-matching's
// tuple-struct test relies on to read them back out.
func (g *Generator) emitData(d *ast.DataDecl, outer string) {
	name := g.internalName(outer, d.Name)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccAbstract)
	cb.SuperClass = rootObject
	g.addClass(name, cb.Serialize())

	for _, variant := range d.Variants {
		g.emitVariantClass(name, variant.Name, positionalFields(len(variant.Fields), variant.Fields))
	}
	g.emitNestedDecls(d.Nested, name)
}

// emitEnum emits the same shape as emitData: each case becomes a final
// subclass of the enum's abstract base, carrying its associated values
// (if any) as positional fields.
func (g *Generator) emitEnum(e *ast.EnumDecl, outer string) {
	name := g.internalName(outer, e.Name)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccAbstract)
	cb.SuperClass = rootObject
	g.addClass(name, cb.Serialize())

	for _, c := range e.Cases {
		fields := make([]*ast.FieldDecl, len(c.Fields))
		for i, t := range c.Fields {
			fields[i] = &ast.FieldDecl{Name: positionalFieldName(i), Type: t}
		}
		g.emitVariantClass(name, c.Name, fields)
	}
	g.emitNestedDecls(e.Nested, name)
}

// positionalFields renames a variant's declared fields to "_0", "_1",
// ... regardless of the source names they were parsed with, matching
// the convention pattern-matching's field reads assume.
func positionalFields(n int, declared []*ast.FieldDecl) []*ast.FieldDecl {
	out := make([]*ast.FieldDecl, n)
	for i, f := range declared {
		out[i] = &ast.FieldDecl{Name: positionalFieldName(i), Type: f.Type, Mutable: f.Mutable}
	}
	return out
}

func (g *Generator) emitVariantClass(baseName, variantName string, fields []*ast.FieldDecl) {
	variantClass := baseName + "$" + variantName
	cb := classfile.NewClassBuilder(variantClass, classfile.AccPublic|classfile.AccFinal)
	cb.SuperClass = baseName
	for _, f := range fields {
		cb.AddField(classfile.FieldEntry{AccessFlags: classfile.AccPublic | classfile.AccFinal, Name: f.Name, Descriptor: g.descriptorOf(f.Type)})
	}
	g.emitConstructor(cb, variantClass, baseName, fields, nil)
	g.addClass(variantClass, cb.Serialize())
}
