package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

const rootObject = "lang/Object"
const rootException = "lang/Exception"

// emitClass emits `class Name(Super, Iface...) { fields; methods }`.
// Nested declarations emit as sibling classes named `Outer$Inner`.
func (g *Generator) emitClass(c *ast.ClassDecl, outer string) {
	name := g.internalName(outer, c.Name)
	super := g.superclassName(c.Superclass)
	if super == "" {
		super = rootObject
	}
	cb := classfile.NewClassBuilder(name, classfile.AccPublic)
	cb.SuperClass = super
	for _, iface := range c.Interfaces {
		cb.Interfaces = append(cb.Interfaces, g.superclassName(iface))
	}

	for _, f := range c.Fields {
		access := uint16(classfile.AccPrivate)
		cb.AddField(classfile.FieldEntry{AccessFlags: access, Name: f.Name, Descriptor: g.resolver.DescriptorOf(f.Type, false)})
	}
	g.emitConstructor(cb, name, super, c.Fields, nil)
	for _, m := range c.Methods {
		g.emitMethod(cb, name, m, true)
	}
	g.addClass(name, cb.Serialize())
	g.emitNestedDecls(c.Nested, name)
}

// emitInterface emits `interface Name { fn foo() -> T; ... }`: every
// method is abstract (no Code attribute).
func (g *Generator) emitInterface(i *ast.InterfaceDecl, outer string) {
	name := g.internalName(outer, i.Name)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract)
	cb.SuperClass = ""
	for _, super := range i.Supers {
		cb.Interfaces = append(cb.Interfaces, g.superclassName(super))
	}
	for _, m := range i.Methods {
		cb.AddMethod(classfile.MethodEntry{
			AccessFlags: classfile.AccPublic | classfile.AccAbstract,
			Name:        m.Name,
			Descriptor:  g.methodDescriptor(m),
		})
	}
	g.addClass(name, cb.Serialize())
	g.emitNestedDecls(i.Nested, name)
}

// emitTraitLike handles TraitDecl/ProtocolDecl: like an interface, but
// a method with a Body emits as a default (non-abstract) method so
// implementors can inherit it unmodified.
func (g *Generator) emitTraitLike(common ast.DeclCommon, methods []*ast.FunctionDecl, outer string) {
	name := g.internalName(outer, common.Name)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccInterface)
	for _, m := range methods {
		if m.Body == nil {
			cb.AddMethod(classfile.MethodEntry{
				AccessFlags: classfile.AccPublic | classfile.AccAbstract,
				Name:        m.Name,
				Descriptor:  g.methodDescriptor(m),
			})
			continue
		}
		g.emitMethod(cb, name, m, true)
	}
	g.addClass(name, cb.Serialize())
	g.emitNestedDecls(common.Nested, name)
}

// emitImpl emits the impl's methods onto a class carrying the
// implemented trait as an interface: `impl Trait for Type`. Flylang
// has no separate vtable artifact — methods attach directly to Type's
// class file, so an inherent impl (Trait == nil) and a trait impl both
// fold their methods onto Target's class. Since Target is usually
// declared elsewhere in the same unit, emitImpl looks it up by name;
// an impl for an external (ClassEnvironment-resolved) type has nothing
// local to attach to and is skipped with no diagnostic, since the host
// type isn't one this compiler owns a class file for.
func (g *Generator) emitImpl(i *ast.ImplDecl, outer string) {
	targetName := g.superclassName(i.Target)
	if targetName == "" {
		return
	}
	name := g.internalName(outer, targetName)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic)
	if i.Trait != nil {
		cb.Interfaces = append(cb.Interfaces, g.superclassName(i.Trait))
	}
	for _, m := range i.Methods {
		g.emitMethod(cb, name, m, true)
	}
	g.addClass(name, cb.Serialize())
}

// emitExtend folds extension methods onto the target type's class the
// same way emitImpl does for impls.
func (g *Generator) emitExtend(e *ast.ExtendDecl, outer string) {
	targetName := g.superclassName(e.Target)
	if targetName == "" {
		return
	}
	name := g.internalName(outer, targetName)
	cb := classfile.NewClassBuilder(name, classfile.AccPublic)
	for _, m := range e.Methods {
		g.emitMethod(cb, name, m, true)
	}
	g.addClass(name, cb.Serialize())
}

// emitException emits a class extending the declared superclass
// (defaulting to the root exception type) with a single constructor
// that takes the declared fields in order and assigns them; no
// message-only or cause-carrying constructor is emitted.
func (g *Generator) emitException(e *ast.ExceptionDecl, outer string) {
	name := g.internalName(outer, e.Name)
	super := g.superclassName(e.Superclass)
	if super == "" {
		super = rootException
	}
	cb := classfile.NewClassBuilder(name, classfile.AccPublic)
	cb.SuperClass = super
	for _, f := range e.Fields {
		cb.AddField(classfile.FieldEntry{AccessFlags: classfile.AccPrivate, Name: f.Name, Descriptor: g.resolver.DescriptorOf(f.Type, false)})
	}
	g.emitConstructor(cb, name, super, e.Fields, nil)
	g.addClass(name, cb.Serialize())
}

// emitFreeFunctionHolder wraps a top-level (non-method) function in a
// static method on a per-file synthetic holder class, the usual
// strategy host VMs use when their class model requires every method
// to belong to a class.
func (g *Generator) emitFreeFunctionHolder(fn *ast.FunctionDecl, outer string) {
	name := g.internalName(outer, "Functions")
	builder := g.holders[name]
	if builder == nil {
		builder = classfile.NewClassBuilder(name, classfile.AccPublic|classfile.AccFinal)
		builder.SuperClass = rootObject
		g.holders[name] = builder
	}
	g.emitMethod(builder, name, fn, false)
	g.addClass(name, builder.Serialize())
}
