// Package codegen walks a validated compilation unit and emits the
// host VM's binary class files for every declaration it contains.
// Contracts for each construct follow the ones tracked informally in
// internal/sema's decls.go (what synthesizes to what); codegen is the
// one remaining phase, consuming the resolver's descriptors and the
// analyzer's synthesized-type side table rather than re-deriving them.
package codegen

import (
	"fmt"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/resolver"
	"github.com/flylang/flyc/internal/sema"
)

// Generator emits one compilation unit's classes. A fresh Generator is
// used per unit; it is not safe to reuse across units since it caches
// the unit's own package path.
type Generator struct {
	sink     *diag.Sink
	resolver *resolver.TypeResolver
	analyzer *sema.Analyzer
	pkg      string

	classes map[string][]byte

	// holders accumulates the per-package synthetic class that free
	// functions attach to as static methods, keyed by that class's
	// internal name, so repeated top-level functions in one unit land
	// on the same class instead of each spawning their own.
	holders map[string]*classfile.ClassBuilder
}

// New creates a Generator for a compilation unit that has already
// passed sema.Analyzer.Analyze with no errors. r must be the same
// resolver the analyzer used during semantic analysis so
// descriptor/symbol lookups stay consistent.
func New(sink *diag.Sink, r *resolver.TypeResolver, a *sema.Analyzer, modulePath ast.DottedPath) *Generator {
	return &Generator{
		sink:     sink,
		resolver: r,
		analyzer: a,
		pkg:      classfile.ModuleToPackage(modulePath),
		classes:  map[string][]byte{},
		holders:  map[string]*classfile.ClassBuilder{},
	}
}

// Generate emits every top-level declaration in unit, returning the
// `{fully_qualified_name -> class_bytes}` map. Internal errors
// (unsupported construct, stack-depth failure) are reported through
// the sink as CODEGEN### diagnostics; generation of the offending
// declaration is skipped but siblings still emit.
func (g *Generator) Generate(unit *ast.CompilationUnit) map[string][]byte {
	for _, d := range unit.Decls {
		g.emitTopDecl(d, "")
	}
	return g.classes
}

func (g *Generator) emitTopDecl(d ast.TopDecl, outer string) {
	defer func() {
		if r := recover(); r != nil {
			g.sink.Add(diag.New(diag.CODEGEN001, d.Span(), fmt.Sprintf("internal codegen error on %q: %v", d.DeclName(), r)))
		}
	}()

	switch v := d.(type) {
	case *ast.ClassDecl:
		g.emitClass(v, outer)
	case *ast.InterfaceDecl:
		g.emitInterface(v, outer)
	case *ast.StructDecl:
		g.emitValueClass(v.DeclCommon, outer, nil, v.Fields, nil, nil, nil, nil, nil)
	case *ast.SparkDecl:
		g.emitValueClass(v.DeclCommon, outer, nil, v.Fields, v.Validation, v.BeforeUpdate, v.AfterUpdate, v.Computed, v.Methods)
	case *ast.DataDecl:
		g.emitData(v, outer)
	case *ast.EnumDecl:
		g.emitEnum(v, outer)
	case *ast.ExceptionDecl:
		g.emitException(v, outer)
	case *ast.TraitDecl:
		g.emitTraitLike(v.DeclCommon, v.Methods, outer)
	case *ast.ProtocolDecl:
		g.emitTraitLike(v.DeclCommon, v.Methods, outer)
	case *ast.ImplDecl:
		g.emitImpl(v, outer)
	case *ast.ExtendDecl:
		g.emitExtend(v, outer)
	case *ast.ContextDecl:
		g.emitValueClass(v.DeclCommon, outer, nil, v.Fields, nil, nil, nil, nil, v.Methods)
	case *ast.SupervisorDecl:
		g.emitValueClass(v.DeclCommon, outer, nil, nil, nil, nil, nil, nil, v.Methods)
	case *ast.FlowDecl:
		g.emitValueClass(v.DeclCommon, outer, nil, nil, nil, nil, nil, nil, append(append([]*ast.FunctionDecl{}, v.Stages...), v.Methods...))
	case *ast.FunctionDecl:
		g.emitFreeFunctionHolder(v, outer)
	case *ast.TypeAliasDecl, *ast.MacroDecl:
		// Erased at codegen: aliases resolve to their target at every
		// use site, macros are kept at the grammar level only and
		// produce no class output.
	default:
		g.sink.Add(diag.New(diag.CODEGEN001, d.Span(), fmt.Sprintf("unsupported top-level declaration %T reached codegen", d)))
	}
}

func (g *Generator) internalName(outer, simple string) string {
	return classfile.InternalName(g.pkg, outer, simple)
}

func (g *Generator) addClass(name string, bytes []byte) {
	g.classes[name] = bytes
}

// classNameOf strips the resolver's `L...;` wrapper off a type's
// descriptor, yielding the bare class name invoke/field instructions
// reference.
func (g *Generator) classNameOf(t ast.Type) string {
	return classNameFromDescriptor(g.resolver.DescriptorOf(t, false))
}

func (g *Generator) superclassName(t ast.Type) string {
	if t == nil {
		return ""
	}
	if nt, ok := t.(*ast.NamedType); ok {
		return nt.Path.String()
	}
	return ""
}

func (g *Generator) emitNestedDecls(nested []ast.TopDecl, outer string) {
	for _, n := range nested {
		g.emitTopDecl(n, outer)
	}
}
