// Package sema implements Flylang's semantic analyzer: the ten ordered
// sub-checks run over a parsed, name-resolved compilation unit before
// code generation.
package sema

import (
	"fmt"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/resolver"
)

// Analyzer runs the ten semantic sub-checks over a compilation unit in
// a fixed order: later checks (e.g. trait conformance) assume
// symbol-table population and well-formedness already happened, the
// same way a type checker assumes its module graph already resolved
// before checking conformance against it.
type Analyzer struct {
	sink     *diag.Sink
	resolver *resolver.TypeResolver
	unit     *ast.CompilationUnit

	// typeDecls indexes every top-level type-shaped declaration by name
	// so checks (exhaustiveness, trait conformance) can look up a named
	// type's shape without re-walking the compilation unit each time.
	typeDecls map[string]ast.TopDecl

	// types is the node-identity-keyed side table of synthesized
	// expression types built by checkTypes. Codegen and later checks in the same pass consult
	// it by node identity.
	types *exprType
}

// New creates an Analyzer for a single compilation unit. r must already
// have every `use` declaration registered (RegisterImport/RegisterWildcard)
// before Analyze runs, so name resolution (check 1/2) sees the full
// import set.
func New(sink *diag.Sink, r *resolver.TypeResolver, unit *ast.CompilationUnit) *Analyzer {
	a := &Analyzer{
		sink: sink, resolver: r, unit: unit,
		typeDecls: map[string]ast.TopDecl{},
		types:     newExprTypes(),
	}
	for _, d := range unit.Decls {
		a.typeDecls[d.DeclName()] = d
		r.DeclareLocalName(d.DeclName())
	}
	return a
}

// Analyze runs all ten sub-checks in order. Each check may add
// diagnostics to the shared sink; later checks still run even if an
// earlier one reported errors, so a single `flyc check` invocation
// surfaces as many problems as possible in one pass.
func (a *Analyzer) Analyze() {
	a.checkSymbolTableAndDuplicates()
	a.checkWellFormedness()
	a.checkTypes()
	a.checkGenericBounds()
	a.checkTraitConformance()
	a.checkPatternMatching()
	a.checkAsyncContexts()
	a.checkExceptionHandling()
	a.checkOptionDiscipline()
	a.checkEffectCapture()
}

func (a *Analyzer) errorf(code string, span ast.SourceSpan, format string, args ...any) {
	a.sink.Add(diag.New(code, span, fmt.Sprintf(format, args...)))
}

// TypeOf returns the type checkTypes synthesized for expression e, if
// Analyze has run. Codegen consults this side table by node identity
// rather than re-deriving types during emission.
func (a *Analyzer) TypeOf(e ast.Expr) (ast.Type, bool) {
	return a.types.get(e)
}
