package sema

import (
	"fmt"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkTraitConformance is sub-check 5: for every `impl T
// for U`, verify T is a declared trait/protocol, every method T requires
// exists in the impl with a matching signature modulo variance, and the
// impl declares no methods T doesn't require. Also detects a second
// `impl T for U` for the same (trait, target) pair, reported as RES003
// (duplicate declaration in scope) rather than squatting on a TRAIT code
// the spec's §4.5.5 table doesn't assign to this case.
func (a *Analyzer) checkTraitConformance() {
	seen := map[string]ast.SourceSpan{}
	for _, d := range a.unit.Decls {
		impl, ok := d.(*ast.ImplDecl)
		if !ok || impl.Trait == nil {
			continue
		}
		traitName := baseTypeName(impl.Trait)
		key := traitName + " for " + baseTypeName(impl.Target)
		if _, dup := seen[key]; dup {
			a.errorf(diag.RES003, impl.Span(), "duplicate impl of %q for %q", traitName, baseTypeName(impl.Target))
			continue
		}
		seen[key] = impl.Span()

		traitMethods, ok := a.traitMethods(traitName)
		if !ok {
			a.errorf(diag.TRAIT002, impl.Span(), "undefined trait %q", traitName)
			continue
		}
		a.checkImplAgainstTrait(impl, traitName, traitMethods)
	}
}

// traitMethods returns the required method set of a declared trait or
// protocol by name. ok is false if name isn't a Trait/Protocol decl.
func (a *Analyzer) traitMethods(name string) ([]*ast.FunctionDecl, bool) {
	d, ok := a.typeDecls[name]
	if !ok {
		return nil, false
	}
	switch v := d.(type) {
	case *ast.TraitDecl:
		return v.Methods, true
	case *ast.ProtocolDecl:
		return v.Methods, true
	}
	return nil, false
}

func (a *Analyzer) checkImplAgainstTrait(impl *ast.ImplDecl, traitName string, required []*ast.FunctionDecl) {
	implBySig := map[string]*ast.FunctionDecl{}
	for _, m := range impl.Methods {
		implBySig[m.Name] = m
	}

	requiredNames := map[string]bool{}
	for _, req := range required {
		requiredNames[req.Name] = true
		got, ok := implBySig[req.Name]
		if !ok {
			a.errorf(diag.TRAIT005, impl.Span(), "impl of %q is missing required method %q", traitName, req.Name)
			continue
		}
		if !signaturesMatch(req, got) {
			a.errorf(diag.TRAIT002, got.Span(), "method %q signature does not match %q's declaration", got.Name, traitName)
		}
	}
	for _, m := range impl.Methods {
		if !requiredNames[m.Name] {
			a.sink.Add(diag.New(diag.TRAIT006, m.Span(),
				fmt.Sprintf("method %q is not declared by trait %q", m.Name, traitName)).
				WithHint("remove the method or add it to the trait declaration"))
		}
	}
}

// signaturesMatch compares two method signatures "modulo variance" (spec
// §4.5.5): parameter count and (structural) types must agree, and the
// return type must agree or the impl's return type must be a subtype
// position (checked structurally here since subclass lattice information
// comes from the ClassEnvironment, outside the core's own declarations).
func signaturesMatch(want, got *ast.FunctionDecl) bool {
	if len(want.Params) != len(got.Params) {
		return false
	}
	for i := range want.Params {
		if want.Params[i].Type != nil && got.Params[i].Type != nil && !typesEqual(want.Params[i].Type, got.Params[i].Type) {
			return false
		}
	}
	if want.ReturnType != nil && got.ReturnType != nil && !typesEqual(want.ReturnType, got.ReturnType) {
		return false
	}
	return true
}
