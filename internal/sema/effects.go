package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkEffectCapture is sub-check 10: `with Eff1, Eff2`
// and `requires expr` are attached to a function's signature metadata
// for codegen to preserve; the core imposes no runtime semantics beyond
// that. The one diagnostic this sub-check owns (EFF001) catches a
// function body calling another declared function that requires an
// effect the caller itself never declared — every other aspect of
// effect/requires handling is pure metadata passthrough, not validation.
func (a *Analyzer) checkEffectCapture() {
	effectsByName := map[string][]string{}
	for _, fc := range a.allFunctions() {
		effectsByName[fc.fn.Name] = fc.fn.Effects
	}

	for _, fc := range a.allFunctions() {
		if fc.fn.Body == nil {
			continue
		}
		declared := stringSet(fc.fn.Effects)
		walkExprs(fc.fn.Body, func(e ast.Expr) {
			call, ok := e.(*ast.Call)
			if !ok {
				return
			}
			id, ok := call.Callee.(*ast.Identifier)
			if !ok {
				return
			}
			required, ok := effectsByName[id.Name]
			if !ok {
				return
			}
			for _, eff := range required {
				if !declared[eff] {
					a.errorf(diag.EFF001, call.Span(),
						"call to %q requires effect %q, not declared by the enclosing function", id.Name, eff)
				}
			}
		})
	}
}

func stringSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
