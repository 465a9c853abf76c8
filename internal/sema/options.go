package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkOptionDiscipline is sub-check 9. `?.` on a
// non-optional (OPT002) and `!!`/`?` on a non-optional (OPT001) are
// already diagnosed inline during checkTypes, since they need the
// bidirectional pass's synthesized receiver type at the exact point of
// use. This pass adds the one rule that needs two already-synthesized
// branch types at once: `?? `/`?:` with structurally incompatible
// branches is an error. `if-let`/`while-let` need no check here — the
// AST builder already desugars them to Match/loop nodes
// before semantic analysis ever sees them.
func (a *Analyzer) checkOptionDiscipline() {
	for _, fc := range a.allFunctions() {
		if fc.fn.Body == nil {
			continue
		}
		walkExprs(fc.fn.Body, func(e ast.Expr) {
			switch v := e.(type) {
			case *ast.Coalesce:
				a.checkBranchesCompatible(v.Span(), v.Value, v.Default)
			case *ast.Elvis:
				a.checkBranchesCompatible(v.Span(), v.Value, v.Default)
			}
		})
	}
}

func (a *Analyzer) checkBranchesCompatible(span ast.SourceSpan, lhs, rhs ast.Expr) {
	lt, lok := a.types.get(lhs)
	rt, rok := a.types.get(rhs)
	if !lok || !rok {
		return
	}
	if opt, ok := lt.(*ast.OptionalType); ok {
		lt = opt.Inner
	}
	if compatible(lt, rt) || compatible(rt, lt) {
		return
	}
	a.errorf(diag.TC001, span, "mismatched branch types %q and %q", typeName(lt), typeName(rt))
}
