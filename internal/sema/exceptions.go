package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkExceptionHandling is sub-check 8: `throw e`
// requires e to be of a declared exception type or a subtype of the
// root exception type; `try { } catch (pat) { } finally { }` scopes the
// catch pattern variable only within its own catch block (already
// enforced structurally by checkTypes pushing/popping a scope per
// catch). Here we additionally validate each catch's declared exception
// type and flag a catch clause made unreachable by an earlier catch of
// its superclass.
func (a *Analyzer) checkExceptionHandling() {
	for _, fc := range a.allFunctions() {
		if fc.fn.Body == nil {
			continue
		}
		walkExprs(fc.fn.Body, func(e ast.Expr) {
			switch v := e.(type) {
			case *ast.Throw:
				a.checkThrow(v)
			case *ast.Try:
				a.checkTry(v)
			}
		})
	}
}

func (a *Analyzer) checkThrow(t *ast.Throw) {
	ty, ok := a.types.get(t.Value)
	if !ok {
		return
	}
	name := baseTypeName(ty)
	if name == "" {
		return
	}
	if d, declared := a.typeDecls[name]; declared {
		if _, isExc := d.(*ast.ExceptionDecl); !isExc {
			a.errorf(diag.EXC001, t.Span(), "%q is not a declared exception type", name)
		}
		return
	}
	// Externally resolved type: trust the ClassEnvironment unless it's
	// a type the core itself knows isn't exception-shaped (a primitive).
	if _, prim := primKind(ty); prim {
		a.errorf(diag.EXC001, t.Span(), "cannot throw a non-exception value of type %q", name)
	}
}

func (a *Analyzer) checkTry(t *ast.Try) {
	var seen []string
	for _, c := range t.Catches {
		if c.ExcType == nil {
			continue
		}
		name := baseTypeName(c.ExcType)
		if d, declared := a.typeDecls[name]; declared {
			if _, isExc := d.(*ast.ExceptionDecl); !isExc {
				a.errorf(diag.EXC002, c.Span, "%q is not a declared exception type", name)
			}
		}
		for _, priorName := range seen {
			if superclassChainContains(a.typeDecls, priorName, name) || priorName == name {
				a.sink.Add(diag.NewWarning(diag.EXC003, c.Span,
					"unreachable catch clause: "+priorName+" already catches "+name))
				break
			}
		}
		seen = append(seen, name)
	}
}

// superclassChainContains reports whether ancestorName is a declared
// superclass (direct or transitive) of descendantName, walking
// ExceptionDecl.Superclass links within this compilation unit.
func superclassChainContains(typeDecls map[string]ast.TopDecl, ancestorName, descendantName string) bool {
	cur := descendantName
	for i := 0; i < 64; i++ { // bounded: guards against a malformed cyclic chain
		d, ok := typeDecls[cur]
		if !ok {
			return false
		}
		exc, ok := d.(*ast.ExceptionDecl)
		if !ok || exc.Superclass == nil {
			return false
		}
		next := baseTypeName(exc.Superclass)
		if next == ancestorName {
			return true
		}
		cur = next
	}
	return false
}
