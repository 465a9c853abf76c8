package sema

import (
	"sort"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkPatternMatching is sub-check 6: each arm's pattern
// must be type-compatible with the scrutinee (best-effort — the core
// does not resolve externally-typed scrutinees through the
// ClassEnvironment here), exhaustiveness is checked for declared sum
// types, and unreachable arms (subsumed by an earlier arm) are warned
// on, never hard errors.
func (a *Analyzer) checkPatternMatching() {
	for _, fc := range a.allFunctions() {
		if fc.fn.Body == nil {
			continue
		}
		walkExprs(fc.fn.Body, func(e ast.Expr) {
			if m, ok := e.(*ast.Match); ok {
				a.checkMatch(m)
			}
		})
	}
}

func (a *Analyzer) checkMatch(m *ast.Match) {
	a.checkReachability(m)
	a.checkExhaustiveness(m)
}

// checkReachability flags an arm as unreachable (MATCH002, warning) if
// an earlier *unguarded* arm already subsumes everything it could match:
// a wildcard/bare-variable arm subsumes all subsequent arms, and a
// variant pattern subsumes a later arm naming the same variant. Guards
// make an arm non-exhaustive for subsumption purposes, so
// a guarded arm never marks anything as covered.
func (a *Analyzer) checkReachability(m *ast.Match) {
	var wildcardSeen bool
	covered := map[string]bool{}
	for _, arm := range m.Arms {
		pat, guarded := stripGuard(arm.Pattern)
		if wildcardSeen {
			a.sink.Add(diag.NewWarning(diag.MATCH002, arm.Span, "unreachable match arm: a previous wildcard arm already covers every case"))
			continue
		}
		if name, isVariant := variantPatternName(pat); isVariant {
			if covered[name] {
				a.sink.Add(diag.NewWarning(diag.MATCH002, arm.Span, "unreachable match arm: variant already matched by a previous arm"))
				continue
			}
			if !guarded {
				covered[name] = true
			}
			continue
		}
		if isCatchAll(pat) && !guarded {
			wildcardSeen = true
		}
	}
}

// checkExhaustiveness reports MATCH001 (warning) if m's scrutinee is a
// declared sum type (Data or Enum) and some variant is covered by
// neither a named-variant arm nor a trailing wildcard/variable arm.
// Primitive and externally-resolved scrutinee types always require a
// wildcard arm to be considered exhaustive.
func (a *Analyzer) checkExhaustiveness(m *ast.Match) {
	if hasCatchAllArm(m) {
		return
	}

	variants, ok := a.sumTypeVariants(m.Scrutinee)
	if !ok {
		// Not a known closed sum type in this compilation unit: the core
		// cannot decide exhaustiveness (primitive or open external type),
		// so the absence of a wildcard is itself the warning.
		a.sink.Add(diag.NewWarning(diag.MATCH001, m.Span(),
			"match is not exhaustive: add a wildcard (`_`) arm"))
		return
	}

	covered := map[string]bool{}
	for _, arm := range m.Arms {
		pat, guarded := stripGuard(arm.Pattern)
		if guarded {
			continue
		}
		if name, isVariant := variantPatternName(pat); isVariant {
			covered[name] = true
		}
	}
	var missing []string
	for _, v := range variants {
		if !covered[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		a.sink.Add(diag.NewWarning(diag.MATCH001, m.Span(),
			"match is not exhaustive: missing variant(s) "+joinNames(missing)).
			WithHint("add arms for the missing variants or a wildcard (`_`) arm"))
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// sumTypeVariants returns the variant/case names of the scrutinee's
// declared Data or Enum type, if the synthesized type resolves to one
// declared in this compilation unit.
func (a *Analyzer) sumTypeVariants(scrutinee ast.Expr) ([]string, bool) {
	ty, ok := a.types.get(scrutinee)
	if !ok {
		return nil, false
	}
	name := baseTypeName(ty)
	d, ok := a.typeDecls[name]
	if !ok {
		return nil, false
	}
	switch v := d.(type) {
	case *ast.DataDecl:
		names := make([]string, len(v.Variants))
		for i, variant := range v.Variants {
			names[i] = variant.Name
		}
		return names, true
	case *ast.EnumDecl:
		names := make([]string, len(v.Cases))
		for i, c := range v.Cases {
			names[i] = c.Name
		}
		return names, true
	}
	return nil, false
}

func hasCatchAllArm(m *ast.Match) bool {
	for _, arm := range m.Arms {
		pat, guarded := stripGuard(arm.Pattern)
		if guarded {
			continue
		}
		if isCatchAll(pat) {
			return true
		}
	}
	return false
}

func isCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		return true
	}
	return false
}

func stripGuard(p ast.Pattern) (inner ast.Pattern, guarded bool) {
	if g, ok := p.(*ast.GuardPattern); ok {
		return g.Inner, true
	}
	return p, false
}

func variantPatternName(p ast.Pattern) (string, bool) {
	switch v := p.(type) {
	case *ast.TupleStructPattern:
		return v.Name, true
	case *ast.StructPattern:
		if v.Type != nil {
			return baseTypeName(v.Type), true
		}
	}
	return "", false
}
