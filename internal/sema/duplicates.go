package sema

import "github.com/flylang/flyc/internal/diag"

// checkSymbolTableAndDuplicates is sub-check 1: every
// top-level declaration name must be unique within the compilation
// unit. Local declarations were already registered with the resolver
// (DeclareLocalName) in New; here we just detect collisions.
func (a *Analyzer) checkSymbolTableAndDuplicates() {
	seen := map[string]bool{}
	for _, d := range a.unit.Decls {
		name := d.DeclName()
		if seen[name] {
			a.errorf(diag.RES003, d.Span(), "duplicate top-level declaration %q", name)
			continue
		}
		seen[name] = true
	}
}
