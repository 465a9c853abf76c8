package resolver

import "github.com/flylang/flyc/internal/ast"

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymFunction SymbolKind = iota
	SymMethod
	SymLocalVar
	SymParam
	SymField
	SymType
	SymModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymFunction:
		return "function"
	case SymMethod:
		return "method"
	case SymLocalVar:
		return "local variable"
	case SymParam:
		return "parameter"
	case SymField:
		return "field"
	case SymType:
		return "type"
	case SymModule:
		return "module"
	}
	return "symbol"
}

// Symbol is one entry in a SymbolTable scope.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    ast.Type
	Span    ast.SourceSpan
	Mutable bool
	Slot    int // local-variable slot index; -1 until codegen assigns it
}

// scope is one lexical level of a SymbolTable. Scopes chain to a parent so
// Lookup can walk outward a parent chain; unlike an immutable environment
// extended by allocating a child, a SymbolTable scope is pushed and popped
// in place: the analyzer enters a scope on function/method/block/lambda
// entry and leaves it on exit, so a mutable stack fits the traversal
// better than an immutable chain of envs.
type scope struct {
	parent  *scope
	symbols map[string]*Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, symbols: map[string]*Symbol{}}
}

// SymbolTable is a stack of lexical scopes built up while walking a
// compilation unit. Parent-chained lookup, adapted from an immutable
// extend-returns-a-child-env shape to a push/pop stack since the analyzer
// here walks one mutable tree rather than threading an env value through
// pure functions.
type SymbolTable struct {
	top *scope
}

// NewSymbolTable starts a table with a single root (module-level) scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{top: newScope(nil)}
}

// PushScope enters a new nested lexical scope.
func (t *SymbolTable) PushScope() { t.top = newScope(t.top) }

// PopScope leaves the current scope, discarding its bindings.
func (t *SymbolTable) PopScope() {
	if t.top.parent != nil {
		t.top = t.top.parent
	}
}

// Define adds sym to the current scope. It reports whether sym.Name was
// already bound in this exact scope (not an ancestor) — that's the
// RES003 duplicate-declaration case. `let mut` shadowing a
// name from an *ancestor* scope is permitted and is not a
// duplicate; only same-scope redefinition is.
func (t *SymbolTable) Define(sym *Symbol) (shadowed bool) {
	if _, exists := t.top.symbols[sym.Name]; exists {
		return true
	}
	t.top.symbols[sym.Name] = sym
	return false
}

// Lookup walks from the current scope outward to the root, returning the
// first match.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for s := t.top; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal looks only in the current scope, the check Define uses
// internally and that callers use to test for same-scope duplicates
// before calling Define.
func (t *SymbolTable) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := t.top.symbols[name]
	return sym, ok
}

// Depth reports how many scopes are nested above the root, for tests.
func (t *SymbolTable) Depth() int {
	d := 0
	for s := t.top; s.parent != nil; s = s.parent {
		d++
	}
	return d
}
