package codegen

import "github.com/flylang/flyc/internal/ast"

// localSlot records where one local variable lives and how to load,
// store, and return a value of its kind.
type localSlot struct {
	slot       int
	descriptor string
	wide       bool // occupies two local slots (Long/Double)
}

// localEnv allocates local-variable slots in source order: `this` (if
// present) occupies slot 0, then parameters, then each `let` binding as
// it is encountered walking the method body. Flylang has no block
// scoping that frees a slot early, so slots are never reused within one
// method — simple and always correct, at the cost of sometimes
// reserving more slots than a tighter allocator would.
type localEnv struct {
	vars map[string]localSlot
	next int
}

func newLocalEnv() *localEnv {
	return &localEnv{vars: map[string]localSlot{}}
}

// declare reserves the next free slot(s) for name with the given
// descriptor, returning the allocated slot info. A later declare for
// the same name shadows the earlier one, as a `let` in a nested block
// reusing an outer name does; a same-scope re-`let` is reported by sema
// as a duplicate binding (RES003) before codegen runs.
func (e *localEnv) declare(name, descriptor string) localSlot {
	wide := descriptor == "J" || descriptor == "D"
	s := localSlot{slot: e.next, descriptor: descriptor, wide: wide}
	if wide {
		e.next += 2
	} else {
		e.next += 1
	}
	e.vars[name] = s
	return s
}

func (e *localEnv) lookup(name string) (localSlot, bool) {
	s, ok := e.vars[name]
	return s, ok
}

// maxLocals returns the total slot count reserved so far, the value a
// method's Code attribute reports as max_locals.
func (e *localEnv) maxLocals() int { return e.next }

// isReferenceDescriptor reports whether d denotes a reference type on
// the VM (object, array, or boxed primitive) rather than a raw
// primitive slot.
func isReferenceDescriptor(d string) bool {
	if d == "" {
		return true
	}
	switch d[0] {
	case 'L', '[':
		return true
	default:
		return false
	}
}

// descriptorOf is a convenience wrapper the codegen package's files
// share for turning a declared ast.Type into its VM descriptor using
// the Generator's resolver.
func (g *Generator) descriptorOf(t ast.Type) string {
	if t == nil {
		return "Llang/Object;"
	}
	return g.resolver.DescriptorOf(t, false)
}
