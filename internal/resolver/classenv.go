package resolver

import "github.com/flylang/flyc/internal/ast"

// MethodInfo is one method entry on a ClassInfo.
type MethodInfo struct {
	Name              string
	ParamDescriptors  []string
	ReturnDescriptor  string
	Static            bool
}

// ClassInfo is what a ClassEnvironment returns for a resolved dotted
// path: enough shape for the resolver and semantic analyzer to check
// field access, method calls, and superclass/interface conformance
// without the core component owning the class itself.
type ClassInfo struct {
	Path       ast.DottedPath
	Superclass ast.DottedPath // empty if none
	Interfaces []ast.DottedPath
	Methods    []MethodInfo
	Fields     map[string]string // field name -> VM descriptor
}

// ClassEnvironment is the injected collaborator the resolver and semantic
// analyzer use to answer "does this class exist, and what does it look
// like" for any class outside the compilation unit being compiled —
// library classes, previously compiled Flylang modules, or classes from
// the host VM's standard library. The core component never
// owns an implementation of this; callers (the CLI, a build tool plugin)
// supply one backed by a classpath scanner or a precomputed index.
type ClassEnvironment interface {
	Lookup(path ast.DottedPath) (ClassInfo, bool)
}

// EmptyClassEnvironment is a ClassEnvironment with no entries, useful as
// a default when no external classes participate in a compile (e.g.
// compiling a single self-contained module in `check` mode).
type EmptyClassEnvironment struct{}

func (EmptyClassEnvironment) Lookup(ast.DottedPath) (ClassInfo, bool) { return ClassInfo{}, false }

// MapClassEnvironment is a ClassEnvironment backed by a plain map, the
// shape a CLI driver or test harness builds directly from a manifest.
type MapClassEnvironment map[string]ClassInfo

func (m MapClassEnvironment) Lookup(path ast.DottedPath) (ClassInfo, bool) {
	info, ok := m[path.String()]
	return info, ok
}
