package classfile

import (
	"strings"

	"github.com/google/uuid"
)

// ModuleToPackage converts a `a::b::c` module path to the VM's
// `/`-separated package path convention.
func ModuleToPackage(modulePath []string) string {
	return strings.Join(modulePath, "/")
}

// InternalName joins a package path and a simple class name into the
// VM's internal class name form, e.g. "a/b/c/Widget". outer, when
// non-empty, produces a nested class name "Outer$Inner".
func InternalName(pkg, outer, simple string) string {
	name := simple
	if outer != "" {
		name = outer + "$" + simple
	}
	if pkg == "" {
		return name
	}
	return pkg + "/" + name
}

// SyntheticName builds a collision-free name for a compiler-generated
// class (a lambda's functional-interface implementation, or an async
// method's continuation state machine): the enclosing method's simple
// name, a role tag, and a short random suffix so two lambdas declared
// at the same source line across separate compilations never collide.
func SyntheticName(enclosingSimpleName, role string) string {
	suffix := uuid.New().String()[:8]
	return enclosingSimpleName + "$" + role + "$" + suffix
}
