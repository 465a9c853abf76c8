package resolver

import (
	"fmt"
	"sort"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// importedItem records where a single-item `use` brought a name in from,
// for RES002's "ambiguous import" diagnostic to name every candidate.
type importedItem struct {
	module ast.DottedPath
	alias  string
}

// TypeResolver turns a name or dotted path, as written in source, into a
// fully-qualified declaration — either one declared in the compilation
// unit itself, one brought in by a `use` declaration, or a primitive.
// It also computes the VM descriptor for any ast.Type, delegating class
// existence checks to an injected ClassEnvironment so the core never
// needs to know how external classes are stored.
type TypeResolver struct {
	sink  *diag.Sink
	env   ClassEnvironment
	table *SymbolTable

	// singleImports maps a locally-visible name to every module it could
	// have come from. More than one entry for the same name after all
	// `use` declarations are registered is a RES002 ambiguous import.
	singleImports map[string][]importedItem

	// wildcardModules are modules brought in via `use path::*`. A name
	// not found among singleImports or local declarations is looked up
	// across every wildcard module; more than one hit is also RES002.
	wildcardModules []ast.DottedPath

	// locallyDeclared are top-level names declared in this compilation
	// unit — these always win over imports of the same name.
	locallyDeclared map[string]ast.DottedPath

	modulePath ast.DottedPath
}

// NewTypeResolver creates a resolver for a single compilation unit.
// modulePath is the unit's own module declaration, used to qualify its
// locally declared names.
func NewTypeResolver(sink *diag.Sink, env ClassEnvironment, modulePath ast.DottedPath) *TypeResolver {
	if env == nil {
		env = EmptyClassEnvironment{}
	}
	return &TypeResolver{
		sink:            sink,
		env:             env,
		table:           NewSymbolTable(),
		singleImports:   map[string][]importedItem{},
		locallyDeclared: map[string]ast.DottedPath{},
		modulePath:      modulePath,
	}
}

// SymbolTable exposes the resolver's underlying scope stack so the
// semantic analyzer can push/pop scopes and define locals/params through
// the same resolver that answers name-resolution queries.
func (r *TypeResolver) SymbolTable() *SymbolTable { return r.table }

// DeclareLocalName records a top-level name declared in this compilation
// unit. Local
// declarations always shadow same-named imports.
func (r *TypeResolver) DeclareLocalName(name string) {
	full := append(append(ast.DottedPath{}, r.modulePath...), name)
	r.locallyDeclared[name] = full
}

// RegisterImport records a single-item `use module::path::Item` (with an
// optional alias).
func (r *TypeResolver) RegisterImport(module ast.DottedPath, item string, alias string) {
	name := item
	if alias != "" {
		name = alias
	}
	r.singleImports[name] = append(r.singleImports[name], importedItem{module: module, alias: alias})
}

// RegisterWildcard records a `use module::path::*`, the
// register_wildcard operation. Resolution against a wildcard module is
// deferred to Resolve, since a wildcard only conflicts with a name if
// that exact name is actually requested and found in more than one
// wildcard module (or collides with a single-item import).
func (r *TypeResolver) RegisterWildcard(module ast.DottedPath) {
	r.wildcardModules = append(r.wildcardModules, module)
}

// ResolvedType is what Resolve returns for a successfully resolved name:
// the fully-qualified path it refers to, and (when known) the ClassInfo
// describing its shape.
type ResolvedType struct {
	Path  ast.DottedPath
	Class ClassInfo
	HasClass bool
}

// Resolve looks up name against, in priority order: (1) this
// compilation unit's own declarations, (2) single-item imports, (3)
// wildcard imports, reporting RES002 if more than one wildcard module
// (or a wildcard and a single import) supplies the same name, and
// finally (4) failing with RES001 if nothing matches.
func (r *TypeResolver) Resolve(name string, span ast.SourceSpan) (ResolvedType, bool) {
	if full, ok := r.locallyDeclared[name]; ok {
		return r.toResolvedType(full), true
	}

	if items, ok := r.singleImports[name]; ok {
		candidates := candidatePaths(items, name)
		for _, mod := range r.wildcardModules {
			if info, ok := r.env.Lookup(append(append(ast.DottedPath{}, mod...), name)); ok && info.Path.String() != candidates[0] {
				candidates = append(candidates, info.Path.String())
			}
		}
		if len(candidates) > 1 {
			r.reportAmbiguous(name, span, candidates)
			return ResolvedType{}, false
		}
		full := append(append(ast.DottedPath{}, items[0].module...), name)
		return r.toResolvedType(full), true
	}

	var wildcardHits []ast.DottedPath
	for _, mod := range r.wildcardModules {
		if info, ok := r.env.Lookup(append(append(ast.DottedPath{}, mod...), name)); ok {
			wildcardHits = append(wildcardHits, info.Path)
		}
	}
	switch len(wildcardHits) {
	case 0:
		r.sink.Add(diag.New(diag.RES001, span, fmt.Sprintf("unresolved name %q", name)))
		return ResolvedType{}, false
	case 1:
		return r.toResolvedType(wildcardHits[0]), true
	default:
		names := make([]string, len(wildcardHits))
		for i, p := range wildcardHits {
			names[i] = p.String()
		}
		r.reportAmbiguous(name, span, names)
		return ResolvedType{}, false
	}
}

func (r *TypeResolver) reportAmbiguous(name string, span ast.SourceSpan, candidates []string) {
	sort.Strings(candidates)
	rep := diag.New(diag.RES002, span, fmt.Sprintf("ambiguous import: %q could refer to any of %v", name, candidates))
	r.sink.Add(rep.WithData("candidates", candidates))
}

func candidatePaths(items []importedItem, name string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = append(append(ast.DottedPath{}, it.module...), name).String()
	}
	return out
}

func (r *TypeResolver) toResolvedType(full ast.DottedPath) ResolvedType {
	info, ok := r.env.Lookup(full)
	return ResolvedType{Path: full, Class: info, HasClass: ok}
}

// ClassExists reports whether path names a class known to the injected
// ClassEnvironment. Local
// declarations are not consulted here — this is specifically for classes
// outside the compilation unit.
func (r *TypeResolver) ClassExists(path ast.DottedPath) bool {
	_, ok := r.env.Lookup(path)
	return ok
}

// DescriptorOf computes the VM type descriptor for t, boxing primitives
// that appear as a generic type argument ("boxing is
// inserted when a primitive is passed where a reference is expected").
// The boxed flag controls whether a top-level primitive gets boxed;
// nested generic arguments are always boxed regardless of this flag,
// since a generic slot is always reference-typed under the erasure
// strategy chosen for this compiler.
func (r *TypeResolver) DescriptorOf(t ast.Type, boxed bool) string {
	switch v := t.(type) {
	case *ast.PrimitiveType:
		info, _ := LookupPrimitive(v.Kind)
		if boxed {
			return "L" + info.BoxedName + ";"
		}
		return info.Descriptor
	case *ast.NamedType:
		desc := "L" + v.Path.String() + ";"
		return desc
	case *ast.OptionalType:
		// Optionals are always reference-typed on the VM: a primitive
		// inside an Optional is boxed regardless of the outer context.
		return r.DescriptorOf(v.Inner, true)
	case *ast.ArrayType:
		return "[" + r.DescriptorOf(v.Elem, true)
	case *ast.MapType:
		return "Llang/Map;"
	case *ast.ReferenceType:
		return r.DescriptorOf(v.Inner, boxed)
	case *ast.FunctionType:
		return "Llang/Function;"
	case *ast.TupleType:
		return "Llang/Tuple;"
	case *ast.UnionType, *ast.IntersectionType:
		return "Llang/Object;"
	case *ast.TypeParamRef:
		// Erased generics: a bare type parameter is always a reference.
		return "Llang/Object;"
	case *ast.GenericType:
		return "L" + v.BaseName + ";"
	default:
		return "Llang/Object;"
	}
}
