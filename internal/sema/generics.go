package sema

import (
	"strings"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkGenericBounds is sub-check 4: for every generic
// instantiation found in the compilation unit, verify the argument count
// matches the declared type's arity, and that every type argument
// satisfies each of the corresponding type parameter's declared bounds.
func (a *Analyzer) checkGenericBounds() {
	impls := a.collectImpls()

	for _, d := range a.unit.Decls {
		a.checkDeclGenericBounds(d, impls)
	}
	for _, fc := range a.allFunctions() {
		a.checkFunctionGenericBounds(fc.fn, impls)
	}
}

// implIndex maps a trait name to the set of target type names with a
// visible `impl Trait for Target` in this compilation unit.
type implIndex map[string]map[string]bool

func (a *Analyzer) collectImpls() implIndex {
	idx := implIndex{}
	for _, d := range a.unit.Decls {
		impl, ok := d.(*ast.ImplDecl)
		if !ok || impl.Trait == nil {
			continue
		}
		traitName := baseTypeName(impl.Trait)
		targetName := baseTypeName(impl.Target)
		if idx[traitName] == nil {
			idx[traitName] = map[string]bool{}
		}
		idx[traitName][targetName] = true
	}
	return idx
}

func baseTypeName(t ast.Type) string {
	switch v := t.(type) {
	case *ast.NamedType:
		if len(v.Path) > 0 {
			return v.Path[len(v.Path)-1]
		}
	case *ast.GenericType:
		return v.BaseName
	case *ast.PrimitiveType:
		return v.Kind.String()
	case *ast.TypeParamRef:
		return v.Name
	}
	return t.String()
}

func (a *Analyzer) checkFunctionGenericBounds(fn *ast.FunctionDecl, impls implIndex) {
	for _, tp := range fn.TypeParams {
		for _, b := range tp.Bounds {
			a.checkBoundKnown(b, fn.Span())
		}
	}
}

func (a *Analyzer) checkDeclGenericBounds(d ast.TopDecl, impls implIndex) {
	var typeParams []*ast.TypeParamDecl
	switch v := d.(type) {
	case *ast.ClassDecl:
		typeParams = v.TypeParams
	case *ast.StructDecl:
		typeParams = v.TypeParams
	case *ast.DataDecl:
		typeParams = v.TypeParams
	case *ast.SparkDecl:
		typeParams = v.TypeParams
	case *ast.TraitDecl:
		typeParams = v.TypeParams
	case *ast.InterfaceDecl:
		typeParams = v.TypeParams
	}
	for _, tp := range typeParams {
		for _, b := range tp.Bounds {
			a.checkBoundKnown(b, d.Span())
		}
	}

	// Walk every NamedType/GenericType reachable from this decl's fields
	// and method signatures looking for generic instantiations to check
	// arity/bound satisfaction against the referenced type's own
	// declared type parameters.
	for _, field := range declFields(d) {
		a.checkTypeInstantiation(field.Type, impls)
	}
	for _, m := range declMethods(d) {
		for _, p := range m.Params {
			a.checkTypeInstantiation(p.Type, impls)
		}
		if m.ReturnType != nil {
			a.checkTypeInstantiation(m.ReturnType, impls)
		}
	}
}

func declFields(d ast.TopDecl) []*ast.FieldDecl {
	switch v := d.(type) {
	case *ast.ClassDecl:
		return v.Fields
	case *ast.StructDecl:
		return v.Fields
	case *ast.SparkDecl:
		return v.Fields
	case *ast.ExceptionDecl:
		return v.Fields
	case *ast.ContextDecl:
		return v.Fields
	}
	return nil
}

// fieldType looks up fieldName's declared type on recvType's locally
// declared class/struct/spark/exception/context, the same field list
// checkTypeInstantiation already walks. It returns false when recvType
// isn't a named local declaration or declares no such field, the cases
// where field access must resolve through the injected ClassEnvironment
// instead (not yet modeled here — see DESIGN.md).
func (a *Analyzer) fieldType(recvType ast.Type, fieldName string) (ast.Type, bool) {
	d, ok := a.typeDecls[baseTypeName(recvType)]
	if !ok {
		return nil, false
	}
	for _, f := range declFields(d) {
		if f.Name == fieldName {
			return f.Type, true
		}
	}
	return nil, false
}

func declMethods(d ast.TopDecl) []*ast.FunctionDecl {
	switch v := d.(type) {
	case *ast.ClassDecl:
		return v.Methods
	case *ast.InterfaceDecl:
		return v.Methods
	case *ast.TraitDecl:
		return v.Methods
	case *ast.ProtocolDecl:
		return v.Methods
	case *ast.ImplDecl:
		return v.Methods
	case *ast.ExtendDecl:
		return v.Methods
	case *ast.ContextDecl:
		return v.Methods
	case *ast.SupervisorDecl:
		return v.Methods
	case *ast.FlowDecl:
		return v.Methods
	case *ast.SparkDecl:
		return append(append([]*ast.FunctionDecl{}, v.Computed...), v.Methods...)
	}
	return nil
}

// checkBoundKnown reports BOUNDS002 for a bound naming a trait/protocol
// that isn't declared anywhere in this compilation unit or registered
// import set.
func (a *Analyzer) checkBoundKnown(bound ast.Type, span ast.SourceSpan) {
	name := baseTypeName(bound)
	if d, ok := a.typeDecls[name]; ok {
		switch d.(type) {
		case *ast.TraitDecl, *ast.ProtocolDecl:
			return
		}
		a.errorf(diag.BOUNDS002, span, "bound %q does not name a trait or protocol", name)
		return
	}
	if a.resolver.ClassExists(ast.DottedPath{name}) {
		return
	}
	a.errorf(diag.BOUNDS002, span, "unknown bound %q", name)
}

// checkTypeInstantiation verifies arity and bound satisfaction for a
// generic instantiation `Base[Arg1, Arg2, ...]`.
func (a *Analyzer) checkTypeInstantiation(t ast.Type, impls implIndex) {
	var baseName string
	var args []ast.Type
	switch v := t.(type) {
	case *ast.NamedType:
		if len(v.Args) == 0 {
			return
		}
		baseName, args = baseTypeName(v), v.Args
	case *ast.GenericType:
		baseName, args = v.BaseName, v.Args
	case *ast.OptionalType:
		a.checkTypeInstantiation(v.Inner, impls)
		return
	case *ast.ArrayType:
		a.checkTypeInstantiation(v.Elem, impls)
		return
	case *ast.MapType:
		a.checkTypeInstantiation(v.Key, impls)
		a.checkTypeInstantiation(v.Val, impls)
		return
	default:
		return
	}

	decl, ok := a.typeDecls[baseName]
	if !ok {
		return // externally-resolved type; arity/bounds are the ClassEnvironment's concern
	}
	params := typeParamsOf(decl)
	if len(params) != len(args) {
		a.errorf(diag.BOUNDS001, t.Span(),
			"wrong number of type arguments for %q: expected %d, got %d", baseName, len(params), len(args))
		return
	}
	for i, arg := range args {
		for _, bound := range params[i].Bounds {
			if !satisfiesBound(arg, bound, impls) {
				a.errorf(diag.BOUNDS002, t.Span(),
					"type argument %q does not satisfy bound %q", baseTypeName(arg), baseTypeName(bound))
			}
		}
	}
}

func typeParamsOf(d ast.TopDecl) []*ast.TypeParamDecl {
	switch v := d.(type) {
	case *ast.ClassDecl:
		return v.TypeParams
	case *ast.StructDecl:
		return v.TypeParams
	case *ast.DataDecl:
		return v.TypeParams
	case *ast.SparkDecl:
		return v.TypeParams
	case *ast.TraitDecl:
		return v.TypeParams
	case *ast.InterfaceDecl:
		return v.TypeParams
	case *ast.FunctionDecl:
		return v.TypeParams
	}
	return nil
}

// satisfiesBound reports whether arg satisfies bound: either arg IS that
// trait/protocol by name, or a visible `impl Bound for Arg` exists (spec
// §4.5.4).
func satisfiesBound(arg, bound ast.Type, impls implIndex) bool {
	argName, boundName := baseTypeName(arg), baseTypeName(bound)
	if strings.EqualFold(argName, boundName) {
		return true
	}
	if targets, ok := impls[boundName]; ok && targets[argName] {
		return true
	}
	return false
}
