package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkWellFormedness is sub-check 2: structural rules
// that don't require type information — duplicate parameter names, a
// module declaration present (reported only if the sink holds no PAR004
// yet, since the parser already reports a missing one), and the `fly`
// entry-point signature. Visibility is not checked: a public
// declaration may name a private nested type in its signature.
func (a *Analyzer) checkWellFormedness() {
	if len(a.unit.ModulePath) == 0 {
		reported := false
		for _, r := range a.sink.Reports() {
			reported = reported || r.Code == diag.PAR004
		}
		if !reported {
			a.errorf(diag.PAR004, a.unit.Span(), "compilation unit is missing a module declaration")
		}
	}

	for _, d := range a.unit.Decls {
		a.checkDeclWellFormed(d)
	}
}

func (a *Analyzer) checkDeclWellFormed(d ast.TopDecl) {
	switch v := d.(type) {
	case *ast.FunctionDecl:
		a.checkFunctionWellFormed(v)
	case *ast.ClassDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.TraitDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.InterfaceDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.ProtocolDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.ImplDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.ExtendDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.ContextDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.SupervisorDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.FlowDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
	case *ast.SparkDecl:
		for _, m := range v.Methods {
			a.checkFunctionWellFormed(m)
		}
		for _, m := range v.Computed {
			a.checkFunctionWellFormed(m)
		}
	}

	if d.DeclName() == "fly" {
		if fn, ok := d.(*ast.FunctionDecl); ok {
			a.checkFlyEntryPoint(fn)
		} else {
			a.errorf(diag.PAR003, d.Span(), "`fly` must be declared as a function, not a %s", declKindName(d))
		}
	}
}

// checkFlyEntryPoint enforces the entry-point signature:
// `fn fly(args: [String]) -> ReturnType`.
func (a *Analyzer) checkFlyEntryPoint(fn *ast.FunctionDecl) {
	if len(fn.Params) != 1 {
		a.errorf(diag.PAR003, fn.Span(), "entry point `fly` must take exactly one parameter, got %d", len(fn.Params))
		return
	}
	arr, ok := fn.Params[0].Type.(*ast.ArrayType)
	if !ok {
		a.errorf(diag.PAR003, fn.Span(), "entry point `fly`'s parameter must be `[String]`")
		return
	}
	if prim, ok := arr.Elem.(*ast.PrimitiveType); !ok || prim.Kind != ast.StringKind {
		a.errorf(diag.PAR003, fn.Span(), "entry point `fly`'s parameter must be `[String]`")
	}
}

func (a *Analyzer) checkFunctionWellFormed(fn *ast.FunctionDecl) {
	seen := map[string]bool{}
	for _, p := range fn.Params {
		if seen[p.Name] {
			a.errorf(diag.PAR003, p.Span, "duplicate parameter name %q in %q", p.Name, fn.Name)
			continue
		}
		seen[p.Name] = true
	}
}

func declKindName(d ast.TopDecl) string {
	switch d.(type) {
	case *ast.ClassDecl:
		return "class"
	case *ast.InterfaceDecl:
		return "interface"
	case *ast.EnumDecl:
		return "enum"
	case *ast.DataDecl:
		return "data type"
	case *ast.StructDecl:
		return "struct"
	case *ast.SparkDecl:
		return "spark"
	case *ast.TraitDecl:
		return "trait"
	case *ast.ProtocolDecl:
		return "protocol"
	case *ast.ImplDecl:
		return "impl"
	case *ast.TypeAliasDecl:
		return "type alias"
	case *ast.ExtendDecl:
		return "extend block"
	case *ast.ContextDecl:
		return "context"
	case *ast.SupervisorDecl:
		return "supervisor"
	case *ast.FlowDecl:
		return "flow"
	case *ast.MacroDecl:
		return "macro"
	case *ast.ExceptionDecl:
		return "exception"
	default:
		return "declaration"
	}
}
