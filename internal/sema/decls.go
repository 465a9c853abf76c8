package sema

import "github.com/flylang/flyc/internal/ast"

// funcCtx carries the enclosing-declaration context a function body is
// checked in: the type it's a method of (nil for free functions), and
// whatever else a sub-check needs to thread through recursive descent
// without re-discovering it from the AST every time.
type funcCtx struct {
	fn       *ast.FunctionDecl
	owner    ast.TopDecl // the class/trait/impl/... this fn is a member of, nil for top-level
	isMethod bool
}

// allFunctions walks every top-level declaration (and Nested types
// recursively) collecting every FunctionDecl the compilation unit
// contains: free functions, class/interface/trait/protocol/impl/extend/
// context/supervisor/flow methods, and spark computed properties +
// methods. Semantic checks that operate per-function (type checking,
// async-context validation, well-formedness) all walk this same list
// rather than re-implementing the traversal.
func (a *Analyzer) allFunctions() []funcCtx {
	var out []funcCtx
	var walk func(d ast.TopDecl)
	walk = func(d ast.TopDecl) {
		switch v := d.(type) {
		case *ast.FunctionDecl:
			out = append(out, funcCtx{fn: v, owner: nil})
		case *ast.ClassDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
			for _, n := range v.Nested {
				walk(n)
			}
		case *ast.InterfaceDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.TraitDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.ProtocolDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.ImplDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.ExtendDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.ContextDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.SupervisorDecl:
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.FlowDecl:
			for _, m := range v.Stages {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		case *ast.SparkDecl:
			for _, m := range v.Computed {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
			for _, m := range v.Methods {
				out = append(out, funcCtx{fn: m, owner: v, isMethod: true})
			}
		}
	}
	for _, d := range a.unit.Decls {
		walk(d)
	}
	return out
}

// walkExprs calls visit on e and every sub-expression it directly
// contains, depth-first, pre-order. It does not descend into nested
// FunctionDecl/Lambda bodies unless the caller's visit function chooses
// to recurse into them explicitly via the returned children — callers
// that need to track per-function state (async-ness, scope) instead
// write their own recursive descent; this helper is for simple
// whole-subtree scans (e.g. "does this body contain a throw").
func walkExprs(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch v := e.(type) {
	case *ast.Binary:
		walkExprs(v.Left, visit)
		walkExprs(v.Right, visit)
	case *ast.Unary:
		walkExprs(v.Expr, visit)
	case *ast.Call:
		walkExprs(v.Callee, visit)
		for _, a := range v.Args {
			walkExprs(a, visit)
		}
	case *ast.MethodCall:
		walkExprs(v.Receiver, visit)
		for _, a := range v.Args {
			walkExprs(a, visit)
		}
	case *ast.StaticCall:
		for _, a := range v.Args {
			walkExprs(a, visit)
		}
	case *ast.FieldAccess:
		walkExprs(v.Receiver, visit)
	case *ast.SafeAccess:
		walkExprs(v.Receiver, visit)
	case *ast.IndexAccess:
		walkExprs(v.Receiver, visit)
		walkExprs(v.Index, visit)
	case *ast.Block:
		for _, s := range v.Stmts {
			walkExprs(s, visit)
		}
		walkExprs(v.Tail, visit)
	case *ast.If:
		walkExprs(v.Cond, visit)
		walkExprs(v.Then, visit)
		walkExprs(v.Else, visit)
	case *ast.Match:
		walkExprs(v.Scrutinee, visit)
		for _, arm := range v.Arms {
			walkExprs(arm.Guard, visit)
			walkExprs(arm.Body, visit)
		}
	case *ast.For:
		walkExprs(v.Iterable, visit)
		walkExprs(v.Body, visit)
	case *ast.While:
		walkExprs(v.Cond, visit)
		walkExprs(v.Body, visit)
	case *ast.Lambda:
		walkExprs(v.Body, visit)
	case *ast.Return:
		walkExprs(v.Value, visit)
	case *ast.Break:
		walkExprs(v.Value, visit)
	case *ast.Await:
		walkExprs(v.Value, visit)
	case *ast.Throw:
		walkExprs(v.Value, visit)
	case *ast.Try:
		walkExprs(v.Body, visit)
		for _, c := range v.Catches {
			walkExprs(c.Body, visit)
		}
		walkExprs(v.Finally, visit)
	case *ast.Concurrent:
		for _, b := range v.Bindings {
			walkExprs(b.Value, visit)
		}
	case *ast.Race:
		for _, c := range v.Clauses {
			walkExprs(c, visit)
		}
	case *ast.Timeout:
		walkExprs(v.Duration, visit)
		walkExprs(v.Body, visit)
	case *ast.With:
		for _, a := range v.Args {
			walkExprs(a, visit)
		}
		walkExprs(v.Body, visit)
	case *ast.New:
		for _, a := range v.Args {
			walkExprs(a, visit)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			walkExprs(f.Value, visit)
		}
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			walkExprs(el, visit)
		}
	case *ast.MapLit:
		for _, en := range v.Entries {
			walkExprs(en.Key, visit)
			walkExprs(en.Value, visit)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			walkExprs(el, visit)
		}
	case *ast.Cast:
		walkExprs(v.Value, visit)
	case *ast.TypeCheck:
		walkExprs(v.Value, visit)
	case *ast.Coalesce:
		walkExprs(v.Value, visit)
		walkExprs(v.Default, visit)
	case *ast.Elvis:
		walkExprs(v.Value, visit)
		walkExprs(v.Default, visit)
	case *ast.Range:
		walkExprs(v.Start, visit)
		walkExprs(v.End, visit)
	case *ast.RangeInclusive:
		walkExprs(v.Start, visit)
		walkExprs(v.End, visit)
	case *ast.ForceUnwrap:
		walkExprs(v.Value, visit)
	case *ast.Unwrap:
		walkExprs(v.Value, visit)
	case *ast.Assignment:
		walkExprs(v.Target, visit)
		walkExprs(v.Value, visit)
	case *ast.CompoundAssignment:
		walkExprs(v.Target, visit)
		walkExprs(v.Value, visit)
	case *ast.Let:
		walkExprs(v.Value, visit)
	}
}
