package sema

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

// checkAsyncContexts is sub-check 7: a stack tracks
// async-ness at function/method/lambda-frame boundaries. `await`,
// `concurrent`, `race`, and `timeout` are only legal when the innermost
// enclosing frame is async. Lambdas inherit the enclosing async-ness
// (ast.Lambda.IsAsync is set by the AST builder, not re-derived here).
func (a *Analyzer) checkAsyncContexts() {
	for _, fc := range a.allFunctions() {
		if fc.fn.Body == nil {
			continue
		}
		c := &asyncCheck{a: a}
		c.walk(fc.fn.Body, fc.fn.IsAsync)
	}
}

type asyncCheck struct{ a *Analyzer }

func (c *asyncCheck) walk(e ast.Expr, async bool) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.Await:
		if !async {
			c.a.errorf(diag.TC002, v.Span(), "`await` used outside an async context")
		}
		c.walk(v.Value, async)
	case *ast.Concurrent:
		if !async {
			c.a.errorf(diag.TC003, v.Span(), "`concurrent` used outside an async context")
		}
		seen := map[string]bool{}
		for _, b := range v.Bindings {
			if seen[b.Name] {
				c.a.errorf(diag.RES003, b.Span, "duplicate binding %q in `concurrent`", b.Name)
			}
			seen[b.Name] = true
			c.walk(b.Value, async)
		}
	case *ast.Race:
		if !async {
			c.a.errorf(diag.TC005, v.Span(), "`race` used outside an async context")
		}
		for _, cl := range v.Clauses {
			c.walk(cl, async)
		}
	case *ast.Timeout:
		if !async {
			c.a.errorf(diag.TC006, v.Span(), "`timeout` used outside an async context")
		}
		if dt, ok := c.a.types.get(v.Duration); ok && !isNumeric(dt) {
			c.a.errorf(diag.TC007, v.Duration.Span(), "`timeout` duration must be a numeric type")
		}
		c.walk(v.Duration, async)
		c.walk(v.Body, async)
	case *ast.Lambda:
		c.walk(v.Body, v.IsAsync)
	case *ast.Binary:
		c.walk(v.Left, async)
		c.walk(v.Right, async)
	case *ast.Unary:
		c.walk(v.Expr, async)
	case *ast.Call:
		c.walk(v.Callee, async)
		for _, a := range v.Args {
			c.walk(a, async)
		}
	case *ast.MethodCall:
		c.walk(v.Receiver, async)
		for _, a := range v.Args {
			c.walk(a, async)
		}
	case *ast.StaticCall:
		for _, a := range v.Args {
			c.walk(a, async)
		}
	case *ast.FieldAccess:
		c.walk(v.Receiver, async)
	case *ast.SafeAccess:
		c.walk(v.Receiver, async)
	case *ast.IndexAccess:
		c.walk(v.Receiver, async)
		c.walk(v.Index, async)
	case *ast.Block:
		for _, s := range v.Stmts {
			c.walk(s, async)
		}
		c.walk(v.Tail, async)
	case *ast.If:
		c.walk(v.Cond, async)
		c.walk(v.Then, async)
		c.walk(v.Else, async)
	case *ast.Match:
		c.walk(v.Scrutinee, async)
		for _, arm := range v.Arms {
			c.walk(arm.Guard, async)
			c.walk(arm.Body, async)
		}
	case *ast.For:
		c.walk(v.Iterable, async)
		c.walk(v.Body, async)
	case *ast.While:
		c.walk(v.Cond, async)
		c.walk(v.Body, async)
	case *ast.Return:
		c.walk(v.Value, async)
	case *ast.Break:
		c.walk(v.Value, async)
	case *ast.Throw:
		c.walk(v.Value, async)
	case *ast.Try:
		c.walk(v.Body, async)
		for _, cc := range v.Catches {
			c.walk(cc.Body, async)
		}
		c.walk(v.Finally, async)
	case *ast.With:
		for _, a := range v.Args {
			c.walk(a, async)
		}
		c.walk(v.Body, async)
	case *ast.New:
		for _, a := range v.Args {
			c.walk(a, async)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			c.walk(f.Value, async)
		}
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			c.walk(el, async)
		}
	case *ast.MapLit:
		for _, en := range v.Entries {
			c.walk(en.Key, async)
			c.walk(en.Value, async)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			c.walk(el, async)
		}
	case *ast.Cast:
		c.walk(v.Value, async)
	case *ast.TypeCheck:
		c.walk(v.Value, async)
	case *ast.Coalesce:
		c.walk(v.Value, async)
		c.walk(v.Default, async)
	case *ast.Elvis:
		c.walk(v.Value, async)
		c.walk(v.Default, async)
	case *ast.Range:
		c.walk(v.Start, async)
		c.walk(v.End, async)
	case *ast.RangeInclusive:
		c.walk(v.Start, async)
		c.walk(v.End, async)
	case *ast.ForceUnwrap:
		c.walk(v.Value, async)
	case *ast.Unwrap:
		c.walk(v.Value, async)
	case *ast.Assignment:
		c.walk(v.Target, async)
		c.walk(v.Value, async)
	case *ast.CompoundAssignment:
		c.walk(v.Target, async)
		c.walk(v.Value, async)
	case *ast.Let:
		c.walk(v.Value, async)
	}
}
