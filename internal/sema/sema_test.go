package sema

import (
	"testing"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
	"github.com/flylang/flyc/internal/parser"
	"github.com/flylang/flyc/internal/resolver"
)

// analyze is the test harness shared by every sema test: lex, parse,
// and run the full ten-sub-check Analyze() pass, returning every
// diagnostic the sink collected (parse errors included, so a malformed
// fixture fails loudly rather than silently skipping its checks).
func analyze(t *testing.T, src string) []*diag.Report {
	t.Helper()
	toks := lexer.Tokenize([]byte(src), "test.fly")
	sink := diag.NewSink()
	p := parser.New(toks, "test.fly", sink)
	cu, _ := p.Parse()
	if cu == nil {
		t.Fatalf("parse produced no compilation unit")
	}
	r := resolver.NewTypeResolver(sink, resolver.EmptyClassEnvironment{}, cu.ModulePath)
	for _, u := range cu.Uses {
		if u.Wildcard {
			r.RegisterWildcard(u.ModulePath)
		} else if len(u.Items) > 0 {
			for _, it := range u.Items {
				r.RegisterImport(u.ModulePath, it, "")
			}
		} else {
			r.RegisterImport(u.ModulePath, u.Item, u.Alias)
		}
	}
	New(sink, r, cu).Analyze()
	return sink.Reports()
}

func codesOf(reports []*diag.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.Code
	}
	return out
}

func countCode(reports []*diag.Report, code string) int {
	n := 0
	for _, r := range reports {
		if r.Code == code {
			n++
		}
	}
	return n
}

// Duplicate binding in a concurrent block.
func TestConcurrentDuplicateBinding(t *testing.T) {
	src := `
module demo

class Main {
    async fn f() -> Void {
        concurrent { let x = g().await, let x = h().await }
    }
    async fn g() -> Int { 1 }
    async fn h() -> Int { 2 }
}
`
	reports := analyze(t, src)
	if n := countCode(reports, diag.RES003); n != 1 {
		t.Fatalf("got %d RES003 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
}

// Await used outside an async context.
func TestAwaitOutsideAsync(t *testing.T) {
	src := `
module demo

class Main {
    fn f() -> Int {
        g().await
    }
    async fn g() -> Int { 1 }
}
`
	reports := analyze(t, src)
	if n := countCode(reports, diag.TC002); n != 1 {
		t.Fatalf("got %d TC002 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
}

// Impl missing a trait-required method.
func TestTraitMissingMethod(t *testing.T) {
	src := `
module demo

trait Printable {
    fn print() -> String
    fn debug() -> String
}

impl Printable for Int {
    fn print() -> String { "n" }
}
`
	reports := analyze(t, src)
	if n := countCode(reports, diag.TRAIT005); n != 1 {
		t.Fatalf("got %d TRAIT005 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
	for _, r := range reports {
		if r.Code == diag.TRAIT005 && !contains(r.Message, "debug") {
			t.Errorf("TRAIT005 message should name the missing method: %q", r.Message)
		}
	}
}

// Exhaustive sum-type match, then non-exhaustive
// after removing a variant.
func TestSumTypeExhaustiveness(t *testing.T) {
	exhaustive := `
module demo

data Color {
    Red,
    Green,
    Blue,
}

class Main {
    fn classify(c: Color) -> Int {
        match c {
            Red => 1,
            Green => 2,
            Blue => 3,
        }
    }
}
`
	reports := analyze(t, exhaustive)
	if n := countCode(reports, diag.MATCH001); n != 0 {
		t.Fatalf("exhaustive match reported MATCH001 (reports: %v)", codesOf(reports))
	}

	nonExhaustive := `
module demo

data Color {
    Red,
    Green,
    Blue,
}

class Main {
    fn classify(c: Color) -> Int {
        match c {
            Red => 1,
            Green => 2,
        }
    }
}
`
	reports = analyze(t, nonExhaustive)
	if n := countCode(reports, diag.MATCH001); n != 1 {
		t.Fatalf("got %d MATCH001 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
	for _, r := range reports {
		if r.Code == diag.MATCH001 && r.Severity != diag.SeverityWarning {
			t.Errorf("MATCH001 must be a warning, not severity %v", r.Severity)
		}
	}
}

func TestDuplicateTopLevelDeclaration(t *testing.T) {
	src := `
module demo

fn helper() -> Int { 1 }
fn helper() -> Int { 2 }
`
	reports := analyze(t, src)
	if n := countCode(reports, diag.RES003); n != 1 {
		t.Fatalf("got %d RES003 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
}

func TestForceUnwrapOnNonOptional(t *testing.T) {
	src := `
module demo

class Main {
    fn f() -> Int {
        let x = 1
        x!!
    }
}
`
	reports := analyze(t, src)
	if n := countCode(reports, diag.OPT001); n != 1 {
		t.Fatalf("got %d OPT001 diagnostics, want exactly 1 (reports: %v)", n, codesOf(reports))
	}
}

// analyzeWithResult is analyze's variant for tests that need the
// Analyzer itself (to recover a synthesized type via TypeOf) rather
// than just its diagnostics.
func analyzeWithResult(t *testing.T, src string) (*Analyzer, []*diag.Report) {
	t.Helper()
	toks := lexer.Tokenize([]byte(src), "test.fly")
	sink := diag.NewSink()
	p := parser.New(toks, "test.fly", sink)
	cu, _ := p.Parse()
	if cu == nil {
		t.Fatalf("parse produced no compilation unit")
	}
	r := resolver.NewTypeResolver(sink, resolver.EmptyClassEnvironment{}, cu.ModulePath)
	for _, u := range cu.Uses {
		if u.Wildcard {
			r.RegisterWildcard(u.ModulePath)
		} else if len(u.Items) > 0 {
			for _, it := range u.Items {
				r.RegisterImport(u.ModulePath, it, "")
			}
		} else {
			r.RegisterImport(u.ModulePath, u.Item, u.Alias)
		}
	}
	a := New(sink, r, cu)
	a.Analyze()
	return a, sink.Reports()
}

// `user?.name ?? "Unknown"` with `user: User?` type-checks with no
// diagnostics, and the let binding's inferred type is String.
func TestOptionCoalesceInference(t *testing.T) {
	src := `
module demo

struct User { name: String }

class Main {
    fn greet(user: User?) -> String {
        let name = user?.name ?? "Unknown"
        name
    }
}
`
	a, reports := analyzeWithResult(t, src)
	if n := countCode(reports, diag.TC001); n != 0 {
		t.Fatalf("got %d TC001 diagnostics, want 0 (reports: %v)", n, codesOf(reports))
	}

	letStmt := findLet(t, a.unit, "name")
	ty, ok := a.TypeOf(letStmt.Value)
	if !ok {
		t.Fatalf("no synthesized type recorded for the `name` binding's initializer")
	}
	if typeName(ty) != "String" {
		t.Fatalf("got inferred type %q, want String", typeName(ty))
	}
}

func findLet(t *testing.T, unit *ast.CompilationUnit, name string) *ast.Let {
	t.Helper()
	var found *ast.Let
	for _, d := range unit.Decls {
		cls, ok := d.(*ast.ClassDecl)
		if !ok {
			continue
		}
		for _, m := range cls.Methods {
			walkExprs(m.Body, func(e ast.Expr) {
				if let, ok := e.(*ast.Let); ok {
					if vp, ok := let.Pattern.(*ast.VariablePattern); ok && vp.Name == name {
						found = let
					}
				}
			})
		}
	}
	if found == nil {
		t.Fatalf("no let binding named %q found", name)
	}
	return found
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
