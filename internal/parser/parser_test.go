package parser

import (
	"testing"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.CompilationUnit, []*diag.Report) {
	t.Helper()
	toks := lexer.Tokenize([]byte(src), "test.fly")
	sink := diag.NewSink()
	p := New(toks, "test.fly", sink)
	cu, errs := p.Parse()
	return cu, errs
}

func requireNoErrors(t *testing.T, errs []*diag.Report) {
	t.Helper()
	for _, e := range errs {
		t.Errorf("unexpected diagnostic: %s %s", e.Code, e.Message)
	}
}

func TestParseModuleAndUseForms(t *testing.T) {
	src := `
module app::main

use std::collections::HashMap
use std::io::Reader as R
use std::fmt::{Display, Debug}
use std::prelude::*
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	if cu.ModulePath.String() != "app::main" {
		t.Fatalf("module path = %q", cu.ModulePath)
	}
	if len(cu.Uses) != 4 {
		t.Fatalf("got %d use decls, want 4", len(cu.Uses))
	}
	if cu.Uses[0].Item != "HashMap" {
		t.Errorf("use[0].Item = %q", cu.Uses[0].Item)
	}
	if cu.Uses[1].Alias != "R" {
		t.Errorf("use[1].Alias = %q", cu.Uses[1].Alias)
	}
	if len(cu.Uses[2].Items) != 2 {
		t.Errorf("use[2].Items = %v", cu.Uses[2].Items)
	}
	if !cu.Uses[3].Wildcard {
		t.Errorf("use[3] should be a wildcard import")
	}
}

func TestParseFunctionDeclWithEffectsAndRequires(t *testing.T) {
	src := `
module app::main

pub async fn fetch(url: String) -> String ! {IO, Net} requires url != "" {
	let mut total = 0
	total
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	if len(cu.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(cu.Decls))
	}
	fn, ok := cu.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FunctionDecl", cu.Decls[0])
	}
	if fn.Name != "fetch" || fn.Visibility != ast.Public || !fn.IsAsync {
		t.Errorf("fn = %+v", fn.DeclCommon)
	}
	if len(fn.Effects) != 2 || fn.Effects[0] != "IO" || fn.Effects[1] != "Net" {
		t.Errorf("effects = %v", fn.Effects)
	}
	if fn.Requires == nil {
		t.Errorf("requires clause missing")
	}
	if fn.ReturnType == nil {
		t.Errorf("return type missing")
	}
	block, ok := fn.Body.(*ast.Block)
	if !ok {
		t.Fatalf("body is %T, want *ast.Block", fn.Body)
	}
	if block.Tail == nil {
		t.Errorf("block tail missing")
	}
}

func TestParseClassWithSuperAndFields(t *testing.T) {
	src := `
module app::shapes

class Circle(Shape) {
	pub radius: Float = 1.0

	fn area() -> Float {
		radius * radius
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	cd, ok := cu.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.ClassDecl", cu.Decls[0])
	}
	if cd.Name != "Circle" {
		t.Errorf("name = %q", cd.Name)
	}
	if cd.Superclass == nil {
		t.Errorf("superclass missing")
	}
	if len(cd.Fields) != 1 || cd.Fields[0].Name != "radius" || cd.Fields[0].Visibility != ast.Public {
		t.Errorf("fields = %+v", cd.Fields)
	}
	if len(cd.Methods) != 1 || cd.Methods[0].Name != "area" {
		t.Errorf("methods = %+v", cd.Methods)
	}
}

func TestParseEnumDataStructSpark(t *testing.T) {
	src := `
module app::model

enum Color { Red, Green, Blue, Custom(Int, Int, Int) }

data Shape {
	Circle { radius: Float },
	Square { side: Float },
}

struct Point { x: Float, y: Float }

spark Account {
	balance: Float = 0.0

	validate {
		balance >= 0
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	if len(cu.Decls) != 4 {
		t.Fatalf("got %d decls, want 4", len(cu.Decls))
	}
	en := cu.Decls[0].(*ast.EnumDecl)
	if len(en.Cases) != 4 || en.Cases[3].Name != "Custom" || len(en.Cases[3].Fields) != 3 {
		t.Errorf("enum cases = %+v", en.Cases)
	}
	dd := cu.Decls[1].(*ast.DataDecl)
	if len(dd.Variants) != 2 || dd.Variants[0].Name != "Circle" {
		t.Errorf("data variants = %+v", dd.Variants)
	}
	sd := cu.Decls[2].(*ast.StructDecl)
	if len(sd.Fields) != 2 {
		t.Errorf("struct fields = %+v", sd.Fields)
	}
	spk := cu.Decls[3].(*ast.SparkDecl)
	if spk.Validation == nil {
		t.Errorf("spark validation missing")
	}
}

func TestParseTraitImplAndGenerics(t *testing.T) {
	src := `
module app::ord

trait Comparable[T] {
	fn compareTo(other: T) -> Int
}

impl Comparable[Int] for Int {
	fn compareTo(other: Int) -> Int {
		self - other
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	tr := cu.Decls[0].(*ast.TraitDecl)
	if len(tr.TypeParams) != 1 || tr.TypeParams[0].Name != "T" {
		t.Errorf("type params = %+v", tr.TypeParams)
	}
	impl := cu.Decls[1].(*ast.ImplDecl)
	if impl.Trait == nil || impl.Target == nil {
		t.Errorf("impl = %+v", impl)
	}
	if len(impl.Methods) != 1 {
		t.Errorf("impl methods = %+v", impl.Methods)
	}
}

func TestParseMatchWithGuardsAndOrPatterns(t *testing.T) {
	src := `
module app::main

fn classify(n: Int) -> String {
	match n {
		0 => "zero",
		1 | 2 | 3 => "small",
		x when x < 0 => "negative",
		_ => "large",
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	body := fn.Body.(*ast.Block)
	match, ok := body.Tail.(*ast.Match)
	if !ok {
		t.Fatalf("tail is %T, want *ast.Match", body.Tail)
	}
	if len(match.Arms) != 4 {
		t.Fatalf("got %d arms, want 4", len(match.Arms))
	}
	if _, ok := match.Arms[1].Pattern.(*ast.OrPattern); !ok {
		t.Errorf("arm[1] pattern is %T, want *ast.OrPattern", match.Arms[1].Pattern)
	}
	if _, ok := match.Arms[2].Pattern.(*ast.GuardPattern); !ok {
		t.Errorf("arm[2] pattern is %T, want *ast.GuardPattern", match.Arms[2].Pattern)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `
module app::main

fn calc() -> Int {
	1 + 2 * 3 - 4 / 2
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	body := fn.Body.(*ast.Block)
	top, ok := body.Tail.(*ast.Binary)
	if !ok {
		t.Fatalf("tail is %T, want *ast.Binary", body.Tail)
	}
	if top.Op != ast.OpSub {
		t.Errorf("top-level op = %s, want -", top.Op)
	}
	left, ok := top.Left.(*ast.Binary)
	if !ok || left.Op != ast.OpAdd {
		t.Fatalf("left operand = %+v, want a + binary", top.Left)
	}
	if _, ok := left.Right.(*ast.Binary); !ok {
		t.Errorf("2 * 3 should parse as a nested Binary, got %T", left.Right)
	}
}

func TestParseLambdaAndInterpolatedString(t *testing.T) {
	src := `
module app::main

fn greet(name: String) -> String {
	let fmt = |n| f"hello, {n}!"
	fmt(name)
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	body := fn.Body.(*ast.Block)
	let, ok := body.Stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("stmt[0] is %T, want *ast.Let", body.Stmts[0])
	}
	lambda, ok := let.Value.(*ast.Lambda)
	if !ok {
		t.Fatalf("let value is %T, want *ast.Lambda", let.Value)
	}
	lit, ok := lambda.Body.(*ast.Literal)
	if !ok || lit.Kind != ast.InterpStringLit {
		t.Fatalf("lambda body is %T, want interpolated literal", lambda.Body)
	}
	if len(lit.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(lit.Segments))
	}
	if lit.Segments[1].Expr == nil {
		t.Errorf("middle segment should carry the embedded expression")
	}
}

func TestParseOptionAndCastOperators(t *testing.T) {
	src := `
module app::main

fn run(x: Any) -> Int {
	let y = x as Int
	let z = x is Int
	let w = y ?? 0
	w!!
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	body := fn.Body.(*ast.Block)
	if _, ok := body.Stmts[0].(*ast.Let).Value.(*ast.Cast); !ok {
		t.Errorf("expected a Cast expression")
	}
	if _, ok := body.Stmts[1].(*ast.Let).Value.(*ast.TypeCheck); !ok {
		t.Errorf("expected a TypeCheck expression")
	}
	if _, ok := body.Stmts[2].(*ast.Let).Value.(*ast.Coalesce); !ok {
		t.Errorf("expected a Coalesce expression")
	}
	if _, ok := body.Tail.(*ast.ForceUnwrap); !ok {
		t.Errorf("expected a ForceUnwrap tail, got %T", body.Tail)
	}
}

func TestPanicModeRecoverySkipsOneBadDeclaration(t *testing.T) {
	src := `
module app::main

123

fn ok() -> Int {
	42
}
`
	cu, errs := parseSource(t, src)
	if len(errs) == 0 {
		t.Fatalf("expected at least one diagnostic from the malformed top-level token")
	}
	var foundOK bool
	for _, d := range cu.Decls {
		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Name == "ok" {
			foundOK = true
		}
	}
	if !foundOK {
		t.Errorf("parser should recover and still parse the well-formed fn ok() that follows")
	}
}

func TestParseExceptionDecl(t *testing.T) {
	src := `
module app::errors

exception NotFoundError(AppException) {
	resourceId: String
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	exc := cu.Decls[0].(*ast.ExceptionDecl)
	if exc.Name != "NotFoundError" || exc.Superclass == nil {
		t.Errorf("exception decl = %+v", exc.DeclCommon)
	}
	if len(exc.Fields) != 1 || exc.Fields[0].Name != "resourceId" {
		t.Errorf("exception fields = %+v", exc.Fields)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `
module app::main

fn run() -> Int {
	try {
		risky()
	} catch (e: IOError) {
		0
	} finally {
		cleanup()
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	body := fn.Body.(*ast.Block)
	try, ok := body.Tail.(*ast.Try)
	if !ok {
		t.Fatalf("tail is %T, want *ast.Try", body.Tail)
	}
	if len(try.Catches) != 1 || try.Finally == nil {
		t.Errorf("try = %+v", try)
	}
}

func TestParseStructLiteral(t *testing.T) {
	src := `
module app::main

struct Point { x: Int, y: Int }

fn origin() -> Point {
	Point { x: 0, y: 0 }
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[1].(*ast.FunctionDecl)
	lit, ok := fn.Body.(*ast.Block).Tail.(*ast.StructLit)
	if !ok {
		t.Fatalf("tail is %T, want *ast.StructLit", fn.Body.(*ast.Block).Tail)
	}
	if lit.Type.String() != "Point" {
		t.Errorf("struct literal type = %q, want Point", lit.Type.String())
	}
	if len(lit.Fields) != 2 || lit.Fields[0].Name != "x" || lit.Fields[1].Name != "y" {
		t.Errorf("struct literal fields = %+v", lit.Fields)
	}
}

// A struct literal inside an `if` condition's argument parens is still
// a literal, not a misparsed block; only the bare condition position
// suppresses it.
func TestParseStructLiteralInsideCallInIfCondition(t *testing.T) {
	src := `
module app::main

struct Point { x: Int, y: Int }

fn f(p: Point) -> Bool { true }

fn g() -> Int {
	if f(Point { x: 1, y: 2 }) {
		1
	} else {
		0
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[2].(*ast.FunctionDecl)
	ifExpr, ok := fn.Body.(*ast.Block).Tail.(*ast.If)
	if !ok {
		t.Fatalf("tail is %T, want *ast.If", fn.Body.(*ast.Block).Tail)
	}
	call, ok := ifExpr.Cond.(*ast.Call)
	if !ok {
		t.Fatalf("cond is %T, want *ast.Call", ifExpr.Cond)
	}
	if _, ok := call.Args[0].(*ast.StructLit); !ok {
		t.Errorf("call arg is %T, want *ast.StructLit", call.Args[0])
	}
}

// `if let pat = e { a } else { b }` desugars to `match e { pat => a, _
// => b }` at parse time (spec §4.3); there is no separate *ast.IfLet
// node.
func TestParseIfLetDesugarsToMatch(t *testing.T) {
	src := `
module app::main

fn describe(o: Int?) -> String {
	if let x = o {
		"has a value"
	} else {
		"empty"
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	m, ok := fn.Body.(*ast.Block).Tail.(*ast.Match)
	if !ok {
		t.Fatalf("tail is %T, want *ast.Match", fn.Body.(*ast.Block).Tail)
	}
	if _, ok := m.Scrutinee.(*ast.Identifier); !ok {
		t.Fatalf("scrutinee is %T, want *ast.Identifier", m.Scrutinee)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.VariablePattern); !ok {
		t.Errorf("arm[0] pattern is %T, want *ast.VariablePattern", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[1].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("arm[1] pattern is %T, want *ast.WildcardPattern", m.Arms[1].Pattern)
	}
}

// `if let` with no `else` desugars to a wildcard arm with an empty
// block, the same Void result a bare `if` with no `else` produces.
func TestParseIfLetWithoutElse(t *testing.T) {
	src := `
module app::main

fn maybeLog(o: Int?) -> Void {
	if let x = o {
		println(x)
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	m, ok := fn.Body.(*ast.Block).Tail.(*ast.Match)
	if !ok {
		t.Fatalf("tail is %T, want *ast.Match", fn.Body.(*ast.Block).Tail)
	}
	els, ok := m.Arms[1].Body.(*ast.Block)
	if !ok || len(els.Stmts) != 0 || els.Tail != nil {
		t.Errorf("implicit else arm body = %+v, want an empty block", m.Arms[1].Body)
	}
}

// `while let pat = e { body }` desugars to `loop { match e { pat =>
// body, _ => break } }`; since the AST has no dedicated unconditional
// loop node, the loop is an *ast.While with a literal `true` condition.
func TestParseWhileLetDesugarsToLoopMatch(t *testing.T) {
	src := `
module app::main

fn drain(it: Iter) -> Void {
	while let x = it.next() {
		println(x)
	}
}
`
	cu, errs := parseSource(t, src)
	requireNoErrors(t, errs)
	fn := cu.Decls[0].(*ast.FunctionDecl)
	w, ok := fn.Body.(*ast.Block).Tail.(*ast.While)
	if !ok {
		t.Fatalf("tail is %T, want *ast.While", fn.Body.(*ast.Block).Tail)
	}
	lit, ok := w.Cond.(*ast.Literal)
	if !ok || lit.Kind != ast.BoolLit || lit.Value != true {
		t.Fatalf("cond is %+v, want literal true", w.Cond)
	}
	body, ok := w.Body.(*ast.Block)
	if !ok || len(body.Stmts) != 1 {
		t.Fatalf("body is %+v, want a single-statement block", w.Body)
	}
	m, ok := body.Stmts[0].(*ast.Match)
	if !ok {
		t.Fatalf("loop body statement is %T, want *ast.Match", body.Stmts[0])
	}
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
	if _, ok := m.Arms[1].Body.(*ast.Break); !ok {
		t.Errorf("arm[1] body is %T, want *ast.Break", m.Arms[1].Body)
	}
}
