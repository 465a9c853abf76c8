package resolver

import (
	"testing"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
)

func TestSymbolTableShadowingAcrossScopes(t *testing.T) {
	tab := NewSymbolTable()
	tab.Define(&Symbol{Name: "x", Kind: SymLocalVar})

	tab.PushScope()
	if shadowed := tab.Define(&Symbol{Name: "x", Kind: SymLocalVar, Mutable: true}); shadowed {
		t.Fatalf("shadowing an outer-scope name in a nested scope should be allowed")
	}
	if sym, ok := tab.Lookup("x"); !ok || !sym.Mutable {
		t.Fatalf("expected the nested shadow to win, got %+v ok=%v", sym, ok)
	}
	tab.PopScope()

	if sym, ok := tab.Lookup("x"); !ok || sym.Mutable {
		t.Fatalf("expected outer binding restored after PopScope, got %+v ok=%v", sym, ok)
	}
}

func TestSymbolTableSameScopeRedefinitionIsDuplicate(t *testing.T) {
	tab := NewSymbolTable()
	tab.Define(&Symbol{Name: "x", Kind: SymLocalVar})
	if shadowed := tab.Define(&Symbol{Name: "x", Kind: SymLocalVar}); !shadowed {
		t.Fatalf("redefining x in the same scope should report a duplicate")
	}
}

func TestResolveLocalDeclarationWinsOverImport(t *testing.T) {
	sink := diag.NewSink()
	r := NewTypeResolver(sink, nil, ast.DottedPath{"app"})
	r.DeclareLocalName("Widget")
	r.RegisterImport(ast.DottedPath{"lib", "ui"}, "Widget", "")

	got, ok := r.Resolve("Widget", ast.NoSpan)
	if !ok {
		t.Fatalf("expected Widget to resolve")
	}
	if got.Path.String() != "app::Widget" {
		t.Fatalf("expected local declaration to win, got %s", got.Path)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
}

func TestResolveAmbiguousSingleImports(t *testing.T) {
	sink := diag.NewSink()
	r := NewTypeResolver(sink, nil, ast.DottedPath{"app"})
	r.RegisterImport(ast.DottedPath{"lib", "a"}, "Foo", "")
	r.RegisterImport(ast.DottedPath{"lib", "b"}, "Foo", "")

	if _, ok := r.Resolve("Foo", ast.NoSpan); ok {
		t.Fatalf("expected ambiguous import to fail resolution")
	}
	reports := sink.Reports()
	if len(reports) != 1 || reports[0].Code != diag.RES002 {
		t.Fatalf("expected a single RES002, got %v", reports)
	}
}

func TestResolveAmbiguousWildcardImports(t *testing.T) {
	sink := diag.NewSink()
	env := MapClassEnvironment{
		"lib::a::Foo": {Path: ast.DottedPath{"lib", "a", "Foo"}},
		"lib::b::Foo": {Path: ast.DottedPath{"lib", "b", "Foo"}},
	}
	r := NewTypeResolver(sink, env, ast.DottedPath{"app"})
	r.RegisterWildcard(ast.DottedPath{"lib", "a"})
	r.RegisterWildcard(ast.DottedPath{"lib", "b"})

	if _, ok := r.Resolve("Foo", ast.NoSpan); ok {
		t.Fatalf("expected ambiguous wildcard import to fail resolution")
	}
	reports := sink.Reports()
	if len(reports) != 1 || reports[0].Code != diag.RES002 {
		t.Fatalf("expected a single RES002, got %v", reports)
	}
}

func TestResolveUnknownNameReportsRES001(t *testing.T) {
	sink := diag.NewSink()
	r := NewTypeResolver(sink, nil, ast.DottedPath{"app"})
	if _, ok := r.Resolve("Nope", ast.NoSpan); ok {
		t.Fatalf("expected resolution failure")
	}
	reports := sink.Reports()
	if len(reports) != 1 || reports[0].Code != diag.RES001 {
		t.Fatalf("expected a single RES001, got %v", reports)
	}
}

func TestClassExistsDelegatesToClassEnvironment(t *testing.T) {
	sink := diag.NewSink()
	env := MapClassEnvironment{
		"lib::Shape": {Path: ast.DottedPath{"lib", "Shape"}, Fields: map[string]string{"area": "D"}},
	}
	r := NewTypeResolver(sink, env, ast.DottedPath{"app"})
	if !r.ClassExists(ast.DottedPath{"lib", "Shape"}) {
		t.Fatalf("expected lib::Shape to exist")
	}
	if r.ClassExists(ast.DottedPath{"lib", "Missing"}) {
		t.Fatalf("expected lib::Missing to not exist")
	}
}

func TestDescriptorOfPrimitivesAndBoxing(t *testing.T) {
	sink := diag.NewSink()
	r := NewTypeResolver(sink, nil, ast.DottedPath{"app"})

	intType := ast.NewPrimitiveType(ast.NoSpan, ast.IntKind)
	if got := r.DescriptorOf(intType, false); got != "I" {
		t.Fatalf("expected unboxed Int descriptor I, got %s", got)
	}
	if got := r.DescriptorOf(intType, true); got != "Llang/Integer;" {
		t.Fatalf("expected boxed Int descriptor, got %s", got)
	}

	floatType := ast.NewPrimitiveType(ast.NoSpan, ast.FloatKind)
	if got := r.DescriptorOf(floatType, false); got != "D" {
		t.Fatalf("expected Float to use the VM's 64-bit double descriptor, got %s", got)
	}

	arr := &ast.ArrayType{Elem: intType}
	if got := r.DescriptorOf(arr, false); got != "[Llang/Integer;" {
		t.Fatalf("expected array elements to always box primitives, got %s", got)
	}

	opt := &ast.OptionalType{Inner: intType}
	if got := r.DescriptorOf(opt, false); got != "Llang/Integer;" {
		t.Fatalf("expected optional-wrapped primitives to box, got %s", got)
	}
}

func TestPrimitiveKindByName(t *testing.T) {
	if k, ok := PrimitiveKindByName("String"); !ok || k != ast.StringKind {
		t.Fatalf("expected String to resolve to StringKind, got %v ok=%v", k, ok)
	}
	if _, ok := PrimitiveKindByName("Widget"); ok {
		t.Fatalf("expected Widget to not be a primitive name")
	}
}
