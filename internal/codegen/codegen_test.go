package codegen

import (
	"testing"

	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
	"github.com/flylang/flyc/internal/parser"
	"github.com/flylang/flyc/internal/resolver"
	"github.com/flylang/flyc/internal/sema"
)

// generate lexes, parses, resolves, and analyzes src, failing the test
// on any error-severity diagnostic, then runs codegen and returns the
// emitted class map.
func generate(t *testing.T, src string) map[string][]byte {
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
	a := sema.New(sink, r, cu)
	a.Analyze()
	if sink.HasErrors() {
		t.Fatalf("analysis reported errors: %v", sink.Reports())
	}
	gen := New(sink, r, a, cu.ModulePath)
	classes := gen.Generate(cu)
	if sink.HasErrors() {
		t.Fatalf("codegen reported errors: %v", sink.Reports())
	}
	return classes
}

func TestEmitClassWithMethod(t *testing.T) {
	src := `
module demo

class Main {
    pub fn fly(args: [String]) -> Void {
    }
}
`
	classes := generate(t, src)
	bytes, ok := classes["demo/Main"]
	if !ok {
		t.Fatalf("expected class demo/Main, got %v", classNames(classes))
	}
	requireValidClassFile(t, bytes, "demo/Main")
}

func TestEmitStructGetterAndWith(t *testing.T) {
	src := `
module demo

struct Point { x: Int, y: Int }
`
	classes := generate(t, src)
	if _, ok := classes["demo/Point"]; !ok {
		t.Fatalf("expected class demo/Point, got %v", classNames(classes))
	}
}

func TestEmitDataVariantsAsNestedClasses(t *testing.T) {
	src := `
module demo

data Shape {
    Circle { radius: Float },
    Square { side: Float },
}
`
	classes := generate(t, src)
	if _, ok := classes["demo/Shape"]; !ok {
		t.Fatalf("expected abstract base class demo/Shape, got %v", classNames(classes))
	}
	if _, ok := classes["demo/Shape$Circle"]; !ok {
		t.Fatalf("expected nested variant class demo/Shape$Circle, got %v", classNames(classes))
	}
	if _, ok := classes["demo/Shape$Square"]; !ok {
		t.Fatalf("expected nested variant class demo/Shape$Square, got %v", classNames(classes))
	}
}

func TestEmitStructLiteralConstructsDeclaredClass(t *testing.T) {
	src := `
module demo

struct Point { x: Int, y: Int }

class Main {
    fn origin() -> Point {
        Point { x: 0, y: 0 }
    }
}
`
	classes := generate(t, src)
	if _, ok := classes["demo/Point"]; !ok {
		t.Fatalf("expected class demo/Point, got %v", classNames(classes))
	}
	if _, ok := classes["demo/Main"]; !ok {
		t.Fatalf("expected class demo/Main, got %v", classNames(classes))
	}
}

func classNames(classes map[string][]byte) []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	return names
}

// requireValidClassFile sanity-checks the serialized bytes start with
// the VM's class-file magic number, the one structural property this
// package's own tests can verify without a full binary-format parser
// (that round-trip lives in internal/classfile's tests).
func requireValidClassFile(t *testing.T, data []byte, name string) {
	t.Helper()
	if len(data) < 8 {
		t.Fatalf("class %s: serialized class file too short (%d bytes)", name, len(data))
	}
	magic := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if magic != 0xCAFEBABE {
		t.Fatalf("class %s: bad magic %#x", name, magic)
	}
}
