package flyc

import (
	"testing"

	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/resolver"
)

func countCode(reports []*diag.Report, code string) int {
	n := 0
	for _, r := range reports {
		if r.Code == code {
			n++
		}
	}
	return n
}

// Hello: a single class with one method, compiling to exactly one
// emitted class file under the declared module's package.
func TestCompileHello(t *testing.T) {
	src := `
module demo

class Main {
    pub fn fly(args: [String]) -> Void {
        println("hello")
    }
}
`
	result, err := Compile("hello.fly", []byte(src), resolver.EmptyClassEnvironment{}, Options{WarningLevel: "default"})
	if err != nil {
		t.Fatalf("Compile returned an error: %v (diagnostics: %v)", err, result.Diagnostics)
	}
	if len(result.Classes) != 1 {
		t.Fatalf("got %d classes, want 1 (classes: %v)", len(result.Classes), classNames(result.Classes))
	}
	if _, ok := result.Classes["demo/Main"]; !ok {
		t.Fatalf("expected class demo/Main, got %v", classNames(result.Classes))
	}
}

// check(src) diagnostics must be a subset of compile(src)'s: Compile
// never hides a diagnostic Check would have surfaced.
func TestCheckIsSubsetOfCompile(t *testing.T) {
	src := `
module demo

class Main {
    fn f() -> Int {
        let x = 1
        x!!
    }
}
`
	checkResult := Check("f.fly", []byte(src), resolver.EmptyClassEnvironment{})
	compileResult, _ := Compile("f.fly", []byte(src), resolver.EmptyClassEnvironment{}, Options{WarningLevel: "default"})

	compileCodes := map[string]int{}
	for _, r := range compileResult.Diagnostics {
		compileCodes[r.Code]++
	}
	for _, r := range checkResult.Diagnostics {
		if compileCodes[r.Code] == 0 {
			t.Errorf("Check reported %s but Compile's diagnostics omit it", r.Code)
		}
	}
}

// Determinism: compiling the same source against the same class
// environment twice must produce byte-identical class output.
func TestCompileIsDeterministic(t *testing.T) {
	src := `
module demo

struct Point { x: Int, y: Int }

class Main {
    pub fn fly(args: [String]) -> Void {
        let p = Point { x: 1, y: 2 }
        println(p.x)
    }
}
`
	r1, err1 := Compile("det.fly", []byte(src), resolver.EmptyClassEnvironment{}, Options{WarningLevel: "default"})
	if err1 != nil {
		t.Fatalf("first compile failed: %v (diagnostics: %v)", err1, r1.Diagnostics)
	}
	r2, err2 := Compile("det.fly", []byte(src), resolver.EmptyClassEnvironment{}, Options{WarningLevel: "default"})
	if err2 != nil {
		t.Fatalf("second compile failed: %v", err2)
	}
	if len(r1.Classes) != len(r2.Classes) {
		t.Fatalf("class count differs between runs: %d vs %d", len(r1.Classes), len(r2.Classes))
	}
	for name, bytes1 := range r1.Classes {
		bytes2, ok := r2.Classes[name]
		if !ok {
			t.Fatalf("class %s missing on second compile", name)
		}
		if string(bytes1) != string(bytes2) {
			t.Errorf("class %s differs between compiles", name)
		}
	}
}

// Module declaration is mandatory: a file without one produces exactly
// one Error diagnostic and codegen never runs.
func TestMissingModuleDeclarationIsSingleError(t *testing.T) {
	src := `
class Main {
    fn f() -> Int { 1 }
}
`
	result, err := Compile("nomodule.fly", []byte(src), resolver.EmptyClassEnvironment{}, Options{WarningLevel: "default"})
	if err == nil {
		t.Fatalf("expected an error for a missing module declaration")
	}
	if result.Classes != nil {
		t.Fatalf("codegen must not run when the module declaration is missing")
	}
	errCount := 0
	for _, r := range result.Diagnostics {
		if r.Severity == diag.SeverityError {
			errCount++
		}
	}
	if errCount != 1 {
		t.Fatalf("got %d error diagnostics, want exactly 1 (diagnostics: %v)", errCount, result.Diagnostics)
	}
}

func classNames(classes map[string][]byte) []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	return names
}
