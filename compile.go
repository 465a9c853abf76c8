// Package flyc is the public entrypoint to the Flylang compiler core:
// parse, check, and compile a single source file against an injected
// class-resolution capability. Everything under internal/ is the
// implementation; this file is the one surface external drivers (a
// build tool, a test harness, cmd/flyc) import.
package flyc

import (
	"strings"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/codegen"
	"github.com/flylang/flyc/internal/config"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
	"github.com/flylang/flyc/internal/parser"
	"github.com/flylang/flyc/internal/resolver"
	"github.com/flylang/flyc/internal/sema"
)

// ClassEnvironment is re-exported so callers can implement it without
// reaching into internal/resolver directly.
type ClassEnvironment = resolver.ClassEnvironment

// Options is re-exported so callers can build one without importing
// internal/config directly.
type Options = config.Options

// CompileResult is what a successful Compile returns.
type CompileResult struct {
	// Classes maps each emitted class's fully qualified internal name to
	// its serialized class-file bytes.
	Classes map[string][]byte
	// Diagnostics holds every diagnostic recorded during the compile,
	// including warnings even when there were no errors.
	Diagnostics []*diag.Report
}

// CheckResult is what Check returns: diagnostics only, no codegen.
type CheckResult struct {
	Diagnostics []*diag.Report
}

// Parse lexes and parses sourceBytes, returning the AST and any
// diagnostics recorded along the way. A syntax error still returns a
// best-effort *ast.CompilationUnit (panic-mode recovery keeps parsing
// past the first error) alongside the diagnostics describing it.
func Parse(sourcePath string, sourceBytes []byte) (*ast.CompilationUnit, []*diag.Report) {
	sink := diag.NewSink()
	toks := tokenize(sourceBytes, sourcePath, sink)
	p := parser.New(toks, sourcePath, sink)
	// Parse reports through the same sink it was given and also returns
	// its reports directly; the return value is not a distinct set to
	// re-add.
	cu, _ := p.Parse()
	return cu, sink.Sorted()
}

// tokenize runs the lexer to completion and reports every lexical error
// it accumulated as a LEX### diagnostic. lexer.Tokenize discards the
// Lexer instance that carries Errors(), so the token stream is built
// directly against lexer.New here instead.
func tokenize(sourceBytes []byte, sourcePath string, sink *diag.Sink) []lexer.Token {
	l := lexer.New(lexer.Normalize(sourceBytes), sourcePath)
	var toks []lexer.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	for _, e := range l.Errors() {
		span := ast.SourceSpan{File: e.File, StartLine: uint32(e.Line), StartCol: uint32(e.Column), EndLine: uint32(e.Line), EndCol: uint32(e.Column)}
		sink.Add(diag.New(lexErrorCode(e.Message), span, e.Message))
	}
	return toks
}

// lexErrorCode maps a lexical error's message to its stable LEX###
// code. The lexer itself carries no code field (see internal/lexer's
// Error type) since classifying by message keeps the lexer free of a
// diag import; this is the one place that bridges the two.
func lexErrorCode(message string) string {
	switch {
	case strings.Contains(message, "unterminated string"):
		return diag.LEX002
	case strings.Contains(message, "unterminated block comment"):
		return diag.LEX003
	case strings.Contains(message, "unterminated char"):
		return diag.LEX002
	case strings.Contains(message, "invalid") && strings.Contains(message, "escape"):
		return diag.LEX005
	case strings.Contains(message, "unexpected character"):
		return diag.LEX001
	default:
		return diag.LEX004
	}
}

// Check runs the lexer, parser, and every semantic sub-check over
// sourceBytes with no code generation, the syntax+semantic-only half of
// the public API.
func Check(sourcePath string, sourceBytes []byte, env ClassEnvironment) CheckResult {
	sink := diag.NewSink()
	analyze(sourcePath, sourceBytes, env, sink)
	return CheckResult{Diagnostics: sink.Sorted()}
}

// Compile runs the full pipeline: lex, parse, resolve, analyze, and (if
// analysis reported no errors) generate class files.
// opts.TreatWarningsAsErrors promotes every warning to an error before
// that decision; opts.WarningLevel is not consulted here. Codegen itself
// never runs over a unit that failed semantic analysis.
func Compile(sourcePath string, sourceBytes []byte, env ClassEnvironment, opts Options) (CompileResult, error) {
	sink := diag.NewSink()
	cu, r, a := analyze(sourcePath, sourceBytes, env, sink)

	if opts.TreatWarningsAsErrors {
		for _, rep := range sink.Reports() {
			if rep.Severity == diag.SeverityWarning {
				rep.Severity = diag.SeverityError
			}
		}
	}
	if sink.HasErrors() || cu == nil {
		reports := sink.Sorted()
		return CompileResult{Diagnostics: reports}, diag.Wrap(firstError(reports))
	}

	gen := codegen.New(sink, r, a, cu.ModulePath)
	classes := gen.Generate(cu)
	allReports := sink.Sorted()
	if sink.HasErrors() {
		return CompileResult{Diagnostics: allReports}, diag.Wrap(firstError(allReports))
	}
	return CompileResult{Classes: classes, Diagnostics: allReports}, nil
}

// analyze runs lex through semantic analysis, the shared prefix of
// Check and Compile, returning the parsed unit (nil on an unrecoverable
// parse failure), the resolver built for it, and the analyzer that ran
// over it. Compile reuses the same resolver/analyzer for codegen rather
// than re-running analysis a second time.
func analyze(sourcePath string, sourceBytes []byte, env ClassEnvironment, sink *diag.Sink) (*ast.CompilationUnit, *resolver.TypeResolver, *sema.Analyzer) {
	toks := tokenize(sourceBytes, sourcePath, sink)
	p := parser.New(toks, sourcePath, sink)
	cu, _ := p.Parse()
	if cu == nil {
		return nil, nil, nil
	}

	r := resolver.NewTypeResolver(sink, env, cu.ModulePath)
	registerUses(r, cu)
	a := sema.New(sink, r, cu)
	a.Analyze()
	return cu, r, a
}

func registerUses(r *resolver.TypeResolver, cu *ast.CompilationUnit) {
	for _, u := range cu.Uses {
		switch {
		case u.Wildcard:
			r.RegisterWildcard(u.ModulePath)
		case len(u.Items) > 0:
			for _, item := range u.Items {
				r.RegisterImport(u.ModulePath, item, "")
			}
		default:
			r.RegisterImport(u.ModulePath, u.Item, u.Alias)
		}
	}
}

func firstError(reports []*diag.Report) *diag.Report {
	for _, r := range reports {
		if r.Severity == diag.SeverityError {
			return r
		}
	}
	if len(reports) > 0 {
		return reports[0]
	}
	return nil
}
