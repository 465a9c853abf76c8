// Package parser implements Flylang's hand-written, Pratt-style
// recursive-descent parser: lexer.Token stream in, *ast.CompilationUnit
// out, plus any diagnostics collected along the way. A hand-written
// grammar-driven parser was chosen over a generated one (ANTLR is
// available in the wider ecosystem but not used here) to keep
// panic-mode recovery under direct control.
package parser

import (
	"fmt"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Precedence levels, lowest to highest, matching the 15-level ladder:
// assignment, logical-or, logical-and, coalesce, comparison, bitwise-or,
// bitwise-xor, bitwise-and, shift, range, additive, multiplicative,
// power, unary, postfix (call/index/field/cast/type-check).
const (
	LOWEST int = iota
	ASSIGNMENT
	LOGICAL_OR
	LOGICAL_AND
	COALESCE
	COMPARISON
	BIT_OR
	BIT_XOR
	BIT_AND
	SHIFT
	RANGE
	ADDITIVE
	MULTIPLICATIVE
	POWER
	UNARY
	POSTFIX
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGNMENT, lexer.PLUSEQ: ASSIGNMENT, lexer.MINUSEQ: ASSIGNMENT,
	lexer.STAREQ: ASSIGNMENT, lexer.SLASHEQ: ASSIGNMENT, lexer.PERCENTEQ: ASSIGNMENT,
	lexer.OROR:  LOGICAL_OR,
	lexer.ANDAND: LOGICAL_AND,
	lexer.QQ:    COALESCE, lexer.ELVIS: COALESCE,
	lexer.EQ: COMPARISON, lexer.NEQ: COMPARISON, lexer.LT: COMPARISON,
	lexer.GT: COMPARISON, lexer.LTE: COMPARISON, lexer.GTE: COMPARISON,
	lexer.PIPE:  BIT_OR,
	lexer.CARET: BIT_XOR,
	lexer.AMP:   BIT_AND,
	lexer.SHL:   SHIFT, lexer.SHR: SHIFT,
	lexer.DOTDOT: RANGE, lexer.DOTDOTEQ: RANGE,
	lexer.PLUS: ADDITIVE, lexer.MINUS: ADDITIVE,
	lexer.STAR: MULTIPLICATIVE, lexer.SLASH: MULTIPLICATIVE, lexer.PERCENT: MULTIPLICATIVE,
	lexer.STARSTAR: POWER,
	lexer.LPAREN:   POSTFIX, lexer.LBRACKET: POSTFIX, lexer.DOT: POSTFIX,
	lexer.SAFE_DOT: POSTFIX, lexer.DCOLON: POSTFIX, lexer.BANGBANG: POSTFIX,
	lexer.AS: POSTFIX, lexer.IS: POSTFIX,
}

// Parser turns a token stream into a Flylang AST.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string

	sink *diag.Sink

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn

	// noStructLit suppresses `Type { ... }` struct-literal parsing while
	// positive, the standard fix for the if/while/for/match ambiguity
	// between a literal's opening brace and the construct's own body
	// block. parseIf/parseWhile/parseFor/parseMatch raise it while
	// parsing their condition/scrutinee/iterable and restore it before
	// parsing their own block.
	noStructLit int
}

// New creates a Parser over an already-tokenized source file.
func New(toks []lexer.Token, file string, sink *diag.Sink) *Parser {
	p := &Parser{toks: toks, file: file, sink: sink}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:      p.parseIdentifier,
		lexer.TYPE_IDENT:  p.parseIdentifier,
		lexer.INT:        p.parseIntLiteral,
		lexer.FLOAT:      p.parseFloatLiteral,
		lexer.STRING:     p.parseStringLiteral,
		lexer.FSTRING:    p.parseInterpStringLiteral,
		lexer.CHAR:       p.parseCharLiteral,
		lexer.TRUE:       p.parseBoolLiteral,
		lexer.FALSE:      p.parseBoolLiteral,
		lexer.NULL:       p.parseNullLiteral,
		lexer.LPAREN:     p.parseGroupedOrTuple,
		lexer.LBRACKET:   p.parseArrayOrMapLiteral,
		lexer.LBRACE:     p.parseBlock,
		lexer.MINUS:      p.parseUnary,
		lexer.BANG:       p.parseUnary,
		lexer.CARET:      p.parseUnary,
		lexer.IF:         p.parseIf,
		lexer.LET:        p.parseLet,
		lexer.MATCH:      p.parseMatch,
		lexer.FOR:        p.parseFor,
		lexer.WHILE:      p.parseWhile,
		lexer.RETURN:     p.parseReturn,
		lexer.BREAK:      p.parseBreak,
		lexer.CONTINUE:   p.parseContinue,
		lexer.THROW:      p.parseThrow,
		lexer.TRY:        p.parseTry,
		lexer.AWAIT:      p.parseAwait,
		lexer.CONCURRENT: p.parseConcurrent,
		lexer.RACE:       p.parseRace,
		lexer.TIMEOUT:    p.parseTimeout,
		lexer.WITH:       p.parseWith,
		lexer.NEW:        p.parseNew,
		lexer.AMP:        p.parseUnary,
		lexer.PIPE:       p.parseLambda,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinary, lexer.MINUS: p.parseBinary,
		lexer.STAR: p.parseBinary, lexer.SLASH: p.parseBinary, lexer.PERCENT: p.parseBinary,
		lexer.STARSTAR: p.parseBinary,
		lexer.EQ:       p.parseBinary, lexer.NEQ: p.parseBinary,
		lexer.LT: p.parseBinary, lexer.GT: p.parseBinary, lexer.LTE: p.parseBinary, lexer.GTE: p.parseBinary,
		lexer.ANDAND: p.parseBinary, lexer.OROR: p.parseBinary,
		lexer.AMP: p.parseBinary, lexer.PIPE: p.parseBinary, lexer.CARET: p.parseBinary,
		lexer.SHL: p.parseBinary, lexer.SHR: p.parseBinary,
		lexer.QQ: p.parseCoalesce, lexer.ELVIS: p.parseElvis,
		lexer.DOTDOT: p.parseRange, lexer.DOTDOTEQ: p.parseRangeInclusive,
		lexer.ASSIGN:    p.parseAssignment,
		lexer.PLUSEQ:    p.parseCompoundAssignment, lexer.MINUSEQ: p.parseCompoundAssignment,
		lexer.STAREQ:    p.parseCompoundAssignment, lexer.SLASHEQ: p.parseCompoundAssignment,
		lexer.PERCENTEQ: p.parseCompoundAssignment,
		lexer.LPAREN:    p.parseCall,
		lexer.LBRACKET:  p.parseIndex,
		lexer.DOT:       p.parseFieldAccess,
		lexer.SAFE_DOT:  p.parseSafeAccess,
		lexer.BANGBANG:  p.parseForceUnwrap,
		lexer.DCOLON:    p.parseStaticCall,
		lexer.AS:        p.parseCast,
		lexer.IS:        p.parseTypeCheck,
	}

	return p
}

// Errors returns every diagnostic this parser has recorded on its sink.
func (p *Parser) Errors() []*diag.Report { return p.sink.Reports() }

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF, File: p.file}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF, File: p.file}
	}
	return p.toks[p.pos+1]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *Parser) curSpan() ast.SourceSpan {
	c := p.cur()
	return ast.SourceSpan{File: c.File, StartLine: uint32(c.StartLn), StartCol: uint32(c.StartCol), EndLine: uint32(c.EndLn), EndCol: uint32(c.EndCol)}
}

func (p *Parser) spanFrom(start ast.SourceSpan) ast.SourceSpan {
	prev := p.toks[max(0, p.pos-1)]
	return ast.SourceSpan{File: start.File, StartLine: start.StartLine, StartCol: start.StartCol, EndLine: uint32(prev.EndLn), EndCol: uint32(prev.EndCol)}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// expect consumes the current token if it matches t, else records a
// PAR001 diagnostic and returns the token anyway (panic-mode recovery
// happens at the declaration/statement level, not here).
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.curIs(t) {
		return p.advance()
	}
	p.errorf(diag.PAR001, "expected %s, found %s %q", t, p.cur().Type, p.cur().Literal)
	return p.cur()
}

func (p *Parser) errorf(code, format string, args ...any) {
	p.sink.Add(diag.New(code, p.curSpan(), fmt.Sprintf(format, args...)))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur().Type]; ok {
		return pr
	}
	return LOWEST
}

// synchronize implements panic-mode error recovery: it discards tokens
// until it finds one that plausibly starts a new top-level declaration
// or statement, so one syntax error doesn't cascade into hundreds.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		switch p.cur().Type {
		case lexer.SEMI:
			p.advance()
			return
		case lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.DATA, lexer.STRUCT,
			lexer.SPARK, lexer.TRAIT, lexer.IMPL, lexer.TYPE, lexer.PROTOCOL,
			lexer.EXTEND, lexer.CONTEXT, lexer.SUPERVISOR, lexer.FLOW, lexer.MACRO,
			lexer.EXCEPTION, lexer.FN, lexer.USE, lexer.PUB:
			return
		}
		p.advance()
	}
}

// Parse parses a full compilation unit. A module declaration is
// mandatory; its absence is a hard PAR004 error.
func (p *Parser) Parse() (cu *ast.CompilationUnit, errs []*diag.Report) {
	defer func() {
		if r := recover(); r != nil {
			p.errorf(diag.PAR999, "internal parser error: %v", r)
			cu = ast.NewCompilationUnit(ast.NoSpan, nil, nil, nil)
		}
	}()

	start := p.curSpan()
	var modPath ast.DottedPath
	if p.curIs(lexer.MODULE) {
		p.advance()
		modPath = p.parseDottedPath()
		p.consumeTerminator()
	} else {
		p.errorf(diag.PAR004, "expected a module declaration at the start of the file")
	}

	var uses []*ast.UseDecl
	for p.curIs(lexer.USE) {
		uses = append(uses, p.parseUseDecl())
	}

	var decls []ast.TopDecl
	for !p.curIs(lexer.EOF) {
		d := p.parseTopDecl()
		if d != nil {
			decls = append(decls, d)
		} else {
			p.synchronize()
		}
	}

	return ast.NewCompilationUnit(p.spanFrom(start), modPath, uses, decls), p.sink.Reports()
}

// parseDottedPath parses `a::b::c`, permitting any keyword as a path
// segment.
func (p *Parser) parseDottedPath() ast.DottedPath {
	var segs []string
	segs = append(segs, p.pathSegment())
	for p.curIs(lexer.DCOLON) && !p.peekIs(lexer.STAR) && !p.peekIs(lexer.LBRACE) {
		p.advance()
		segs = append(segs, p.pathSegment())
	}
	return segs
}

func (p *Parser) pathSegment() string {
	if p.cur().IsKeyword() || p.curIs(lexer.IDENT) || p.curIs(lexer.TYPE_IDENT) {
		return p.advance().Literal
	}
	p.errorf(diag.PAR004, "expected a path segment, found %s", p.cur().Type)
	return p.advance().Literal
}

// consumeTerminator consumes an optional trailing semicolon.
func (p *Parser) consumeTerminator() {
	if p.curIs(lexer.SEMI) {
		p.advance()
	}
}

func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.curSpan()
	p.advance() // 'use'
	modPath := p.parseDottedPath()

	u := &ast.UseDecl{ModulePath: modPath}
	switch {
	case p.curIs(lexer.DCOLON) && p.peekIs(lexer.STAR):
		p.advance()
		p.advance()
		u.Wildcard = true
	case p.curIs(lexer.DCOLON) && p.peekIs(lexer.LBRACE):
		p.advance()
		p.advance()
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			u.Items = append(u.Items, p.pathSegment())
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACE)
	}
	if u.Item == "" && !u.Wildcard && len(u.Items) == 0 && len(modPath) > 1 {
		u.Item = modPath[len(modPath)-1]
		u.ModulePath = modPath[:len(modPath)-1]
	}
	if p.curIs(lexer.AS) {
		p.advance()
		u.Alias = p.advance().Literal
	}
	p.consumeTerminator()
	u.Base = ast.NewBase(p.spanFrom(start))
	return u
}
