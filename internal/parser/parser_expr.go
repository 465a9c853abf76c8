package parser

import (
	"strconv"
	"strings"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
)

func newExprBase(p *Parser, start ast.SourceSpan) ast.ExprBase {
	return ast.ExprBase{Base: ast.NewBase(p.spanFrom(start))}
}

// parseExpression is the Pratt-parsing core: it parses a prefix
// expression, then repeatedly extends it with infix/postfix operators
// whose precedence is higher than minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur().Type]
	if !ok {
		p.errorf(diag.PAR001, "unexpected token %s %q in expression position", p.cur().Type, p.cur().Literal)
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Base: ast.NewBase(p.curSpan())}, Kind: ast.NullLit}
	}
	left := prefix()

	for minPrec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.cur().Type]
		if !ok {
			return left
		}
		left = infix(left)
	}
	return left
}

func binOpFor(t lexer.TokenType) ast.BinOp {
	switch t {
	case lexer.PLUS:
		return ast.OpAdd
	case lexer.MINUS:
		return ast.OpSub
	case lexer.STAR:
		return ast.OpMul
	case lexer.SLASH:
		return ast.OpDiv
	case lexer.PERCENT:
		return ast.OpMod
	case lexer.STARSTAR:
		return ast.OpPow
	case lexer.EQ:
		return ast.OpEq
	case lexer.NEQ:
		return ast.OpNeq
	case lexer.LT:
		return ast.OpLt
	case lexer.GT:
		return ast.OpGt
	case lexer.LTE:
		return ast.OpLte
	case lexer.GTE:
		return ast.OpGte
	case lexer.ANDAND:
		return ast.OpAnd
	case lexer.OROR:
		return ast.OpOr
	case lexer.AMP:
		return ast.OpBitAnd
	case lexer.PIPE:
		return ast.OpBitOr
	case lexer.CARET:
		return ast.OpBitXor
	case lexer.SHL:
		return ast.OpShl
	case lexer.SHR:
		return ast.OpShr
	}
	return ast.OpAdd
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	start := left.Span()
	opTok := p.cur().Type
	prec := precedences[opTok]
	p.advance()
	right := p.parseExpression(prec)
	return &ast.Binary{ExprBase: newExprBase(p, start), Op: binOpFor(opTok), Left: left, Right: right}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	operand := p.parseExpression(UNARY)
	var op ast.UnOp
	switch tok.Type {
	case lexer.MINUS:
		op = ast.OpNeg
	case lexer.BANG:
		op = ast.OpNot
	case lexer.CARET:
		op = ast.OpBitNot
	case lexer.AMP:
		// `&expr` address-of is not a distinct node in this AST; reuse the
		// operand directly since reference-taking is a type-level concern.
		return operand
	}
	return &ast.Unary{ExprBase: newExprBase(p, start), Op: op, Expr: operand}
}

func (p *Parser) parseIdentifier() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	var segs []string
	if p.curIs(lexer.DCOLON) {
		segs = []string{tok.Literal}
		for p.curIs(lexer.DCOLON) {
			p.advance()
			segs = append(segs, p.pathSegment())
		}
	}
	// `Type { field: value, ... }` — only a type-leading name can start a
	// struct literal, and only outside a condition/scrutinee position
	// (see Parser.noStructLit).
	if tok.Type == lexer.TYPE_IDENT && p.noStructLit == 0 && p.curIs(lexer.LBRACE) {
		name := tok.Literal
		if len(segs) > 0 {
			name = segs[len(segs)-1]
		}
		return p.parseStructLit(start, name)
	}
	if len(segs) > 0 {
		return &ast.Path{ExprBase: newExprBase(p, start), Segments: segs}
	}
	return &ast.Identifier{ExprBase: newExprBase(p, start), Name: tok.Literal}
}

// parseStructLit parses the `{ field: value, ... }` tail of a `Type {
// ... }` literal, typeName already having been consumed.
func (p *Parser) parseStructLit(start ast.SourceSpan, typeName string) ast.Expr {
	typeSpan := p.spanFrom(start)
	typ := &ast.NamedType{TypeBase: ast.TypeBase{Base: ast.NewBase(typeSpan)}, Path: ast.DottedPath{typeName}}
	p.expect(lexer.LBRACE)
	var fields []ast.FieldInit
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fieldName := p.expect(lexer.IDENT).Literal
		p.expect(lexer.COLON)
		value := p.parseExpression(LOWEST)
		fields = append(fields, ast.FieldInit{Name: fieldName, Value: value})
		if p.curIs(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.StructLit{ExprBase: newExprBase(p, start), Type: typ, Fields: fields}
}

func (p *Parser) parseIntLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	clean := strings.ReplaceAll(tok.Literal, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		v, err = strconv.ParseInt(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		v, err = strconv.ParseInt(clean[2:], 2, 64)
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		v, err = strconv.ParseInt(clean[2:], 8, 64)
	default:
		v, err = strconv.ParseInt(clean, 10, 64)
	}
	if err != nil {
		p.errorf(diag.PAR001, "invalid integer literal %q", tok.Literal)
	}
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.IntLit, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	clean := strings.ReplaceAll(tok.Literal, "_", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		p.errorf(diag.PAR001, "invalid float literal %q", tok.Literal)
	}
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.FloatLit, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.StringLit, Value: tok.Literal}
}

// parseInterpStringLiteral splits an FSTRING token's literal into
// alternating text/expression segments and parses each embedded
// expression with its own sub-parser.
func (p *Parser) parseInterpStringLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	var segs []ast.InterpSegment
	raw := tok.Literal
	var textBuf strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '{' {
			if textBuf.Len() > 0 {
				segs = append(segs, ast.InterpSegment{Text: textBuf.String()})
				textBuf.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(raw) && depth > 0 {
				if raw[j] == '{' {
					depth++
				} else if raw[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := raw[i+1 : j]
			toks := lexer.Tokenize([]byte(exprSrc), tok.File)
			sub := New(toks, tok.File, p.sink)
			e := sub.parseExpression(LOWEST)
			segs = append(segs, ast.InterpSegment{Expr: e})
			i = j + 1
		} else {
			textBuf.WriteByte(raw[i])
			i++
		}
	}
	if textBuf.Len() > 0 {
		segs = append(segs, ast.InterpSegment{Text: textBuf.String()})
	}
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.InterpStringLit, Segments: segs}
}

func (p *Parser) parseCharLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	var r rune
	if len(tok.Literal) > 0 {
		r = []rune(tok.Literal)[0]
	}
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.CharLit, Value: r}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	start := p.curSpan()
	tok := p.advance()
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.BoolLit, Value: tok.Type == lexer.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expr {
	start := p.curSpan()
	p.advance()
	return &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.NullLit, Value: nil}
}

// parseGroupedOrTuple disambiguates `(expr)` from `(e1, e2, ...)`.
func (p *Parser) parseGroupedOrTuple() ast.Expr {
	start := p.curSpan()
	p.advance() // '('
	saved := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = saved }()
	if p.curIs(lexer.RPAREN) {
		p.advance()
		return &ast.TupleLit{ExprBase: newExprBase(p, start)}
	}
	first := p.parseExpression(LOWEST)
	if p.curIs(lexer.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expect(lexer.RPAREN)
		return &ast.TupleLit{ExprBase: newExprBase(p, start), Elems: elems}
	}
	p.expect(lexer.RPAREN)
	return first
}

// parseArrayOrMapLiteral disambiguates `[e1, e2]` from `[k1: v1, k2: v2]`.
func (p *Parser) parseArrayOrMapLiteral() ast.Expr {
	start := p.curSpan()
	p.advance() // '['
	saved := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = saved }()
	if p.curIs(lexer.RBRACKET) {
		p.advance()
		return &ast.ArrayLit{ExprBase: newExprBase(p, start)}
	}
	first := p.parseExpression(LOWEST)
	if p.curIs(lexer.COLON) {
		p.advance()
		val := p.parseExpression(LOWEST)
		entries := []ast.MapEntry{{Key: first, Value: val}}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RBRACKET) {
				break
			}
			k := p.parseExpression(LOWEST)
			p.expect(lexer.COLON)
			v := p.parseExpression(LOWEST)
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}
		p.expect(lexer.RBRACKET)
		return &ast.MapLit{ExprBase: newExprBase(p, start), Entries: entries}
	}
	elems := []ast.Expr{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayLit{ExprBase: newExprBase(p, start), Elems: elems}
}

// parseBlock parses `{ stmt; stmt; tail }`. A trailing expression not
// followed by `;` is the block's tail value; everything else is a
// statement.
func (p *Parser) parseBlock() ast.Expr {
	start := p.curSpan()
	p.expect(lexer.LBRACE)
	var stmts []ast.Expr
	var tail ast.Expr
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		e := p.parseExpression(LOWEST)
		if p.curIs(lexer.SEMI) {
			p.advance()
			stmts = append(stmts, e)
			continue
		}
		if p.curIs(lexer.RBRACE) {
			tail = e
			break
		}
		stmts = append(stmts, e)
	}
	p.expect(lexer.RBRACE)
	return &ast.Block{ExprBase: newExprBase(p, start), Stmts: stmts, Tail: tail}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.curSpan()
	p.advance() // 'if'
	if p.curIs(lexer.LET) {
		return p.parseIfLet(start)
	}
	p.noStructLit++
	cond := p.parseExpression(LOWEST)
	p.noStructLit--
	then := p.parseBlock()
	var els ast.Expr
	if p.curIs(lexer.ELSE) {
		p.advance()
		if p.curIs(lexer.IF) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.If{ExprBase: newExprBase(p, start), Cond: cond, Then: then, Else: els}
}

// parseIfLet desugars `if let pat = expr { a } else { b }` (spec §4.3)
// to `match expr { pat => a, _ => b }` at parse time: this parser
// builds the AST directly rather than through a separate lowering
// pass, so the desugaring happens here instead of in a later phase.
// An absent `else` desugars to a wildcard arm with an empty block,
// matching a bare `if` with no `else` producing Void.
func (p *Parser) parseIfLet(start ast.SourceSpan) ast.Expr {
	p.advance() // 'let'
	p.noStructLit++
	pat := p.parsePattern()
	p.expect(lexer.ASSIGN)
	scrutinee := p.parseExpression(LOWEST)
	p.noStructLit--
	then := p.parseBlock()

	var els ast.Expr
	if p.curIs(lexer.ELSE) {
		p.advance()
		if p.curIs(lexer.IF) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	} else {
		els = &ast.Block{ExprBase: newExprBase(p, start)}
	}

	arms := []*ast.MatchArm{
		{Pattern: pat, Body: then, Span: p.spanFrom(start)},
		{Pattern: &ast.WildcardPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}}, Body: els, Span: p.spanFrom(start)},
	}
	return &ast.Match{ExprBase: newExprBase(p, start), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseLet() ast.Expr {
	start := p.curSpan()
	p.advance() // 'let'
	mut := false
	if p.curIs(lexer.MUT) {
		p.advance()
		mut = true
	}
	pat := p.parsePattern()
	var typ ast.Type
	if p.curIs(lexer.COLON) {
		p.advance()
		typ = p.parseType()
	}
	var val ast.Expr
	if p.curIs(lexer.ASSIGN) {
		p.advance()
		val = p.parseExpression(LOWEST)
	}
	return &ast.Let{ExprBase: newExprBase(p, start), Mut: mut, Pattern: pat, Type: typ, Value: val}
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.curSpan()
	p.advance() // 'match'
	p.noStructLit++
	scrutinee := p.parseExpression(LOWEST)
	p.noStructLit--
	p.expect(lexer.LBRACE)
	var arms []*ast.MatchArm
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		armStart := p.curSpan()
		pat := p.parsePattern()
		var guard ast.Expr
		if p.curIs(lexer.WHEN) {
			p.advance()
			guard = p.parseExpression(LOWEST)
		}
		p.expect(lexer.FATARROW)
		body := p.parseExpression(LOWEST)
		arms = append(arms, &ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: p.spanFrom(armStart)})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.Match{ExprBase: newExprBase(p, start), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseFor() ast.Expr {
	start := p.curSpan()
	p.advance() // 'for'
	binding := p.parsePattern()
	p.expect(lexer.IN)
	p.noStructLit++
	iterable := p.parseExpression(LOWEST)
	p.noStructLit--
	body := p.parseBlock()
	return &ast.For{ExprBase: newExprBase(p, start), Binding: binding, Iterable: iterable, Body: body}
}

func (p *Parser) parseWhile() ast.Expr {
	start := p.curSpan()
	p.advance() // 'while'
	if p.curIs(lexer.LET) {
		return p.parseWhileLet(start)
	}
	p.noStructLit++
	cond := p.parseExpression(LOWEST)
	p.noStructLit--
	body := p.parseBlock()
	return &ast.While{ExprBase: newExprBase(p, start), Cond: cond, Body: body}
}

// parseWhileLet desugars `while let pat = expr { body }` (spec §4.3) to
// `loop { match expr { pat => body, _ => break } }`. The AST has no
// separate unconditional-loop node, so the loop itself is a `While`
// with a literal `true` condition wrapping the match, the same shape
// an unconditional loop takes anywhere else in this tree.
func (p *Parser) parseWhileLet(start ast.SourceSpan) ast.Expr {
	p.advance() // 'let'
	p.noStructLit++
	pat := p.parsePattern()
	p.expect(lexer.ASSIGN)
	scrutinee := p.parseExpression(LOWEST)
	p.noStructLit--
	body := p.parseBlock()

	brk := &ast.Break{ExprBase: newExprBase(p, start)}
	arms := []*ast.MatchArm{
		{Pattern: pat, Body: body, Span: p.spanFrom(start)},
		{Pattern: &ast.WildcardPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}}, Body: brk, Span: p.spanFrom(start)},
	}
	match := &ast.Match{ExprBase: newExprBase(p, start), Scrutinee: scrutinee, Arms: arms}
	loopBody := &ast.Block{ExprBase: newExprBase(p, start), Stmts: []ast.Expr{match}}
	trueLit := &ast.Literal{ExprBase: newExprBase(p, start), Kind: ast.BoolLit, Value: true}
	return &ast.While{ExprBase: newExprBase(p, start), Cond: trueLit, Body: loopBody}
}

// parseLambda handles `|x, y| body`. It is the PIPE prefix parser, so a
// `|` in prefix position starts a lambda while a `|` in infix position
// is bitwise-or.
func (p *Parser) parseLambda() ast.Expr {
	start := p.curSpan()
	p.advance() // '|'
	var params []*ast.Param
	for !p.curIs(lexer.PIPE) && !p.curIs(lexer.EOF) {
		pstart := p.curSpan()
		name := p.expect(lexer.IDENT).Literal
		var typ ast.Type
		if p.curIs(lexer.COLON) {
			p.advance()
			typ = p.parseType()
		}
		params = append(params, &ast.Param{Name: name, Type: typ, Span: p.spanFrom(pstart)})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.PIPE)
	body := p.parseExpression(LOWEST)
	return &ast.Lambda{ExprBase: newExprBase(p, start), Params: params, Body: body}
}

func (p *Parser) parseReturn() ast.Expr {
	start := p.curSpan()
	p.advance()
	var val ast.Expr
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		val = p.parseExpression(LOWEST)
	}
	return &ast.Return{ExprBase: newExprBase(p, start), Value: val}
}

func (p *Parser) parseBreak() ast.Expr {
	start := p.curSpan()
	p.advance()
	var val ast.Expr
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		val = p.parseExpression(LOWEST)
	}
	return &ast.Break{ExprBase: newExprBase(p, start), Value: val}
}

func (p *Parser) parseContinue() ast.Expr {
	start := p.curSpan()
	p.advance()
	return &ast.Continue{ExprBase: newExprBase(p, start)}
}

func (p *Parser) parseThrow() ast.Expr {
	start := p.curSpan()
	p.advance()
	val := p.parseExpression(LOWEST)
	return &ast.Throw{ExprBase: newExprBase(p, start), Value: val}
}

func (p *Parser) parseTry() ast.Expr {
	start := p.curSpan()
	p.advance() // 'try'
	body := p.parseBlock()
	var catches []*ast.CatchClause
	for p.curIs(lexer.CATCH) {
		cstart := p.curSpan()
		p.advance()
		p.expect(lexer.LPAREN)
		pat := p.parsePattern()
		var excType ast.Type
		if p.curIs(lexer.COLON) {
			p.advance()
			excType = p.parseType()
		}
		p.expect(lexer.RPAREN)
		cbody := p.parseBlock()
		catches = append(catches, &ast.CatchClause{Pattern: pat, ExcType: excType, Body: cbody, Span: p.spanFrom(cstart)})
	}
	var fin ast.Expr
	if p.curIs(lexer.FINALLY) {
		p.advance()
		fin = p.parseBlock()
	}
	return &ast.Try{ExprBase: newExprBase(p, start), Body: body, Catches: catches, Finally: fin}
}

func (p *Parser) parseAwait() ast.Expr {
	start := p.curSpan()
	p.advance()
	val := p.parseExpression(UNARY)
	return &ast.Await{ExprBase: newExprBase(p, start), Value: val}
}

func (p *Parser) parseConcurrent() ast.Expr {
	start := p.curSpan()
	p.advance()
	p.expect(lexer.LBRACE)
	var bindings []*ast.ConcurrentBinding
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		bstart := p.curSpan()
		p.expect(lexer.LET)
		name := p.expect(lexer.IDENT).Literal
		p.expect(lexer.ASSIGN)
		val := p.parseExpression(LOWEST)
		bindings = append(bindings, &ast.ConcurrentBinding{Name: name, Value: val, Span: p.spanFrom(bstart)})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.Concurrent{ExprBase: newExprBase(p, start), Bindings: bindings}
}

func (p *Parser) parseRace() ast.Expr {
	start := p.curSpan()
	p.advance()
	p.expect(lexer.LBRACE)
	var clauses []ast.Expr
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		clauses = append(clauses, p.parseExpression(LOWEST))
		if p.curIs(lexer.SEMI) || p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.Race{ExprBase: newExprBase(p, start), Clauses: clauses}
}

func (p *Parser) parseTimeout() ast.Expr {
	start := p.curSpan()
	p.advance()
	p.expect(lexer.LPAREN)
	dur := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	body := p.parseBlock()
	return &ast.Timeout{ExprBase: newExprBase(p, start), Duration: dur, Body: body}
}

func (p *Parser) parseWith() ast.Expr {
	start := p.curSpan()
	p.advance()
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	body := p.parseBlock()
	return &ast.With{ExprBase: newExprBase(p, start), Args: args, Body: body}
}

func (p *Parser) parseNew() ast.Expr {
	start := p.curSpan()
	p.advance()
	typ := p.parseType()
	var args []ast.Expr
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			args = append(args, p.parseExpression(LOWEST))
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}
	return &ast.New{ExprBase: newExprBase(p, start), Type: typ, Args: args}
}

func (p *Parser) parseCoalesce(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance()
	def := p.parseExpression(COALESCE)
	return &ast.Coalesce{ExprBase: newExprBase(p, start), Value: left, Default: def}
}

func (p *Parser) parseElvis(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance()
	def := p.parseExpression(COALESCE)
	return &ast.Elvis{ExprBase: newExprBase(p, start), Value: left, Default: def}
}

func (p *Parser) parseRange(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance()
	end := p.parseExpression(RANGE)
	return &ast.Range{ExprBase: newExprBase(p, start), Start: left, End: end}
}

func (p *Parser) parseRangeInclusive(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance()
	end := p.parseExpression(RANGE)
	return &ast.RangeInclusive{ExprBase: newExprBase(p, start), Start: left, End: end}
}

func (p *Parser) parseAssignment(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance()
	val := p.parseExpression(ASSIGNMENT - 1)
	return &ast.Assignment{ExprBase: newExprBase(p, start), Target: left, Value: val}
}

func (p *Parser) parseCompoundAssignment(left ast.Expr) ast.Expr {
	start := left.Span()
	opTok := p.cur().Type
	var op ast.BinOp
	switch opTok {
	case lexer.PLUSEQ:
		op = ast.OpAdd
	case lexer.MINUSEQ:
		op = ast.OpSub
	case lexer.STAREQ:
		op = ast.OpMul
	case lexer.SLASHEQ:
		op = ast.OpDiv
	case lexer.PERCENTEQ:
		op = ast.OpMod
	}
	p.advance()
	val := p.parseExpression(ASSIGNMENT - 1)
	return &ast.CompoundAssignment{ExprBase: newExprBase(p, start), Op: op, Target: left, Value: val}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '('
	saved := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = saved }()
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	if m, ok := left.(*ast.FieldAccess); ok {
		return &ast.MethodCall{ExprBase: newExprBase(p, start), Receiver: m.Receiver, Name: m.Field, Args: args}
	}
	return &ast.Call{ExprBase: newExprBase(p, start), Callee: left, Args: args}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '['
	idx := p.parseExpression(LOWEST)
	p.expect(lexer.RBRACKET)
	return &ast.IndexAccess{ExprBase: newExprBase(p, start), Receiver: left, Index: idx}
}

func (p *Parser) parseFieldAccess(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '.'
	if p.curIs(lexer.AWAIT) {
		p.advance()
		return &ast.Await{ExprBase: newExprBase(p, start), Value: left}
	}
	name := p.advance().Literal
	return &ast.FieldAccess{ExprBase: newExprBase(p, start), Receiver: left, Field: name}
}

func (p *Parser) parseSafeAccess(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '?.'
	name := p.advance().Literal
	return &ast.SafeAccess{ExprBase: newExprBase(p, start), Receiver: left, Field: name}
}

func (p *Parser) parseForceUnwrap(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '!!'
	return &ast.ForceUnwrap{ExprBase: newExprBase(p, start), Value: left}
}

func (p *Parser) parseStaticCall(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // '::'
	name := p.advance().Literal
	var typ ast.Type
	switch e := left.(type) {
	case *ast.Identifier:
		typ = &ast.NamedType{TypeBase: ast.TypeBase{Base: ast.NewBase(e.Span())}, Path: ast.DottedPath{e.Name}}
	case *ast.Path:
		typ = &ast.NamedType{TypeBase: ast.TypeBase{Base: ast.NewBase(e.Span())}, Path: ast.DottedPath(e.Segments)}
	}
	var args []ast.Expr
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			args = append(args, p.parseExpression(LOWEST))
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}
	return &ast.StaticCall{ExprBase: newExprBase(p, start), Type: typ, Name: name, Args: args}
}

func (p *Parser) parseCast(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // 'as'
	typ := p.parseType()
	return &ast.Cast{ExprBase: newExprBase(p, start), Value: left, Type: typ}
}

func (p *Parser) parseTypeCheck(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // 'is'
	typ := p.parseType()
	return &ast.TypeCheck{ExprBase: newExprBase(p, start), Value: left, Type: typ}
}
