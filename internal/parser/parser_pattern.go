package parser

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/lexer"
)

// parsePattern parses a full pattern, including trailing `| pat` alternates
// and a `when guard` clause.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.curSpan()
	first := p.parsePatternAtom()
	pat := first
	if p.curIs(lexer.PIPE) {
		alts := []ast.Pattern{first}
		for p.curIs(lexer.PIPE) {
			p.advance()
			alts = append(alts, p.parsePatternAtom())
		}
		pat = &ast.OrPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Alternatives: alts}
	}
	if p.curIs(lexer.WHEN) {
		p.advance()
		guard := p.parseExpression(LOWEST)
		pat = &ast.GuardPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Inner: pat, Guard: guard}
	}
	return pat
}

func (p *Parser) parsePatternAtom() ast.Pattern {
	start := p.curSpan()
	switch p.cur().Type {
	case lexer.IDENT:
		if p.cur().Literal == "_" {
			p.advance()
			return &ast.WildcardPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}}
		}
		name := p.advance().Literal
		return &ast.VariablePattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Name: name}

	case lexer.MUT:
		p.advance()
		name := p.expect(lexer.IDENT).Literal
		return &ast.VariablePattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Name: name, Mutable: true}

	case lexer.TYPE_IDENT:
		path := p.parseDottedPath()
		switch {
		case p.curIs(lexer.LPAREN):
			p.advance()
			var elems []ast.Pattern
			for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
				elems = append(elems, p.parsePattern())
				if p.curIs(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RPAREN)
			return &ast.TupleStructPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Name: path[len(path)-1], Elements: elems}
		case p.curIs(lexer.LBRACE):
			p.advance()
			var fields []ast.FieldPattern
			rest := false
			for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
				if p.curIs(lexer.DOTDOT) {
					p.advance()
					rest = true
					break
				}
				fname := p.expect(lexer.IDENT).Literal
				p.expect(lexer.COLON)
				fields = append(fields, ast.FieldPattern{Name: fname, Pattern: p.parsePattern()})
				if p.curIs(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RBRACE)
			typ := &ast.NamedType{TypeBase: ast.TypeBase{Base: ast.NewBase(start)}, Path: path}
			return &ast.StructPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Type: typ, Fields: fields, Rest: rest}
		default:
			// A bare capitalized name names a nullary variant/case
			// constructor,
			// never a variable binding — binding names are lowercase
			// IDENT tokens in this grammar, so TYPE_IDENT in pattern
			// position always refers to a declared constructor.
			return &ast.TupleStructPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Name: path[len(path)-1]}
		}

	case lexer.LPAREN:
		p.advance()
		var elems []ast.Pattern
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			elems = append(elems, p.parsePattern())
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
		return &ast.TuplePattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Elements: elems}

	case lexer.LBRACKET:
		p.advance()
		var elems []ast.Pattern
		var rest *ast.VariablePattern
		for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.DOTDOT) {
				p.advance()
				name := p.expect(lexer.IDENT).Literal
				rest = &ast.VariablePattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.curSpan())}, Name: name}
				break
			}
			elems = append(elems, p.parsePattern())
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACKET)
		return &ast.ArrayPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Elements: elems, Rest: rest}

	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.MINUS:
		lit := p.parseLiteralExpr()
		if p.curIs(lexer.DOTDOT) || p.curIs(lexer.DOTDOTEQ) {
			inclusive := p.curIs(lexer.DOTDOTEQ)
			p.advance()
			hi := p.parseLiteralExpr()
			return &ast.RangePattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Lo: lit, Hi: hi, Inclusive: inclusive}
		}
		l := lit.(*ast.Literal)
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}, Kind: l.Kind, Value: l.Value}

	default:
		p.advance()
		return &ast.WildcardPattern{PatternBase: ast.PatternBase{Base: ast.NewBase(p.spanFrom(start))}}
	}
}

// parseLiteralExpr parses a scalar literal (optionally negated) as an
// Expr, used both by ordinary expression parsing and by range patterns.
func (p *Parser) parseLiteralExpr() ast.Expr {
	if p.curIs(lexer.MINUS) {
		start := p.curSpan()
		p.advance()
		inner := p.parseLiteralExpr()
		l := inner.(*ast.Literal)
		switch v := l.Value.(type) {
		case int64:
			l.Value = -v
		case float64:
			l.Value = -v
		}
		l.Base = ast.NewBase(p.spanFrom(start))
		return l
	}
	switch p.cur().Type {
	case lexer.INT:
		return p.parseIntLiteral()
	case lexer.FLOAT:
		return p.parseFloatLiteral()
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.CHAR:
		return p.parseCharLiteral()
	case lexer.TRUE, lexer.FALSE:
		return p.parseBoolLiteral()
	case lexer.NULL:
		return p.parseNullLiteral()
	default:
		return p.parseNullLiteral()
	}
}
