package parser

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
)

var primitiveKinds = map[string]ast.PrimitiveKind{
	"Int": ast.IntKind, "Long": ast.LongKind, "Float": ast.FloatKind,
	"Double": ast.DoubleKind, "Bool": ast.BoolKind, "Char": ast.CharKind,
	"Byte": ast.ByteKind, "Short": ast.ShortKind, "String": ast.StringKind,
	"Void": ast.VoidKind, "Unit": ast.UnitKind,
}

// parseType parses a type expression, then applies any trailing `?`
// (optional), `|` (union), or `&` (intersection) modifiers.
func (p *Parser) parseType() ast.Type {
	t := p.parseTypeAtom()
	for {
		switch {
		case p.curIs(lexer.QUESTION):
			p.advance()
			t = &ast.OptionalType{TypeBase: ast.TypeBase{Base: ast.NewBase(t.Span())}, Inner: t}
		case p.curIs(lexer.PIPE):
			p.advance()
			rhs := p.parseTypeAtom()
			t = &ast.UnionType{TypeBase: ast.TypeBase{Base: ast.NewBase(t.Span())}, A: t, B: rhs}
		case p.curIs(lexer.AMP) && p.peekIs(lexer.IDENT) || p.curIs(lexer.AMP) && p.peekIs(lexer.TYPE_IDENT):
			// `&` as intersection only makes sense once a type has already
			// been parsed; `&T` at the start of a type is a reference (see
			// parseTypeAtom), so this branch only fires mid-expression.
			p.advance()
			rhs := p.parseTypeAtom()
			t = &ast.IntersectionType{TypeBase: ast.TypeBase{Base: ast.NewBase(t.Span())}, A: t, B: rhs}
		default:
			return t
		}
	}
}

func (p *Parser) parseTypeAtom() ast.Type {
	start := p.curSpan()
	switch p.cur().Type {
	case lexer.AMP:
		p.advance()
		mut := false
		if p.curIs(lexer.MUT) {
			p.advance()
			mut = true
		}
		inner := p.parseTypeAtom()
		return &ast.ReferenceType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Inner: inner, Mut: mut}

	case lexer.LPAREN:
		p.advance()
		if p.curIs(lexer.RPAREN) {
			p.advance()
			if p.curIs(lexer.ARROW) {
				p.advance()
				ret := p.parseType()
				return &ast.FunctionType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Params: nil, Ret: ret}
			}
			return &ast.TupleType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}}
		}
		var elems []ast.Type
		elems = append(elems, p.parseType())
		for p.curIs(lexer.COMMA) {
			p.advance()
			elems = append(elems, p.parseType())
		}
		p.expect(lexer.RPAREN)
		if p.curIs(lexer.ARROW) {
			p.advance()
			ret := p.parseType()
			return &ast.FunctionType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Params: elems, Ret: ret}
		}
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TupleType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Elems: elems}

	case lexer.LBRACKET:
		p.advance()
		first := p.parseType()
		if p.curIs(lexer.COLON) {
			p.advance()
			val := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.MapType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Key: first, Val: val}
		}
		p.expect(lexer.RBRACKET)
		return &ast.ArrayType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Elem: first}

	case lexer.IDENT, lexer.TYPE_IDENT:
		path := p.parseDottedPath()
		if len(path) == 1 {
			if kind, ok := primitiveKinds[path[0]]; ok && !p.curIs(lexer.LBRACKET) {
				return ast.NewPrimitiveType(p.spanFrom(start), kind)
			}
		}
		var args []ast.Type
		if p.curIs(lexer.LBRACKET) {
			p.advance()
			args = append(args, p.parseType())
			for p.curIs(lexer.COMMA) {
				p.advance()
				args = append(args, p.parseType())
			}
			p.expect(lexer.RBRACKET)
		}
		return &ast.NamedType{TypeBase: ast.TypeBase{Base: ast.NewBase(p.spanFrom(start))}, Path: path, Args: args}

	default:
		p.errorf(diag.PAR008, "expected a type, found %s %q", p.cur().Type, p.cur().Literal)
		p.advance()
		return ast.NewPrimitiveType(p.spanFrom(start), ast.UnitKind)
	}
}

// parseTypeParams parses an optional `[T, U: Bound1 + Bound2]` generic
// parameter list attached to a declaration.
func (p *Parser) parseTypeParams() []*ast.TypeParamDecl {
	if !p.curIs(lexer.LBRACKET) {
		return nil
	}
	p.advance()
	var params []*ast.TypeParamDecl
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		name := p.expect(lexer.TYPE_IDENT).Literal
		var bounds []ast.Type
		if p.curIs(lexer.COLON) {
			p.advance()
			bounds = append(bounds, p.parseType())
			for p.curIs(lexer.PLUS) {
				p.advance()
				bounds = append(bounds, p.parseType())
			}
		}
		params = append(params, &ast.TypeParamDecl{Name: name, Bounds: bounds})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACKET)
	return params
}
