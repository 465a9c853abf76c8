package parser

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/diag"
	"github.com/flylang/flyc/internal/lexer"
)

// parseTopDecl dispatches on the current keyword to one of the 17
// TopDecl variants. Returns nil (and leaves the token
// stream wherever the failure occurred) on an unrecognized leading
// token, letting the caller's synchronize() recover.
func (p *Parser) parseTopDecl() ast.TopDecl {
	start := p.curSpan()
	doc := p.takeDocComment()
	var anns []ast.Annotation
	for p.curIs(lexer.AT) {
		anns = append(anns, p.parseAnnotation())
	}
	vis := ast.Private
	if p.curIs(lexer.PUB) {
		p.advance()
		vis = ast.Public
	}

	switch p.cur().Type {
	case lexer.CLASS:
		return p.parseClassDecl(start, vis, anns, doc)
	case lexer.INTERFACE:
		return p.parseInterfaceDecl(start, vis, anns, doc)
	case lexer.ENUM:
		return p.parseEnumDecl(start, vis, anns, doc)
	case lexer.DATA:
		return p.parseDataDecl(start, vis, anns, doc)
	case lexer.STRUCT:
		return p.parseStructDecl(start, vis, anns, doc)
	case lexer.SPARK:
		return p.parseSparkDecl(start, vis, anns, doc)
	case lexer.TRAIT:
		return p.parseTraitDecl(start, vis, anns, doc)
	case lexer.PROTOCOL:
		return p.parseProtocolDecl(start, vis, anns, doc)
	case lexer.IMPL:
		return p.parseImplDecl(start, vis, anns, doc)
	case lexer.TYPE:
		return p.parseTypeAliasDecl(start, vis, anns, doc)
	case lexer.EXTEND:
		return p.parseExtendDecl(start, vis, anns, doc)
	case lexer.CONTEXT:
		return p.parseContextDecl(start, vis, anns, doc)
	case lexer.SUPERVISOR:
		return p.parseSupervisorDecl(start, vis, anns, doc)
	case lexer.FLOW:
		return p.parseFlowDecl(start, vis, anns, doc)
	case lexer.MACRO:
		return p.parseMacroDecl(start, vis, anns, doc)
	case lexer.EXCEPTION:
		return p.parseExceptionDecl(start, vis, anns, doc)
	case lexer.ASYNC, lexer.FN:
		return p.parseFunctionDecl(start, vis, anns, doc)
	default:
		p.errorf(diag.PAR001, "expected a declaration, found %s %q", p.cur().Type, p.cur().Literal)
		return nil
	}
}

func (p *Parser) parseAnnotation() ast.Annotation {
	p.advance() // '@'
	name := p.advance().Literal
	var args []string
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			args = append(args, p.advance().Literal)
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}
	return ast.Annotation{Name: name, Args: args}
}

// takeDocComment consumes a leading doc-comment token (if present) and
// returns its trimmed text; the lexer already strips ordinary comments.
func (p *Parser) takeDocComment() string {
	if p.curIs(lexer.DOC_COMMENT) {
		return p.advance().Literal
	}
	return ""
}

func declCommon(start ast.SourceSpan, p *Parser, name string, vis ast.Visibility, tps []*ast.TypeParamDecl, anns []ast.Annotation, doc string) ast.DeclCommon {
	return ast.DeclCommon{
		Base:        ast.NewBase(p.spanFrom(start)),
		Name:        name,
		Visibility:  vis,
		TypeParams:  tps,
		Annotations: anns,
		DocComment:  doc,
	}
}

func (p *Parser) parseSuperList() (super ast.Type, ifaces []ast.Type) {
	if !p.curIs(lexer.LPAREN) {
		return nil, nil
	}
	p.advance()
	var types []ast.Type
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		types = append(types, p.parseType())
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	if len(types) == 0 {
		return nil, nil
	}
	return types[0], types[1:]
}

func (p *Parser) parseClassDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance() // 'class'
	name := p.expect(lexer.TYPE_IDENT).Literal
	tps := p.parseTypeParams()
	super, ifaces := p.parseSuperList()
	fields, methods, nested := p.parseMemberBlock()
	d := &ast.ClassDecl{
		DeclCommon: declCommon(start, p, name, vis, tps, anns, doc),
		Superclass: super, Interfaces: ifaces, Fields: fields, Methods: methods,
	}
	d.Nested = nested
	return d
}

func (p *Parser) parseInterfaceDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	tps := p.parseTypeParams()
	_, supers := p.parseSuperList()
	_, methods, _ := p.parseMemberBlock()
	return &ast.InterfaceDecl{DeclCommon: declCommon(start, p, name, vis, tps, anns, doc), Supers: supers, Methods: methods}
}

func (p *Parser) parseEnumDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	p.expect(lexer.LBRACE)
	var cases []*ast.EnumCase
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		cname := p.expect(lexer.TYPE_IDENT).Literal
		var fields []ast.Type
		if p.curIs(lexer.LPAREN) {
			p.advance()
			for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
				fields = append(fields, p.parseType())
				if p.curIs(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RPAREN)
		}
		cases = append(cases, &ast.EnumCase{Name: cname, Fields: fields})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.EnumDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Cases: cases}
}

func (p *Parser) parseDataDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	tps := p.parseTypeParams()
	p.expect(lexer.LBRACE)
	var variants []*ast.DataVariant
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		vname := p.expect(lexer.TYPE_IDENT).Literal
		var fields []*ast.FieldDecl
		if p.curIs(lexer.LBRACE) {
			fields = p.parseFieldList()
		}
		variants = append(variants, &ast.DataVariant{Name: vname, Fields: fields})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.DataDecl{DeclCommon: declCommon(start, p, name, vis, tps, anns, doc), Variants: variants}
}

func (p *Parser) parseStructDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	tps := p.parseTypeParams()
	fields := p.parseFieldList()
	return &ast.StructDecl{DeclCommon: declCommon(start, p, name, vis, tps, anns, doc), Fields: fields}
}

func (p *Parser) parseSparkDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	p.expect(lexer.LBRACE)
	var fields []*ast.FieldDecl
	var methods, computed []*ast.FunctionDecl
	var validation, before, after ast.Expr
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		p.takeDocComment()
		switch {
		case p.curIs(lexer.IDENT) && p.cur().Literal == "validate":
			p.advance()
			validation = p.parseBlock()
		case p.curIs(lexer.IDENT) && p.cur().Literal == "before_update":
			p.advance()
			before = p.parseBlock()
		case p.curIs(lexer.IDENT) && p.cur().Literal == "after_update":
			p.advance()
			after = p.parseBlock()
		case p.curIs(lexer.FN), p.curIs(lexer.ASYNC):
			fstart := p.curSpan()
			fd := p.parseFunctionDecl(fstart, ast.Private, nil, p.takeDocComment())
			methods = append(methods, fd.(*ast.FunctionDecl))
		default:
			fields = append(fields, p.parseOneField())
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.SparkDecl{
		DeclCommon: declCommon(start, p, name, vis, nil, anns, doc),
		Fields:     fields, Validation: validation, BeforeUpdate: before, AfterUpdate: after,
		Computed: computed, Methods: methods,
	}
}

func (p *Parser) parseTraitDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	tps := p.parseTypeParams()
	_, methods, _ := p.parseMemberBlock()
	return &ast.TraitDecl{DeclCommon: declCommon(start, p, name, vis, tps, anns, doc), Methods: methods}
}

func (p *Parser) parseProtocolDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	_, methods, _ := p.parseMemberBlock()
	return &ast.ProtocolDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Methods: methods}
}

func (p *Parser) parseImplDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance() // 'impl'
	first := p.parseType()
	var trait, target ast.Type
	if p.curIs(lexer.FOR) {
		p.advance()
		trait = first
		target = p.parseType()
	} else {
		target = first
	}
	_, methods, _ := p.parseMemberBlock()
	return &ast.ImplDecl{DeclCommon: declCommon(start, p, "", vis, nil, anns, doc), Trait: trait, Target: target, Methods: methods}
}

func (p *Parser) parseTypeAliasDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	p.expect(lexer.ASSIGN)
	target := p.parseType()
	p.consumeTerminator()
	return &ast.TypeAliasDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Target: target}
}

func (p *Parser) parseExtendDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	target := p.parseType()
	_, methods, _ := p.parseMemberBlock()
	return &ast.ExtendDecl{DeclCommon: declCommon(start, p, "", vis, nil, anns, doc), Target: target, Methods: methods}
}

func (p *Parser) parseContextDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	fields, methods, _ := p.parseMemberBlock()
	return &ast.ContextDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Fields: fields, Methods: methods}
}

func (p *Parser) parseSupervisorDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	var children []ast.Type
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			children = append(children, p.parseType())
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}
	_, methods, _ := p.parseMemberBlock()
	return &ast.SupervisorDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Children: children, Methods: methods}
}

func (p *Parser) parseFlowDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	_, methods, _ := p.parseMemberBlock()
	return &ast.FlowDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Methods: methods}
}

func (p *Parser) parseMacroDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.advance().Literal
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		pstart := p.curSpan()
		pname := p.expect(lexer.IDENT).Literal
		params = append(params, &ast.Param{Name: pname, Span: p.spanFrom(pstart)})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	body := p.parseBlock()
	return &ast.MacroDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Params: params, Body: body}
}

func (p *Parser) parseExceptionDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	p.advance()
	name := p.expect(lexer.TYPE_IDENT).Literal
	super, _ := p.parseSuperList()
	var fields []*ast.FieldDecl
	if p.curIs(lexer.LBRACE) {
		fields = p.parseFieldList()
	}
	return &ast.ExceptionDecl{DeclCommon: declCommon(start, p, name, vis, nil, anns, doc), Superclass: super, Fields: fields}
}

// parseFunctionDecl parses `[async] fn name[T](params) [-> Ret] [! {eff}]
// [requires expr] { body }` or a bodyless signature for interface/trait
// members.
func (p *Parser) parseFunctionDecl(start ast.SourceSpan, vis ast.Visibility, anns []ast.Annotation, doc string) ast.TopDecl {
	isAsync := false
	if p.curIs(lexer.ASYNC) {
		p.advance()
		isAsync = true
	}
	p.expect(lexer.FN)
	name := p.advance().Literal
	tps := p.parseTypeParams()
	params := p.parseParamList()
	var ret ast.Type
	if p.curIs(lexer.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	var effects []string
	if p.curIs(lexer.BANG) {
		p.advance()
		p.expect(lexer.LBRACE)
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			effects = append(effects, p.advance().Literal)
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACE)
	}
	var requires ast.Expr
	if p.curIs(lexer.REQUIRES) {
		p.advance()
		requires = p.parseExpression(LOWEST)
	}
	var body ast.Expr
	if p.curIs(lexer.LBRACE) {
		body = p.parseBlock()
	} else {
		p.consumeTerminator()
	}
	return &ast.FunctionDecl{
		DeclCommon: declCommon(start, p, name, vis, tps, anns, doc),
		Params:     params, ReturnType: ret, Effects: effects, Requires: requires,
		IsAsync: isAsync, Body: body,
	}
}

func (p *Parser) parseParamList() []*ast.Param {
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		pstart := p.curSpan()
		name := p.advance().Literal
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
	p.expect(lexer.RPAREN)
	return params
}

// parseFieldList parses a brace-enclosed field list shared by struct/
// data-variant/exception declarations.
func (p *Parser) parseFieldList() []*ast.FieldDecl {
	p.expect(lexer.LBRACE)
	var fields []*ast.FieldDecl
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		p.takeDocComment()
		fields = append(fields, p.parseOneField())
	}
	p.expect(lexer.RBRACE)
	return fields
}

func (p *Parser) parseOneField() *ast.FieldDecl {
	p.takeDocComment()
	vis := ast.Private
	if p.curIs(lexer.PUB) {
		p.advance()
		vis = ast.Public
	}
	mut := false
	if p.curIs(lexer.MUT) {
		p.advance()
		mut = true
	}
	name := p.advance().Literal
	p.expect(lexer.COLON)
	typ := p.parseType()
	var def ast.Expr
	if p.curIs(lexer.ASSIGN) {
		p.advance()
		def = p.parseExpression(LOWEST)
	}
	if p.curIs(lexer.COMMA) {
		p.advance()
	}
	return &ast.FieldDecl{Name: name, Type: typ, Default: def, Visibility: vis, Mutable: mut}
}

// parseMemberBlock parses the `{ ... }` body shared by class/interface/
// trait/protocol/impl/extend/context/supervisor/flow declarations:
// fields (where applicable), methods, and nested type declarations.
func (p *Parser) parseMemberBlock() (fields []*ast.FieldDecl, methods []*ast.FunctionDecl, nested []ast.TopDecl) {
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		doc := p.takeDocComment()
		switch p.cur().Type {
		case lexer.FN, lexer.ASYNC:
			fstart := p.curSpan()
			fd := p.parseFunctionDecl(fstart, ast.Private, nil, doc)
			methods = append(methods, fd.(*ast.FunctionDecl))
		case lexer.PUB:
			if p.peekIs(lexer.FN) || p.peekIs(lexer.ASYNC) {
				fstart := p.curSpan()
				fd := p.parseFunctionDecl(fstart, ast.Public, nil, doc)
				methods = append(methods, fd.(*ast.FunctionDecl))
			} else {
				fields = append(fields, p.parseOneField())
			}
		case lexer.CLASS, lexer.STRUCT, lexer.ENUM, lexer.DATA, lexer.SPARK, lexer.INTERFACE, lexer.TRAIT:
			if d := p.parseTopDecl(); d != nil {
				nested = append(nested, d)
			}
		case lexer.MUT, lexer.IDENT:
			fields = append(fields, p.parseOneField())
		default:
			p.errorf(diag.PAR001, "unexpected token %s in member block", p.cur().Type)
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return
}
