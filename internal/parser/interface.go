package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

// parseInterface parses:
//
//	store = main ext interface +cpp {
//	    static create() -> store;
//	    const get(key: string) -> binary?;
//	    async load(path: string) -> binary throws io_error;
//	    property size: i64;
//	}
func (p *Parser) parseInterface(d *ast.Decl) (*ast.InterfaceBody, bool) {
	body := &ast.InterfaceBody{}
	for p.atOr(token.KwMain, token.KwExt) {
		tok := p.advance()
		seen := &body.Main
		if tok.Kind == token.KwExt {
			seen = &body.Ext
		} else {
			body.MainSpan = tok.Span
		}
		if *seen {
			p.report(diag.SynDuplicateModifier, diag.SevError, tok.Span, "duplicate '"+tok.Text+"'")
		}
		*seen = true
	}
	if _, ok := p.expect(token.KwInterface, diag.SynUnknownDeclKind, "expected 'interface'"); !ok {
		return nil, false
	}
	p.parseTargets(d)

	ok := p.parseBlock("interface", func() bool {
		return p.parseInterfaceMember(body)
	})
	if !ok {
		return nil, false
	}
	p.eatOptionalSemicolon()
	return body, true
}

func (p *Parser) parseInterfaceMember(body *ast.InterfaceBody) bool {
	first := p.lx.Peek()
	doc := token.DocLines(first.Leading)

	var static, isConst, async bool
	modSpan := first.Span
	for p.atOr(token.KwStatic, token.KwConst, token.KwAsync) {
		tok := p.advance()
		var flag *bool
		switch tok.Kind {
		case token.KwStatic:
			flag = &static
		case token.KwConst:
			flag = &isConst
		default:
			flag = &async
		}
		if *flag {
			p.report(diag.SynDuplicateModifier, diag.SevError, tok.Span, "duplicate '"+tok.Text+"'")
		}
		*flag = true
	}

	if p.at(token.KwProperty) {
		kw := p.advance()
		if static || isConst {
			p.report(diag.SynUnexpectedToken, diag.SevError, modSpan.Cover(kw.Span), "properties cannot be static or const")
		}
		f, ok := p.parseField()
		if !ok {
			return false
		}
		if !p.expectSemicolon("property " + f.Name) {
			return false
		}
		if len(doc) == 0 {
			doc = f.Doc
		}
		body.Properties = append(body.Properties, ast.Property{
			Name:     f.Name,
			NameSpan: f.NameSpan,
			Doc:      doc,
			Async:    async,
			Type:     f.Type,
			Span:     first.Span.Cover(p.lastSpan),
		})
		return true
	}

	name, ok := p.parseName()
	if !ok {
		return false
	}
	sig, ok := p.parseSignature(name.Span)
	if !ok {
		return false
	}
	if !p.expectSemicolon("method " + name.Text) {
		return false
	}
	body.Methods = append(body.Methods, ast.Method{
		Name:     name.Text,
		NameSpan: name.Span,
		Doc:      doc,
		Static:   static,
		Const:    isConst,
		Async:    async,
		Sig:      sig,
		Span:     first.Span.Cover(p.lastSpan),
	})
	return true
}

// parseSignature parses `( params ) [-> type] [throws a, b]`.
func (p *Parser) parseSignature(start source.Span) (ast.FuncSig, bool) {
	sig := ast.FuncSig{}
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to open parameter list")
	if !ok {
		return sig, false
	}
	if sig.Params, ok = p.parseParams(); !ok {
		return sig, false
	}
	if !p.expectCloseParen(open.Span, "expected ')' to close parameter list") {
		return sig, false
	}

	if p.at(token.Arrow) {
		p.advance()
		res, ok := p.parseType()
		if !ok {
			return sig, false
		}
		sig.Result = res
	}
	if p.at(token.KwThrows) {
		p.advance()
		for {
			t, ok := p.parseType()
			if !ok {
				return sig, false
			}
			sig.Throws = append(sig.Throws, t)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	sig.Span = start.Cover(p.lastSpan)
	return sig, true
}

// parseParams parses `name: type {, name: type}` up to (not including) ')'.
func (p *Parser) parseParams() ([]ast.Field, bool) {
	var params []ast.Field
	for !p.atOr(token.RParen, token.EOF) {
		f, ok := p.parseField()
		if !ok {
			return nil, false
		}
		params = append(params, f)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return params, true
}
