package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

var knownDeriving = map[string]bool{"eq": true, "ord": true, "str": true}

// parseRecord parses:
//
//	point = record : base +cpp { x: f64; y: f64; } deriving (eq, ord)
func (p *Parser) parseRecord(d *ast.Decl) (*ast.RecordBody, bool) {
	p.advance()
	body := &ast.RecordBody{}
	if p.at(token.Colon) {
		p.advance()
		base, ok := p.parseType()
		if !ok {
			return nil, false
		}
		body.Base = base
	}
	p.parseTargets(d)

	ok := p.parseBlock("record", func() bool {
		f, ok := p.parseField()
		if !ok {
			return false
		}
		if !p.expectSemicolon("field " + f.Name) {
			return false
		}
		f.Span = f.Span.Cover(p.lastSpan)
		body.Fields = append(body.Fields, f)
		return true
	})
	if !ok {
		return nil, false
	}

	if p.at(token.KwDeriving) {
		p.advance()
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after deriving"); !ok {
			return nil, false
		}
		for !p.atOr(token.RParen, token.EOF) {
			name, ok := p.parseName()
			if !ok {
				return nil, false
			}
			if !knownDeriving[name.Text] {
				p.report(diag.SynUnknownDeriving, diag.SevError, name.Span, "unknown deriving trait "+name.Text+" (want eq, ord or str)")
			} else {
				body.Deriving = append(body.Deriving, name)
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after deriving list"); !ok {
			return nil, false
		}
	}
	p.eatOptionalSemicolon()
	return body, true
}

// parseField parses `name: type` with the doc of its first token.
func (p *Parser) parseField() (ast.Field, bool) {
	first := p.lx.Peek()
	name, ok := p.parseName()
	if !ok {
		return ast.Field{}, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after "+name.Text); !ok {
		return ast.Field{}, false
	}
	typ, ok := p.parseType()
	if !ok {
		return ast.Field{}, false
	}
	return ast.Field{
		Name:     name.Text,
		NameSpan: name.Span,
		Doc:      token.DocLines(first.Leading),
		Type:     typ,
		Span:     name.Span.Cover(typ.Span),
	}, true
}
