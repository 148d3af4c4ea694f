package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/token"
)

// parseErrorDomain parses:
//
//	io_error = error { not_found; denied(path: string, code: i32); }
func (p *Parser) parseErrorDomain(d *ast.Decl) (*ast.ErrorBody, bool) {
	p.advance()
	p.parseTargets(d)
	body := &ast.ErrorBody{}
	ok := p.parseBlock("error", func() bool {
		first := p.lx.Peek()
		name, ok := p.parseName()
		if !ok {
			return false
		}
		v := ast.ErrorVariant{Name: name.Text, NameSpan: name.Span, Doc: token.DocLines(first.Leading)}
		if p.at(token.LParen) {
			open := p.advance()
			if v.Fields, ok = p.parseParams(); !ok {
				return false
			}
			if !p.expectCloseParen(open.Span, "expected ')' after payload of "+name.Text) {
				return false
			}
		}
		if !p.expectSemicolon("error variant " + name.Text) {
			return false
		}
		v.Span = name.Span.Cover(p.lastSpan)
		body.Variants = append(body.Variants, v)
		return true
	})
	if !ok {
		return nil, false
	}
	p.eatOptionalSemicolon()
	return body, true
}
