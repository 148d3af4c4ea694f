package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// parseEnum parses:
//
//	color = enum { red; green = 5; blue; }
func (p *Parser) parseEnum(d *ast.Decl) (*ast.EnumBody, bool) {
	p.advance()
	p.parseTargets(d)
	body := &ast.EnumBody{}
	ok := p.parseBlock("enum", func() bool {
		first := p.lx.Peek()
		name, ok := p.parseName()
		if !ok {
			return false
		}
		m := ast.Enumerant{Name: name.Text, NameSpan: name.Span, Doc: token.DocLines(first.Leading)}
		if p.at(token.Assign) {
			p.advance()
			if m.Value, ok = p.parseInt(); !ok {
				return false
			}
		}
		if !p.expectSemicolon("enumerant " + name.Text) {
			return false
		}
		m.Span = name.Span.Cover(p.lastSpan)
		body.Members = append(body.Members, m)
		return true
	})
	if !ok {
		return nil, false
	}
	p.eatOptionalSemicolon()
	return body, true
}

// parseFlags parses:
//
//	perms = flags { read; write = 4; everything = all; nothing = none; }
func (p *Parser) parseFlags(d *ast.Decl) (*ast.FlagsBody, bool) {
	p.advance()
	p.parseTargets(d)
	body := &ast.FlagsBody{}
	ok := p.parseBlock("flags", func() bool {
		first := p.lx.Peek()
		name, ok := p.parseName()
		if !ok {
			return false
		}
		m := ast.FlagMember{Name: name.Text, NameSpan: name.Span, Doc: token.DocLines(first.Leading)}
		if p.at(token.Assign) {
			p.advance()
			val := p.lx.Peek()
			switch {
			case val.Kind == token.Ident && val.Text == "all":
				p.advance()
				m.ValueKind, m.ValueSpan = ast.FlagAll, val.Span
			case val.Kind == token.Ident && val.Text == "none":
				p.advance()
				m.ValueKind, m.ValueSpan = ast.FlagNone, val.Span
			case val.Kind == token.IntLit || val.Kind == token.Minus:
				mag, neg, sp, ok := p.parseMagnitude()
				if !ok {
					return false
				}
				m.ValueKind, m.Value, m.Negative, m.ValueSpan = ast.FlagExplicit, mag, neg, sp
			default:
				p.err(diag.SynBadFlagsValue, "expected integer, 'all' or 'none' for flag "+name.Text+", got "+describe(val))
				return false
			}
		}
		if !p.expectSemicolon("flag " + name.Text) {
			return false
		}
		m.Span = name.Span.Cover(p.lastSpan)
		body.Members = append(body.Members, m)
		return true
	})
	if !ok {
		return nil, false
	}
	p.eatOptionalSemicolon()
	return body, true
}
