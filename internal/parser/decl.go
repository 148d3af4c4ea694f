package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/target"
	"bridgeidl/internal/token"
)

// parseDecl parses `name = <kind> ...`. Bodies recover member by member, so a
// false result means the header itself was broken.
func (p *Parser) parseDecl() (*ast.Decl, bool) {
	nameTok := p.advance()
	d := &ast.Decl{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
		Doc:      token.DocLines(nameTok.Leading),
	}

	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after declaration name "+nameTok.Text); !ok {
		return nil, false
	}

	var ok bool
	switch kind := p.lx.Peek(); kind.Kind {
	case token.KwEnum:
		d.Body, ok = p.parseEnum(d)
	case token.KwFlags:
		d.Body, ok = p.parseFlags(d)
	case token.KwRecord:
		d.Body, ok = p.parseRecord(d)
	case token.KwMain, token.KwExt, token.KwInterface:
		d.Body, ok = p.parseInterface(d)
	case token.KwAsync, token.KwFunction:
		d.Body, ok = p.parseFunction(d)
	case token.KwError:
		d.Body, ok = p.parseErrorDomain(d)
	case token.KwConst:
		d.Body, ok = p.parseConst()
	case token.KwExtern:
		p.advance()
		p.parseTargets(d)
		d.Body = &ast.ExternBody{}
		ok = p.expectSemicolon("extern declaration")
	default:
		p.err(diag.SynUnknownDeclKind, "unknown declaration kind "+describe(kind))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	d.Span = nameTok.Span.Cover(p.lastSpan)
	return d, true
}

// parseTargets parses `{ ("+" | "-") name }` after the kind keyword.
func (p *Parser) parseTargets(d *ast.Decl) {
	for p.atOr(token.Plus, token.Minus) {
		sign := p.advance()
		name, ok := p.parseName()
		if !ok {
			continue
		}
		include := sign.Kind == token.Plus
		ts, known := target.Expand(name.Text)
		if !known {
			p.report(diag.SynUnknownTarget, diag.SevError, name.Span, "unknown target "+name.Text)
			continue
		}
		if !include && len(ts) > 1 {
			p.report(diag.SynUnknownTarget, diag.SevError, name.Span, "'-"+name.Text+"' cannot exclude every target")
			continue
		}
		for _, t := range ts {
			d.Targets = append(d.Targets, ast.TargetMarker{
				Marker: target.Marker{Target: t, Include: include},
				Span:   sign.Span.Cover(name.Span),
			})
		}
	}
}

// parseBlock runs member for every member of a '{ ... }' body, resyncing to
// the next member after a failure. It returns false when the body is not
// closed.
func (p *Parser) parseBlock(what string, member func() bool) bool {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open "+what+" body")
	if !ok {
		return false
	}
	for !p.atOr(token.RBrace, token.EOF) && !p.opts.Enough() {
		if p.at(token.Invalid) {
			p.advance()
			continue
		}
		if !member() {
			p.resyncMember()
		}
	}
	if _, ok := p.expectClose(open.Span, what); !ok {
		return false
	}
	return true
}
