package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// parseType parses
//
//	[.]a.b<T, U>[?]
//	function(p: T) [-> R] [throws E][?]
func (p *Parser) parseType() (*ast.TypeExpr, bool) {
	start := p.lx.Peek()
	t := &ast.TypeExpr{}

	if p.at(token.KwFunction) {
		kw := p.advance()
		sig, ok := p.parseSignature(kw.Span)
		if !ok {
			return nil, false
		}
		t.Func = &sig
	} else {
		if p.at(token.Dot) {
			p.advance()
			t.Absolute = true
		}
		tok := p.lx.Peek()
		if !tok.IsName() {
			p.err(diag.SynExpectType, "expected type, got "+describe(tok))
			return nil, false
		}
		p.advance()
		t.Name = append(t.Name, tok.Text)
		for p.at(token.Dot) {
			p.advance()
			seg, ok := p.parseName()
			if !ok {
				return nil, false
			}
			t.Name = append(t.Name, seg.Text)
		}

		if p.at(token.Lt) {
			open := p.advance()
			for {
				arg, ok := p.parseType()
				if !ok {
					return nil, false
				}
				t.Args = append(t.Args, arg)
				if !p.at(token.Comma) {
					break
				}
				p.advance()
			}
			if !p.at(token.Gt) {
				p.countError()
				if p.underCap() && p.opts.Reporter != nil {
					diag.ReportError(p.opts.Reporter, diag.SynUnclosedAngle, p.getDiagnosticSpan(),
						"expected '>' to close type arguments of "+t.QualifiedName()+", got "+describe(p.lx.Peek())).
						WithNote(open.Span, "opened here").
						Emit()
				}
				return nil, false
			}
			p.advance()
		}
	}

	if p.at(token.Question) {
		p.advance()
		t.Optional = true
	}
	t.Span = start.Span.Cover(p.lastSpan)
	return t, true
}
