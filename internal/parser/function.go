package parser

import (
	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// parseFunction parses a free function type:
//
//	on_progress = async function +j (done: i64, total: i64) -> bool throws io_error;
func (p *Parser) parseFunction(d *ast.Decl) (*ast.FunctionBody, bool) {
	body := &ast.FunctionBody{}
	if p.at(token.KwAsync) {
		p.advance()
		body.Async = true
	}
	kw, ok := p.expect(token.KwFunction, diag.SynUnknownDeclKind, "expected 'function' after 'async'")
	if !ok {
		return nil, false
	}
	p.parseTargets(d)
	sig, ok := p.parseSignature(kw.Span)
	if !ok {
		return nil, false
	}
	body.Sig = sig
	if !p.expectSemicolon("function declaration") {
		return nil, false
	}
	return body, true
}
