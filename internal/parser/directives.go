package parser

import (
	"strconv"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// parseDirective parses `@import "path"` and `@extern "path"`.
func (p *Parser) parseDirective() (ast.Directive, bool) {
	at := p.advance()
	nameTok := p.lx.Peek()
	if !nameTok.IsName() {
		p.err(diag.SynBadDirective, "expected directive name after '@', got "+describe(nameTok))
		return ast.Directive{}, false
	}
	p.advance()

	dir := ast.Directive{}
	switch nameTok.Text {
	case "import":
		dir.Kind = ast.DirImport
	case "extern":
		dir.Kind = ast.DirExtern
	default:
		p.report(diag.SynBadDirective, diag.SevError, nameTok.Span, "unknown directive @"+nameTok.Text)
		return ast.Directive{}, false
	}

	pathTok, ok := p.expect(token.StringLit, diag.SynBadDirective, "expected quoted path after @"+nameTok.Text)
	if !ok {
		return ast.Directive{}, false
	}
	path, err := strconv.Unquote(pathTok.Text)
	if err != nil || path == "" {
		p.report(diag.SynBadDirective, diag.SevError, pathTok.Span, "invalid path literal "+pathTok.Text)
		return ast.Directive{}, false
	}
	dir.Path = path
	dir.PathSpan = pathTok.Span
	p.eatOptionalSemicolon()
	dir.Span = at.Span.Cover(p.lastSpan)
	return dir, true
}
