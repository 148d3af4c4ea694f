package parser

import (
	"slices"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error cap has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File *ast.File
	// Errors counts syntax errors reported by the parser (lexical errors are
	// reported by the lexer directly).
	Errors uint
}

// Parser holds the state for one file.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	lastSpan source.Span // span of the last consumed token, for diagnostics at EOF
}

// ParseFile parses one IDL file. Parsing is pure: it never touches symbols
// and reports every syntax error it can recover from.
func ParseFile(lx *lexer.Lexer, opts Options) Result {
	p := Parser{
		lx:       lx,
		file:     lx.File(),
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	f := &ast.File{
		Path:   p.file.Path,
		FileID: p.file.ID,
	}
	startSpan := p.lx.Peek().Span
	f.Items = p.parseItems(f, true)
	f.Span = startSpan.Cover(p.lx.Peek().Span)
	return Result{File: f, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems loops until EOF (top level) or '}' (namespace body).
func (p *Parser) parseItems(f *ast.File, topLevel bool) []ast.Item {
	var items []ast.Item
	for !p.at(token.EOF) && !p.opts.Enough() {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.RBrace:
			if !topLevel {
				return items
			}
			p.err(diag.SynUnexpectedToken, "unexpected '}' at top level")
			p.advance()

		case tok.Kind == token.Semicolon:
			p.advance()

		case tok.Kind == token.At:
			dir, ok := p.parseDirective()
			switch {
			case !ok:
				p.skipDirectiveTail()
			case !topLevel:
				p.report(diag.SynBadDirective, diag.SevError, dir.Span, "directives are only allowed at file level")
			default:
				f.Directives = append(f.Directives, dir)
			}

		case tok.Kind == token.KwNamespace:
			if ns, ok := p.parseNamespace(f); ok {
				items = append(items, ns)
			} else {
				p.resyncDecl()
			}

		case tok.IsName():
			if decl, ok := p.parseDecl(); ok {
				items = append(items, decl)
			} else {
				p.resyncDecl()
			}

		case tok.Kind == token.Invalid:
			// already reported by the lexer
			p.advance()

		default:
			p.err(diag.SynUnexpectedToken, "expected declaration, namespace or directive, got "+describe(tok))
			p.resyncDecl()
		}
	}
	return items
}

// parseNamespace parses `namespace a.b { ... } [;]`; the path may use '.' or '/'.
func (p *Parser) parseNamespace(f *ast.File) (*ast.Namespace, bool) {
	kw := p.advance()
	ns := &ast.Namespace{}

	first, ok := p.parseName()
	if !ok {
		return nil, false
	}
	ns.Path = append(ns.Path, first.Text)
	ns.PathSpan = first.Span
	for p.atOr(token.Dot, token.Slash) {
		p.advance()
		seg, ok := p.parseName()
		if !ok {
			return nil, false
		}
		ns.Path = append(ns.Path, seg.Text)
		ns.PathSpan = ns.PathSpan.Cover(seg.Span)
	}

	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after namespace path")
	if !ok {
		return nil, false
	}
	ns.Items = p.parseItems(f, false)
	if _, ok := p.expectClose(open.Span, "namespace"); !ok {
		ns.Span = kw.Span.Cover(p.lastSpan)
		return ns, true
	}
	p.eatOptionalSemicolon()
	ns.Span = kw.Span.Cover(p.lastSpan)
	return ns, true
}

// resyncDecl skips to the end of the broken declaration: past the next ';'
// or balanced '}' block, stopping in front of a '}' that closes an enclosing
// namespace and in front of directives and namespaces.
func (p *Parser) resyncDecl() {
	depth := 0
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			return
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				p.eatOptionalSemicolon()
				p.skipDeriving()
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.At, token.KwNamespace:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// resyncMember skips to the end of a broken member inside a body: past the
// next ';' at the current nesting level, or up to the body's closing '}'.
func (p *Parser) resyncMember() {
	depth := 0
	for {
		switch p.lx.Peek().Kind {
		case token.EOF:
			return
		case token.LBrace, token.LParen:
			depth++
		case token.RParen:
			if depth > 0 {
				depth--
			}
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// skipDirectiveTail drops the rest of a broken directive line.
func (p *Parser) skipDirectiveTail() {
	if p.at(token.StringLit) {
		p.advance()
	}
	p.eatOptionalSemicolon()
}

// skipDeriving drops a dangling `deriving (...)` left after a broken record.
func (p *Parser) skipDeriving() {
	if !p.at(token.KwDeriving) {
		return
	}
	p.advance()
	if p.at(token.LParen) {
		for !p.atOr(token.RParen, token.EOF, token.RBrace) {
			p.advance()
		}
		if p.at(token.RParen) {
			p.advance()
		}
	}
	p.eatOptionalSemicolon()
}
