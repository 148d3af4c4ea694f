package parser

import (
	"fmt"
	"strconv"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

// advance consumes the next token and updates lastSpan.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan returns the best span for a diagnostic at the current
// position: the next token, or the end of the last one when at EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{
			File:  p.lastSpan.File,
			Start: p.lastSpan.End,
			End:   p.lastSpan.End,
		}
	}
	return peek.Span
}

// expect consumes a token of kind k or reports code with msg.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: p.getDiagnosticSpan()}, false
}

// expectSemicolon is expect(';') with a ready-made insertion fix.
func (p *Parser) expectSemicolon(after string) bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	if p.lx.Peek().Kind == token.Invalid {
		return false
	}
	at := source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	p.countError()
	if p.underCap() && p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, diag.SynExpectSemicolon, p.getDiagnosticSpan(),
			"expected ';' after "+after+", got "+describe(p.lx.Peek())).
			WithFix("insert ';'", diag.FixEdit{Span: at, NewText: ";"}).
			Emit()
	}
	return false
}

// expectClose consumes the '}' matching the brace at open.
func (p *Parser) expectClose(open source.Span, what string) (token.Token, bool) {
	if p.at(token.RBrace) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.countError()
	if p.underCap() && p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, diag.SynUnclosedBrace, sp, "unclosed "+what+" body").
			WithNote(open, "opened here").
			Emit()
	}
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectCloseParen consumes the ')' matching the paren at open.
func (p *Parser) expectCloseParen(open source.Span, msg string) bool {
	if p.at(token.RParen) {
		p.advance()
		return true
	}
	p.countError()
	if p.underCap() && p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, diag.SynUnclosedParen, p.getDiagnosticSpan(),
			msg+", got "+describe(p.lx.Peek())).
			WithNote(open, "opened here").
			Emit()
	}
	return false
}

func (p *Parser) eatOptionalSemicolon() {
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// parseName accepts an identifier or a keyword used as a name.
func (p *Parser) parseName() (ast.Name, bool) {
	tok := p.lx.Peek()
	if tok.IsName() {
		p.advance()
		return ast.Name{Text: tok.Text, Span: tok.Span}, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(tok))
	return ast.Name{}, false
}

// parseInt parses an optionally negative integer literal.
func (p *Parser) parseInt() (*ast.IntLit, bool) {
	start := p.lx.Peek().Span
	neg := false
	if p.at(token.Minus) {
		p.advance()
		neg = true
	}
	tok, ok := p.expect(token.IntLit, diag.SynUnexpectedToken, "expected integer")
	if !ok {
		return nil, false
	}
	text := tok.Text
	if neg {
		text = "-" + text
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		p.report(diag.LexBadNumber, diag.SevError, tok.Span, fmt.Sprintf("invalid integer %s", text))
		return nil, false
	}
	return &ast.IntLit{Text: text, Value: v, Span: start.Cover(tok.Span)}, true
}

// parseMagnitude parses an optionally negative integer literal whose
// magnitude fits in 64 unsigned bits.
func (p *Parser) parseMagnitude() (mag uint64, neg bool, sp source.Span, ok bool) {
	start := p.lx.Peek().Span
	if p.at(token.Minus) {
		p.advance()
		neg = true
	}
	tok, ok := p.expect(token.IntLit, diag.SynUnexpectedToken, "expected integer")
	if !ok {
		return 0, false, source.Span{}, false
	}
	mag, err := strconv.ParseUint(tok.Text, 0, 64)
	if err != nil {
		p.report(diag.LexBadNumber, diag.SevError, tok.Span, fmt.Sprintf("invalid integer %s", tok.Text))
		return 0, false, source.Span{}, false
	}
	return mag, neg, start.Cover(tok.Span), true
}

// err reports at the current position. A pending Invalid token was already
// reported by the lexer, so nothing is emitted for it.
func (p *Parser) err(code diag.Code, msg string) bool {
	if p.lx.Peek().Kind == token.Invalid {
		return false
	}
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) countError() {
	p.opts.CurrentErrors++
}

// underCap reports whether the most recently counted error may still be emitted.
func (p *Parser) underCap() bool {
	return p.opts.MaxErrors == 0 || p.opts.CurrentErrors <= p.opts.MaxErrors
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.countError()
		if !p.underCap() {
			return false
		}
	}
	if p.opts.Reporter == nil {
		return false
	}
	p.opts.Reporter.Report(diag.New(sev, code, sp, msg))
	return true
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return fmt.Sprintf("identifier %q", tok.Text)
	case token.IntLit, token.FloatLit, token.StringLit:
		return fmt.Sprintf("literal %s", tok.Text)
	}
	return fmt.Sprintf("'%s'", tok.Kind)
}
