package parser

import (
	"strings"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// exprWords are operator words of the constant expression language; they
// lex as identifiers but never name a constant.
var exprWords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "nil": true,
	"matches": true, "contains": true, "startsWith": true, "endsWith": true,
}

// parseConst parses `const T = expr;`. The initializer is kept as source
// text together with the names it references.
func (p *Parser) parseConst() (*ast.ConstBody, bool) {
	p.advance()
	typ, ok := p.parseType()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after constant type"); !ok {
		return nil, false
	}

	var toks []token.Token
	depth := 0
	for {
		tok := p.lx.Peek()
		if tok.Kind == token.EOF || (depth == 0 && (tok.Kind == token.Semicolon || tok.Kind == token.RBrace)) {
			break
		}
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		case token.Invalid:
			p.advance()
			return nil, false
		}
		toks = append(toks, p.advance())
	}
	if len(toks) == 0 {
		p.err(diag.SynExpectExpression, "expected constant expression")
		return nil, false
	}

	body := &ast.ConstBody{
		Type:     typ,
		ExprSpan: toks[0].Span.Cover(toks[len(toks)-1].Span),
		Refs:     constRefs(toks),
	}
	body.Expr = string(p.file.Content[body.ExprSpan.Start:body.ExprSpan.End])
	if !p.expectSemicolon("constant expression") {
		return nil, false
	}
	return body, true
}

// constRefs extracts dotted name chains (`a.b.c`, `.ns.c`) from the
// initializer tokens, skipping call targets and operator words.
func constRefs(toks []token.Token) []ast.Ref {
	var refs []ast.Ref
	for i := 0; i < len(toks); i++ {
		start := i
		abs := false
		if toks[i].Kind == token.Dot && i+1 < len(toks) && toks[i+1].Kind == token.Ident &&
			(i == 0 || !endsOperand(toks[i-1])) {
			abs = true
			i++
		}
		if toks[i].Kind != token.Ident || exprWords[toks[i].Text] {
			continue
		}
		if !abs && i > 0 && toks[i-1].Kind == token.Dot {
			continue
		}
		parts := []string{toks[i].Text}
		end := i
		for end+2 < len(toks) && toks[end+1].Kind == token.Dot && toks[end+2].IsName() {
			parts = append(parts, toks[end+2].Text)
			end += 2
		}
		i = end
		if end+1 < len(toks) && toks[end+1].Kind == token.LParen {
			continue
		}
		refs = append(refs, ast.Ref{
			Name:     strings.Join(parts, "."),
			Absolute: abs,
			Span:     toks[start].Span.Cover(toks[end].Span),
		})
	}
	return refs
}

func endsOperand(tok token.Token) bool {
	switch tok.Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.RParen, token.RBracket,
		token.KwTrue, token.KwFalse:
		return true
	}
	return false
}
