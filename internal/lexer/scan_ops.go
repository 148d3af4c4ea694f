package lexer

import (
	"fmt"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// scanOperatorOrPunct is greedy: two-byte operators first, then single bytes.
// There is no '>>' token so nested generics like list<list<i32>> close cleanly.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	switch {
	case lx.try2('-', '>'):
		return emit(token.Arrow)
	case lx.try2('&', '&'):
		return emit(token.AndAnd)
	case lx.try2('|', '|'):
		return emit(token.OrOr)
	case lx.try2('=', '='):
		return emit(token.EqEq)
	case lx.try2('!', '='):
		return emit(token.BangEq)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	}

	r, sz := lx.peekRune()
	if sz > 1 {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", r))
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	ch := lx.cursor.Bump()
	if k, ok := singleByteKinds[ch]; ok {
		return emit(k)
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", ch))
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

var singleByteKinds = map[byte]token.Kind{
	'{': token.LBrace,
	'}': token.RBrace,
	'(': token.LParen,
	')': token.RParen,
	'<': token.Lt,
	'>': token.Gt,
	'[': token.LBracket,
	']': token.RBracket,
	',': token.Comma,
	';': token.Semicolon,
	':': token.Colon,
	'=': token.Assign,
	'?': token.Question,
	'.': token.Dot,
	'/': token.Slash,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'%': token.Percent,
	'|': token.Pipe,
	'&': token.Amp,
	'^': token.Caret,
	'!': token.Bang,
	'~': token.Tilde,
	'@': token.At,
}
