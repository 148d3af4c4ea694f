package lexer

import (
	"fmt"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // one-token lookahead buffer
	hold   []token.Trivia // leading trivia collected for the next token
	// lineHasToken is set once a significant token was produced on the
	// current line; a '#' after it is an ordinary comment, not a doc line.
	lineHasToken bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next returns the next significant token with its Leading trivia attached.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	// Leading trivia before EOF is kept so trailing docs are not lost to tooling.
	if lx.cursor.EOF() {
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan(), Leading: lx.hold}
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if tok.Span.Len() > lx.maxTokenLength() {
		lx.errLex(diag.LexTokenTooLong, tok.Span,
			fmt.Sprintf("token exceeds %d bytes", lx.maxTokenLength()))
		lx.cursor.Off = lx.cursor.limit()
		tok = token.Token{Kind: token.Invalid, Span: tok.Span}
	}

	tok.Leading = lx.hold
	lx.hold = nil
	lx.lineHasToken = true
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All lexes the remaining input, EOF included.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// File returns the source file being lexed.
func (lx *Lexer) File() *source.File { return lx.file }

// EmptySpan is a zero-length span at the current position.
func (lx *Lexer) EmptySpan() source.Span { return lx.emptySpan() }

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
