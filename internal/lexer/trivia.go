package lexer

import (
	"strings"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/token"
)

// collectLeadingTrivia gathers the trivia in front of the next significant token.
//   - runs of ' ', '\t' and '\r' become one TriviaSpace
//   - runs of '\n' become one TriviaNewline (Text keeps every '\n')
//   - '#'... up to '\n' is TriviaDocLine at line start, else TriviaLineComment
//   - '//'... up to '\n' is TriviaLineComment
//   - '/* ... */' is TriviaBlockComment (nesting allowed; unterminated is reported)
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case b == ' ' || b == '\t' || b == '\r':
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' && b2 != '\r' {
					break
				}
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue

		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			lx.lineHasToken = false
			continue

		case b == '#':
			lx.scanHashComment()
			continue

		case b == '/':
			if lx.scanSlashComment() {
				continue
			}
		}
		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

func (lx *Lexer) scanHashComment() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '#'
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	raw := string(lx.file.Content[sp.Start:sp.End])
	if lx.lineHasToken {
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaLineComment, Span: sp, Text: raw})
		return
	}
	text := strings.TrimPrefix(raw[1:], " ")
	lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaDocLine, Span: sp, Text: strings.TrimRight(text, " \t\r")})
}

// scanSlashComment handles "//..." and "/*...*/"; a lone '/' is left for the
// operator scanner.
func (lx *Lexer) scanSlashComment() bool {
	start := lx.cursor.Mark()
	if !lx.cursor.Eat('/') {
		return false
	}
	switch lx.cursor.Peek() {
	case '/':
		lx.cursor.Bump()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.pushTrivia(token.TriviaLineComment, start)
		return true

	case '*':
		lx.cursor.Bump()
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			if b0, b1, ok := lx.cursor.Peek2(); ok {
				if b0 == '/' && b1 == '*' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth++
					continue
				}
				if b0 == '*' && b1 == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth--
					continue
				}
			}
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		if depth > 0 {
			lx.errLex(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
		}
		lx.pushTrivia(token.TriviaBlockComment, start)
		return true

	default:
		lx.cursor.Reset(start)
		return false
	}
}
