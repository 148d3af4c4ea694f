package token

import (
	"strings"

	"bridgeidl/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	// TriviaNewline covers a run of '\n'; Text holds all of them.
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	// TriviaDocLine is a '#' comment that starts its line; Text excludes
	// the marker. A '#' after code on the same line is a TriviaLineComment.
	TriviaDocLine
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDocLine:
		return "DocLine"
	}
	return "Unknown"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// DocLines returns the documentation attached to a token: the run of '#'
// lines directly above it. A blank line or an ordinary comment between the
// run and the token detaches it.
func DocLines(leading []Trivia) []string {
	var (
		lines    []string
		newlines int
	)
	for i := len(leading) - 1; i >= 0; i-- {
		tv := leading[i]
		switch tv.Kind {
		case TriviaSpace:
			continue
		case TriviaNewline:
			newlines += max(1, strings.Count(tv.Text, "\n"))
			if newlines > 1 {
				return reverse(lines)
			}
		case TriviaDocLine:
			lines = append(lines, tv.Text)
			newlines = 0
		default:
			return reverse(lines)
		}
	}
	return reverse(lines)
}

func reverse(lines []string) []string {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}
