// Package ident converts IDL identifiers into target naming styles.
package ident

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Style uint8

const (
	// Keep leaves the identifier as written.
	Keep Style = iota
	Snake
	Camel
	Pascal
	Kebab
	Train
	Screaming
)

var styleNames = map[string]Style{
	"":                Keep,
	"none":            Keep,
	"keep":            Keep,
	"snake":           Snake,
	"snake_case":      Snake,
	"camel":           Camel,
	"camelCase":       Camel,
	"pascal":          Pascal,
	"PascalCase":      Pascal,
	"kebab":           Kebab,
	"kebab-case":      Kebab,
	"train":           Train,
	"Train-Case":      Train,
	"screaming":       Screaming,
	"SCREAMING_SNAKE": Screaming,
}

// ParseStyle accepts a style name ("snake", "camel", "pascal", "kebab",
// "train", "screaming", "none") or its spelled-out example form.
func ParseStyle(s string) (Style, error) {
	if st, ok := styleNames[s]; ok {
		return st, nil
	}
	return Keep, fmt.Errorf("unknown identifier style %q", s)
}

func (s Style) String() string {
	switch s {
	case Snake:
		return "snake"
	case Camel:
		return "camel"
	case Pascal:
		return "pascal"
	case Kebab:
		return "kebab"
	case Train:
		return "train"
	case Screaming:
		return "screaming"
	}
	return "none"
}

// Convert renders name in style s.
func Convert(name string, s Style) string {
	if s == Keep || name == "" {
		return name
	}
	// Casers keep state, so each call gets its own.
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)
	title := cases.Title(language.Und)
	words := Words(name)
	switch s {
	case Snake:
		return joinMapped(words, "_", lower.String)
	case Screaming:
		return joinMapped(words, "_", upper.String)
	case Kebab:
		return joinMapped(words, "-", lower.String)
	case Train:
		return joinMapped(words, "-", title.String)
	case Pascal:
		return joinMapped(words, "", title.String)
	case Camel:
		out := joinMapped(words, "", title.String)
		if len(words) > 0 {
			first := lower.String(words[0])
			out = first + out[len(title.String(words[0])):]
		}
		return out
	}
	return name
}

func joinMapped(words []string, sep string, f func(string) string) string {
	mapped := make([]string, len(words))
	for i, w := range words {
		mapped[i] = f(w)
	}
	return strings.Join(mapped, sep)
}

// Words splits an identifier at '_', '-', lower-to-upper transitions and
// the end of an acronym ("HTTPServer" is "HTTP", "Server").
func Words(name string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Styles assigns a style to every identifier category of one target.
type Styles struct {
	Type     Style
	Enum     Style
	Method   Style
	Field    Style
	Param    Style
	Const    Style
	Property Style
	File     Style
}
