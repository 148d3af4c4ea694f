package ir

import "strings"

// Doc is the parsed documentation of a declaration or member.
type Doc struct {
	// Lines are the doc lines without tags.
	Lines      []string
	Deprecated bool
	// DeprecatedNote is the text after @deprecated, if any.
	DeprecatedNote string
	// Params holds @param descriptions keyed by parameter name.
	Params map[string]string
}

// ParseDoc splits raw doc lines into text and tags.
func ParseDoc(lines []string) Doc {
	var d Doc
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "@deprecated" || strings.HasPrefix(trimmed, "@deprecated "):
			d.Deprecated = true
			d.DeprecatedNote = strings.TrimSpace(strings.TrimPrefix(trimmed, "@deprecated"))
		case strings.HasPrefix(trimmed, "@param "):
			name, text, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(trimmed, "@param ")), " ")
			if name == "" {
				d.Lines = append(d.Lines, line)
				continue
			}
			if d.Params == nil {
				d.Params = make(map[string]string)
			}
			d.Params[name] = strings.TrimSpace(text)
		default:
			d.Lines = append(d.Lines, line)
		}
	}
	return d
}

// Summary is the first non-empty doc line.
func (d Doc) Summary() string {
	for _, l := range d.Lines {
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}

func (d Doc) Empty() bool {
	return len(d.Lines) == 0 && !d.Deprecated && len(d.Params) == 0
}
