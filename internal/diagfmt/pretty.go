package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
)

const tabWidth = 4

type palette struct {
	err    *color.Color
	warn   *color.Color
	info   *color.Color
	bold   *color.Color
	gutter *color.Color
	note   *color.Color
	add    *color.Color
	del    *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		bold:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		note:   mk(color.FgCyan),
		add:    mk(color.FgGreen),
		del:    mk(color.FgRed),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics for humans. It walks bag.Items() in order, so
// callers sort the bag first. Each entry is
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline and, depending on opts,
// notes and fix previews.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.bold.Sprint(location(fs, d.Primary, opts.PathMode)),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.bold.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, fs, d.Primary, opts, pal, pal.severity(d.Severity))

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
			writeSnippet(w, fs, n.Span, PrettyOpts{Width: opts.Width}, pal, pal.note)
		}
	}
	if opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", pal.add.Sprint("fix:"), fix.Title)
			if !opts.ShowPreview {
				continue
			}
			for _, edit := range fix.Edits {
				preview, err := buildFixEditPreview(fs, edit)
				if err != nil {
					continue
				}
				for _, l := range preview.before {
					fmt.Fprintf(w, "    %s %s\n", pal.del.Sprint("-"), expandTabs(l))
				}
				for _, l := range preview.after {
					fmt.Fprintf(w, "    %s %s\n", pal.add.Sprint("+"), expandTabs(l))
				}
			}
		}
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.mode(), fs.BaseDir()), start.Line, start.Col)
}

// writeSnippet prints opts.Context lines above the span's first line, the
// line itself, and an underline. Multi-line spans are underlined to the end
// of their first line.
func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, pal palette, mark *color.Color) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	gutterWidth := len(fmt.Sprint(start.Line))

	from := start.Line
	if ctx := uint32(max(opts.Context, 0)); ctx > 0 {
		from = 1
		if ctx < start.Line {
			from = start.Line - ctx
		}
	}
	for ln := from; ln <= start.Line; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 && runewidth.StringWidth(text) > int(opts.Width) {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, " %s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	line := f.GetLine(start.Line)
	startCol := clampCol(start.Col, line)
	endCol := len(line) + 1
	if end.Line == start.Line {
		endCol = clampCol(end.Col, line)
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol-1]))
	width := max(1, runewidth.StringWidth(expandTabs(line[startCol-1:max(startCol, endCol)-1])))
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, " %s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), mark.Sprint(underline))
}

// clampCol keeps a 1-based byte column inside line (one past the end is allowed).
func clampCol(col uint32, line string) int {
	c := int(col)
	if c < 1 {
		return 1
	}
	return min(c, len(line)+1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
