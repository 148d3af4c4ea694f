package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
)

func prettyOf(t *testing.T, fs *source.FileSet, opts PrettyOpts, diags ...diag.Diagnostic) string {
	t.Helper()
	bag := diag.NewBag(0)
	for _, d := range diags {
		bag.Add(d)
	}
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, opts)
	return buf.String()
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.idl", []byte("color = enum { red }\n"))
	d := diag.NewError(diag.SemaUnresolvedType, source.Span{File: id, Start: 15, End: 18}, "unresolved type red")

	out := prettyOf(t, fs, PrettyOpts{}, d)

	for _, want := range []string{
		"test.idl:1:16: ERROR SEM3002: unresolved type red\n",
		" 1 | color = enum { red }\n",
		"   | " + strings.Repeat(" ", 15) + "^~~\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour escapes in uncoloured output:\n%q", out)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		span    [2]uint32
		pad     int
		mark    string
	}{
		{"wide runes", "  größe = enum {}\n", [2]uint32{12, 16}, 10, "^~~~"},
		{"tab", "\tx = 1\n", [2]uint32{1, 2}, 4, "^"},
		{"empty span", "x = ;\n", [2]uint32{4, 4}, 4, "^"},
		{"multi-line span", "r = record {\n}\n", [2]uint32{11, 14}, 11, "^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("a.idl", []byte(tt.content))
			d := diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: tt.span[0], End: tt.span[1]}, "x")
			out := prettyOf(t, fs, PrettyOpts{}, d)
			want := "   | " + strings.Repeat(" ", tt.pad) + tt.mark + "\n"
			if !strings.Contains(out, want) {
				t.Errorf("want underline %q in:\n%s", want, out)
			}
		})
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ctx.idl", []byte("a = enum { x; }\nb = enum { y; }\nc = enum { z; }\n"))
	d := diag.NewError(diag.SemaDuplicateSymbol, source.Span{File: id, Start: 32, End: 33}, "dup")

	out := prettyOf(t, fs, PrettyOpts{Context: 1}, d)
	if strings.Contains(out, "1 | a = enum") {
		t.Errorf("context of 1 must not show line 1:\n%s", out)
	}
	if !strings.Contains(out, "2 | b = enum { y; }") || !strings.Contains(out, "3 | c = enum { z; }") {
		t.Errorf("missing context lines:\n%s", out)
	}

	out = prettyOf(t, fs, PrettyOpts{Context: 10}, d)
	if !strings.Contains(out, "1 | a = enum { x; }") {
		t.Errorf("large context must clamp to line 1:\n%s", out)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.idl", []byte("e = enum { a }\n"))
	d := diag.NewError(diag.SynExpectSemicolon, source.Span{File: id, Start: 13, End: 14}, "expected ';'").
		WithNote(source.Span{File: id, Start: 0, End: 1}, "declared here").
		WithFix("insert ';'", diag.FixEdit{Span: source.Span{File: id, Start: 12, End: 12}, NewText: ";"})

	out := prettyOf(t, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowPreview: true}, d)
	for _, want := range []string{
		"note: test.idl:1:1: declared here",
		"fix: insert ';'",
		"- e = enum { a }",
		"+ e = enum { a; }",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	out = prettyOf(t, fs, PrettyOpts{}, d)
	if strings.Contains(out, "note:") || strings.Contains(out, "fix:") {
		t.Errorf("notes and fixes must be opt-in:\n%s", out)
	}
}

func TestPrettyPathModes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/idl/test.idl", []byte("x = enum {}\n"))
	fs.SetBaseDir("/home/user/project")
	d := diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 1}, "x")

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/idl/test.idl:1:1"},
		{PathModeRelative, "idl/test.idl:1:1"},
		{PathModeBasename, "test.idl:1:1"},
	}
	for _, tt := range tests {
		out := prettyOf(t, fs, PrettyOpts{PathMode: tt.mode}, d)
		if !strings.HasPrefix(out, tt.want) {
			t.Errorf("mode %d: want prefix %q, got:\n%s", tt.mode, tt.want, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("c.idl", []byte("x\n"))
	d := diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 1}, "x")
	out := prettyOf(t, fs, PrettyOpts{Color: true}, d)
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected colour escapes:\n%q", out)
	}
}
