package source

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		crlf    bool
		withBOM bool
	}{
		{"plain", "a = enum { x; }\n", "a = enum { x; }\n", false, false},
		{"crlf", "a\r\nb\r\n", "a\nb\n", true, false},
		{"lone cr kept", "a\rb", "a\rb", false, false},
		{"bom", "\xEF\xBB\xBFa\n", "a\n", false, true},
		{"bom and crlf", "\xEF\xBB\xBFa\r\n", "a\n", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, bom := removeBOM([]byte(tt.in))
			out, crlf := normalizeCRLF(out)
			if string(out) != tt.want || crlf != tt.crlf || bom != tt.withBOM {
				t.Fatalf("got %q crlf=%v bom=%v, want %q crlf=%v bom=%v", out, crlf, bom, tt.want, tt.crlf, tt.withBOM)
			}
		})
	}
}

func TestLineIndexPositions(t *testing.T) {
	content := []byte("namespace a {\n  x = enum { y; }\n}\n")
	idx := buildLineIndex(content)
	if diff := cmp.Diff([]uint32{13, 31, 33}, idx); diff != "" {
		t.Fatalf("line index (-want +got):\n%s", diff)
	}
	offsets := map[uint32]LineCol{
		0:  {Line: 1, Col: 1},
		13: {Line: 1, Col: 14},
		14: {Line: 2, Col: 1},
		16: {Line: 2, Col: 3},
		32: {Line: 3, Col: 1},
		34: {Line: 4, Col: 1},
	}
	for off, want := range offsets {
		if got := toLineCol(idx, off); got != want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", off, got, want)
		}
	}
}

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "idl")

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(base, "api", "store.idl"), "api/store.idl"},
		{filepath.Join(base, "store.idl"), "store.idl"},
		{filepath.Join(tmp, "ext", "types.yaml"), normalizePath(filepath.Join(tmp, "ext", "types.yaml"))},
	}
	for _, tt := range tests {
		got, err := RelativePath(tt.path, base)
		if err != nil {
			t.Fatalf("RelativePath(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("RelativePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
