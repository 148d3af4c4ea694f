package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("api.idl", []byte("version 1"), 0)
	id2 := fs.Add("api.idl", []byte("version 2"), 0)
	if id1 == id2 {
		t.Fatal("expected a new FileID for the second Add")
	}

	latest, ok := fs.GetLatest("api.idl")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "version 1" {
		t.Errorf("first version content = %q", got)
	}
	if got := string(fs.Get(id2).Content); got != "version 2" {
		t.Errorf("second version content = %q", got)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.idl", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx length = %d, want %d", len(file.LineIdx), len(expected))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
}

func TestCRLFNormalization(t *testing.T) {
	normalized, changed := normalizeCRLF([]byte("a\r\nb\r\n"))
	if !changed {
		t.Fatal("expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\n" {
		t.Errorf("normalized = %q", normalized)
	}

	lone, changed := normalizeCRLF([]byte("a\rb"))
	if changed || string(lone) != "a\rb" {
		t.Errorf("lone CR must be kept, got %q (changed=%v)", lone, changed)
	}
}

func TestBOMRemoval(t *testing.T) {
	withoutBOM, hadBOM := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x', '\n'})
	if !hadBOM {
		t.Fatal("expected BOM to be detected")
	}
	if string(withoutBOM) != "x\n" {
		t.Errorf("content without BOM = %q", withoutBOM)
	}
}

func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.idl", []byte("α\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 2}) {
		t.Errorf("end = %+v", end)
	}
}

func TestResolveMultiLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("multi.idl", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestPositionAndText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("dir/pos.idl", []byte("foo = record {\n  a: i8;\n}\n"))

	sp := Span{File: id, Start: 17, End: 18}
	pos := fs.Position(sp)
	if pos.String() != "dir/pos.idl:2:3" {
		t.Errorf("position = %s", pos)
	}
	if txt := fs.Text(sp); txt != "a" {
		t.Errorf("text = %q", txt)
	}
	if got := fs.Position(Span{File: 42}); got != (Position{}) {
		t.Errorf("unknown file must give zero position, got %+v", got)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.idl", []byte("first\nsecond\nthird"))
	file := fs.Get(id)

	for i, want := range []string{"", "first", "second", "third", ""} {
		if got := file.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	if file := fs.Get(fs.AddVirtual("empty.idl", nil)); len(file.LineIdx) != 0 {
		t.Errorf("empty file LineIdx = %v", file.LineIdx)
	}
	if file := fs.Get(fs.AddVirtual("no_newlines.idl", []byte("hello"))); len(file.LineIdx) != 0 {
		t.Errorf("no-newline LineIdx = %v", file.LineIdx)
	}
	if file := fs.Get(fs.AddVirtual("only_newline.idl", []byte("\n"))); len(file.LineIdx) != 1 || file.LineIdx[0] != 0 {
		t.Errorf("only-newline LineIdx = %v", file.LineIdx)
	}
}

func TestLoadNormalizes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		flag    FileFlags
	}{
		{name: "plain", content: "a\nb\n"},
		{name: "bom", content: "\xEF\xBB\xBFa\nb\n", flag: FileHadBOM},
		{name: "crlf", content: "a\r\nb\r\n", flag: FileNormalizedCRLF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in.idl")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			fs := NewFileSet()
			id, err := fs.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			file := fs.Get(id)
			if string(file.Content) != "a\nb\n" {
				t.Errorf("content = %q", file.Content)
			}
			if tt.flag != 0 && file.Flags&tt.flag == 0 {
				t.Errorf("expected flag %d, got %d", tt.flag, file.Flags)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.idl")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
