package lexer

import (
	"testing"

	"bridgeidl/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.idl", []byte(content))
	return fs.Get(id)
}

func TestCursorSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))

	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Peek(); got != want {
			t.Fatalf("Peek = %q, want %q", got, want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Bump = %q, want %q", got, want)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatal("cursor must report EOF and zero bytes at the end")
	}
}

func TestCursorPeek2(t *testing.T) {
	cursor := NewCursor(createFile("abc"))

	if b0, b1, ok := cursor.Peek2(); !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("Peek2 at start = %q %q %v", b0, b1, ok)
	}
	cursor.Bump()
	if b0, b1, ok := cursor.Peek2(); !ok || b0 != 'b' || b1 != 'c' {
		t.Fatalf("Peek2 in middle = %q %q %v", b0, b1, ok)
	}
	cursor.Bump()
	if b0, b1, ok := cursor.Peek2(); ok || b0 != 0 || b1 != 0 {
		t.Fatalf("Peek2 on last byte = %q %q %v", b0, b1, ok)
	}
}

func TestCursorSpanFromResolve(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.idl", []byte("α\nβ"))
	cursor := NewCursor(fs.Get(id))

	mark := cursor.Mark()
	cursor.Bump()
	cursor.Bump()
	span := cursor.SpanFrom(mark)
	if span.Start != 0 || span.End != 2 {
		t.Fatalf("span = %v, want 0-2", span)
	}
	if start, _ := fs.Resolve(span); start != (source.LineCol{Line: 1, Col: 1}) {
		t.Errorf("start = %+v", start)
	}

	mark = cursor.Mark()
	cursor.Bump() // '\n'
	cursor.Bump()
	span = cursor.SpanFrom(mark)
	start, end := fs.Resolve(span)
	if start != (source.LineCol{Line: 1, Col: 3}) || end != (source.LineCol{Line: 2, Col: 2}) {
		t.Errorf("newline span resolves to %+v..%+v", start, end)
	}
}

func TestCursorEatAndReset(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))

	if !cursor.Eat('a') || !cursor.Eat('\n') || !cursor.Eat('b') {
		t.Fatal("Eat must consume matching bytes")
	}
	if cursor.Eat('x') {
		t.Fatal("Eat at EOF must fail")
	}

	cursor.Reset(Mark(0))
	if cursor.Eat('x') {
		t.Fatal("Eat must fail on a mismatch")
	}
	if cursor.Peek() != 'a' {
		t.Fatalf("failed Eat moved the cursor to %q", cursor.Peek())
	}

	cursor.Bump()
	second := cursor.Mark()
	cursor.Bump()
	cursor.Reset(second)
	if cursor.Peek() != '\n' {
		t.Fatalf("Reset to second mark gives %q", cursor.Peek())
	}
}
