package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

// testReporter collects every diagnostic the lexer emits.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(d diag.Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func (r *testReporter) messages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

func makeTestLexer(input string, opts lexer.Options) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.idl", []byte(input))
	reporter := &testReporter{}
	opts.Reporter = reporter
	return lexer.New(fs.Get(fileID), opts), reporter
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func expectTokens(t *testing.T, input string, expected ...token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input, lexer.Options{})
	got := kinds(lx.All())
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("tokens for %q (-want +got):\n%s\nerrors: %v", input, diff, reporter.messages())
	}
	if len(reporter.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", input, reporter.messages())
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"foo", token.Ident},
		{"_bar", token.Ident},
		{"x123", token.Ident},
		{"Record", token.Ident},
		{"i32", token.Ident},
		{"größe", token.Ident},
		{"record", token.KwRecord},
		{"interface", token.KwInterface},
		{"main", token.KwMain},
		{"ext", token.KwExt},
		{"throws", token.KwThrows},
		{"deriving", token.KwDeriving},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, _ := makeTestLexer(tt.input, lexer.Options{})
			tok := lx.Next()
			if tok.Kind != tt.kind || tok.Text != tt.input {
				t.Fatalf("got %v(%q), want %v(%q)", tok.Kind, tok.Text, tt.kind, tt.input)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.IntLit},
		{"42", token.IntLit},
		{"1_000", token.IntLit},
		{"0x1F", token.IntLit},
		{"0b1010", token.IntLit},
		{"0o17", token.IntLit},
		{"3.14", token.FloatLit},
		{"1e10", token.FloatLit},
		{"2.5E-3", token.FloatLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input, lexer.Options{})
			tok := lx.Next()
			if tok.Kind != tt.kind || tok.Text != tt.input {
				t.Fatalf("got %v(%q), want %v", tok.Kind, tok.Text, tt.kind)
			}
			if len(rep.diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", rep.messages())
			}
		})
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		codes []diag.Code
	}{
		{"unknown char", "a $ b", []diag.Code{diag.LexUnknownChar}},
		{"unknown unicode", "a → b", []diag.Code{diag.LexUnknownChar}},
		{"unterminated string", `@import "foo`, []diag.Code{diag.LexUnterminatedString}},
		{"newline in string", "\"foo\nbar\"", []diag.Code{diag.LexUnterminatedString, diag.LexUnterminatedString}},
		{"unterminated comment", "a /* b", []diag.Code{diag.LexUnterminatedBlockComment}},
		{"glued number", "12ab", []diag.Code{diag.LexBadNumber}},
		{"empty hex", "0x", []diag.Code{diag.LexBadNumber}},
		{"bad exponent", "1e+", []diag.Code{diag.LexBadNumber}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input, lexer.Options{})
			lx.All()
			if diff := cmp.Diff(tt.codes, rep.codes()); diff != "" {
				t.Fatalf("codes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeclarationTokens(t *testing.T) {
	expectTokens(t, "foo = record +cpp -j { a: list<list<i32>>?; }",
		token.Ident, token.Assign, token.KwRecord, token.Plus, token.Ident, token.Minus, token.Ident,
		token.LBrace, token.Ident, token.Colon, token.Ident, token.Lt, token.Ident, token.Lt, token.Ident,
		token.Gt, token.Gt, token.Question, token.Semicolon, token.RBrace)

	expectTokens(t, "async m(a: .ns.t) -> i8 throws e;",
		token.KwAsync, token.Ident, token.LParen, token.Ident, token.Colon, token.Dot, token.Ident,
		token.Dot, token.Ident, token.RParen, token.Arrow, token.Ident, token.KwThrows, token.Ident, token.Semicolon)

	expectTokens(t, "c = const i32 = (A | B) * 2 >= 1 && !x;",
		token.Ident, token.Assign, token.KwConst, token.Ident, token.Assign, token.LParen, token.Ident,
		token.Pipe, token.Ident, token.RParen, token.Star, token.IntLit, token.GtEq, token.IntLit,
		token.AndAnd, token.Bang, token.Ident, token.Semicolon)

	expectTokens(t, `@import "a/b.idl"`, token.At, token.Ident, token.StringLit)
}

func TestDocTrivia(t *testing.T) {
	input := "# stale\n\n# Summary line.\n#\n# Body. // kept\nfoo = enum { a; # trailing\n b; }\n"
	lx, _ := makeTestLexer(input, lexer.Options{})
	tokens := lx.All()

	if got := token.DocLines(tokens[0].Leading); !cmp.Equal(got, []string{"Summary line.", "", "Body. // kept"}) {
		t.Fatalf("doc of foo = %q", got)
	}

	for _, tok := range tokens {
		if tok.Text != "b" {
			continue
		}
		if doc := token.DocLines(tok.Leading); len(doc) != 0 {
			t.Fatalf("trailing comment must not document b, got %q", doc)
		}
		if tok.Leading[1].Kind != token.TriviaLineComment {
			t.Fatalf("trailing '#' must lex as a line comment, got %v", tok.Leading[1].Kind)
		}
		return
	}
	t.Fatal("token b not found")
}

func TestSpansMatchText(t *testing.T) {
	input := "namespace a.b {\n  x = flags { r = 1; w; all = all; }\n}\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("spans.idl", []byte(input))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	for _, tok := range lx.All() {
		if got := fs.Text(tok.Span); got != tok.Text {
			t.Errorf("%v: span text %q != token text %q", tok.Kind, got, tok.Text)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b", lexer.Options{})
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("Peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("Next after Peek = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("second Next = %q", n.Text)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("EOF must repeat, got %v", n.Kind)
	}
}

func TestTokenTooLong(t *testing.T) {
	lx, rep := makeTestLexer(strings.Repeat("a", 33)+" b", lexer.Options{MaxTokenLength: 32})
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("expected invalid token, got %v", tok.Kind)
	}
	if next := lx.Next(); next.Kind != token.EOF {
		t.Fatalf("lexer must skip to EOF after an oversized token, got %v", next.Kind)
	}
	if diff := cmp.Diff([]diag.Code{diag.LexTokenTooLong}, rep.codes()); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}

	lx, rep = makeTestLexer(strings.Repeat("b", 32), lexer.Options{MaxTokenLength: 32})
	if tok := lx.Next(); tok.Kind != token.Ident || len(rep.diagnostics) != 0 {
		t.Fatalf("token at the limit must be accepted, got %v %v", tok.Kind, rep.messages())
	}
}
