package parser

import (
	"fmt"
	"strings"
	"testing"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/source"
)

func parseSourceWith(t *testing.T, src string, opts Options) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.idl", []byte(src))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	opts.Reporter = rep
	res := ParseFile(lx, opts)
	return res.File, bag
}

func parseSource(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	return parseSourceWith(t, src, Options{})
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return f
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func codesOf(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

// declsOf flattens the file into qualified name -> decl.
func declsOf(f *ast.File) map[string]*ast.Decl {
	out := map[string]*ast.Decl{}
	f.Walk(func(ns []string, d *ast.Decl) {
		out[strings.Join(append(append([]string{}, ns...), d.Name), ".")] = d
	})
	return out
}
