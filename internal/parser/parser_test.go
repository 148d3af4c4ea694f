package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/target"
)

const sampleIDL = `@import "common/types.idl"
@extern "ext/uuid.yaml";

namespace demo.core {
    # A color.
    color = enum -j { red; green = 5; blue; };

    perms = flags {
        read;
        write = 4;
        everything = all;
        nothing = none;
    }

    namespace net {
        endpoint = record +cpp +objc {
            host: string;
            port: i32?;
            tags: map<string, list<i32>>;
        } deriving (eq, ord)
    }

    io_error = error { not_found; denied(path: string, code: i32); }

    store = main interface +c {
        static create(path: string) -> store;
        const size() -> i64;
        async load(key: .demo.core.net.endpoint) -> binary throws io_error;
        property name: string;
    }

    listener = interface +j +o {
        on_event(cb: function(code: i32) -> bool);
    }

    progress = async function (done: i64, total: i64) -> bool;
    limit = const i32 = base_limit * 2 + len("abc");
    uuid = extern;
}
`

func TestParseSample(t *testing.T) {
	f := mustParse(t, sampleIDL)

	wantDirs := []ast.Directive{
		{Kind: ast.DirImport, Path: "common/types.idl"},
		{Kind: ast.DirExtern, Path: "ext/uuid.yaml"},
	}
	gotDirs := make([]ast.Directive, 0, len(f.Directives))
	for _, d := range f.Directives {
		gotDirs = append(gotDirs, ast.Directive{Kind: d.Kind, Path: d.Path})
	}
	if diff := cmp.Diff(wantDirs, gotDirs); diff != "" {
		t.Fatalf("directives (-want +got):\n%s", diff)
	}

	decls := declsOf(f)
	var names []string
	f.Walk(func(ns []string, d *ast.Decl) { names = append(names, d.Name) })
	wantNames := []string{"color", "perms", "endpoint", "io_error", "store", "listener", "progress", "limit", "uuid"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("declaration order (-want +got):\n%s", diff)
	}

	color := decls["demo.core.color"]
	enum := color.Body.(*ast.EnumBody)
	if len(enum.Members) != 3 || enum.Members[1].Value == nil || enum.Members[1].Value.Value != 5 || enum.Members[2].Value != nil {
		t.Fatalf("unexpected enum members: %+v", enum.Members)
	}
	if diff := cmp.Diff(ast.Doc{"A color."}, color.Doc); diff != "" {
		t.Errorf("color doc (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]target.Marker{{Target: target.Java}}, color.Markers()); diff != "" {
		t.Errorf("color markers (-want +got):\n%s", diff)
	}

	flags := decls["demo.core.perms"].Body.(*ast.FlagsBody)
	gotKinds := []ast.FlagValueKind{}
	for _, m := range flags.Members {
		gotKinds = append(gotKinds, m.ValueKind)
	}
	if diff := cmp.Diff([]ast.FlagValueKind{ast.FlagImplicit, ast.FlagExplicit, ast.FlagAll, ast.FlagNone}, gotKinds); diff != "" {
		t.Errorf("flag value kinds (-want +got):\n%s", diff)
	}

	rec := decls["demo.core.net.endpoint"].Body.(*ast.RecordBody)
	if len(rec.Fields) != 3 || !rec.Fields[1].Type.Optional {
		t.Fatalf("unexpected record fields: %+v", rec.Fields)
	}
	if got := rec.Fields[2].Type.String(); got != "map<string, list<i32>>" {
		t.Errorf("nested generic renders as %q", got)
	}
	if len(rec.Deriving) != 2 || rec.Deriving[1].Text != "ord" {
		t.Errorf("deriving = %+v", rec.Deriving)
	}

	errDom := decls["demo.core.io_error"].Body.(*ast.ErrorBody)
	if len(errDom.Variants) != 2 || len(errDom.Variants[1].Fields) != 2 {
		t.Fatalf("unexpected error variants: %+v", errDom.Variants)
	}

	store := decls["demo.core.store"].Body.(*ast.InterfaceBody)
	if !store.Main || store.Ext {
		t.Errorf("store side main=%v ext=%v", store.Main, store.Ext)
	}
	if len(store.Methods) != 3 || len(store.Properties) != 1 {
		t.Fatalf("store members: %d methods, %d properties", len(store.Methods), len(store.Properties))
	}
	if m := store.Methods[0]; !m.Static || m.Sig.Result.QualifiedName() != "store" {
		t.Errorf("create = %+v", m)
	}
	if m := store.Methods[2]; !m.Async || len(m.Sig.Throws) != 1 || !m.Sig.Params[0].Type.Absolute {
		t.Errorf("load = %+v", m)
	}

	listener := decls["demo.core.listener"].Body.(*ast.InterfaceBody)
	cb := listener.Methods[0].Sig.Params[0].Type
	if cb.Func == nil || len(cb.Func.Params) != 1 || cb.Func.Result.QualifiedName() != "bool" {
		t.Errorf("inline function type = %s", cb)
	}

	fn := decls["demo.core.progress"].Body.(*ast.FunctionBody)
	if !fn.Async || len(fn.Sig.Params) != 2 {
		t.Errorf("progress = %+v", fn)
	}

	limit := decls["demo.core.limit"].Body.(*ast.ConstBody)
	if limit.Expr != `base_limit * 2 + len("abc")` {
		t.Errorf("const expr = %q", limit.Expr)
	}
	if len(limit.Refs) != 1 || limit.Refs[0].Name != "base_limit" {
		t.Errorf("const refs = %+v", limit.Refs)
	}

	if _, ok := decls["demo.core.uuid"].Body.(*ast.ExternBody); !ok {
		t.Errorf("uuid must be an extern declaration")
	}
}

func TestInterfaceSides(t *testing.T) {
	f := mustParse(t, `
a = main ext interface { m(); }
b = ext interface { m(); }
c = interface { m(); }
`)
	decls := declsOf(f)
	tests := []struct {
		name      string
		main, ext bool
	}{
		{"a", true, true},
		{"b", false, true},
		{"c", false, false},
	}
	for _, tt := range tests {
		body := decls[tt.name].Body.(*ast.InterfaceBody)
		if body.Main != tt.main || body.Ext != tt.ext {
			t.Errorf("%s: main=%v ext=%v", tt.name, body.Main, body.Ext)
		}
	}
}

func TestDocDetachedByBlankLine(t *testing.T) {
	f := mustParse(t, `
# detached

r = record {
    # The id.
    id: i64;
    // not a doc
    name: string;
}
`)
	d := declsOf(f)["r"]
	if len(d.Doc) != 0 {
		t.Errorf("doc separated by a blank line must not attach, got %q", d.Doc)
	}
	fields := d.Body.(*ast.RecordBody).Fields
	if diff := cmp.Diff(ast.Doc{"The id."}, fields[0].Doc); diff != "" {
		t.Errorf("field doc (-want +got):\n%s", diff)
	}
	if len(fields[1].Doc) != 0 {
		t.Errorf("ordinary comment became doc: %q", fields[1].Doc)
	}
}

func TestSyntaxErrorsRecover(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []diag.Code
		decls int
	}{
		{
			name:  "unknown target",
			src:   "a = enum +swift { x; }\nb = enum { y; }",
			codes: []diag.Code{diag.SynUnknownTarget},
			decls: 2,
		},
		{
			name:  "excluding any",
			src:   "a = enum -any { x; }\nb = enum +any { y; }",
			codes: []diag.Code{diag.SynUnknownTarget},
			decls: 2,
		},
		{
			name:  "missing semicolon in body",
			src:   "r = record { a: i32 b: i32; c: i8; }\nq = enum { z; }",
			codes: []diag.Code{diag.SynExpectSemicolon},
			decls: 2,
		},
		{
			name:  "unknown kind",
			src:   "a = struct { x: i32; }\nb = enum { y; }",
			codes: []diag.Code{diag.SynUnknownDeclKind},
			decls: 1,
		},
		{
			name:  "errors in several declarations",
			src:   "a = record { x: ; }\nb = flags { f = maybe; }\nc = enum { ok; }",
			codes: []diag.Code{diag.SynExpectType, diag.SynBadFlagsValue},
			decls: 3,
		},
		{
			name:  "missing type argument close",
			src:   "r = record { a: list<i32; }",
			codes: []diag.Code{diag.SynUnclosedAngle},
			decls: 1,
		},
		{
			name:  "unknown deriving",
			src:   "r = record { a: i32; } deriving (eq, hash)",
			codes: []diag.Code{diag.SynUnknownDeriving},
			decls: 1,
		},
		{
			name:  "unclosed body",
			src:   "r = record { a: i32;",
			codes: []diag.Code{diag.SynUnclosedBrace},
			decls: 0,
		},
		{
			name:  "bad directive",
			src:   "@include \"x.idl\"\na = enum { x; }",
			codes: []diag.Code{diag.SynBadDirective},
			decls: 1,
		},
		{
			name:  "lexer error not repeated",
			src:   "a = enum { x = $; }\nb = enum { y; }",
			codes: []diag.Code{diag.LexUnknownChar},
			decls: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, bag := parseSource(t, tt.src)
			if diff := cmp.Diff(tt.codes, codesOf(bag)); diff != "" {
				t.Fatalf("codes (-want +got):\n%s\n%s", diff, diagnosticsSummary(bag))
			}
			if got := len(declsOf(f)); got != tt.decls {
				t.Fatalf("recovered %d declarations, want %d", got, tt.decls)
			}
		})
	}
}

func TestMissingSemicolonCarriesFix(t *testing.T) {
	_, bag := parseSource(t, "e = enum { a }")
	items := bag.Items()
	if len(items) != 1 || len(items[0].Fixes) != 1 || items[0].Fixes[0].Edits[0].NewText != ";" {
		t.Fatalf("expected one diagnostic with an insert-';' fix, got %+v", items)
	}
}

func TestMaxErrors(t *testing.T) {
	src := "a = x;\nb = y;\nc = z;\nd = w;\n"
	_, bag := parseSourceWith(t, src, Options{MaxErrors: 2})
	if bag.Len() != 2 {
		t.Fatalf("expected the cap to keep 2 diagnostics, got %d: %s", bag.Len(), diagnosticsSummary(bag))
	}
}

func TestKeywordsAsNames(t *testing.T) {
	f := mustParse(t, "error_info = record { error: string; main: bool; }\nstatus = enum { error; ok; }")
	fields := declsOf(f)["error_info"].Body.(*ast.RecordBody).Fields
	if fields[0].Name != "error" || fields[1].Name != "main" {
		t.Fatalf("fields = %+v", fields)
	}
}

func TestConstRefs(t *testing.T) {
	f := mustParse(t, `
a = const i32 = .root.limit + other.value * (x - 1);
b = const bool = flag and not max(1, 2) > 0;
`)
	decls := declsOf(f)
	refName := func(d string) []string {
		var out []string
		for _, r := range decls[d].Body.(*ast.ConstBody).Refs {
			if r.Absolute {
				out = append(out, "."+r.Name)
			} else {
				out = append(out, r.Name)
			}
		}
		return out
	}
	if diff := cmp.Diff([]string{".root.limit", "other.value", "x"}, refName("a")); diff != "" {
		t.Errorf("refs of a (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"flag"}, refName("b")); diff != "" {
		t.Errorf("refs of b (-want +got):\n%s", diff)
	}
}
