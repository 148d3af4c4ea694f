package builder

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/parser"
	"bridgeidl/internal/source"
	"bridgeidl/internal/symbols"
	"bridgeidl/internal/target"
)

type fixture struct {
	fs    *source.FileSet
	arena *ir.Arena
	bag   *diag.Bag
}

func newFixture() *fixture {
	return &fixture{fs: source.NewFileSet(), arena: ir.NewArena(0), bag: diag.NewBag(0)}
}

func (fx *fixture) parse(t *testing.T, name, src string) *ast.File {
	t.Helper()
	id := fx.fs.AddVirtual(name, []byte(src))
	rep := diag.BagReporter{Bag: fx.bag}
	res := parser.ParseFile(lexer.New(fx.fs.Get(id), lexer.Options{Reporter: rep}), parser.Options{Reporter: rep})
	if fx.bag.Len() != 0 {
		t.Fatalf("unexpected syntax diagnostics: %v", fx.bag.Items())
	}
	return res.File
}

func (fx *fixture) build(t *testing.T, module ir.ModuleID, src string, opts Options) Result {
	t.Helper()
	f := fx.parse(t, "m.idl", src)
	opts.Reporter = diag.BagReporter{Bag: fx.bag}
	return Build(f, module, fx.arena, opts)
}

func (fx *fixture) decl(t *testing.T, res Result, name string) ir.Decl {
	t.Helper()
	e, ok := res.Table.Lookup(name)
	if !ok {
		t.Fatalf("%s not registered; have %v", name, res.Table.Names())
	}
	return fx.arena.Get(e.ID)
}

func TestEnumImplicitValues(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `e = enum { a; b = 5; c; d = -2; f; }`, Options{})
	en := fx.decl(t, res, "e").(*ir.Enum)
	var got []int64
	for _, m := range en.Members {
		got = append(got, m.Value)
	}
	if diff := cmp.Diff([]int64{0, 5, 6, -2, -1}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if en.Members[0].Explicit || !en.Members[1].Explicit {
		t.Fatalf("explicit markers wrong: %+v", en.Members)
	}
}

func TestFlagsImplicitValues(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `p = flags { read; write = 1; exec; admin = 8; other; every = all; nothing = none; }`, Options{})
	fl := fx.decl(t, res, "p").(*ir.Flags)
	got := map[string]uint64{}
	for _, m := range fl.Members {
		got[m.Name] = m.Value
	}
	want := map[string]uint64{"read": 2, "write": 1, "exec": 4, "admin": 8, "other": 16, "every": 31, "nothing": 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if fl.All() != 31 {
		t.Fatalf("All() = %d", fl.All())
	}
	if m, _ := fl.Member("nothing"); m.Special != ir.FlagNone {
		t.Fatalf("nothing.Special = %v", m.Special)
	}
	if fx.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", fx.bag.Items())
	}
}

func TestNegativeFlagReported(t *testing.T) {
	fx := newFixture()
	fx.build(t, 1, `p = flags { bad = -4; }`, Options{})
	if got := fx.bag.WithCode(diag.SemaInvalidFlagsValue); len(got) != 1 {
		t.Fatalf("expected one InvalidFlagsValue, got %v", fx.bag.Items())
	}
}

func TestFlagsTopBit(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `p = flags { top = 9223372036854775808; hex = 0x4000_0000_0000_0000; low; every = all; }`, Options{})
	if fx.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", fx.bag.Items())
	}
	fl := fx.decl(t, res, "p").(*ir.Flags)
	var got []uint64
	for _, m := range fl.Members {
		got = append(got, m.Value)
	}
	want := []uint64{1 << 63, 1 << 62, 1, 1<<63 | 1<<62 | 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordDeriving(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `
plain = record { a: i32; }
ordered = record { a: i32; } deriving (ord)
`, Options{DefaultDeriving: ir.DeriveOrd})
	plain := fx.decl(t, res, "plain").(*ir.Record)
	if !plain.Deriving.Has(ir.DeriveEq | ir.DeriveStr | ir.DeriveOrd) {
		t.Fatalf("plain deriving = %v", plain.Deriving.Names())
	}
	fx2 := newFixture()
	res2 := fx2.build(t, 1, `r = record { a: i32; } deriving (eq)`, Options{DefaultDeriving: ir.DeriveOrd})
	r := fx2.decl(t, res2, "r").(*ir.Record)
	if diff := cmp.Diff([]string{"eq", "str"}, r.Deriving.Names()); diff != "" {
		t.Fatalf("explicit clause must not take defaults (-want +got):\n%s", diff)
	}
}

func TestUnresolvedRefsKeepScope(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 3, `namespace app.model {
    user = record : base_user +cpp -java {
        id: .util.uuid;
        tags: map<string, list<i32>>?;
    }
}`, Options{})
	rec := fx.decl(t, res, "app.model.user").(*ir.Record)
	if rec.Module != 3 || rec.QualifiedName() != "app.model.user" {
		t.Fatalf("header = %+v", rec.Header)
	}
	if diff := cmp.Diff([]target.Marker{{Target: target.Cpp, Include: true}, {Target: target.Java}}, rec.Targets); diff != "" {
		t.Fatalf("markers (-want +got):\n%s", diff)
	}
	base := rec.Base.(*ir.Unresolved)
	if base.QualifiedName() != "base_user" || !cmp.Equal(base.Scope, []string{"app", "model"}) {
		t.Fatalf("base = %+v", base)
	}
	id := rec.Fields[0].Type.(*ir.Unresolved)
	if !id.Absolute || id.QualifiedName() != "util.uuid" {
		t.Fatalf("id = %+v", id)
	}
	tags := rec.Fields[1].Type
	if got := tags.String(); got != "map<string, list<i32>>?" {
		t.Fatalf("tags = %s", got)
	}
}

func TestInlineFunctionsAreLifted(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `namespace ui {
    listener = interface {
        on_event(cb: function(code: i32) -> bool);
        property name: string;
    }
}`, Options{})
	iface := fx.decl(t, res, "ui.listener").(*ir.Interface)
	if !iface.Ext || iface.Main {
		t.Fatalf("bare interface must be host-implemented: main=%v ext=%v", iface.Main, iface.Ext)
	}
	ref, ok := iface.Methods[0].Params[0].Type.(*ir.Resolved)
	if !ok {
		t.Fatalf("inline function must be lifted, got %T", iface.Methods[0].Params[0].Type)
	}
	fn := fx.arena.Get(ref.Decl).(*ir.Function)
	if !fn.Anonymous() || fn.QualifiedName() != "ui.listener_on_event_cb" || ref.Name != fn.QualifiedName() {
		t.Fatalf("lifted = %s owner=%d", fn.QualifiedName(), fn.Owner)
	}
	if e, _ := res.Table.Lookup("ui.listener"); fn.Owner != e.ID {
		t.Fatalf("owner = %d, want %d", fn.Owner, e.ID)
	}
	if _, ok := res.Table.Lookup(fn.QualifiedName()); ok {
		t.Fatalf("lifted functions must not be named in the table")
	}
	if len(res.Module.Decls) != 1 {
		t.Fatalf("module decls = %v", res.Module.Decls)
	}
	if got := fn.Result.String(); got != "bool" {
		t.Fatalf("lifted result = %s", got)
	}
}

func TestDocsParsed(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `
# Old error set.
# @deprecated use v2
failure = error {
    # Not there.
    missing(path: string);
}
`, Options{})
	dom := fx.decl(t, res, "failure").(*ir.ErrorDomain)
	if !dom.Doc.Deprecated || dom.Doc.DeprecatedNote != "use v2" || dom.Doc.Summary() != "Old error set." {
		t.Fatalf("doc = %+v", dom.Doc)
	}
	v, ok := dom.Variant("missing")
	if !ok || v.Doc.Summary() != "Not there." || len(v.Fields) != 1 {
		t.Fatalf("variant = %+v", v)
	}
}

func TestConstAndDirectives(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `@import "base.idl"
@extern "types.yaml"
namespace cfg {
    limit = const i32 = .root.base * 2;
    handle = extern;
}`, Options{})
	c := fx.decl(t, res, "cfg.limit").(*ir.Const)
	if len(c.Refs) != 1 || !c.Refs[0].Absolute || !cmp.Equal(c.Refs[0].Name, []string{"root", "base"}) {
		t.Fatalf("refs = %+v", c.Refs)
	}
	if c.Type.String() != "i32" {
		t.Fatalf("type = %s", c.Type)
	}
	m := res.Module
	if len(m.Imports) != 1 || m.Imports[0].Path != "base.idl" || len(m.ExternFiles) != 1 {
		t.Fatalf("directives = %+v %+v", m.Imports, m.ExternFiles)
	}
	if len(m.Externs) != 1 || m.Externs[0].QualifiedName() != "cfg.handle" {
		t.Fatalf("externs = %+v", m.Externs)
	}
	if _, ok := res.Table.Lookup("cfg.handle"); ok {
		t.Fatalf("forward externs do not enter the symbol table")
	}
}

func TestDuplicateInModule(t *testing.T) {
	fx := newFixture()
	res := fx.build(t, 1, `
a = enum { x; }
a = record { y: i32; }
`, Options{})
	dups := fx.bag.WithCode(diag.SemaDuplicateSymbol)
	if len(dups) != 1 || len(dups[0].Notes) != 1 {
		t.Fatalf("duplicates = %v", fx.bag.Items())
	}
	if _, ok := fx.decl(t, res, "a").(*ir.Enum); !ok {
		t.Fatalf("first declaration must win")
	}
}

func TestMergeReportsCrossModuleDuplicates(t *testing.T) {
	fx := newFixture()
	first := Build(fx.parse(t, "a.idl", `shared = enum { x; }`), 1, fx.arena, Options{Reporter: diag.BagReporter{Bag: fx.bag}})
	second := Build(fx.parse(t, "b.idl", `shared = record { y: i32; } other = enum { z; }`), 2, fx.arena, Options{Reporter: diag.BagReporter{Bag: fx.bag}})

	global := symbols.NewTable(0)
	rep := diag.BagReporter{Bag: fx.bag}
	if n := Merge(global, first.Table, rep); n != 0 {
		t.Fatalf("first merge conflicts = %d", n)
	}
	if n := Merge(global, second.Table, rep); n != 1 {
		t.Fatalf("second merge conflicts = %d", n)
	}
	dups := fx.bag.WithCode(diag.SemaDuplicateSymbol)
	if len(dups) != 1 {
		t.Fatalf("diagnostics = %v", fx.bag.Items())
	}
	d := dups[0]
	if fx.fs.Position(d.Primary).Path != "b.idl" || fx.fs.Position(d.Notes[0].Span).Path != "a.idl" {
		t.Fatalf("positions = %s / %s", fx.fs.Position(d.Primary), fx.fs.Position(d.Notes[0].Span))
	}
	if global.Len() != 2 {
		t.Fatalf("global names = %v", global.Names())
	}
}

func TestInterfaceImplementers(t *testing.T) {
	tests := []struct {
		src       string
		main, ext bool
	}{
		{`i = interface { f(); }`, false, true},
		{`i = interface +c { f(); }`, true, false},
		{`i = interface +cpp -j { f(); }`, true, false},
		{`i = interface +j +o { f(); }`, false, true},
		{`i = interface +c +j { f(); }`, true, true},
		{`i = interface +any { f(); }`, true, true},
		{`i = interface -o { f(); }`, false, true},
		{`i = main interface { f(); }`, true, false},
		{`i = main interface +j { f(); }`, true, true},
		{`i = ext interface +c { f(); }`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			fx := newFixture()
			res := fx.build(t, 1, tt.src, Options{})
			i := fx.decl(t, res, "i").(*ir.Interface)
			if i.Main != tt.main || i.Ext != tt.ext {
				t.Fatalf("main, ext = %v, %v; want %v, %v", i.Main, i.Ext, tt.main, tt.ext)
			}
		})
	}
}
