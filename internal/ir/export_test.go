package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bridgeidl/internal/ident"
	"bridgeidl/internal/target"
)

func sampleProgram() *Program {
	arena := NewArena(0)
	externs := []*ExternType{
		nil,
		{Name: "string", Kind: ExternPrimitive, Builtin: true},
		{Name: "uuid", Namespace: []string{"util"}, Kind: ExternRecord, Mappings: map[target.Target]Mapping{
			target.Cpp:  {Typename: "util::Uuid", Header: "<util/uuid.h>"},
			target.Java: {Typename: "java.util.UUID"},
		}},
	}
	rec := arena.Add(&Record{
		Header: Header{Name: "user_info", Namespace: []string{"demo"}},
		Fields: []Field{
			{Name: "user_id", Type: &Resolved{Name: "util.uuid", Extern: 2}},
			{Name: "nick_name", Type: &Resolved{Name: "string", Extern: 1, Optional: true}},
		},
		Deriving: DeriveEq | DeriveStr,
	})
	javaOnly := arena.Add(&Enum{
		Header:  Header{Name: "jvm_kind", Namespace: []string{"demo"}, Targets: []target.Marker{{Target: target.Java, Include: true}}},
		Members: []Enumerant{{Name: "first_kind"}},
	})
	mod := &Module{ID: 1, Path: "demo.idl", Decls: []DeclID{rec, javaOnly}}
	return &Program{
		Decls:   arena,
		Modules: []*Module{mod},
		Externs: externs,
		Names:   map[string]DeclID{"demo.user_info": rec, "demo.jvm_kind": javaOnly},
		Targets: target.SetOf(target.Cpp, target.Java),
	}
}

func TestExportFiltersByTargetAndStyles(t *testing.T) {
	p := sampleProgram()
	styles := ident.Styles{Type: ident.Pascal, Field: ident.Camel, Enum: ident.Screaming}

	doc := Export(p, ExportOptions{Target: target.Cpp, Styles: styles})
	if len(doc.Decls) != 1 {
		t.Fatalf("cpp export has %d decls, want 1", len(doc.Decls))
	}
	want := DeclExport{
		ID:        1,
		Kind:      "record",
		Name:      "user_info",
		Ident:     "UserInfo",
		Qualified: "demo.user_info",
		Namespace: []string{"demo"},
		Fields: []FieldExport{
			{Name: "user_id", Ident: "userId", Type: TypeExport{Name: "util.uuid", Extern: true, Native: "util::Uuid", Header: "<util/uuid.h>"}},
			{Name: "nick_name", Ident: "nickName", Type: TypeExport{Name: "string", Extern: true, Optional: true}},
		},
		Deriving: []string{"eq", "str"},
	}
	if diff := cmp.Diff(want, doc.Decls[0]); diff != "" {
		t.Errorf("record export (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ModuleExport{{Path: "demo.idl", Decls: []string{"demo.user_info"}}}, doc.Modules); diff != "" {
		t.Errorf("modules (-want +got):\n%s", diff)
	}
	if len(doc.Externs) != 2 || doc.Externs[1].Typename != "util::Uuid" {
		t.Errorf("externs = %+v", doc.Externs)
	}

	jdoc := Export(p, ExportOptions{Target: target.Java, Styles: styles})
	var names []string
	for _, d := range jdoc.Decls {
		names = append(names, d.Ident)
	}
	if diff := cmp.Diff([]string{"JvmKind", "UserInfo"}, names); diff != "" {
		t.Errorf("java decls (-want +got):\n%s", diff)
	}
	if got := jdoc.Decls[0].Members[0].Ident; got != "FIRST_KIND" {
		t.Errorf("enumerant ident = %q", got)
	}
}
