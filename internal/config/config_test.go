package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ident"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/target"
)

const sampleYAML = `generate:
  cpp:
    out: gen/cpp
    identifier:
      method: camel
  java:
    out: gen/java
    package: com.example.bridge
  objc: false
externs:
  - name: uuid
    namespace: [util]
    primitive: record
    cpp: { typename: "util::Uuid", header: "<util/uuid.h>" }
extern_files: [types.yaml, /abs/other.yaml]
include_dirs: [idl]
default_deriving: [eq, ord]
max_diagnostics: 50
jobs: 4
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "bridge.yaml", sampleYAML)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := cfg.Targets(), target.SetOf(target.Cpp, target.Java); got != want {
		t.Fatalf("targets = %s, want %s", got, want)
	}
	if _, ok := cfg.Generator(target.ObjC); !ok {
		t.Fatalf("disabled objc section must still be recorded")
	}
	cpp := cfg.Styles(target.Cpp)
	if cpp.Method != ident.Camel || cpp.Type != ident.Pascal || cpp.Field != ident.Snake {
		t.Fatalf("cpp styles = %+v", cpp)
	}
	java, _ := cfg.Generator(target.Java)
	if diff := cmp.Diff(map[string]any{"package": "com.example.bridge"}, java.Options); diff != "" {
		t.Fatalf("java options mismatch (-want +got):\n%s", diff)
	}
	if cfg.Deriving() != ir.DeriveEq|ir.DeriveOrd {
		t.Fatalf("deriving = %v", cfg.Deriving().Names())
	}
	if len(cfg.Externs) != 1 || cfg.Externs[0].Cpp == nil || cfg.Externs[0].Cpp.Typename != "util::Uuid" {
		t.Fatalf("externs = %+v", cfg.Externs)
	}
	dir := filepath.Dir(path)
	want := []string{filepath.Join(dir, "types.yaml"), "/abs/other.yaml"}
	if diff := cmp.Diff(want, cfg.ExternFilePaths()); diff != "" {
		t.Fatalf("extern files mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "idl")}, cfg.IncludePaths()); diff != "" {
		t.Fatalf("include dirs mismatch (-want +got):\n%s", diff)
	}
	if cfg.MaxDiagnostics != 50 || cfg.Jobs != 4 {
		t.Fatalf("limits = %d/%d", cfg.MaxDiagnostics, cfg.Jobs)
	}
}

func TestFormatsAgree(t *testing.T) {
	sources := map[string]string{
		"c.yaml": "generate:\n  c: {out: gen}\n  j: {}\nmax_diagnostics: 7\ndefault_deriving: [ord]\n",
		"c.json": `{"generate": {"cpp": {"out": "gen"}, "java": null}, "max_diagnostics": 7, "default_deriving": ["ord"]}`,
		"c.toml": "max_diagnostics = 7\ndefault_deriving = [\"ord\"]\n[generate.cpp]\nout = \"gen\"\n[generate.java]\n",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse(name, []byte(src), nil)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := cfg.Targets(); got != target.SetOf(target.Cpp, target.Java) {
				t.Fatalf("targets = %s", got)
			}
			if g, _ := cfg.Generator(target.Cpp); g.Out != "gen" {
				t.Fatalf("out = %q", g.Out)
			}
			if cfg.MaxDiagnostics != 7 || cfg.Deriving() != ir.DeriveOrd {
				t.Fatalf("cfg = %+v", cfg)
			}
		})
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := Parse("bridge.yaml", []byte(sampleYAML), []string{
		"generate.cpp.out=build/cpp",
		"generate.java=false",
		"generate.objc.identifier.type=snake",
		"max_diagnostics=5",
		`include_dirs=["a", "b"]`,
		"jobs=null",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g, _ := cfg.Generator(target.Cpp); g.Out != "build/cpp" || g.Identifier.Method != "camel" {
		t.Fatalf("cpp = %+v", g)
	}
	if got := cfg.Targets(); got != target.SetOf(target.Cpp, target.ObjC) {
		t.Fatalf("targets = %s", got)
	}
	if cfg.Styles(target.ObjC).Type != ident.Snake {
		t.Fatalf("objc styles = %+v", cfg.Styles(target.ObjC))
	}
	if cfg.MaxDiagnostics != 5 || cfg.Jobs != 0 {
		t.Fatalf("limits = %d/%d", cfg.MaxDiagnostics, cfg.Jobs)
	}
	if diff := cmp.Diff([]string{"a", "b"}, cfg.IncludeDirs); diff != "" {
		t.Fatalf("include dirs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		in   string
		path []string
		want any
	}{
		{"a=1", []string{"a"}, int64(1)},
		{"a.b=1.5", []string{"a", "b"}, 1.5},
		{"a.b.c=true", []string{"a", "b", "c"}, true},
		{"name=x=y", []string{"name"}, "x=y"},
		{"list=[1, 2]", []string{"list"}, []any{1.0, 2.0}},
		{"s=[not json", []string{"s"}, "[not json"},
		{"gone=null", []string{"gone"}, nil},
	}
	for _, tt := range tests {
		o, err := ParseOverride(tt.in)
		if err != nil {
			t.Fatalf("ParseOverride(%q): %v", tt.in, err)
		}
		if diff := cmp.Diff(Override{Path: tt.path, Value: tt.want}, o); diff != "" {
			t.Errorf("ParseOverride(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		src       string
		overrides []string
		code      diag.Code
	}{
		{"unknown target", "c.yaml", "generate:\n  rust: {}\n", nil, diag.CfgUnknownTarget},
		{"alias twice", "c.yaml", "generate:\n  cpp: {}\n  c: {}\n", nil, diag.CfgUnknownTarget},
		{"bad style", "c.yaml", "generate:\n  cpp:\n    identifier: {type: wavy}\n", nil, diag.CfgBadIdentifierStyle},
		{"unknown identifier kind", "c.yaml", "generate:\n  cpp:\n    identifier: {colour: snake}\n", nil, diag.CfgInvalid},
		{"bad deriving", "c.yaml", "default_deriving: [hash]\n", nil, diag.CfgBadDeriving},
		{"unknown key", "c.yaml", "generat: {}\n", nil, diag.CfgInvalid},
		{"negative jobs", "c.yaml", "jobs: -1\n", nil, diag.CfgInvalid},
		{"not a mapping", "c.yaml", "- a\n- b\n", nil, diag.CfgInvalid},
		{"broken json", "c.json", "{", nil, diag.CfgInvalid},
		{"broken toml", "c.toml", "jobs = = 1", nil, diag.CfgInvalid},
		{"extern without name", "c.yaml", "externs:\n  - namespace: [a]\n", nil, diag.CfgInvalid},
		{"override without value", "c.yaml", "", []string{"jobs"}, diag.CfgBadOverride},
		{"override empty segment", "c.yaml", "", []string{"generate..out=x"}, diag.CfgBadOverride},
		{"override unknown target", "c.yaml", "", []string{"generate.swift.out=x"}, diag.CfgUnknownTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path, []byte(tt.src), tt.overrides)
			var cfgErr *failure.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want ConfigurationError", err)
			}
			if cfgErr.Code != tt.code {
				t.Fatalf("code = %s, want %s (%v)", cfgErr.Code.ID(), tt.code.ID(), err)
			}
			if cfgErr.Path != tt.path {
				t.Fatalf("path = %q", cfgErr.Path)
			}
			if failure.ExitCode(err) != failure.ExitConfiguration {
				t.Fatalf("exit code = %d", failure.ExitCode(err))
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if failure.ExitCode(err) != failure.ExitFileNotFound {
		t.Fatalf("err = %v, exit %d", err, failure.ExitCode(err))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Targets().Empty() {
		t.Fatalf("targets = %s", cfg.Targets())
	}
	if cfg.Styles(target.Java).Method != ident.Camel {
		t.Fatalf("java styles = %+v", cfg.Styles(target.Java))
	}
	if cfg.Dir() != "." || cfg.Resolve("x/y.idl") != filepath.Join(".", "x", "y.idl") {
		t.Fatalf("dir = %q", cfg.Dir())
	}
}
