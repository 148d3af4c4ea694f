package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"bridgeidl/internal/failure"
)

const validIDL = `namespace demo {
    color = enum { red; green; }
    point = record { x: i32; y: i32; tint: color; }
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), append([]string{"--color", "off"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckExitCodes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.idl":       validIDL,
		"syntax.idl":   "r = record { f i32; }\n",
		"rejected.idl": "r = record { x: missing; }\n",
		"bad.yaml":     "generate:\n  rust: {}\n",
	})
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"accepted", []string{"check", filepath.Join(dir, "ok.idl")}, failure.ExitOK, ""},
		{"syntax", []string{"check", filepath.Join(dir, "syntax.idl")}, failure.ExitParsing, "SYN"},
		{"rejected", []string{"check", filepath.Join(dir, "rejected.idl")}, failure.ExitRejected, "SEM3002"},
		{"missing file", []string{"check", filepath.Join(dir, "absent.idl")}, failure.ExitFileNotFound, "error:"},
		{"bad config", []string{"--config", filepath.Join(dir, "bad.yaml"), "check", filepath.Join(dir, "ok.idl")}, failure.ExitConfiguration, "configuration error"},
		{"bad flag", []string{"check", "--format", "xml", filepath.Join(dir, "ok.idl")}, failure.ExitApplication, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			if code != tt.code {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.code, stderr)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Fatalf("stderr does not contain %q:\n%s", tt.stderr, stderr)
			}
		})
	}
}

func TestCheckJSONDiagnostics(t *testing.T) {
	dir := writeFiles(t, map[string]string{"rejected.idl": "r = record { x: missing; }\n"})
	code, stdout, _ := run(t, "check", "--format", "json", filepath.Join(dir, "rejected.idl"))
	if code != failure.ExitRejected {
		t.Fatalf("exit code = %d", code)
	}
	type entry struct {
		Code string `json:"code"`
	}
	var doc struct {
		Outcome     string  `json:"outcome"`
		Diagnostics []entry `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if doc.Outcome != "rejected" || len(doc.Diagnostics) == 0 || doc.Diagnostics[0].Code != "SEM3002" {
		t.Fatalf("document = %+v", doc)
	}
}

func TestCheckEmitsIR(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.idl":      validIDL,
		"bridge.yaml": "generate:\n  cpp: {}\n  java: {}\n",
	})
	cfg := filepath.Join(dir, "bridge.yaml")
	idl := filepath.Join(dir, "ok.idl")

	jsonOut := filepath.Join(dir, "ir.json")
	if code, _, stderr := run(t, "-c", cfg, "check", "--emit-ir", jsonOut, idl); code != 0 {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}
	data, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if fromJSON["target"] != "cpp" {
		t.Fatalf("json target = %v", fromJSON["target"])
	}

	mpOut := filepath.Join(dir, "ir.msgpack")
	if code, _, stderr := run(t, "-c", cfg, "check", "--target", "java", "--emit-ir", mpOut, idl); code != 0 {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}
	data, err = os.ReadFile(mpOut)
	if err != nil {
		t.Fatal(err)
	}
	var fromMsgpack map[string]any
	if err := msgpack.Unmarshal(data, &fromMsgpack); err != nil {
		t.Fatal(err)
	}
	if fromMsgpack["target"] != "java" {
		t.Fatalf("msgpack target = %v", fromMsgpack["target"])
	}
	if _, ok := fromMsgpack["decls"]; !ok {
		t.Fatalf("msgpack document has no decls: %v", fromMsgpack)
	}
}

func TestCheckEmitWithoutTarget(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ok.idl": validIDL})
	code, _, stderr := run(t, "check", "--emit-ir", "-", filepath.Join(dir, "ok.idl"))
	if code != failure.ExitApplication || !strings.Contains(stderr, "no generator target") {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}
}

func TestTimingsAndTrace(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ok.idl": validIDL})
	tracePath := filepath.Join(dir, "trace.ndjson")
	code, _, stderr := run(t, "--timings", "--trace", tracePath, "check", filepath.Join(dir, "ok.idl"))
	if code != 0 {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "timings:") || !strings.Contains(stderr, "validate") {
		t.Fatalf("timings missing:\n%s", stderr)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"resolved_ir"`)) {
		t.Fatalf("trace has no resolved_ir span:\n%s", data)
	}
}

func TestOverrideFlags(t *testing.T) {
	cmd := (&app{}).rootCommand()
	if err := cmd.ParseFlags([]string{"-o", "jobs=2", "--jobs", "4", "--max-diagnostics", "7"}); err != nil {
		t.Fatal(err)
	}
	_, overrides, err := configFlags(cmd)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"jobs=2", "jobs=4", "max_diagnostics=7"}
	if strings.Join(overrides, ",") != strings.Join(want, ",") {
		t.Fatalf("overrides = %v, want %v", overrides, want)
	}
}

func TestTokensAndVersion(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.idl":  validIDL,
		"bad.idl": "r = record { s: \"open }\n",
	})
	code, stdout, _ := run(t, "tokens", filepath.Join(dir, "ok.idl"))
	if code != 0 || !strings.Contains(stdout, "namespace") {
		t.Fatalf("tokens exit %d:\n%s", code, stdout)
	}
	if code, _, _ := run(t, "tokens", filepath.Join(dir, "bad.idl")); code != failure.ExitParsing {
		t.Fatalf("tokens on lexical error: exit %d", code)
	}

	code, stdout, _ = run(t, "version")
	if code != 0 || !strings.HasPrefix(stdout, "bridgeidl ") {
		t.Fatalf("version exit %d: %q", code, stdout)
	}
}
