package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var inlineSeeds = []string{
	"",
	"a = enum { x; }",
	"r = record { f: list<map<string, i32?>>; } deriving (eq, ord)",
	"s = flags { a; b = 4; c = all; d = none; }",
	"e = error { nope; bad(code: i32); }",
	"i = interface +c -j { static make() -> i; async run(x: i32) -> bool throws e; property p: f32; }",
	"cb = async function (done: i64, total: i64) -> bool;",
	"k = const i32 = 2 * (3 + base) - len(\"abc\");",
	"namespace a.b { namespace c { x = extern; } }",
	"@import \"missing.idl\"\n@extern \"types.yaml\";\nx = record { y: .a.b.z; }",
	"r = record { f i32; }",
	"namespace { } } {",
	"# doc\n# more doc\nr = record {}",
	"x = record { y: z<",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".idl" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
