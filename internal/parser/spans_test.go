package parser

import (
	"testing"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/source"
	"bridgeidl/internal/testkit"
)

func TestSpansNestInsideParents(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.idl", []byte(sampleIDL))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := ParseFile(lexer.New(fs.Get(id), lexer.Options{Reporter: rep}), Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	if err := testkit.CheckSpanInvariants(res.File, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}
