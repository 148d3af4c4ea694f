package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level   Level
		emit    []bool // driver, pass, module
		retains []bool
	}{
		{LevelOff, []bool{false, false, false}, []bool{false, false, false}},
		{LevelError, []bool{false, false, false}, []bool{true, true, false}},
		{LevelPhase, []bool{true, true, false}, []bool{true, true, false}},
		{LevelDetail, []bool{true, true, true}, []bool{true, true, true}},
		{LevelDebug, []bool{true, true, true}, []bool{true, true, true}},
	}
	for _, tt := range tests {
		var emit, retains []bool
		for _, s := range []Scope{ScopeDriver, ScopePass, ScopeModule} {
			emit = append(emit, tt.level.ShouldEmit(s))
			retains = append(retains, tt.level.retains(s))
		}
		if diff := cmp.Diff(tt.emit, emit); diff != "" {
			t.Errorf("%s ShouldEmit mismatch (-want +got):\n%s", tt.level, diff)
		}
		if diff := cmp.Diff(tt.retains, retains); diff != "" {
			t.Errorf("%s retains mismatch (-want +got):\n%s", tt.level, diff)
		}
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel accepted verbose")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Fatalf("ParseFormat accepted chrome")
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, driver := Start(ctx, ScopeDriver, "parse")
	mctx, module := Start(ctx, ScopeModule, "module:a.idl")
	Point(mctx, ScopeModule, "import", "b.idl")
	module.WithExtra("decls", "3").End("")
	driver.End("ok")

	events := ring.Snapshot()
	type row struct {
		Kind   Kind
		Name   string
		Parent uint64
	}
	var got []row
	for _, ev := range events {
		got = append(got, row{ev.Kind, ev.Name, ev.ParentID})
	}
	want := []row{
		{KindSpanBegin, "parse", 0},
		{KindSpanBegin, "module:a.idl", driver.ID()},
		{KindPoint, "import", module.ID()},
		{KindSpanEnd, "module:a.idl", driver.ID()},
		{KindSpanEnd, "parse", 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if events[3].Extra["decls"] != "3" || events[4].Detail != "ok" {
		t.Fatalf("end events = %+v / %+v", events[3], events[4])
	}
}

func TestDisabledSpansAreInert(t *testing.T) {
	ctx, span := Start(context.Background(), ScopeDriver, "parse")
	if span.ID() != 0 || currentSpan(ctx) != 0 {
		t.Fatalf("nop tracer opened span %d", span.ID())
	}
	if d := span.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("duration = %v", d)
	}

	ring := NewRingTracer(4, LevelPhase)
	if s := Begin(ring, ScopeModule, "module", 0); s.ID() != 0 {
		t.Fatalf("module span opened at phase level")
	}
	if len(ring.Snapshot()) != 0 {
		t.Fatalf("ring = %v", ring.Snapshot())
	}
}

func TestRingWrapsOldestFirst(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		ring.Emit(&Event{Seq: uint64(i), Kind: KindPoint, Scope: ScopePass})
	}
	var seqs []uint64
	for _, ev := range ring.Snapshot() {
		seqs = append(seqs, ev.Seq)
	}
	if diff := cmp.Diff([]uint64{2, 3, 4}, seqs); diff != "" {
		t.Fatalf("seqs mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorLevelRingDump(t *testing.T) {
	var out bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &out})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)
	_, span := Start(ctx, ScopePass, "validate")
	span.End("")
	if out.Len() != 0 {
		t.Fatalf("error level streamed %q", out.String())
	}

	ring := RingOf(tr)
	if ring == nil {
		t.Fatal("no ring")
	}
	var dump bytes.Buffer
	if err := ring.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dump.String(), "→ validate") || !strings.Contains(dump.String(), "← validate") {
		t.Fatalf("dump = %q", dump.String())
	}
}

func TestStreamFormats(t *testing.T) {
	ev := &Event{
		Time:   processStart.Add(1500 * time.Microsecond),
		Seq:    7,
		Kind:   KindSpanEnd,
		Scope:  ScopeModule,
		SpanID: 3,
		Name:   "module:a.idl",
		Detail: "ok",
		Extra:  map[string]string{"z": "1", "a": "2"},
	}

	var text bytes.Buffer
	NewStreamTracer(&text, LevelDetail, FormatText).Emit(ev)
	if got, want := text.String(), "[    1.500ms]     ← module:a.idl (ok) {a=2, z=1}\n"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}

	var nd bytes.Buffer
	NewStreamTracer(&nd, LevelDetail, FormatNDJSON).Emit(ev)
	var decoded map[string]any
	if err := json.Unmarshal(nd.Bytes(), &decoded); err != nil {
		t.Fatalf("ndjson %q: %v", nd.String(), err)
	}
	if decoded["kind"] != "end" || decoded["scope"] != "module" || decoded["name"] != "module:a.idl" {
		t.Fatalf("decoded = %v", decoded)
	}

	var filtered bytes.Buffer
	NewStreamTracer(&filtered, LevelPhase, FormatText).Emit(ev)
	if filtered.Len() != 0 {
		t.Fatalf("phase level wrote a module event")
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	n := len(ring.Snapshot())
	if n == 0 {
		t.Fatal("no heartbeat recorded")
	}
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatalf("heartbeat kept beating after Stop")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat on a disabled tracer")
	}
}
