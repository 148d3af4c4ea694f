package contract

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bridgeidl/internal/externs"
	"bridgeidl/internal/ir"
)

type testProg struct {
	*ir.Program
	reg *externs.Registry
}

func (tp *testProg) ext(t *testing.T, name string, args ...ir.TypeRef) *ir.Resolved {
	t.Helper()
	id, ok := tp.reg.Lookup(name)
	if !ok {
		t.Fatalf("no builtin %s", name)
	}
	return &ir.Resolved{Extern: id, Name: name, Args: args}
}

func optional(r *ir.Resolved) *ir.Resolved {
	c := *r
	c.Optional = true
	return &c
}

func (tp *testProg) add(d ir.Decl) *ir.Resolved {
	id := tp.Decls.Add(d)
	tp.Names[d.Head().QualifiedName()] = id
	return &ir.Resolved{Decl: id, Name: d.Head().QualifiedName()}
}

func (tp *testProg) record(t *testing.T, name string) *ir.Record {
	t.Helper()
	d, ok := tp.Lookup(name)
	if !ok {
		t.Fatalf("no record %s", name)
	}
	return d.(*ir.Record)
}

func (tp *testProg) domain(t *testing.T, name string) *ir.ErrorDomain {
	t.Helper()
	d, ok := tp.Lookup(name)
	if !ok {
		t.Fatalf("no domain %s", name)
	}
	return d.(*ir.ErrorDomain)
}

func newTestProg(t *testing.T) *testProg {
	t.Helper()
	tp := &testProg{Program: &ir.Program{Decls: ir.NewArena(0), Names: map[string]ir.DeclID{}}, reg: externs.New()}
	tp.Externs = tp.reg.Snapshot()

	color := tp.add(&ir.Enum{Header: ir.Header{Name: "color"}, Members: []ir.Enumerant{
		{Name: "red", Value: 0}, {Name: "green", Value: 1}, {Name: "blue", Value: 5},
	}})
	perms := tp.add(&ir.Flags{Header: ir.Header{Name: "perms"}, Members: []ir.Flag{
		{Name: "read", Value: 1}, {Name: "write", Value: 2}, {Name: "exec", Value: 4},
		{Name: "every", Value: 7, Special: ir.FlagAll}, {Name: "nothing", Special: ir.FlagNone},
	}})
	point := tp.add(&ir.Record{Header: ir.Header{Name: "point"}, Fields: []ir.Field{
		{Name: "x", Type: tp.ext(t, "i32")},
		{Name: "y", Type: tp.ext(t, "i32")},
	}})
	base := tp.add(&ir.Record{Header: ir.Header{Name: "base_shape"}, Fields: []ir.Field{
		{Name: "id", Type: tp.ext(t, "string")},
	}})
	tp.add(&ir.Record{Header: ir.Header{Name: "shape"}, Base: base, Fields: []ir.Field{
		{Name: "origin", Type: point},
		{Name: "corners", Type: tp.ext(t, "list", point)},
		{Name: "tags", Type: tp.ext(t, "set", tp.ext(t, "string"))},
		{Name: "attrs", Type: tp.ext(t, "map", tp.ext(t, "string"), tp.ext(t, "i64"))},
		{Name: "note", Type: optional(tp.ext(t, "string"))},
		{Name: "color", Type: color},
		{Name: "perms", Type: perms},
		{Name: "data", Type: optional(tp.ext(t, "binary"))},
		{Name: "at", Type: optional(tp.ext(t, "date"))},
		{Name: "small", Type: tp.ext(t, "i8")},
	}})
	tp.add(&ir.ErrorDomain{Header: ir.Header{Name: "io_error", Namespace: []string{"fs"}}, Variants: []ir.ErrorVariant{
		{Name: "something_wrong", Fields: []ir.Field{{Name: "message", Type: tp.ext(t, "string")}}},
		{Name: "not_found", Fields: []ir.Field{
			{Name: "path", Type: tp.ext(t, "string")},
			{Name: "code", Type: optional(tp.ext(t, "i32"))},
		}},
		{Name: "corrupt", Fields: []ir.Field{{Name: "block", Type: tp.ext(t, "binary")}}},
		{Name: "closed"},
	}})
	return tp
}

func TestRuleTable(t *testing.T) {
	seen := map[RuleID]bool{}
	for _, r := range Rules {
		if seen[r.ID] {
			t.Fatalf("duplicate rule %s", r.ID)
		}
		seen[r.ID] = true
		if r.Construct.String() == "unknown" || r.Summary == "" {
			t.Fatalf("malformed rule %+v", r)
		}
		if got, ok := Lookup(r.ID); !ok || got.Code != r.Code {
			t.Fatalf("Lookup(%s) = %+v", r.ID, got)
		}
	}
	if _, ok := Lookup("no.such"); ok {
		t.Fatalf("unknown rule found")
	}
	if got := len(For(ConstructFlags)); got != 3 {
		t.Fatalf("flags rules = %d", got)
	}
	if len(GuaranteesFor(ConstructOptional)) == 0 || len(GuaranteesFor(ConstructAsync)) != 2 {
		t.Fatalf("guarantees missing")
	}
	if r, _ := Lookup(ExternMapping); !r.Fatal {
		t.Fatalf("extern mapping must be fatal")
	}
}

func TestFlagSetArithmetic(t *testing.T) {
	tp := newTestProg(t)
	d, _ := tp.Lookup("perms")
	perms := d.(*ir.Flags)

	if AllFlags(perms).Bits() != 7 || !NoFlags(perms).Empty() {
		t.Fatalf("ALL/NONE wrong")
	}
	rw, err := FlagsOf(perms, "read", "write")
	if err != nil {
		t.Fatal(err)
	}
	if rw.String() != "read|write" || !rw.Has("write") || rw.Has("exec") {
		t.Fatalf("rw = %s", rw)
	}
	every, _ := FlagsOf(perms, "every")
	if !every.Contains(rw) || rw.Contains(every) {
		t.Fatalf("contains wrong")
	}
	x, _ := FlagsOf(perms, "exec", "nothing")
	if got := rw.Combine(x); got.Bits() != 7 {
		t.Fatalf("combine = %d", got.Bits())
	}
	if got := every.Intersect(x); got.String() != "exec" {
		t.Fatalf("intersect = %s", got)
	}
	if got := every.Without(rw); got.Bits() != 4 {
		t.Fatalf("without = %d", got.Bits())
	}
	if NoFlags(perms).String() != "none" {
		t.Fatalf("none string")
	}
	if _, err := FlagsOf(perms, "delete"); err == nil {
		t.Fatalf("unknown member accepted")
	}
	if _, err := FlagsFromBits(perms, 8); err == nil {
		t.Fatalf("undefined bit accepted")
	}
}

func TestCompletionExactlyOnce(t *testing.T) {
	c := NewCompletion[int]()
	if err := c.Fulfil(42); err != nil {
		t.Fatal(err)
	}
	if err := c.Fail(errors.New("late")); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second signal = %v", err)
	}
	if err := c.Fulfil(7); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("third signal = %v", err)
	}
	v, err := c.Wait(context.Background())
	if v != 42 || err != nil {
		t.Fatalf("Wait = %d, %v", v, err)
	}
	if c.Rejected() != 2 {
		t.Fatalf("rejected = %d", c.Rejected())
	}
}

func TestCompletionConcurrentSignals(t *testing.T) {
	c := NewCompletion[int]()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.Fulfil(i)
			} else {
				_ = c.Fail(errors.New("odd"))
			}
		}()
	}
	wg.Wait()
	<-c.Done()
	if c.Rejected() != 15 {
		t.Fatalf("rejected = %d", c.Rejected())
	}
}

func TestGoRunsOffCaller(t *testing.T) {
	release := make(chan struct{})
	c := Go(context.Background(), func(context.Context) (string, error) {
		<-release
		return "done", nil
	})
	select {
	case <-c.Done():
		t.Fatalf("completed before work ran")
	default:
	}
	close(release)
	v, err := c.Wait(context.Background())
	if v != "done" || err != nil {
		t.Fatalf("Wait = %q, %v", v, err)
	}

	boom := Go(context.Background(), func(context.Context) (int, error) { panic("boom") })
	_, err = boom.Wait(context.Background())
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("panic = %v", err)
	}

	sentinel := errors.New("plain failure")
	failed := Go(context.Background(), func(context.Context) (int, error) { return 0, sentinel })
	if _, err := failed.Wait(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("failure = %v", err)
	}
}

func TestCompletionWaitHonoursContext(t *testing.T) {
	c := NewCompletion[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v", err)
	}
}
