// Package driver is the compiler API. A Handle is configured once, parses
// any number of IDL files into one compilation and hands out the resolved,
// validated program.
//
//	h, err := driver.Configure(ctx, "bridge.yaml", nil, driver.Options{})
//	h, err = h.Parse(ctx, "api.idl")
//	prog, err := h.ResolvedIR()
//
// A Handle is not safe for concurrent use.
package driver

import (
	"context"
	"slices"
	"time"

	"bridgeidl/internal/config"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/externs"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/observ"
	"bridgeidl/internal/pipeline"
	"bridgeidl/internal/source"
	"bridgeidl/internal/symbols"
	"bridgeidl/internal/target"
	"bridgeidl/internal/trace"
)

// Options are the per-process settings of a Handle. Everything that shapes
// the compilation itself comes from the configuration.
type Options struct {
	// Timer records pass durations when set.
	Timer *observ.Timer
	// Progress receives file and pass events when set.
	Progress pipeline.Sink
}

// Outcome is the state of the last ResolvedIR call.
type Outcome uint8

const (
	// Pending means nothing was resolved since the last Parse.
	Pending Outcome = iota
	Accepted
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Handle is one compilation.
type Handle struct {
	cfg      *config.Config
	opts     Options
	tracer   trace.Tracer
	files    *source.FileSet
	registry *externs.Registry
	arena    *ir.Arena
	table    *symbols.Table
	modules  []*ir.Module

	// parsed and loaded hold absolute paths of IDL files and extern files
	// already part of the compilation.
	parsed map[string]bool
	loaded map[string]bool

	// batch is the semantic diagnostics of every committed Parse call;
	// final is batch plus resolution and validation, set by ResolvedIR.
	batch   *diag.Bag
	final   *diag.Bag
	outcome Outcome
	program *ir.Program
	err     error
}

// Configure loads the configuration at configPath, applies overrides and
// registers the configured extern types. An empty configPath uses the
// defaults. The tracer carried by ctx is kept for later calls.
func Configure(ctx context.Context, configPath string, overrides []string, opts Options) (h *Handle, err error) {
	defer recoverInto(&err, "configure")
	tracer := trace.FromContext(ctx)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "configure")
	defer span.End("")

	h = &Handle{
		opts:     opts,
		tracer:   tracer,
		files:    source.NewFileSet(),
		registry: externs.New(),
		arena:    ir.NewArena(0),
		table:    symbols.NewTable(0),
		parsed:   make(map[string]bool),
		loaded:   make(map[string]bool),
		batch:    diag.NewBag(0),
	}
	err = h.pass(ctx, pipeline.StageLoad, "", func(context.Context) error {
		var err error
		if configPath == "" {
			h.cfg, err = config.Parse("", nil, overrides)
		} else {
			h.cfg, err = config.Load(configPath, overrides)
		}
		if err != nil {
			return err
		}
		for i := range h.cfg.Externs {
			if err := h.registry.RegisterEntry(&h.cfg.Externs[i], h.cfg.Path); err != nil {
				return err
			}
		}
		for _, path := range h.cfg.ExternFilePaths() {
			if err := h.loadExterns(path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.WithExtra("targets", h.cfg.Targets().String())
	return h, nil
}

func (h *Handle) loadExterns(path string) error {
	if h.loaded[path] {
		return nil
	}
	h.loaded[path] = true
	return h.registry.LoadFile(path)
}

// Config is the configuration the handle was created with.
func (h *Handle) Config() *config.Config { return h.cfg }

// Files holds every source file read so far.
func (h *Handle) Files() *source.FileSet { return h.files }

// Modules are the committed modules in parse order.
func (h *Handle) Modules() []*ir.Module { return slices.Clone(h.modules) }

// Outcome reports whether the last ResolvedIR accepted the program.
func (h *Handle) Outcome() Outcome { return h.outcome }

// Diagnostics returns the current batch in position order: the semantic
// diagnostics of parsing, plus those of resolution and validation once
// ResolvedIR has run.
func (h *Handle) Diagnostics() []diag.Diagnostic {
	if h.final != nil {
		return h.final.Items()
	}
	bag := diag.NewBag(0)
	bag.Merge(h.batch)
	h.finish(bag)
	return bag.Items()
}

func (h *Handle) finish(bag *diag.Bag) {
	bag.Sort()
	bag.Dedup()
	bag.Truncate(h.cfg.MaxDiagnostics)
}

// Export resolves the program and returns its plain form for t, named with
// the configured identifier styles of t.
func (h *Handle) Export(t target.Target) (ir.Document, error) {
	prog, err := h.ResolvedIR()
	if err != nil {
		return ir.Document{}, err
	}
	return ir.Export(prog, ir.ExportOptions{Target: t, Styles: h.cfg.Styles(t)}), nil
}

// pass runs fn as one compiler pass: traced, timed and reported to the
// progress sink. file is empty for passes over the whole compilation.
func (h *Handle) pass(ctx context.Context, stage pipeline.Stage, file string, fn func(context.Context) error) error {
	scope, name := trace.ScopePass, string(stage)
	if file != "" {
		scope, name = trace.ScopeModule, string(stage)+":"+file
	}
	ctx, span := trace.Start(ctx, scope, name)
	pipeline.Report(h.opts.Progress, pipeline.Event{File: file, Stage: stage, Status: pipeline.StatusWorking})
	start := time.Now()

	var err error
	if file == "" {
		err = h.opts.Timer.Time(name, func() error { return fn(ctx) })
	} else {
		err = fn(ctx)
	}

	status := pipeline.StatusDone
	if err != nil {
		status = pipeline.StatusError
		span.WithExtra("error", err.Error())
	}
	pipeline.Report(h.opts.Progress, pipeline.Event{
		File:    file,
		Stage:   stage,
		Status:  status,
		Err:     err,
		Elapsed: time.Since(start),
	})
	span.End(string(status))
	return err
}

func (h *Handle) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if !trace.FromContext(ctx).Enabled() {
		ctx = trace.WithTracer(ctx, h.tracer)
	}
	return ctx
}

func recoverInto(err *error, op string) {
	if r := recover(); r != nil {
		*err = failure.FromPanic(op, r)
	}
}
