package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/builder"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/parser"
	"bridgeidl/internal/pipeline"
	"bridgeidl/internal/source"
	"bridgeidl/internal/trace"
)

// unit is one file parsed by a Parse call.
type unit struct {
	path string // absolute
	file source.FileID
	ast  *ast.File
	bag  *diag.Bag // lexical and syntax diagnostics
}

// Parse adds idlPath and every file it imports, transitively, to the
// compilation. Files already part of it are skipped.
//
// Syntax errors in any of the files are returned together as one
// *failure.ParsingError and nothing is added. Otherwise the files are built
// into modules and their semantic diagnostics join the handle's batch; they
// surface through Diagnostics and ResolvedIR, not as an error here.
func (h *Handle) Parse(ctx context.Context, idlPath string) (_ *Handle, err error) {
	defer recoverInto(&err, "parse")
	ctx, span := trace.Start(h.context(ctx), trace.ScopeDriver, "parse")
	defer span.End("")

	root, err := filepath.Abs(idlPath)
	if err != nil {
		return h, failure.Application("parse", err)
	}
	if h.parsed[root] {
		return h, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return h, failure.Application("parse", err)
	}
	if info.IsDir() {
		return h, failure.Application("parse", fmt.Errorf("%s is a directory", idlPath))
	}

	semantic := diag.NewBag(0)
	units, err := h.collect(ctx, root, diag.BagReporter{Bag: semantic})
	if err != nil {
		return h, err
	}

	syntax := diag.NewBag(0)
	for _, u := range units {
		if u.bag.HasErrors() {
			syntax.Merge(u.bag)
		}
	}
	if syntax.HasErrors() {
		syntax.Sort()
		syntax.Truncate(h.cfg.MaxDiagnostics)
		span.WithExtra("syntax_errors", strconv.Itoa(syntax.ErrorCount()))
		return h, &failure.ParsingError{Diagnostics: syntax.Items(), Files: h.files}
	}

	err = h.pass(ctx, pipeline.StageBuild, "", func(context.Context) error {
		return h.commit(units, diag.BagReporter{Bag: semantic})
	})
	if err != nil {
		return h, err
	}
	h.batch.Merge(semantic)
	h.final, h.program, h.err, h.outcome = nil, nil, nil, Pending
	span.WithExtra("modules", strconv.Itoa(len(units)))
	return h, nil
}

// collect parses root and follows its imports wave by wave: the files
// imported by one wave and not seen before form the next one.
func (h *Handle) collect(ctx context.Context, root string, rep diag.Reporter) ([]*unit, error) {
	seen := map[string]bool{root: true}
	wave := []string{root}
	var units []*unit
	for len(wave) > 0 {
		var parsed []*unit
		err := h.pass(ctx, pipeline.StageParse, "", func(ctx context.Context) error {
			var err error
			parsed, err = h.parseWave(ctx, wave)
			return err
		})
		if err != nil {
			return nil, err
		}
		units = append(units, parsed...)

		wave = nil
		for _, u := range parsed {
			for _, dir := range u.ast.Directives {
				if dir.Kind != ast.DirImport {
					continue
				}
				path, ok := h.locate(u.path, dir.Path)
				if !ok {
					diag.ReportError(rep, diag.ProjMissingImport, dir.PathSpan,
						fmt.Sprintf("cannot find imported file %q", dir.Path)).Emit()
					continue
				}
				if path == u.path {
					diag.ReportWarning(rep, diag.ProjSelfImport, dir.PathSpan, "file imports itself").Emit()
					continue
				}
				if seen[path] || h.parsed[path] {
					continue
				}
				seen[path] = true
				wave = append(wave, path)
			}
		}
	}
	return units, nil
}

// parseWave loads paths and parses them in parallel. Each worker writes
// only its own unit.
func (h *Handle) parseWave(ctx context.Context, paths []string) ([]*unit, error) {
	units := make([]*unit, len(paths))
	for i, path := range paths {
		id, err := h.files.Load(path)
		if err != nil {
			return nil, failure.Application("load "+path, err)
		}
		units[i] = &unit{path: path, file: id, bag: diag.NewBag(h.cfg.MaxDiagnostics)}
		pipeline.Report(h.opts.Progress, pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusQueued})
	}

	jobs := h.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for _, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Syntax errors stay in u.bag; only cancellation stops a wave.
			_ = h.pass(gctx, pipeline.StageParse, u.path, func(context.Context) error {
				rep := diag.BagReporter{Bag: u.bag}
				lx := lexer.New(h.files.Get(u.file), lexer.Options{Reporter: rep})
				u.ast = parser.ParseFile(lx, parser.Options{Reporter: rep}).File
				if u.bag.HasErrors() {
					return fmt.Errorf("%d syntax error(s)", u.bag.ErrorCount())
				}
				return nil
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failure.Application("parse", err)
	}
	return units, nil
}

// locate finds an imported path: relative to the importing file first, then
// in each configured include directory.
func (h *Handle) locate(from, rel string) (string, bool) {
	var candidates []string
	if filepath.IsAbs(rel) {
		candidates = []string{rel}
	} else {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), filepath.FromSlash(rel)))
		for _, dir := range h.cfg.IncludePaths() {
			candidates = append(candidates, filepath.Join(dir, filepath.FromSlash(rel)))
		}
	}
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, true
		}
	}
	return "", false
}

// commit registers the extern files named by the units, then builds each
// unit into a module and merges its names into the compilation. It is the
// single writer of the arena, the table and the registry.
func (h *Handle) commit(units []*unit, rep diag.Reporter) error {
	for _, u := range units {
		for _, dir := range u.ast.Directives {
			if dir.Kind != ast.DirExtern {
				continue
			}
			path, ok := h.locate(u.path, dir.Path)
			if !ok {
				return failure.Application("load extern file", fmt.Errorf("%s: %w", dir.Path, fs.ErrNotExist))
			}
			if err := h.loadExterns(path); err != nil {
				return err
			}
		}
	}

	for _, u := range units {
		n, err := safecast.Conv[uint32](len(h.modules) + 1)
		if err != nil {
			return failure.Application("build", err)
		}
		built := builder.Build(u.ast, ir.ModuleID(n), h.arena, builder.Options{
			DefaultDeriving: h.cfg.Deriving(),
			Reporter:        rep,
		})
		builder.Merge(h.table, built.Table, rep)
		for _, fe := range built.Module.Externs {
			h.registry.Forward(fe, built.Module.Path)
		}
		h.modules = append(h.modules, built.Module)
		h.parsed[u.path] = true
	}
	return nil
}
