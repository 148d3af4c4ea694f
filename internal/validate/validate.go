// Package validate checks a resolved program against the contract table.
// Every rule of contract.Rules is bound to exactly one check here.
package validate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"bridgeidl/internal/contract"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/source"
)

// Options tunes a validation run.
type Options struct {
	// Jobs bounds the number of workers; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the merged batch; 0 means unlimited.
	MaxDiagnostics int
	// Files positions fatal failures when set.
	Files *source.FileSet
}

// checker is the state one check runs with. Each task owns its bag.
type checker struct {
	prog  *ir.Program
	rule  contract.Rule
	bag   *diag.Bag
	fatal []*fatalError
}

type fatalError struct {
	decl ir.DeclID
	span source.Span
	err  *failure.ConfigurationError
}

func (c *checker) report(span source.Span, msg string) *diag.ReportBuilder {
	return diag.NewReportBuilder(diag.BagReporter{Bag: c.bag}, c.rule.Severity, c.rule.Code, span, msg)
}

type task struct {
	run func(*checker)
}

// Validate runs every rule over p. Rule violations are returned as a sorted
// batch; a fatal rule (missing extern mapping) is returned as the error.
func Validate(ctx context.Context, p *ir.Program, opts Options) (*diag.Bag, error) {
	tasks := plan(p)
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]checker, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(tasks))))
	for i, t := range tasks {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = checker{prog: p, bag: diag.NewBag(0)}
			t.run(&results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := diag.NewBag(0)
	var first *fatalError
	for i := range results {
		out.Merge(results[i].bag)
		for _, f := range results[i].fatal {
			if first == nil || f.decl < first.decl || (f.decl == first.decl && f.span.Start < first.span.Start) {
				first = f
			}
		}
	}
	out.Sort()
	out.Dedup()
	if opts.MaxDiagnostics > 0 && out.Len() > opts.MaxDiagnostics {
		out.Truncate(opts.MaxDiagnostics)
	}
	if first != nil {
		if opts.Files != nil {
			first.err.Pos = opts.Files.Position(first.span)
		}
		return out, first.err
	}
	return out, nil
}

// plan builds one task per program-wide rule and one task per declaration
// running every per-declaration rule in table order.
func plan(p *ir.Program) []task {
	var tasks []task
	var perDecl []contract.Rule
	for _, rule := range contract.Rules {
		b, ok := bindings[rule.ID]
		if !ok {
			panic("validate: no check bound to rule " + string(rule.ID))
		}
		if b.program != nil {
			tasks = append(tasks, task{run: func(c *checker) {
				c.rule = rule
				b.program(c)
			}})
			continue
		}
		perDecl = append(perDecl, rule)
	}
	for _, id := range p.Decls.IDs() {
		d := p.Decl(id)
		tasks = append(tasks, task{run: func(c *checker) {
			for _, rule := range perDecl {
				c.rule = rule
				bindings[rule.ID].decl(c, id, d)
			}
		}})
	}
	return tasks
}
