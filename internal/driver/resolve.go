package driver

import (
	"context"
	"slices"
	"strconv"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/pipeline"
	"bridgeidl/internal/resolve"
	"bridgeidl/internal/trace"
	"bridgeidl/internal/validate"
)

// ResolvedIR resolves every type reference of the parsed modules, applies
// the contract rules and returns the immutable program.
//
// A batch with at least one error yields a *failure.RejectedError carrying
// the whole batch. A missing extern mapping is a *failure.ConfigurationError
// on its own. The result is kept until the next Parse.
func (h *Handle) ResolvedIR() (prog *ir.Program, err error) {
	if h.outcome != Pending {
		return h.program, h.err
	}
	defer recoverInto(&err, "resolve")
	ctx, span := trace.Start(h.context(context.Background()), trace.ScopeDriver, "resolved_ir")
	defer span.End("")

	bag := diag.NewBag(0)
	bag.Merge(h.batch)

	var resolved *ir.Arena
	_ = h.pass(ctx, pipeline.StageResolve, "", func(context.Context) error {
		resolved = resolve.Resolve(resolve.Input{
			Arena:    h.arena,
			Table:    h.table,
			Registry: h.registry,
			Reporter: diag.BagReporter{Bag: bag},
		})
		return nil
	})
	prog = &ir.Program{
		Decls:   resolved,
		Modules: slices.Clone(h.modules),
		Externs: h.registry.Snapshot(),
		Names:   h.table.Index(),
		Targets: h.cfg.Targets(),
	}

	err = h.pass(ctx, pipeline.StageValidate, "", func(ctx context.Context) error {
		found, err := validate.Validate(ctx, prog, validate.Options{Jobs: h.cfg.Jobs, Files: h.files})
		bag.Merge(found)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.finish(bag)
	h.final = bag
	span.WithExtra("diagnostics", strconv.Itoa(bag.Len()))
	if bag.HasErrors() {
		h.outcome = Rejected
		h.err = &failure.RejectedError{Diagnostics: bag.Items(), Files: h.files}
		return nil, h.err
	}
	h.outcome = Accepted
	h.program = prog
	return prog, nil
}
