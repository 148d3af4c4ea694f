package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/symbols"
)

type evalState uint8

const (
	unvisited evalState = iota
	visiting
	evaluated
)

type constEval struct {
	r     *resolver
	state map[ir.DeclID]evalState
}

// exprOptions are the helper functions available to initializers.
func exprOptions(env map[string]any) []expr.Option {
	return []expr.Option{
		expr.Env(env),
		expr.Function("bit", func(params ...any) (any, error) {
			n, ok := params[0].(int)
			if !ok || n < 0 || n > 62 {
				return nil, fmt.Errorf("bit(%v): position out of range", params[0])
			}
			return 1 << n, nil
		},
			new(func(int) int)),
	}
}

// evaluateConsts evaluates every constant in dependency order.
func evaluateConsts(r *resolver) {
	e := &constEval{r: r, state: make(map[ir.DeclID]evalState)}
	for _, id := range r.out.IDs() {
		if _, ok := r.out.Get(id).(*ir.Const); ok {
			e.visit(id)
		}
	}
}

func (e *constEval) visit(id ir.DeclID) {
	switch e.state[id] {
	case evaluated:
		return
	case visiting:
		c := e.r.out.Get(id).(*ir.Const)
		diag.ReportError(e.r.in.Reporter, diag.SemaInvalidConst, c.NameSpan,
			fmt.Sprintf("constant %s depends on itself", c.QualifiedName())).Emit()
		return
	}
	e.state[id] = visiting
	defer func() { e.state[id] = evaluated }()

	c := e.r.out.Get(id).(*ir.Const)
	env := make(map[string]any, len(c.Refs))
	var code strings.Builder
	last := uint32(0)
	for i := range c.Refs {
		ref := &c.Refs[i]
		value, ok := e.refValue(c, ref)
		if !ok {
			return
		}
		slot := "ref_" + strconv.Itoa(i)
		if n, isInt := value.(int64); isInt {
			// expr builtins such as bitor take int.
			env[slot] = int(n)
		} else {
			env[slot] = value
		}
		start := ref.Span.Start - c.ExprSpan.Start
		end := ref.Span.End - c.ExprSpan.Start
		code.WriteString(c.Expr[last:start])
		code.WriteString(slot)
		last = end
	}
	code.WriteString(c.Expr[last:])

	program, err := expr.Compile(code.String(), exprOptions(env)...)
	if err != nil {
		e.fail(c, err)
		return
	}
	out, err := expr.Run(program, env)
	if err != nil {
		e.fail(c, err)
		return
	}
	value, err := normalize(out)
	if err != nil {
		e.fail(c, err)
		return
	}
	c.Value = value
}

func (e *constEval) fail(c *ir.Const, err error) {
	diag.ReportError(e.r.in.Reporter, diag.SemaInvalidConst, c.ExprSpan,
		fmt.Sprintf("cannot evaluate %s: %v", c.QualifiedName(), err)).Emit()
}

// refValue binds ref to another constant or to an enum or flags member.
func (e *constEval) refValue(c *ir.Const, ref *ir.ConstRef) (any, bool) {
	table := e.r.in.Table
	name := strings.Join(ref.Name, ".")
	for _, qn := range symbols.Candidates(c.Namespace, ref.Name, ref.Absolute) {
		entry, ok := table.Lookup(qn)
		if !ok {
			continue
		}
		ref.Decl = entry.ID
		target, isConst := e.r.out.Get(entry.ID).(*ir.Const)
		if !isConst {
			diag.ReportError(e.r.in.Reporter, diag.SemaInvalidConst, ref.Span,
				fmt.Sprintf("%s is a %s, not a constant", qn, entry.Kind)).Emit()
			return nil, false
		}
		e.visit(entry.ID)
		// A failed dependency was already reported.
		return target.Value, target.Value != nil
	}
	if len(ref.Name) > 1 {
		owner, member := ref.Name[:len(ref.Name)-1], ref.Name[len(ref.Name)-1]
		for _, qn := range symbols.Candidates(c.Namespace, owner, ref.Absolute) {
			entry, ok := table.Lookup(qn)
			if !ok {
				continue
			}
			ref.Decl = entry.ID
			if v, ok := memberValue(e.r.out.Get(entry.ID), member); ok {
				return v, true
			}
			break
		}
	}
	diag.ReportError(e.r.in.Reporter, diag.SemaUnresolvedType, ref.Span,
		fmt.Sprintf("unresolved constant %s", name)).Emit()
	return nil, false
}

func memberValue(d ir.Decl, member string) (any, bool) {
	switch d := d.(type) {
	case *ir.Enum:
		for _, m := range d.Members {
			if m.Name == member {
				return m.Value, true
			}
		}
	case *ir.Flags:
		if m, ok := d.Member(member); ok {
			return int64(m.Value), true
		}
	}
	return nil, false
}

// normalize maps evaluation results onto bool, int64, float64 or string.
func normalize(v any) (any, error) {
	switch v := v.(type) {
	case bool, int64, float64, string:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	}
	return nil, fmt.Errorf("unsupported result type %T", v)
}
