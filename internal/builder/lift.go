package builder

import (
	"strconv"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/ir"
)

// lifter converts type expressions of one declaration. Inline function types
// become anonymous Functions owned by that declaration and named after the
// path that spells them.
type lifter struct {
	b      *builder
	owner  ir.DeclID
	scope  []string
	prefix string
}

func (l lifter) child(name string) lifter {
	if name == "" {
		return l
	}
	l.prefix += "_" + name
	return l
}

func (l lifter) typeRef(t *ast.TypeExpr, name string) ir.TypeRef {
	if t == nil {
		return nil
	}
	if t.Func != nil {
		return l.lift(t, name)
	}
	ref := &ir.Unresolved{
		Name:     t.Name,
		Absolute: t.Absolute,
		Scope:    l.scope,
		Optional: t.Optional,
		Span:     t.Span,
	}
	for i, a := range t.Args {
		ref.Args = append(ref.Args, l.typeRef(a, argName(name, i)))
	}
	return ref
}

func argName(name string, i int) string {
	if name == "" {
		return "arg" + strconv.Itoa(i)
	}
	return name + "_arg" + strconv.Itoa(i)
}

func (l lifter) lift(t *ast.TypeExpr, name string) ir.TypeRef {
	inner := l.child(name)
	fn := &ir.Function{
		Header: ir.Header{
			Name:      inner.prefix,
			Namespace: l.scope,
			Span:      t.Span,
			NameSpan:  t.Span,
			Module:    l.b.mod.ID,
		},
		Owner: l.owner,
	}
	id := l.b.arena.Add(fn)
	fn.Params, fn.Result, fn.Throws = inner.signature(t.Func, "")
	return &ir.Resolved{
		Decl:     id,
		Name:     fn.QualifiedName(),
		Optional: t.Optional,
		Span:     t.Span,
	}
}

func (l lifter) fields(in []ast.Field, name string) []ir.Field {
	if len(in) == 0 {
		return nil
	}
	scope := l.child(name)
	out := make([]ir.Field, 0, len(in))
	for _, f := range in {
		out = append(out, ir.Field{
			Name: f.Name,
			Type: scope.typeRef(f.Type, f.Name),
			Doc:  ir.ParseDoc(f.Doc),
			Span: f.Span,
		})
	}
	return out
}

func (l lifter) signature(sig *ast.FuncSig, name string) (params []ir.Field, result ir.TypeRef, throws []ir.TypeRef) {
	scope := l.child(name)
	params = scope.fields(sig.Params, "")
	result = scope.typeRef(sig.Result, "result")
	for _, t := range sig.Throws {
		throws = append(throws, scope.typeRef(t, "throws"))
	}
	return params, result, throws
}

func (l lifter) method(m ast.Method) ir.Method {
	params, result, throws := l.signature(&m.Sig, m.Name)
	return ir.Method{
		Name:   m.Name,
		Params: params,
		Result: result,
		Async:  m.Async,
		Static: m.Static,
		Const:  m.Const,
		Throws: throws,
		Doc:    ir.ParseDoc(m.Doc),
		Span:   m.Span,
	}
}
