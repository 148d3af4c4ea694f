// Package resolve binds every type reference of a merged compilation to a
// declaration or an extern entry and evaluates constant initializers.
package resolve

import (
	"fmt"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/externs"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/symbols"
)

// Input is the merged state after every module has been built.
type Input struct {
	Arena    *ir.Arena
	Table    *symbols.Table
	Registry *externs.Registry
	Reporter diag.Reporter
}

type resolver struct {
	in    Input
	out   *ir.Arena
	owner ir.DeclID
}

// Resolve returns a new arena with the same IDs in which every reference is
// an *ir.Resolved where possible. The input arena is left untouched, so a
// compilation can be resolved again after more modules were added.
// Failures are reported and leave the *ir.Unresolved in place.
func Resolve(in Input) *ir.Arena {
	r := &resolver{in: in, out: in.Arena.Clone()}
	r.collisions()
	for _, id := range r.out.IDs() {
		r.owner = id
		r.out.Set(id, r.decl(r.out.Get(id)))
	}
	evaluateConsts(r)
	return r.out
}

func (r *resolver) decl(d ir.Decl) ir.Decl {
	switch d := d.(type) {
	case *ir.Enum:
		c := *d
		return &c
	case *ir.Flags:
		c := *d
		return &c
	case *ir.Record:
		c := *d
		if d.Base != nil {
			c.Base = r.base(d.Base)
		}
		c.Fields = r.fields(d.Fields)
		return &c
	case *ir.Interface:
		c := *d
		c.Methods = make([]ir.Method, len(d.Methods))
		for i, m := range d.Methods {
			m.Params = r.fields(m.Params)
			m.Result = r.ref(m.Result)
			m.Throws = r.refs(m.Throws)
			c.Methods[i] = m
		}
		c.Properties = make([]ir.Property, len(d.Properties))
		for i, p := range d.Properties {
			p.Type = r.ref(p.Type)
			c.Properties[i] = p
		}
		return &c
	case *ir.Function:
		c := *d
		c.Params = r.fields(d.Params)
		c.Result = r.ref(d.Result)
		c.Throws = r.refs(d.Throws)
		return &c
	case *ir.Const:
		c := *d
		c.Type = r.ref(d.Type)
		c.Refs = append([]ir.ConstRef(nil), d.Refs...)
		c.Value = nil
		return &c
	case *ir.ErrorDomain:
		c := *d
		c.Variants = make([]ir.ErrorVariant, len(d.Variants))
		for i, v := range d.Variants {
			v.Fields = r.fields(v.Fields)
			c.Variants[i] = v
		}
		return &c
	}
	panic(fmt.Sprintf("resolve: unhandled declaration %T", d))
}

func (r *resolver) fields(in []ir.Field) []ir.Field {
	if in == nil {
		return nil
	}
	out := make([]ir.Field, len(in))
	for i, f := range in {
		f.Type = r.ref(f.Type)
		out[i] = f
	}
	return out
}

func (r *resolver) refs(in []ir.TypeRef) []ir.TypeRef {
	if in == nil {
		return nil
	}
	out := make([]ir.TypeRef, len(in))
	for i, t := range in {
		out[i] = r.ref(t)
	}
	return out
}

func (r *resolver) base(t ir.TypeRef) ir.TypeRef {
	res := r.ref(t)
	if rr, ok := res.(*ir.Resolved); ok {
		if _, isRecord := r.out.Get(rr.Decl).(*ir.Record); !isRecord {
			diag.ReportError(r.in.Reporter, diag.SemaInvalidBase, rr.Span,
				fmt.Sprintf("base %s is not a record", rr.Name)).Emit()
		}
	}
	return res
}

// ref resolves one reference. Lifted functions are already resolved; their
// arguments are not revisited.
func (r *resolver) ref(t ir.TypeRef) ir.TypeRef {
	u, ok := t.(*ir.Unresolved)
	if !ok {
		return t
	}
	args := make([]ir.TypeRef, len(u.Args))
	for i, a := range u.Args {
		args[i] = r.ref(a)
	}
	res, ok := r.lookup(u)
	if !ok {
		c := *u
		c.Args = args
		return &c
	}
	res.Args = args
	if !r.checkArity(u, res) {
		c := *u
		c.Args = args
		return &c
	}
	return res
}

// collisions reports every IDL declaration whose qualified name is also an
// extern type, whether or not anything refers to it.
func (r *resolver) collisions() {
	for _, qn := range r.in.Table.Names() {
		extID, ok := r.in.Registry.Lookup(qn)
		if !ok {
			continue
		}
		entry, _ := r.in.Table.Lookup(qn)
		ext := r.in.Registry.Get(extID)
		rb := diag.ReportError(r.in.Reporter, diag.SemaDuplicateSymbol, entry.Span,
			fmt.Sprintf("%s is declared in IDL and registered as an extern type (%s)", qn, externOrigin(ext)))
		if !ext.Span.Empty() {
			rb = rb.WithNote(ext.Span, "extern declared here")
		}
		rb.Emit()
	}
}

func externOrigin(e *ir.ExternType) string {
	switch {
	case e.Builtin:
		return "built-in"
	case e.Origin != "":
		return e.Origin
	}
	return "configuration"
}

// lookup walks every candidate of the namespace walk. The innermost
// declaration wins; an extern at another level of the walk makes the
// reference ambiguous. Same-level collisions are reported by collisions.
func (r *resolver) lookup(u *ir.Unresolved) (*ir.Resolved, bool) {
	var (
		declName, extName string
		entry             symbols.Entry
		extID             ir.ExternID
	)
	for _, qn := range symbols.Candidates(u.Scope, u.Name, u.Absolute) {
		if e, ok := r.in.Table.Lookup(qn); ok && declName == "" {
			declName, entry = qn, e
		}
		if id, ok := r.in.Registry.Lookup(qn); ok && extName == "" {
			extName, extID = qn, id
		}
	}
	switch {
	case declName != "" && extName != "":
		if declName != extName {
			diag.ReportError(r.in.Reporter, diag.SemaDuplicateSymbol, u.Span,
				fmt.Sprintf("%s is ambiguous: %s is declared in IDL and %s is an extern type", u.String(), declName, extName)).
				WithNote(entry.Span, "declared here").
				Emit()
		}
		return r.declRef(u, entry)
	case declName != "":
		return r.declRef(u, entry)
	case extName != "":
		ext := r.in.Registry.Get(extID)
		if ext.Doc.Deprecated {
			r.deprecated(u, extName, ext.Doc)
		}
		return &ir.Resolved{Extern: extID, Name: extName, Optional: u.Optional, Span: u.Span}, true
	}
	diag.ReportError(r.in.Reporter, diag.SemaUnresolvedType, u.Span,
		fmt.Sprintf("unresolved type %s", u.String())).Emit()
	return nil, false
}

func (r *resolver) declRef(u *ir.Unresolved, e symbols.Entry) (*ir.Resolved, bool) {
	if e.Kind == ir.KindConst {
		diag.ReportError(r.in.Reporter, diag.SemaNotAType, u.Span,
			fmt.Sprintf("%s is a constant, not a type", e.Name)).
			WithNote(e.Span, "constant declared here").
			Emit()
		return nil, false
	}
	if d := r.in.Arena.Get(e.ID); d != nil && d.Head().Doc.Deprecated && e.ID != r.owner {
		r.deprecated(u, e.Name, d.Head().Doc)
	}
	return &ir.Resolved{Decl: e.ID, Name: e.Name, Optional: u.Optional, Span: u.Span}, true
}

func (r *resolver) deprecated(u *ir.Unresolved, name string, doc ir.Doc) {
	msg := fmt.Sprintf("%s is deprecated", name)
	if doc.DeprecatedNote != "" {
		msg += ": " + doc.DeprecatedNote
	}
	diag.ReportWarning(r.in.Reporter, diag.SemaDeprecatedUse, u.Span, msg).Emit()
}

func (r *resolver) checkArity(u *ir.Unresolved, res *ir.Resolved) bool {
	want := 0
	if res.IsExtern() {
		want = r.in.Registry.Get(res.Extern).Arity()
	}
	if got := len(u.Args); got != want {
		diag.ReportError(r.in.Reporter, diag.SemaArityMismatch, u.Span,
			fmt.Sprintf("%s expects %d type argument(s), got %d", res.Name, want, got)).Emit()
		return false
	}
	return true
}
