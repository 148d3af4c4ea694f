package validate

import (
	"bridgeidl/internal/ir"
)

// refs returns the top-level type references spelled by d, including the
// base of a record and thrown types.
func refs(d ir.Decl) []ir.TypeRef {
	var out []ir.TypeRef
	add := func(t ir.TypeRef) {
		if t != nil {
			out = append(out, t)
		}
	}
	fields := func(fs []ir.Field) {
		for _, f := range fs {
			add(f.Type)
		}
	}
	switch d := d.(type) {
	case *ir.Record:
		add(d.Base)
		fields(d.Fields)
	case *ir.Interface:
		for _, m := range d.Methods {
			fields(m.Params)
			add(m.Result)
			for _, t := range m.Throws {
				add(t)
			}
		}
		for _, p := range d.Properties {
			add(p.Type)
		}
	case *ir.Function:
		fields(d.Params)
		add(d.Result)
		for _, t := range d.Throws {
			add(t)
		}
	case *ir.Const:
		add(d.Type)
	case *ir.ErrorDomain:
		for _, v := range d.Variants {
			fields(v.Fields)
		}
	}
	return out
}

// eachType visits t and then its type arguments, depth first. Returning
// false from fn skips the arguments of the visited node.
func eachType(t ir.TypeRef, fn func(ir.TypeRef) bool) {
	if t == nil || !fn(t) {
		return
	}
	var args []ir.TypeRef
	switch t := t.(type) {
	case *ir.Resolved:
		args = t.Args
	case *ir.Unresolved:
		args = t.Args
	}
	for _, a := range args {
		eachType(a, fn)
	}
}

// findType returns the first reference within t for which pred holds.
func findType(t ir.TypeRef, pred func(ir.TypeRef) bool) ir.TypeRef {
	var hit ir.TypeRef
	eachType(t, func(x ir.TypeRef) bool {
		if hit != nil {
			return false
		}
		if pred(x) {
			hit = x
			return false
		}
		return true
	})
	return hit
}

func (c *checker) declOf(t ir.TypeRef) ir.Decl {
	r := ir.AsResolved(t)
	if r == nil || !r.Decl.IsValid() {
		return nil
	}
	return c.prog.Decl(r.Decl)
}

func (c *checker) externOf(t ir.TypeRef) *ir.ExternType {
	r := ir.AsResolved(t)
	if r == nil || !r.IsExtern() {
		return nil
	}
	return c.prog.Extern(r.Extern)
}

func (c *checker) isCollection(t ir.TypeRef) bool {
	e := c.externOf(t)
	return e != nil && (e.Kind == ir.ExternCollection || e.Collection() != ir.NotCollection)
}

func (c *checker) declKind(t ir.TypeRef) ir.DeclKind {
	if d := c.declOf(t); d != nil {
		return d.Kind()
	}
	return 0
}

// notValue matches references to functions or error domains.
func (c *checker) notValue(t ir.TypeRef) bool {
	switch c.declKind(t) {
	case ir.KindFunction, ir.KindErrorDomain:
		return true
	}
	return false
}

// chain returns the records in the base chain of r, nearest first. It stops
// at the first repeated record; cyclic reports whether it did.
func (c *checker) chain(r *ir.Record) (bases []*ir.Record, cyclic bool) {
	seen := map[*ir.Record]bool{r: true}
	for cur := r; cur.Base != nil; {
		next, ok := c.declOf(cur.Base).(*ir.Record)
		if !ok {
			return bases, false
		}
		if seen[next] {
			return bases, true
		}
		seen[next] = true
		bases = append(bases, next)
		cur = next
	}
	return bases, false
}

// allFields returns the inherited fields of r, root base first, followed by
// its own.
func (c *checker) allFields(r *ir.Record) []ir.Field {
	bases, _ := c.chain(r)
	var out []ir.Field
	for i := len(bases) - 1; i >= 0; i-- {
		out = append(out, bases[i].Fields...)
	}
	return append(out, r.Fields...)
}
