package ast

import (
	"strings"

	"bridgeidl/internal/source"
)

// TypeExpr is a type as written: a (possibly qualified, possibly generic)
// name, or an inline function signature. Either Name or Func is set.
type TypeExpr struct {
	Name     []string
	Absolute bool
	Args     []*TypeExpr
	Optional bool
	Func     *FuncSig
	Span     source.Span
}

// QualifiedName renders the name part with dots.
func (t *TypeExpr) QualifiedName() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Name, ".")
}

// String renders the expression in IDL syntax.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeExpr) write(b *strings.Builder) {
	if t.Func != nil {
		b.WriteString("function(")
		for i, p := range t.Func.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			b.WriteString(": ")
			p.Type.write(b)
		}
		b.WriteByte(')')
		if t.Func.Result != nil {
			b.WriteString(" -> ")
			t.Func.Result.write(b)
		}
	} else {
		if t.Absolute {
			b.WriteByte('.')
		}
		b.WriteString(t.QualifiedName())
		if len(t.Args) > 0 {
			b.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte('>')
		}
	}
	if t.Optional {
		b.WriteByte('?')
	}
}
