package ir

import (
	"strings"

	"bridgeidl/internal/source"
)

// TypeRef is either an Unresolved reference as written in source or a
// Resolved one pointing at a declaration or an extern entry.
type TypeRef interface {
	RefSpan() source.Span
	IsOptional() bool
	String() string
	typeRef()
}

// Unresolved is a type reference as spelled in source.
type Unresolved struct {
	Name     []string
	Absolute bool
	// Scope is the namespace the reference appears in.
	Scope    []string
	Args     []TypeRef
	Optional bool
	Span     source.Span
}

// Resolved points at exactly one of Decl or Extern.
type Resolved struct {
	Decl     DeclID
	Extern   ExternID
	Name     string
	Args     []TypeRef
	Optional bool
	Span     source.Span
}

func (u *Unresolved) RefSpan() source.Span { return u.Span }
func (r *Resolved) RefSpan() source.Span   { return r.Span }
func (u *Unresolved) IsOptional() bool     { return u.Optional }
func (r *Resolved) IsOptional() bool       { return r.Optional }

func (*Unresolved) typeRef() {}
func (*Resolved) typeRef()   {}

func (u *Unresolved) QualifiedName() string {
	return strings.Join(u.Name, ".")
}

func (u *Unresolved) String() string {
	prefix := ""
	if u.Absolute {
		prefix = "."
	}
	return render(prefix+u.QualifiedName(), u.Args, u.Optional)
}

func (r *Resolved) String() string {
	return render(r.Name, r.Args, r.Optional)
}

// IsExtern reports whether the reference targets the extern registry.
func (r *Resolved) IsExtern() bool { return r.Extern.IsValid() }

func render(name string, args []TypeRef, optional bool) string {
	var b strings.Builder
	b.WriteString(name)
	if len(args) > 0 {
		b.WriteByte('<')
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if optional {
		b.WriteByte('?')
	}
	return b.String()
}

// AsResolved returns t as *Resolved, or nil.
func AsResolved(t TypeRef) *Resolved {
	r, _ := t.(*Resolved)
	return r
}
