package ast

import "bridgeidl/internal/source"

// File is one parsed IDL source.
type File struct {
	Path       string
	FileID     source.FileID
	Span       source.Span
	Directives []Directive
	Items      []Item
}

type DirectiveKind uint8

const (
	DirImport DirectiveKind = iota + 1
	DirExtern
)

func (k DirectiveKind) String() string {
	switch k {
	case DirImport:
		return "import"
	case DirExtern:
		return "extern"
	}
	return "unknown"
}

// Directive is an `@import "path"` or `@extern "path"` line.
type Directive struct {
	Kind     DirectiveKind
	Path     string
	PathSpan source.Span
	Span     source.Span
}

// Item is a top-level or namespace-level element: *Namespace or *Decl.
type Item interface {
	ItemSpan() source.Span
	item()
}

// Namespace is a `namespace a.b { ... }` block. Blocks with the same path
// are additive.
type Namespace struct {
	Path     []string
	PathSpan source.Span
	Span     source.Span
	Items    []Item
}

func (n *Namespace) ItemSpan() source.Span { return n.Span }
func (*Namespace) item()                   {}

// Walk visits every declaration in source order together with the absolute
// namespace it is declared in.
func (f *File) Walk(fn func(namespace []string, d *Decl)) {
	walkItems(nil, f.Items, fn)
}

func walkItems(ns []string, items []Item, fn func([]string, *Decl)) {
	for _, it := range items {
		switch it := it.(type) {
		case *Namespace:
			inner := make([]string, 0, len(ns)+len(it.Path))
			inner = append(inner, ns...)
			inner = append(inner, it.Path...)
			walkItems(inner, it.Items, fn)
		case *Decl:
			fn(ns, it)
		}
	}
}
