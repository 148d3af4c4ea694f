package ir

import (
	"bridgeidl/internal/source"
	"bridgeidl/internal/target"
)

// Module is one parsed IDL file. It owns its declarations; the symbol table
// only refers to them.
type Module struct {
	ID    ModuleID
	Path  string
	File  source.FileID
	Decls []DeclID
	// Imports are the `@import` directives, in source order.
	Imports []Directive
	// ExternFiles are the `@extern` directives.
	ExternFiles []Directive
	// Externs are the forward `name = extern;` declarations.
	Externs []ForwardExtern
}

// Directive is a file-level directive with the path as written.
type Directive struct {
	Path string
	Span source.Span
}

// ForwardExtern declares that name is provided by the extern registry.
type ForwardExtern struct {
	Name      string
	Namespace []string
	Doc       Doc
	Targets   []target.Marker
	Span      source.Span
}

func (f *ForwardExtern) QualifiedName() string {
	return Qualify(f.Namespace, f.Name)
}
