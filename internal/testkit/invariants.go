// Package testkit holds helpers shared by tests across packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/source"
)

// CheckSpanInvariants checks the spans of a parsed file:
// the file span is non-empty and inside the content, every item span is
// non-empty and inside its parent's span, and every span points at sf.
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to file %d, want %d", f.Span.File, sf.ID)
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	if f.Span.End > size {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, size)
	}
	for _, d := range f.Directives {
		if !f.Span.Contains(d.Span) {
			return fmt.Errorf("directive %q span %v is outside file span %v", d.Path, d.Span, f.Span)
		}
	}
	return checkItems(f.Items, f.Span, sf.ID)
}

func checkItems(items []ast.Item, parent source.Span, id source.FileID) error {
	for _, it := range items {
		sp := it.ItemSpan()
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != id {
			return fmt.Errorf("item span points to file %d, want %d", sp.File, id)
		}
		if !parent.Contains(sp) {
			return fmt.Errorf("item span %v is outside %v", sp, parent)
		}
		if ns, ok := it.(*ast.Namespace); ok {
			if err := checkItems(ns.Items, sp, id); err != nil {
				return fmt.Errorf("namespace %v: %w", ns.Path, err)
			}
		}
	}
	return nil
}
