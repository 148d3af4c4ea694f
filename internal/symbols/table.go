// Package symbols holds the symbol table: qualified name to declaration.
// The table never owns declarations; entries refer to the ir arena.
package symbols

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"bridgeidl/internal/ir"
	"bridgeidl/internal/source"
)

// Entry is one registered declaration.
type Entry struct {
	ID     ir.DeclID
	Name   string
	Kind   ir.DeclKind
	Span   source.Span
	Module ir.ModuleID
}

// Conflict is a qualified name registered twice.
type Conflict struct {
	First  Entry
	Second Entry
}

// Table maps qualified names to declarations.
type Table struct {
	entries map[string]Entry
}

// NewTable builds an empty table with an optional capacity hint.
func NewTable(hint uint) *Table {
	n, err := safecast.Conv[int](hint)
	if err != nil {
		panic(fmt.Errorf("symbol table capacity overflow: %w", err))
	}
	return &Table{entries: make(map[string]Entry, n)}
}

// Insert registers e. When the name is taken the existing entry is returned
// with ok=false and the table is unchanged.
func (t *Table) Insert(e Entry) (Entry, bool) {
	if prev, exists := t.entries[e.Name]; exists {
		return prev, false
	}
	t.entries[e.Name] = e
	return e, true
}

// Lookup finds an exact qualified name.
func (t *Table) Lookup(qualified string) (Entry, bool) {
	e, ok := t.entries[qualified]
	return e, ok
}

// Resolve looks name up relative to scope, walking outward to the root.
// An absolute name is looked up only at the root.
func (t *Table) Resolve(scope, name []string, absolute bool) (Entry, bool) {
	for _, qn := range Candidates(scope, name, absolute) {
		if e, ok := t.entries[qn]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Merge inserts every entry of other, in name order, and reports the names
// that were already present.
func (t *Table) Merge(other *Table) []Conflict {
	var conflicts []Conflict
	for _, name := range other.Names() {
		e := other.entries[name]
		if prev, ok := t.Insert(e); !ok {
			conflicts = append(conflicts, Conflict{First: prev, Second: e})
		}
	}
	return conflicts
}

func (t *Table) Len() int { return len(t.entries) }

// Names returns every qualified name in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Index returns a copy of the name to ID mapping.
func (t *Table) Index() map[string]ir.DeclID {
	out := make(map[string]ir.DeclID, len(t.entries))
	for n, e := range t.entries {
		out[n] = e.ID
	}
	return out
}

// Candidates lists the qualified names a reference may denote, innermost
// namespace first.
func Candidates(scope, name []string, absolute bool) []string {
	short := strings.Join(name, ".")
	if absolute {
		return []string{short}
	}
	out := make([]string, 0, len(scope)+1)
	for i := len(scope); i > 0; i-- {
		out = append(out, strings.Join(scope[:i], ".")+"."+short)
	}
	return append(out, short)
}
