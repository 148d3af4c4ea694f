package ir

import (
	"slices"

	"bridgeidl/internal/target"
)

// Program is the resolved, immutable result of a compilation. Consumers
// must not modify it.
type Program struct {
	Decls   *Arena
	Modules []*Module
	// Externs is indexed by ExternID; index 0 is nil.
	Externs []*ExternType
	// Names maps qualified names of named (non-lifted) declarations to IDs.
	Names map[string]DeclID
	// Targets is the configured target set.
	Targets target.Set
}

// Decl returns the declaration for id.
func (p *Program) Decl(id DeclID) Decl { return p.Decls.Get(id) }

// Extern returns the registry entry for id, or nil.
func (p *Program) Extern(id ExternID) *ExternType {
	if !id.IsValid() || int(id) >= len(p.Externs) {
		return nil
	}
	return p.Externs[id]
}

// Lookup finds a declaration by qualified name.
func (p *Program) Lookup(qualified string) (Decl, bool) {
	id, ok := p.Names[qualified]
	if !ok {
		return nil, false
	}
	return p.Decls.Get(id), true
}

// Ordered returns the IDs of named declarations sorted by qualified name.
func (p *Program) Ordered() []DeclID {
	names := make([]string, 0, len(p.Names))
	for n := range p.Names {
		names = append(names, n)
	}
	slices.Sort(names)
	ids := make([]DeclID, len(names))
	for i, n := range names {
		ids[i] = p.Names[n]
	}
	return ids
}

// Effective is the target set of the declaration id.
func (p *Program) Effective(id DeclID) target.Set {
	d := p.Decls.Get(id)
	if d == nil {
		return target.Set(0)
	}
	if f, ok := d.(*Function); ok && f.Anonymous() {
		return p.Effective(f.Owner)
	}
	return d.Head().Effective(p.Targets)
}
