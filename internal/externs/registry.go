// Package externs is the external type registry: types that are not
// declared in IDL but mapped to native types per target.
package externs

import (
	"fmt"

	"fortio.org/safecast"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/symbols"
)

// Registry holds extern entries by ExternID. Index 0 is reserved.
type Registry struct {
	entries []*ir.ExternType
	byName  map[string]ir.ExternID
}

// New returns a registry preloaded with the built-in types.
func New() *Registry {
	r := &Registry{
		entries: make([]*ir.ExternType, 1, 32),
		byName:  make(map[string]ir.ExternID),
	}
	for _, b := range builtins() {
		if _, err := r.Register(b); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds e. A name registered twice is a ConfigurationError, except
// that a mapped entry replaces the placeholder of a forward declaration and
// keeps its ID.
func (r *Registry) Register(e *ir.ExternType) (ir.ExternID, error) {
	qn := e.QualifiedName()
	if id, ok := r.byName[qn]; ok {
		prev := r.entries[id]
		if prev.Forward && !e.Forward {
			r.entries[id] = e
			return id, nil
		}
		return id, &failure.ConfigurationError{
			Code: diag.CfgDuplicateExtern,
			Path: e.Origin,
			Type: qn,
			Msg:  fmt.Sprintf("extern type %s is already registered (from %s)", qn, prev.Origin),
		}
	}
	value, err := safecast.Conv[uint32](len(r.entries))
	if err != nil {
		panic(fmt.Errorf("extern registry overflow: %w", err))
	}
	id := ir.ExternID(value)
	r.entries = append(r.entries, e)
	r.byName[qn] = id
	return id, nil
}

// Forward registers a placeholder for an IDL `extern` declaration unless the
// name is already known. Placeholders have no mappings.
func (r *Registry) Forward(fe ir.ForwardExtern, origin string) ir.ExternID {
	if id, ok := r.byName[fe.QualifiedName()]; ok {
		return id
	}
	id, _ := r.Register(&ir.ExternType{
		Name:      fe.Name,
		Namespace: fe.Namespace,
		Doc:       fe.Doc,
		Forward:   true,
		Origin:    origin,
		Span:      fe.Span,
	})
	return id
}

// Lookup finds an exact qualified name.
func (r *Registry) Lookup(qualified string) (ir.ExternID, bool) {
	id, ok := r.byName[qualified]
	return id, ok
}

// Resolve looks a reference up with the same namespace walk as the symbol
// table.
func (r *Registry) Resolve(scope, name []string, absolute bool) (ir.ExternID, bool) {
	for _, qn := range symbols.Candidates(scope, name, absolute) {
		if id, ok := r.byName[qn]; ok {
			return id, true
		}
	}
	return ir.NoExternID, false
}

// Get returns the entry for id, or nil.
func (r *Registry) Get(id ir.ExternID) *ir.ExternType {
	if !id.IsValid() || int(id) >= len(r.entries) {
		return nil
	}
	return r.entries[id]
}

func (r *Registry) Len() int { return len(r.entries) - 1 }

// Snapshot returns the entries indexed by ExternID, sentinel included.
func (r *Registry) Snapshot() []*ir.ExternType {
	return append([]*ir.ExternType(nil), r.entries...)
}
