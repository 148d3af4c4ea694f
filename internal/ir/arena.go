package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores declarations by DeclID. Index 0 is reserved for NoDeclID.
type Arena struct {
	data []Decl
}

// NewArena creates an arena with an optional capacity hint.
func NewArena(capacity uint32) *Arena {
	if capacity == 0 {
		capacity = 64
	}
	return &Arena{data: make([]Decl, 1, capacity+1)}
}

// Add stores d and returns its ID.
func (a *Arena) Add(d Decl) DeclID {
	if d == nil {
		panic("ir.Arena.Add: nil declaration")
	}
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("declaration arena overflow: %w", err))
	}
	a.data = append(a.data, d)
	return DeclID(value)
}

// Get returns the declaration or nil for an invalid ID.
func (a *Arena) Get(id DeclID) Decl {
	if a == nil || !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return a.data[id]
}

// Set replaces the declaration stored under id. Resolution uses it to build
// a new arena with the same IDs.
func (a *Arena) Set(id DeclID, d Decl) {
	if !id.IsValid() || int(id) >= len(a.data) {
		panic(fmt.Errorf("ir.Arena.Set: invalid id %d", id))
	}
	a.data[id] = d
}

// Len reports the number of declarations excluding the sentinel.
func (a *Arena) Len() int { return len(a.data) - 1 }

// IDs lists every allocated ID in allocation order.
func (a *Arena) IDs() []DeclID {
	ids := make([]DeclID, 0, a.Len())
	for i := 1; i < len(a.data); i++ {
		ids = append(ids, DeclID(i))
	}
	return ids
}

// Clone returns a shallow copy: same IDs, same declaration pointers.
func (a *Arena) Clone() *Arena {
	return &Arena{data: append(make([]Decl, 0, len(a.data)), a.data...)}
}
