package ir

// DeclID identifies a declaration in the Arena.
type DeclID uint32

// NoDeclID marks the absence of a declaration reference.
const NoDeclID DeclID = 0

// IsValid reports whether the ID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }

// ExternID identifies an entry of the external type registry.
type ExternID uint32

const NoExternID ExternID = 0

func (id ExternID) IsValid() bool { return id != NoExternID }

// ModuleID identifies a parsed module (one IDL file).
type ModuleID uint32

const NoModuleID ModuleID = 0

func (id ModuleID) IsValid() bool { return id != NoModuleID }
