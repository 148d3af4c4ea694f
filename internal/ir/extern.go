package ir

import (
	"bridgeidl/internal/source"
	"bridgeidl/internal/target"
)

// ExternKind is the shape of a type provided outside the IDL.
type ExternKind uint8

const (
	ExternPrimitive ExternKind = iota + 1
	ExternCollection
	ExternRecord
	ExternEnum
	ExternFlags
	ExternInterface
	ExternFunction
)

var externKindNames = map[ExternKind]string{
	ExternPrimitive:  "primitive",
	ExternCollection: "collection",
	ExternRecord:     "record",
	ExternEnum:       "enum",
	ExternFlags:      "flags",
	ExternInterface:  "interface",
	ExternFunction:   "function",
}

func (k ExternKind) String() string {
	if s, ok := externKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseExternKind maps a configuration keyword to its kind.
func ParseExternKind(s string) (ExternKind, bool) {
	for k, name := range externKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Collection distinguishes the built-in generic containers.
type Collection uint8

const (
	NotCollection Collection = iota
	List
	Set
	Map
)

// Mapping is the native spelling of an extern type for one target.
type Mapping struct {
	Typename string `json:"typename" yaml:"typename" toml:"typename"`
	// Header is the include (C++) or import (JVM, Objective-C) it needs.
	Header    string `json:"header,omitempty" yaml:"header" toml:"header"`
	Boxed     string `json:"boxed,omitempty" yaml:"boxed" toml:"boxed"`
	Reference bool   `json:"reference,omitempty" yaml:"reference" toml:"reference"`
}

// ExternType is one entry of the external type registry.
type ExternType struct {
	Name      string
	Namespace []string
	Kind      ExternKind
	Params    []string
	Doc       Doc
	Mappings  map[target.Target]Mapping
	// Builtin entries count as mapped for every target.
	Builtin bool
	// Forward entries come from `extern` declarations nobody configured.
	Forward bool
	// Origin names where the entry was registered: "builtin", "config" or a file path.
	Origin string
	Span   source.Span
}

func (e *ExternType) QualifiedName() string { return Qualify(e.Namespace, e.Name) }

// Arity is the number of generic parameters.
func (e *ExternType) Arity() int { return len(e.Params) }

// MappedFor reports whether e can be generated for t.
func (e *ExternType) MappedFor(t target.Target) bool {
	if e.Builtin {
		return true
	}
	_, ok := e.Mappings[t]
	return ok
}

// Collection reports which built-in container e is.
func (e *ExternType) Collection() Collection {
	if !e.Builtin || e.Kind != ExternCollection {
		return NotCollection
	}
	switch e.Name {
	case "list":
		return List
	case "set":
		return Set
	case "map":
		return Map
	}
	return NotCollection
}
