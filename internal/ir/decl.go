package ir

import (
	"strings"

	"bridgeidl/internal/source"
	"bridgeidl/internal/target"
)

type DeclKind uint8

const (
	KindEnum DeclKind = iota + 1
	KindFlags
	KindRecord
	KindInterface
	KindFunction
	KindConst
	KindErrorDomain
)

var declKindNames = [...]string{
	KindEnum:        "enum",
	KindFlags:       "flags",
	KindRecord:      "record",
	KindInterface:   "interface",
	KindFunction:    "function",
	KindConst:       "const",
	KindErrorDomain: "error",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) && declKindNames[k] != "" {
		return declKindNames[k]
	}
	return "unknown"
}

// Decl is the closed set of declaration variants. Every consumer switches
// over the concrete types; adding a variant breaks the exhaustiveness tests.
type Decl interface {
	Kind() DeclKind
	Head() *Header
	sealed()
}

// Header holds what every declaration has in common.
type Header struct {
	Name      string
	Namespace []string
	Doc       Doc
	Targets   []target.Marker
	Span      source.Span
	NameSpan  source.Span
	Module    ModuleID
}

func (h *Header) Head() *Header { return h }

// QualifiedName joins namespace and name with '.'.
func (h *Header) QualifiedName() string {
	return Qualify(h.Namespace, h.Name)
}

// Qualify builds a qualified name from a namespace path and a short name.
func Qualify(ns []string, name string) string {
	if len(ns) == 0 {
		return name
	}
	return strings.Join(ns, ".") + "." + name
}

// Effective returns the targets this declaration is generated for.
func (h *Header) Effective(configured target.Set) target.Set {
	return target.Effective(configured, h.Targets)
}

type Enum struct {
	Header
	Members []Enumerant
}

type Enumerant struct {
	Name     string
	Value    int64
	Explicit bool
	Doc      Doc
	Span     source.Span
}

// FlagSpecial marks members declared as `= all` or `= none`.
type FlagSpecial uint8

const (
	FlagPlain FlagSpecial = iota
	FlagAll
	FlagNone
)

type Flags struct {
	Header
	Members []Flag
}

type Flag struct {
	Name     string
	Value    uint64
	Explicit bool
	Special  FlagSpecial
	Doc      Doc
	Span     source.Span
}

// All is the bitwise OR of every plain member.
func (f *Flags) All() uint64 {
	var all uint64
	for _, m := range f.Members {
		if m.Special == FlagPlain {
			all |= m.Value
		}
	}
	return all
}

// None is the empty set.
func (f *Flags) None() uint64 { return 0 }

// Member returns the member called name.
func (f *Flags) Member(name string) (Flag, bool) {
	for _, m := range f.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Flag{}, false
}

// Deriving is the set of value-semantics traits of a record.
type Deriving uint8

const (
	DeriveEq Deriving = 1 << iota
	DeriveOrd
	DeriveStr
)

// ParseDeriving maps a trait name to its bit.
func ParseDeriving(name string) (Deriving, bool) {
	switch name {
	case "eq":
		return DeriveEq, true
	case "ord":
		return DeriveOrd, true
	case "str":
		return DeriveStr, true
	}
	return 0, false
}

func (d Deriving) Has(x Deriving) bool { return d&x == x }

func (d Deriving) Names() []string {
	var out []string
	for _, it := range []struct {
		bit  Deriving
		name string
	}{{DeriveEq, "eq"}, {DeriveOrd, "ord"}, {DeriveStr, "str"}} {
		if d.Has(it.bit) {
			out = append(out, it.name)
		}
	}
	return out
}

type Record struct {
	Header
	Base     TypeRef
	Fields   []Field
	Deriving Deriving
}

// Field is a named, typed slot of a record, parameter list or error variant.
type Field struct {
	Name string
	Type TypeRef
	Doc  Doc
	Span source.Span
}

// Interface is implemented by the core when Main is set and by the host when
// Ext is set. MainSpan locates an explicit 'main' keyword.
type Interface struct {
	Header
	Main       bool
	MainSpan   source.Span
	Ext        bool
	Methods    []Method
	Properties []Property
}

// Callback reports whether the interface is implemented by the host only.
func (i *Interface) Callback() bool { return i.Ext && !i.Main }

type Method struct {
	Name   string
	Params []Field
	// Result is nil when the method returns nothing.
	Result TypeRef
	Async  bool
	Static bool
	Const  bool
	Throws []TypeRef
	Doc    Doc
	Span   source.Span
}

type Property struct {
	Name  string
	Type  TypeRef
	Async bool
	Doc   Doc
	Span  source.Span
}

// Function is a free function type. Inline `function(...)` types are lifted
// into anonymous Functions owned by the declaration that spells them.
type Function struct {
	Header
	Async  bool
	Params []Field
	Result TypeRef
	Throws []TypeRef
	// Owner is set for lifted inline function types.
	Owner DeclID
}

// Anonymous reports whether the function was lifted from an inline type.
func (f *Function) Anonymous() bool { return f.Owner.IsValid() }

type Const struct {
	Header
	Type     TypeRef
	Expr     string
	ExprSpan source.Span
	Refs     []ConstRef
	// Value is the evaluated initializer: bool, int64, float64 or string.
	Value any
}

// ConstRef is a name used inside a constant initializer.
type ConstRef struct {
	Name     []string
	Absolute bool
	Span     source.Span
	// Decl is filled by resolution.
	Decl DeclID
}

type ErrorDomain struct {
	Header
	Variants []ErrorVariant
}

type ErrorVariant struct {
	Name   string
	Fields []Field
	Doc    Doc
	Span   source.Span
}

// Variant returns the variant called name.
func (e *ErrorDomain) Variant(name string) (*ErrorVariant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

func (*Enum) Kind() DeclKind        { return KindEnum }
func (*Flags) Kind() DeclKind       { return KindFlags }
func (*Record) Kind() DeclKind      { return KindRecord }
func (*Interface) Kind() DeclKind   { return KindInterface }
func (*Function) Kind() DeclKind    { return KindFunction }
func (*Const) Kind() DeclKind       { return KindConst }
func (*ErrorDomain) Kind() DeclKind { return KindErrorDomain }

func (*Enum) sealed()        {}
func (*Flags) sealed()       {}
func (*Record) sealed()      {}
func (*Interface) sealed()   {}
func (*Function) sealed()    {}
func (*Const) sealed()       {}
func (*ErrorDomain) sealed() {}
