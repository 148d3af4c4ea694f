package ast

import (
	"bridgeidl/internal/source"
	"bridgeidl/internal/target"
)

// Doc is the documentation attached to an element: the raw '#' lines.
type Doc []string

// Decl is `name = <body>`.
type Decl struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Targets  []TargetMarker
	Span     source.Span
	Body     Body
}

func (d *Decl) ItemSpan() source.Span { return d.Span }
func (*Decl) item()                   {}

// TargetMarker is a "+cpp" or "-j" annotation.
type TargetMarker struct {
	target.Marker
	Span source.Span
}

// Markers strips positions from the declaration's target markers.
func (d *Decl) Markers() []target.Marker {
	out := make([]target.Marker, 0, len(d.Targets))
	for _, m := range d.Targets {
		out = append(out, m.Marker)
	}
	return out
}

type DeclKind uint8

const (
	KindEnum DeclKind = iota + 1
	KindFlags
	KindRecord
	KindInterface
	KindFunction
	KindError
	KindConst
	KindExtern
)

var declKindNames = map[DeclKind]string{
	KindEnum:      "enum",
	KindFlags:     "flags",
	KindRecord:    "record",
	KindInterface: "interface",
	KindFunction:  "function",
	KindError:     "error",
	KindConst:     "const",
	KindExtern:    "extern",
}

func (k DeclKind) String() string {
	if n, ok := declKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Body is the kind-specific part of a declaration.
type Body interface {
	Kind() DeclKind
	body()
}

type EnumBody struct {
	Members []Enumerant
}

type Enumerant struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Value    *IntLit // nil when implicit
	Span     source.Span
}

type IntLit struct {
	Text  string
	Value int64
	Span  source.Span
}

type FlagsBody struct {
	Members []FlagMember
}

type FlagValueKind uint8

const (
	FlagImplicit FlagValueKind = iota
	FlagExplicit
	FlagAll
	FlagNone
)

type FlagMember struct {
	Name      string
	NameSpan  source.Span
	Doc       Doc
	ValueKind FlagValueKind
	// Value is the magnitude of an explicit value; Negative records a
	// leading minus.
	Value     uint64
	Negative  bool
	ValueSpan source.Span
	Span      source.Span
}

type RecordBody struct {
	Base     *TypeExpr
	Fields   []Field
	Deriving []Name
}

// Name is an identifier with its position.
type Name struct {
	Text string
	Span source.Span
}

// Field is `name: type`; used by records, parameters and error payloads.
type Field struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Type     *TypeExpr
	Span     source.Span
}

type InterfaceBody struct {
	Main       bool
	MainSpan   source.Span
	Ext        bool
	Methods    []Method
	Properties []Property
}

type Method struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Static   bool
	Const    bool
	Async    bool
	Sig      FuncSig
	Span     source.Span
}

type Property struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Async    bool
	Type     *TypeExpr
	Span     source.Span
}

// FuncSig is a parameter list with optional result and thrown domains.
type FuncSig struct {
	Params []Field
	Result *TypeExpr
	Throws []*TypeExpr
	Span   source.Span
}

type FunctionBody struct {
	Async bool
	Sig   FuncSig
}

type ErrorBody struct {
	Variants []ErrorVariant
}

type ErrorVariant struct {
	Name     string
	NameSpan source.Span
	Doc      Doc
	Fields   []Field
	Span     source.Span
}

// ConstBody keeps the initializer as source text plus the dotted names it
// mentions; evaluation happens after resolution.
type ConstBody struct {
	Type     *TypeExpr
	Expr     string
	ExprSpan source.Span
	Refs     []Ref
}

type Ref struct {
	Name     string // dotted, e.g. "colors.red" or ".ns.limit"
	Absolute bool
	Span     source.Span
}

// ExternBody is a forward declaration of a type provided by the registry.
type ExternBody struct{}

func (*EnumBody) Kind() DeclKind      { return KindEnum }
func (*FlagsBody) Kind() DeclKind     { return KindFlags }
func (*RecordBody) Kind() DeclKind    { return KindRecord }
func (*InterfaceBody) Kind() DeclKind { return KindInterface }
func (*FunctionBody) Kind() DeclKind  { return KindFunction }
func (*ErrorBody) Kind() DeclKind     { return KindError }
func (*ConstBody) Kind() DeclKind     { return KindConst }
func (*ExternBody) Kind() DeclKind    { return KindExtern }

func (*EnumBody) body()      {}
func (*FlagsBody) body()     {}
func (*RecordBody) body()    {}
func (*InterfaceBody) body() {}
func (*FunctionBody) body()  {}
func (*ErrorBody) body()     {}
func (*ConstBody) body()     {}
func (*ExternBody) body()    {}
