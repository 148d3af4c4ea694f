package ir

import (
	"bridgeidl/internal/ident"
	"bridgeidl/internal/target"
)

// ExportOptions selects the target and its naming styles.
type ExportOptions struct {
	Target target.Target
	Styles ident.Styles
}

// Document is the plain form of a Program for one target. It is what an
// external generate step consumes; it encodes to JSON and msgpack.
type Document struct {
	Target  string         `json:"target"`
	Modules []ModuleExport `json:"modules"`
	Decls   []DeclExport   `json:"decls"`
	Externs []ExternExport `json:"externs,omitempty"`
}

type ModuleExport struct {
	Path    string   `json:"path"`
	Decls   []string `json:"decls,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

type DeclExport struct {
	ID         uint32          `json:"id"`
	Kind       string          `json:"kind"`
	Name       string          `json:"name"`
	Ident      string          `json:"ident"`
	Qualified  string          `json:"qualified"`
	Namespace  []string        `json:"namespace,omitempty"`
	Doc        []string        `json:"doc,omitempty"`
	Deprecated string          `json:"deprecated,omitempty"`
	Anonymous  bool            `json:"anonymous,omitempty"`
	Members    []MemberExport  `json:"members,omitempty"`
	All        uint64          `json:"all,omitempty"`
	Base       *TypeExport     `json:"base,omitempty"`
	Fields     []FieldExport   `json:"fields,omitempty"`
	Deriving   []string        `json:"deriving,omitempty"`
	Main       bool            `json:"main,omitempty"`
	Ext        bool            `json:"ext,omitempty"`
	Methods    []MethodExport  `json:"methods,omitempty"`
	Properties []FieldExport   `json:"properties,omitempty"`
	Async      bool            `json:"async,omitempty"`
	Params     []FieldExport   `json:"params,omitempty"`
	Result     *TypeExport     `json:"result,omitempty"`
	Throws     []TypeExport    `json:"throws,omitempty"`
	Type       *TypeExport     `json:"type,omitempty"`
	Value      any             `json:"value,omitempty"`
	Variants   []VariantExport `json:"variants,omitempty"`
}

type MemberExport struct {
	Name  string `json:"name"`
	Ident string `json:"ident"`
	Value int64  `json:"value"`
	// Bits is the flags value; Special is "all" or "none" for those members.
	Bits    uint64   `json:"bits,omitempty"`
	Special string   `json:"special,omitempty"`
	Doc     []string `json:"doc,omitempty"`
}

type FieldExport struct {
	Name  string     `json:"name"`
	Ident string     `json:"ident"`
	Type  TypeExport `json:"type"`
	Async bool       `json:"async,omitempty"`
	Doc   []string   `json:"doc,omitempty"`
}

type MethodExport struct {
	Name   string        `json:"name"`
	Ident  string        `json:"ident"`
	Params []FieldExport `json:"params,omitempty"`
	Result *TypeExport   `json:"result,omitempty"`
	Async  bool          `json:"async,omitempty"`
	Static bool          `json:"static,omitempty"`
	Const  bool          `json:"const,omitempty"`
	Throws []TypeExport  `json:"throws,omitempty"`
	Doc    []string      `json:"doc,omitempty"`
}

type VariantExport struct {
	Name   string        `json:"name"`
	Ident  string        `json:"ident"`
	Fields []FieldExport `json:"fields,omitempty"`
}

// TypeExport is a resolved type reference. Native and Header carry the
// target mapping of extern types.
type TypeExport struct {
	Name     string       `json:"name"`
	Decl     uint32       `json:"decl,omitempty"`
	Extern   bool         `json:"extern,omitempty"`
	Native   string       `json:"native,omitempty"`
	Header   string       `json:"header,omitempty"`
	Args     []TypeExport `json:"args,omitempty"`
	Optional bool         `json:"optional,omitempty"`
}

type ExternExport struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Typename string `json:"typename,omitempty"`
	Header   string `json:"header,omitempty"`
	Builtin  bool   `json:"builtin,omitempty"`
}

type exporter struct {
	prog    *Program
	opts    ExportOptions
	externs map[ExternID]bool
}

// Export builds the document of p for one target. Declarations excluded
// from the target are left out.
func Export(p *Program, opts ExportOptions) Document {
	e := &exporter{prog: p, opts: opts, externs: make(map[ExternID]bool)}
	doc := Document{Target: opts.Target.String()}

	included := make(map[DeclID]bool)
	for _, id := range p.Ordered() {
		if p.Effective(id).Has(opts.Target) {
			included[id] = true
			doc.Decls = append(doc.Decls, e.decl(id))
		}
	}
	for _, id := range p.Decls.IDs() {
		if f, ok := p.Decls.Get(id).(*Function); ok && f.Anonymous() && p.Effective(id).Has(opts.Target) {
			doc.Decls = append(doc.Decls, e.decl(id))
		}
	}

	for _, m := range p.Modules {
		me := ModuleExport{Path: m.Path}
		for _, id := range m.Decls {
			if included[id] {
				me.Decls = append(me.Decls, p.Decls.Get(id).Head().QualifiedName())
			}
		}
		for _, imp := range m.Imports {
			me.Imports = append(me.Imports, imp.Path)
		}
		doc.Modules = append(doc.Modules, me)
	}

	for i := 1; i < len(p.Externs); i++ {
		id := ExternID(i)
		if !e.externs[id] {
			continue
		}
		ext := p.Externs[i]
		ee := ExternExport{Name: ext.QualifiedName(), Kind: ext.Kind.String(), Builtin: ext.Builtin}
		if m, ok := ext.Mappings[opts.Target]; ok {
			ee.Typename, ee.Header = m.Typename, m.Header
		}
		doc.Externs = append(doc.Externs, ee)
	}
	return doc
}

func (e *exporter) decl(id DeclID) DeclExport {
	d := e.prog.Decls.Get(id)
	h := d.Head()
	st := e.opts.Styles
	out := DeclExport{
		ID:         uint32(id),
		Kind:       d.Kind().String(),
		Name:       h.Name,
		Ident:      ident.Convert(h.Name, st.Type),
		Qualified:  h.QualifiedName(),
		Namespace:  h.Namespace,
		Doc:        h.Doc.Lines,
		Deprecated: deprecation(h.Doc),
	}
	switch d := d.(type) {
	case *Enum:
		for _, m := range d.Members {
			out.Members = append(out.Members, MemberExport{
				Name: m.Name, Ident: ident.Convert(m.Name, st.Enum), Value: m.Value, Doc: m.Doc.Lines,
			})
		}
	case *Flags:
		out.All = d.All()
		for _, m := range d.Members {
			me := MemberExport{Name: m.Name, Ident: ident.Convert(m.Name, st.Enum), Bits: m.Value, Doc: m.Doc.Lines}
			switch m.Special {
			case FlagAll:
				me.Special = "all"
			case FlagNone:
				me.Special = "none"
			}
			out.Members = append(out.Members, me)
		}
	case *Record:
		out.Base = e.typeOpt(d.Base)
		out.Fields = e.fields(d.Fields, st.Field)
		out.Deriving = d.Deriving.Names()
	case *Interface:
		out.Main, out.Ext = d.Main, d.Ext
		for _, m := range d.Methods {
			out.Methods = append(out.Methods, MethodExport{
				Name:   m.Name,
				Ident:  ident.Convert(m.Name, st.Method),
				Params: e.fields(m.Params, st.Param),
				Result: e.typeOpt(m.Result),
				Async:  m.Async,
				Static: m.Static,
				Const:  m.Const,
				Throws: e.types(m.Throws),
				Doc:    m.Doc.Lines,
			})
		}
		for _, p := range d.Properties {
			out.Properties = append(out.Properties, FieldExport{
				Name: p.Name, Ident: ident.Convert(p.Name, st.Property), Type: e.typ(p.Type), Async: p.Async, Doc: p.Doc.Lines,
			})
		}
	case *Function:
		out.Anonymous = d.Anonymous()
		out.Async = d.Async
		out.Params = e.fields(d.Params, st.Param)
		out.Result = e.typeOpt(d.Result)
		out.Throws = e.types(d.Throws)
	case *Const:
		out.Ident = ident.Convert(h.Name, st.Const)
		out.Type = e.typeOpt(d.Type)
		out.Value = d.Value
	case *ErrorDomain:
		for _, v := range d.Variants {
			out.Variants = append(out.Variants, VariantExport{
				Name: v.Name, Ident: ident.Convert(v.Name, st.Enum), Fields: e.fields(v.Fields, st.Field),
			})
		}
	}
	return out
}

func deprecation(d Doc) string {
	if !d.Deprecated {
		return ""
	}
	if d.DeprecatedNote != "" {
		return d.DeprecatedNote
	}
	return "deprecated"
}

func (e *exporter) fields(fs []Field, style ident.Style) []FieldExport {
	if len(fs) == 0 {
		return nil
	}
	out := make([]FieldExport, 0, len(fs))
	for _, f := range fs {
		out = append(out, FieldExport{Name: f.Name, Ident: ident.Convert(f.Name, style), Type: e.typ(f.Type), Doc: f.Doc.Lines})
	}
	return out
}

func (e *exporter) types(ts []TypeRef) []TypeExport {
	if len(ts) == 0 {
		return nil
	}
	out := make([]TypeExport, 0, len(ts))
	for _, t := range ts {
		out = append(out, e.typ(t))
	}
	return out
}

func (e *exporter) typeOpt(t TypeRef) *TypeExport {
	if t == nil {
		return nil
	}
	te := e.typ(t)
	return &te
}

func (e *exporter) typ(t TypeRef) TypeExport {
	r, ok := t.(*Resolved)
	if !ok {
		// Export runs on resolved programs only; keep the spelling otherwise.
		return TypeExport{Name: t.String(), Optional: t.IsOptional()}
	}
	out := TypeExport{
		Name:     r.Name,
		Decl:     uint32(r.Decl),
		Optional: r.Optional,
		Args:     e.types(r.Args),
	}
	if r.IsExtern() {
		out.Extern = true
		e.externs[r.Extern] = true
		if ext := e.prog.Extern(r.Extern); ext != nil {
			if m, ok := ext.Mappings[e.opts.Target]; ok {
				out.Native, out.Header = m.Typename, m.Header
			}
		}
	}
	return out
}
