// Package builder turns the syntax tree of one module into typed
// declarations. It registers names but never resolves type references.
package builder

import (
	"fmt"
	"math/bits"
	"strings"

	"bridgeidl/internal/ast"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/symbols"
	"bridgeidl/internal/target"
)

// Options configures a build.
type Options struct {
	// DefaultDeriving is added to records that declare no deriving clause.
	DefaultDeriving ir.Deriving
	Reporter        diag.Reporter
}

// Result is the module built from one file plus its local symbol table.
type Result struct {
	Module *ir.Module
	Table  *symbols.Table
}

type builder struct {
	arena *ir.Arena
	opts  Options
	mod   *ir.Module
	table *symbols.Table
}

// Build converts f into declarations stored in arena. Names declared twice
// within f are reported as DuplicateSymbol; the second declaration is dropped.
func Build(f *ast.File, id ir.ModuleID, arena *ir.Arena, opts Options) Result {
	b := &builder{
		arena: arena,
		opts:  opts,
		mod:   &ir.Module{ID: id, Path: f.Path, File: f.FileID},
		table: symbols.NewTable(uint(len(f.Items))),
	}
	for _, d := range f.Directives {
		dir := ir.Directive{Path: d.Path, Span: d.PathSpan}
		switch d.Kind {
		case ast.DirImport:
			b.mod.Imports = append(b.mod.Imports, dir)
		case ast.DirExtern:
			b.mod.ExternFiles = append(b.mod.ExternFiles, dir)
		}
	}
	f.Walk(b.decl)
	return Result{Module: b.mod, Table: b.table}
}

func (b *builder) header(ns []string, d *ast.Decl) ir.Header {
	return ir.Header{
		Name:      d.Name,
		Namespace: append([]string(nil), ns...),
		Doc:       ir.ParseDoc(d.Doc),
		Targets:   d.Markers(),
		Span:      d.Span,
		NameSpan:  d.NameSpan,
		Module:    b.mod.ID,
	}
}

func (b *builder) decl(ns []string, d *ast.Decl) {
	h := b.header(ns, d)
	if _, ok := d.Body.(*ast.ExternBody); ok {
		b.mod.Externs = append(b.mod.Externs, ir.ForwardExtern{
			Name:      h.Name,
			Namespace: h.Namespace,
			Doc:       h.Doc,
			Targets:   h.Targets,
			Span:      d.Span,
		})
		return
	}
	qn := h.QualifiedName()
	if prev, exists := b.table.Lookup(qn); exists {
		diag.ReportError(b.opts.Reporter, diag.SemaDuplicateSymbol, d.NameSpan,
			fmt.Sprintf("%s is already declared in this module", qn)).
			WithNote(prev.Span, "first declared here").
			Emit()
		return
	}

	var (
		decl ir.Decl
		fill func(owner ir.DeclID)
	)
	switch body := d.Body.(type) {
	case *ast.EnumBody:
		decl = &ir.Enum{Header: h, Members: b.enumerants(body)}
	case *ast.FlagsBody:
		decl = &ir.Flags{Header: h, Members: b.flags(body)}
	case *ast.RecordBody:
		rec := &ir.Record{Header: h, Deriving: b.deriving(body)}
		decl = rec
		fill = func(owner ir.DeclID) {
			scope := lifter{b: b, owner: owner, scope: h.Namespace, prefix: h.Name}
			if body.Base != nil {
				rec.Base = scope.typeRef(body.Base, "base")
			}
			rec.Fields = scope.fields(body.Fields, "")
		}
	case *ast.InterfaceBody:
		iface := &ir.Interface{Header: h, Main: body.Main, MainSpan: body.MainSpan, Ext: body.Ext}
		implementers(iface, h.Targets)
		decl = iface
		fill = func(owner ir.DeclID) {
			scope := lifter{b: b, owner: owner, scope: h.Namespace, prefix: h.Name}
			for _, m := range body.Methods {
				iface.Methods = append(iface.Methods, scope.method(m))
			}
			for _, p := range body.Properties {
				iface.Properties = append(iface.Properties, ir.Property{
					Name:  p.Name,
					Type:  scope.typeRef(p.Type, p.Name),
					Async: p.Async,
					Doc:   ir.ParseDoc(p.Doc),
					Span:  p.Span,
				})
			}
		}
	case *ast.FunctionBody:
		fn := &ir.Function{Header: h, Async: body.Async}
		decl = fn
		fill = func(owner ir.DeclID) {
			scope := lifter{b: b, owner: owner, scope: h.Namespace, prefix: h.Name}
			fn.Params, fn.Result, fn.Throws = scope.signature(&body.Sig, "")
		}
	case *ast.ErrorBody:
		dom := &ir.ErrorDomain{Header: h}
		decl = dom
		fill = func(owner ir.DeclID) {
			scope := lifter{b: b, owner: owner, scope: h.Namespace, prefix: h.Name}
			for _, v := range body.Variants {
				dom.Variants = append(dom.Variants, ir.ErrorVariant{
					Name:   v.Name,
					Fields: scope.fields(v.Fields, v.Name),
					Doc:    ir.ParseDoc(v.Doc),
					Span:   v.Span,
				})
			}
		}
	case *ast.ConstBody:
		c := &ir.Const{Header: h, Expr: body.Expr, ExprSpan: body.ExprSpan}
		for _, r := range body.Refs {
			c.Refs = append(c.Refs, ir.ConstRef{
				Name:     strings.Split(strings.TrimPrefix(r.Name, "."), "."),
				Absolute: r.Absolute,
				Span:     r.Span,
			})
		}
		decl = c
		fill = func(owner ir.DeclID) {
			scope := lifter{b: b, owner: owner, scope: h.Namespace, prefix: h.Name}
			c.Type = scope.typeRef(body.Type, "")
		}
	default:
		return
	}

	id := b.arena.Add(decl)
	if fill != nil {
		fill(id)
	}
	b.table.Insert(symbols.Entry{ID: id, Name: qn, Kind: decl.Kind(), Span: d.NameSpan, Module: b.mod.ID})
	b.mod.Decls = append(b.mod.Decls, id)
}

func (b *builder) enumerants(body *ast.EnumBody) []ir.Enumerant {
	out := make([]ir.Enumerant, 0, len(body.Members))
	next := int64(0)
	for _, m := range body.Members {
		e := ir.Enumerant{Name: m.Name, Value: next, Doc: ir.ParseDoc(m.Doc), Span: m.Span}
		if m.Value != nil {
			e.Value = m.Value.Value
			e.Explicit = true
		}
		next = e.Value + 1
		out = append(out, e)
	}
	return out
}

// flags assigns implicit members the lowest power of two no other plain
// member uses.
func (b *builder) flags(body *ast.FlagsBody) []ir.Flag {
	var used uint64
	for _, m := range body.Members {
		if m.ValueKind == ast.FlagExplicit && !m.Negative {
			used |= m.Value
		}
	}
	out := make([]ir.Flag, 0, len(body.Members))
	for _, m := range body.Members {
		f := ir.Flag{Name: m.Name, Doc: ir.ParseDoc(m.Doc), Span: m.Span}
		switch m.ValueKind {
		case ast.FlagAll:
			f.Special = ir.FlagAll
		case ast.FlagNone:
			f.Special = ir.FlagNone
		case ast.FlagExplicit:
			f.Explicit = true
			if m.Negative && m.Value != 0 {
				diag.ReportError(b.opts.Reporter, diag.SemaInvalidFlagsValue, m.ValueSpan,
					fmt.Sprintf("flag %s has negative value -%d", m.Name, m.Value)).Emit()
				break
			}
			f.Value = m.Value
		default:
			free := ^used
			if free == 0 {
				diag.ReportError(b.opts.Reporter, diag.SemaInvalidFlagsValue, m.NameSpan,
					fmt.Sprintf("no bit left for flag %s", m.Name)).Emit()
				break
			}
			f.Value = uint64(1) << bits.TrailingZeros64(free)
			used |= f.Value
		}
		out = append(out, f)
	}
	// Special members take their value once every plain bit is known.
	for i := range out {
		if out[i].Special == ir.FlagAll {
			out[i].Value = used
		}
	}
	return out
}

func (b *builder) deriving(body *ast.RecordBody) ir.Deriving {
	d := ir.DeriveEq | ir.DeriveStr
	if len(body.Deriving) == 0 {
		return d | b.opts.DefaultDeriving
	}
	for _, n := range body.Deriving {
		bit, ok := ir.ParseDeriving(n.Text)
		if !ok {
			diag.ReportError(b.opts.Reporter, diag.SemaInvalidDeriving, n.Span,
				fmt.Sprintf("unknown deriving trait %q", n.Text)).Emit()
			continue
		}
		d |= bit
	}
	return d
}

// implementers derives Main and Ext from the inclusion markers: "+cpp" is
// implemented by the core, any other included target by the host. An
// interface without keyword or marker is host-implemented.
func implementers(i *ir.Interface, markers []target.Marker) {
	for _, m := range markers {
		if !m.Include {
			continue
		}
		if m.Target.Host() {
			i.Ext = true
		} else {
			i.Main = true
		}
	}
	if !i.Main && !i.Ext {
		i.Ext = true
	}
}
