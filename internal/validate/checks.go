package validate

import (
	"fmt"
	"slices"
	"strings"

	"bridgeidl/internal/contract"
	"bridgeidl/internal/diag"
	"bridgeidl/internal/externs"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/source"
)

// binding is the implementation of one rule. Exactly one of program and decl
// is set: program runs once, decl runs for every declaration.
type binding struct {
	program func(*checker)
	decl    func(*checker, ir.DeclID, ir.Decl)
}

var bindings = map[contract.RuleID]binding{
	contract.FlagsValue:           {decl: checkFlagsValue},
	contract.FlagsUnique:          {decl: checkFlagsUnique},
	contract.FlagsMembers:         {decl: checkFlagsMembers},
	contract.EnumMembers:          {decl: checkEnumMembers},
	contract.RecordCycle:          {program: checkRecordCycles},
	contract.RecordBase:           {decl: checkRecordBase},
	contract.RecordDeriving:       {decl: checkRecordDeriving},
	contract.RecordFieldType:      {decl: checkRecordFieldType},
	contract.RecordMembers:        {decl: checkRecordMembers},
	contract.InterfaceMain:        {decl: checkInterfaceMain},
	contract.InterfaceStatic:      {decl: checkInterfaceStatic},
	contract.InterfaceStaticConst: {decl: checkInterfaceStaticConst},
	contract.InterfaceCallback:    {decl: checkInterfaceCallback},
	contract.InterfaceMembers:     {decl: checkInterfaceMembers},
	contract.AsyncConst:           {decl: checkAsyncConst},
	contract.AsyncPlacement:       {decl: checkAsyncPlacement},
	contract.AsyncResult:          {decl: checkAsyncResult},
	contract.ErrorVariants:        {decl: checkErrorVariants},
	contract.ErrorMembers:         {decl: checkErrorMembers},
	contract.ErrorPayload:         {decl: checkErrorPayload},
	contract.ErrorThrows:          {decl: checkErrorThrows},
	contract.ErrorValueUse:        {decl: checkErrorValueUse},
	contract.CollectionKey:        {decl: checkCollectionKey},
	contract.ConstType:            {decl: checkConstType},
	contract.ConstValue:           {decl: checkConstValue},
	contract.ExternMapping:        {decl: checkExternMapping},
}

// members reports the second and later use of a name within one scope.
type members struct {
	c    *checker
	what string
	seen map[string]source.Span
}

func (c *checker) members(what string) *members {
	return &members{c: c, what: what, seen: make(map[string]source.Span)}
}

func (m *members) add(name string, span source.Span) {
	if first, ok := m.seen[name]; ok {
		m.c.report(span, fmt.Sprintf("%s %s is already declared", m.what, name)).
			WithNote(first, "first declared here").
			Emit()
		return
	}
	m.seen[name] = span
}

func checkFlagsValue(c *checker, _ ir.DeclID, d ir.Decl) {
	f, ok := d.(*ir.Flags)
	if !ok {
		return
	}
	for _, m := range f.Members {
		if m.Special != ir.FlagPlain || !m.Explicit {
			continue
		}
		if m.Value&(m.Value-1) != 0 {
			c.report(m.Span, fmt.Sprintf("flags member %s.%s = %d is not a power of two", f.Name, m.Name, m.Value)).Emit()
		}
	}
}

func checkFlagsUnique(c *checker, _ ir.DeclID, d ir.Decl) {
	f, ok := d.(*ir.Flags)
	if !ok {
		return
	}
	seen := make(map[uint64]ir.Flag)
	for _, m := range f.Members {
		if m.Special != ir.FlagPlain || m.Value == 0 {
			continue
		}
		if first, dup := seen[m.Value]; dup {
			c.report(m.Span, fmt.Sprintf("flags member %s.%s reuses the value of %s", f.Name, m.Name, first.Name)).
				WithNote(first.Span, first.Name+" declared here").
				Emit()
			continue
		}
		seen[m.Value] = m
	}
}

func checkFlagsMembers(c *checker, _ ir.DeclID, d ir.Decl) {
	f, ok := d.(*ir.Flags)
	if !ok {
		return
	}
	names := c.members("flags member")
	for _, m := range f.Members {
		names.add(m.Name, m.Span)
	}
}

func checkEnumMembers(c *checker, _ ir.DeclID, d ir.Decl) {
	e, ok := d.(*ir.Enum)
	if !ok {
		return
	}
	names := c.members("enum member")
	for _, m := range e.Members {
		names.add(m.Name, m.Span)
	}
}

// checkRecordCycles finds strongly connected components of the graph of
// records holding each other by value. Optional fields and collections break
// an edge. One diagnostic is reported per component, at its first record.
func checkRecordCycles(c *checker) {
	g := &recordGraph{c: c, index: make(map[ir.DeclID]int), low: make(map[ir.DeclID]int), on: make(map[ir.DeclID]bool)}
	for _, id := range c.prog.Decls.IDs() {
		if _, ok := c.prog.Decl(id).(*ir.Record); !ok {
			continue
		}
		if _, visited := g.index[id]; !visited {
			g.connect(id)
		}
	}
	for _, scc := range g.components {
		slices.Sort(scc)
		if len(scc) == 1 && !slices.Contains(g.edges(scc[0]), scc[0]) {
			continue
		}
		first := c.prog.Decl(scc[0]).(*ir.Record)
		names := make([]string, 0, len(scc)+1)
		for _, id := range scc {
			names = append(names, c.prog.Decl(id).Head().QualifiedName())
		}
		names = append(names, names[0])
		b := c.report(first.NameSpan, fmt.Sprintf("record %s contains itself without indirection: %s",
			first.QualifiedName(), strings.Join(names, " -> ")))
		for _, id := range scc[1:] {
			r := c.prog.Decl(id).(*ir.Record)
			b.WithNote(r.NameSpan, r.QualifiedName()+" is part of the cycle")
		}
		b.Emit()
	}
}

type recordGraph struct {
	c          *checker
	next       int
	index      map[ir.DeclID]int
	low        map[ir.DeclID]int
	on         map[ir.DeclID]bool
	stack      []ir.DeclID
	components [][]ir.DeclID
}

// edges are the records id holds by value, including inherited fields.
func (g *recordGraph) edges(id ir.DeclID) []ir.DeclID {
	r := g.c.prog.Decl(id).(*ir.Record)
	var out []ir.DeclID
	for _, f := range g.c.allFields(r) {
		if f.Type == nil || f.Type.IsOptional() {
			continue
		}
		res := ir.AsResolved(f.Type)
		if res == nil || !res.Decl.IsValid() {
			continue
		}
		if _, ok := g.c.prog.Decl(res.Decl).(*ir.Record); ok {
			out = append(out, res.Decl)
		}
	}
	return out
}

func (g *recordGraph) connect(id ir.DeclID) {
	g.index[id] = g.next
	g.low[id] = g.next
	g.next++
	g.stack = append(g.stack, id)
	g.on[id] = true

	for _, w := range g.edges(id) {
		if _, visited := g.index[w]; !visited {
			g.connect(w)
			g.low[id] = min(g.low[id], g.low[w])
		} else if g.on[w] {
			g.low[id] = min(g.low[id], g.index[w])
		}
	}

	if g.low[id] != g.index[id] {
		return
	}
	var scc []ir.DeclID
	for {
		n := len(g.stack) - 1
		w := g.stack[n]
		g.stack = g.stack[:n]
		g.on[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	g.components = append(g.components, scc)
}

// checkRecordBase reports a cyclic base chain once, at the member of the
// cycle with the lowest ID.
func checkRecordBase(c *checker, id ir.DeclID, d ir.Decl) {
	r, ok := d.(*ir.Record)
	if !ok || r.Base == nil {
		return
	}
	ids := []ir.DeclID{id}
	seen := map[ir.DeclID]bool{id: true}
	for cur := r; cur.Base != nil; {
		res := ir.AsResolved(cur.Base)
		if res == nil || !res.Decl.IsValid() {
			return
		}
		next, ok := c.prog.Decl(res.Decl).(*ir.Record)
		if !ok {
			return
		}
		if seen[res.Decl] {
			if res.Decl != id || slices.Min(ids) != id {
				return
			}
			names := make([]string, 0, len(ids)+1)
			for _, x := range ids {
				names = append(names, c.prog.Decl(x).Head().QualifiedName())
			}
			names = append(names, r.QualifiedName())
			c.report(r.Base.RefSpan(), "cyclic base chain: "+strings.Join(names, " -> ")).Emit()
			return
		}
		seen[res.Decl] = true
		ids = append(ids, res.Decl)
		cur = next
	}
}

func checkRecordDeriving(c *checker, _ ir.DeclID, d ir.Decl) {
	r, ok := d.(*ir.Record)
	if !ok || !r.Deriving.Has(ir.DeriveOrd) {
		return
	}
	for _, f := range r.Fields {
		if f.Type == nil {
			continue
		}
		var why string
		switch {
		case f.Type.IsOptional():
			why = "optional fields are not ordered"
		case c.isCollection(f.Type):
			why = "collections are not ordered"
		default:
			if e := c.externOf(f.Type); externs.IsPrimitive(e) && e.Name == "bool" {
				why = "bool is not ordered"
				break
			}
			switch fd := c.declOf(f.Type).(type) {
			case *ir.Interface:
				why = "interfaces are not ordered"
			case *ir.Record:
				if !fd.Deriving.Has(ir.DeriveOrd) {
					why = fmt.Sprintf("record %s does not derive ord", fd.QualifiedName())
				}
			}
		}
		if why != "" {
			c.report(f.Span, fmt.Sprintf("record %s derives ord but field %s has type %s: %s",
				r.Name, f.Name, f.Type, why)).Emit()
		}
	}
}

func checkRecordFieldType(c *checker, _ ir.DeclID, d ir.Decl) {
	r, ok := d.(*ir.Record)
	if !ok {
		return
	}
	for _, f := range r.Fields {
		if bad := findType(f.Type, c.notValue); bad != nil {
			c.report(bad.RefSpan(), fmt.Sprintf("field %s.%s cannot hold %s %s",
				r.Name, f.Name, c.declKind(bad), bad)).Emit()
		}
	}
}

func checkRecordMembers(c *checker, _ ir.DeclID, d ir.Decl) {
	r, ok := d.(*ir.Record)
	if !ok {
		return
	}
	names := c.members("field")
	for _, f := range c.allFields(r) {
		names.add(f.Name, f.Span)
	}
}

func checkInterfaceMain(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok || i.MainSpan.Empty() {
		return
	}
	for _, m := range i.Targets {
		if m.Include && m.Target.Host() {
			c.report(i.MainSpan, fmt.Sprintf("a 'main' interface can only be implemented in C++, but %s includes %s",
				i.QualifiedName(), m.Target)).Emit()
			return
		}
	}
}

func checkInterfaceStatic(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok || i.Main {
		return
	}
	for _, m := range i.Methods {
		if m.Static {
			c.report(m.Span, fmt.Sprintf("static method %s.%s requires a main interface", i.Name, m.Name)).Emit()
		}
	}
}

func checkInterfaceStaticConst(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok {
		return
	}
	for _, m := range i.Methods {
		if m.Static && m.Const {
			c.report(m.Span, fmt.Sprintf("method %s.%s cannot be both static and const", i.Name, m.Name)).Emit()
		}
	}
}

func checkInterfaceCallback(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok || !i.Callback() {
		return
	}
	for _, m := range i.Methods {
		if !m.Static {
			return
		}
	}
	c.report(i.NameSpan, fmt.Sprintf("callback interface %s declares no instance method", i.QualifiedName())).Emit()
}

func checkInterfaceMembers(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok {
		return
	}
	names := c.members("member")
	for _, m := range i.Methods {
		names.add(m.Name, m.Span)
	}
	for _, p := range i.Properties {
		names.add(p.Name, p.Span)
	}
}

func checkAsyncConst(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok {
		return
	}
	for _, m := range i.Methods {
		if m.Async && m.Const {
			c.report(m.Span, fmt.Sprintf("async method %s.%s cannot be const", i.Name, m.Name)).Emit()
		}
	}
}

func checkAsyncPlacement(c *checker, _ ir.DeclID, d ir.Decl) {
	switch d := d.(type) {
	case *ir.Function:
		if d.Async {
			c.report(d.NameSpan, fmt.Sprintf("function %s cannot be async; only interface methods can", d.Name)).Emit()
		}
	case *ir.Interface:
		for _, p := range d.Properties {
			if p.Async {
				c.report(p.Span, fmt.Sprintf("property %s.%s cannot be async", d.Name, p.Name)).Emit()
			}
		}
	}
}

func checkAsyncResult(c *checker, _ ir.DeclID, d ir.Decl) {
	i, ok := d.(*ir.Interface)
	if !ok {
		return
	}
	for _, m := range i.Methods {
		if !m.Async || m.Result == nil {
			continue
		}
		if fn, ok := c.declOf(m.Result).(*ir.Function); ok && fn.Anonymous() {
			c.report(m.Result.RefSpan(), fmt.Sprintf("async method %s.%s cannot return an inline function", i.Name, m.Name)).Emit()
		}
	}
}

func checkErrorVariants(c *checker, _ ir.DeclID, d ir.Decl) {
	e, ok := d.(*ir.ErrorDomain)
	if ok && len(e.Variants) == 0 {
		c.report(e.NameSpan, fmt.Sprintf("error domain %s declares no variant", e.QualifiedName())).Emit()
	}
}

func checkErrorMembers(c *checker, _ ir.DeclID, d ir.Decl) {
	e, ok := d.(*ir.ErrorDomain)
	if !ok {
		return
	}
	variants := c.members("variant")
	for _, v := range e.Variants {
		variants.add(v.Name, v.Span)
		fields := c.members("payload field")
		for _, f := range v.Fields {
			fields.add(f.Name, f.Span)
		}
	}
}

func checkErrorPayload(c *checker, _ ir.DeclID, d ir.Decl) {
	e, ok := d.(*ir.ErrorDomain)
	if !ok {
		return
	}
	for _, v := range e.Variants {
		for _, f := range v.Fields {
			if bad := findType(f.Type, c.notValue); bad != nil {
				c.report(bad.RefSpan(), fmt.Sprintf("payload field %s.%s.%s cannot hold %s %s",
					e.Name, v.Name, f.Name, c.declKind(bad), bad)).Emit()
			}
		}
	}
}

func checkErrorThrows(c *checker, _ ir.DeclID, d ir.Decl) {
	check := func(throws []ir.TypeRef) {
		for _, t := range throws {
			if _, unresolved := t.(*ir.Unresolved); unresolved {
				continue
			}
			if c.declKind(t) != ir.KindErrorDomain {
				c.report(t.RefSpan(), fmt.Sprintf("%s is not an error domain and cannot be thrown", t)).Emit()
			}
		}
	}
	switch d := d.(type) {
	case *ir.Interface:
		for _, m := range d.Methods {
			check(m.Throws)
		}
	case *ir.Function:
		check(d.Throws)
	}
}

func checkErrorValueUse(c *checker, _ ir.DeclID, d ir.Decl) {
	isError := func(t ir.TypeRef) bool { return c.declKind(t) == ir.KindErrorDomain }
	check := func(t ir.TypeRef, where string) {
		if bad := findType(t, isError); bad != nil {
			c.report(bad.RefSpan(), fmt.Sprintf("error domain %s cannot be used as %s; throw it instead", bad, where)).Emit()
		}
	}
	params := func(fs []ir.Field) {
		for _, f := range fs {
			check(f.Type, "parameter "+f.Name)
		}
	}
	switch d := d.(type) {
	case *ir.Interface:
		for _, m := range d.Methods {
			params(m.Params)
			check(m.Result, "the result of "+m.Name)
		}
		for _, p := range d.Properties {
			check(p.Type, "property "+p.Name)
		}
	case *ir.Function:
		params(d.Params)
		check(d.Result, "a result")
	}
}

func checkCollectionKey(c *checker, _ ir.DeclID, d ir.Decl) {
	for _, top := range refs(d) {
		eachType(top, func(t ir.TypeRef) bool {
			e := c.externOf(t)
			if e == nil {
				return true
			}
			var what string
			args := ir.AsResolved(t).Args
			switch e.Collection() {
			case ir.Set:
				what = "set element"
			case ir.Map:
				what = "map key"
			default:
				return true
			}
			if len(args) == 0 {
				return true
			}
			key := args[0]
			var why string
			switch {
			case key.IsOptional():
				why = "is optional"
			case c.declKind(key) == ir.KindFunction:
				why = "is a function"
			case c.isCollection(key):
				why = "is a collection"
			}
			if why != "" {
				c.report(key.RefSpan(), fmt.Sprintf("%s type %s %s", what, key, why)).Emit()
			}
			return true
		})
	}
}

func constScalar(e *ir.ExternType) bool {
	if !externs.IsPrimitive(e) {
		return false
	}
	switch e.Name {
	case "binary", "date":
		return false
	}
	return true
}

func checkConstType(c *checker, _ ir.DeclID, d ir.Decl) {
	k, ok := d.(*ir.Const)
	if !ok || k.Type == nil {
		return
	}
	if _, unresolved := k.Type.(*ir.Unresolved); unresolved {
		return
	}
	if k.Type.IsOptional() || !constScalar(c.externOf(k.Type)) {
		c.report(k.Type.RefSpan(), fmt.Sprintf("constant %s has type %s; constants are bool, integer, float or string",
			k.Name, k.Type)).Emit()
	}
}

func checkConstValue(c *checker, _ ir.DeclID, d ir.Decl) {
	k, ok := d.(*ir.Const)
	if !ok || k.Value == nil || k.Type == nil || k.Type.IsOptional() {
		return
	}
	e := c.externOf(k.Type)
	if !constScalar(e) {
		return
	}
	var bad string
	switch e.Name {
	case "bool":
		if _, ok := k.Value.(bool); !ok {
			bad = "is not a bool"
		}
	case "string":
		if _, ok := k.Value.(string); !ok {
			bad = "is not a string"
		}
	case "f32", "f64":
		switch k.Value.(type) {
		case float64, int64:
		default:
			bad = "is not a number"
		}
	default:
		v, ok := k.Value.(int64)
		if !ok {
			bad = "is not an integer"
			break
		}
		if lo, hi, _ := externs.IntRange(e.Name); v < lo || v > hi {
			bad = fmt.Sprintf("is out of range [%d, %d]", lo, hi)
		}
	}
	if bad != "" {
		c.report(k.ExprSpan, fmt.Sprintf("value %v of constant %s %s for %s", k.Value, k.Name, bad, e.Name)).Emit()
	}
}

// checkExternMapping records a fatal failure for the first extern type d
// uses that lacks a mapping for a target d is generated for.
func checkExternMapping(c *checker, id ir.DeclID, d ir.Decl) {
	targets := c.prog.Effective(id).Slice()
	if len(targets) == 0 {
		return
	}
	for _, top := range refs(d) {
		var found *fatalError
		eachType(top, func(t ir.TypeRef) bool {
			if found != nil {
				return false
			}
			e := c.externOf(t)
			if e == nil {
				return true
			}
			for _, tgt := range targets {
				if e.MappedFor(tgt) {
					continue
				}
				msg := fmt.Sprintf("extern type %s used by %s has no mapping for target %s",
					e.QualifiedName(), d.Head().QualifiedName(), tgt)
				found = &fatalError{decl: id, span: t.RefSpan(), err: &failure.ConfigurationError{
					Code:   diag.SemaMissingExternalMapping,
					Target: tgt.String(),
					Type:   e.QualifiedName(),
					Msg:    msg,
				}}
				return false
			}
			return true
		})
		if found != nil {
			c.fatal = append(c.fatal, found)
			return
		}
	}
}
