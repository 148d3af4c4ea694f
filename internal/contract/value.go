package contract

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"bridgeidl/internal/externs"
	"bridgeidl/internal/ir"
)

// Record is the Go form of a record value keyed by field name. Absent
// optional fields have no key.
type Record map[string]any

// codec converts between Go values and the wire form. Go forms:
//
//	bool, i8..i64, f32/f64, string  bool, int64, float64, string
//	binary, date                    []byte, time.Time
//	enum                            member name
//	flags                           FlagSet
//	list, set                       []any
//	map                             map[any]any
//	extern                          passed through unchanged
type codec struct {
	prog *ir.Program
}

const maxBaseDepth = 64

// recordFields lists the fields of rec with inherited fields first.
func (c codec) recordFields(rec *ir.Record) ([]ir.Field, error) {
	var chain []*ir.Record
	for cur := rec; cur != nil; {
		if len(chain) == maxBaseDepth {
			return nil, fmt.Errorf("%s: base chain too deep", rec.QualifiedName())
		}
		chain = append(chain, cur)
		base, ok := cur.Base.(*ir.Resolved)
		if !ok {
			break
		}
		cur, _ = c.prog.Decl(base.Decl).(*ir.Record)
	}
	var out []ir.Field
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Fields...)
	}
	return out, nil
}

func (c codec) recordToWire(rec *ir.Record, v Record, path string) ([]any, error) {
	fields, err := c.recordFields(rec)
	if err != nil {
		return nil, err
	}
	for name := range v {
		if !slices.ContainsFunc(fields, func(f ir.Field) bool { return f.Name == name }) {
			return nil, fmt.Errorf("%s: %s has no field %q", path, rec.QualifiedName(), name)
		}
	}
	out := make([]any, len(fields))
	for i, f := range fields {
		w, err := c.toWire(f.Type, v[f.Name], path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (c codec) recordFromWire(rec *ir.Record, w any, path string) (Record, error) {
	fields, err := c.recordFields(rec)
	if err != nil {
		return nil, err
	}
	slots, ok := w.([]any)
	if !ok || len(slots) != len(fields) {
		return nil, fmt.Errorf("%s: expected %d record slots", path, len(fields))
	}
	out := make(Record, len(fields))
	for i, f := range fields {
		v, err := c.fromWire(f.Type, slots[i], path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[f.Name] = v
		}
	}
	return out, nil
}

func (c codec) toWire(t ir.TypeRef, v any, path string) (any, error) {
	if v == nil {
		if t != nil && t.IsOptional() {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: missing value for %s", path, typeName(t))
	}
	r, ok := t.(*ir.Resolved)
	if !ok {
		return nil, fmt.Errorf("%s: type %s is not resolved", path, typeName(t))
	}
	if r.IsExtern() {
		return c.externToWire(r, c.prog.Extern(r.Extern), v, path)
	}
	switch d := c.prog.Decl(r.Decl).(type) {
	case *ir.Enum:
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: enum %s wants a member name, got %T", path, r.Name, v)
		}
		for _, m := range d.Members {
			if m.Name == name {
				return m.Value, nil
			}
		}
		return nil, fmt.Errorf("%s: %s has no member %q", path, r.Name, name)
	case *ir.Flags:
		s, ok := v.(FlagSet)
		if !ok {
			return nil, fmt.Errorf("%s: flags %s wants a FlagSet, got %T", path, r.Name, v)
		}
		checked, err := FlagsFromBits(d, s.bits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return checked.bits, nil
	case *ir.Record:
		rv, ok := asRecord(v)
		if !ok {
			return nil, fmt.Errorf("%s: record %s wants a Record, got %T", path, r.Name, v)
		}
		return c.recordToWire(d, rv, path)
	}
	return nil, fmt.Errorf("%s: %s cannot be marshaled by value", path, r.Name)
}

func (c codec) fromWire(t ir.TypeRef, w any, path string) (any, error) {
	if w == nil {
		if t != nil && t.IsOptional() {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: missing value for %s", path, typeName(t))
	}
	r, ok := t.(*ir.Resolved)
	if !ok {
		return nil, fmt.Errorf("%s: type %s is not resolved", path, typeName(t))
	}
	if r.IsExtern() {
		return c.externFromWire(r, c.prog.Extern(r.Extern), w, path)
	}
	switch d := c.prog.Decl(r.Decl).(type) {
	case *ir.Enum:
		n, err := toInt64(w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, m := range d.Members {
			if m.Value == n {
				return m.Name, nil
			}
		}
		return nil, fmt.Errorf("%s: %s has no member with value %d", path, r.Name, n)
	case *ir.Flags:
		n, err := toUint64(w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s, err := FlagsFromBits(d, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	case *ir.Record:
		return c.recordFromWire(d, w, path)
	}
	return nil, fmt.Errorf("%s: %s cannot be marshaled by value", path, r.Name)
}

func (c codec) externToWire(r *ir.Resolved, ext *ir.ExternType, v any, path string) (any, error) {
	if ext == nil || !ext.Builtin {
		return v, nil
	}
	switch ext.Collection() {
	case ir.List:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: list wants []any, got %T", path, v)
		}
		out := make([]any, len(items))
		for i, it := range items {
			w, err := c.toWire(r.Args[0], it, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case ir.Set:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: set wants []any, got %T", path, v)
		}
		out := make([]any, len(items))
		for i, it := range items {
			w, err := c.toWire(r.Args[0], it, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return canonical(out, path, func(w any) any { return w })
	case ir.Map:
		entries, ok := v.(map[any]any)
		if !ok {
			return nil, fmt.Errorf("%s: map wants map[any]any, got %T", path, v)
		}
		pairs := make([]any, 0, len(entries))
		for k, val := range entries {
			kw, err := c.toWire(r.Args[0], k, path+"{key}")
			if err != nil {
				return nil, err
			}
			vw, err := c.toWire(r.Args[1], val, fmt.Sprintf("%s[%v]", path, k))
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, []any{kw, vw})
		}
		return canonical(pairs, path, func(w any) any { return w.([]any)[0] })
	}
	return primitiveToWire(ext.Name, v, path)
}

func (c codec) externFromWire(r *ir.Resolved, ext *ir.ExternType, w any, path string) (any, error) {
	if ext == nil || !ext.Builtin {
		return w, nil
	}
	switch ext.Collection() {
	case ir.List, ir.Set:
		items, ok := w.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an array, got %T", path, w)
		}
		out := make([]any, len(items))
		for i, it := range items {
			v, err := c.fromWire(r.Args[0], it, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		if ext.Collection() == ir.Set {
			if _, err := canonical(items, path, func(w any) any { return w }); err != nil {
				return nil, err
			}
		}
		return out, nil
	case ir.Map:
		pairs, ok := w.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an array of pairs, got %T", path, w)
		}
		out := make(map[any]any, len(pairs))
		for _, p := range pairs {
			kv, ok := p.([]any)
			if !ok || len(kv) != 2 {
				return nil, fmt.Errorf("%s: malformed map entry", path)
			}
			k, err := c.fromWire(r.Args[0], kv[0], path+"{key}")
			if err != nil {
				return nil, err
			}
			v, err := c.fromWire(r.Args[1], kv[1], fmt.Sprintf("%s[%v]", path, k))
			if err != nil {
				return nil, err
			}
			if _, dup := out[k]; dup {
				return nil, fmt.Errorf("%s: duplicate map key %v", path, k)
			}
			out[k] = v
		}
		return out, nil
	}
	return primitiveFromWire(ext.Name, w, path)
}

// canonical sorts items by the encoding of their key and rejects duplicates.
func canonical(items []any, path string, key func(any) any) ([]any, error) {
	type keyed struct {
		enc  []byte
		item any
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		enc, err := msgpack.Marshal(key(it))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ks[i] = keyed{enc: enc, item: it}
	}
	slices.SortFunc(ks, func(a, b keyed) int { return bytes.Compare(a.enc, b.enc) })
	out := make([]any, len(ks))
	for i, k := range ks {
		if i > 0 && bytes.Equal(ks[i-1].enc, k.enc) {
			return nil, fmt.Errorf("%s: duplicate element %v", path, key(k.item))
		}
		out[i] = k.item
	}
	return out, nil
}

func primitiveToWire(name string, v any, path string) (any, error) {
	switch name {
	case "bool":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "i8", "i16", "i32", "i64":
		n, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		lo, hi, _ := externs.IntRange(name)
		if n < lo || n > hi {
			return nil, fmt.Errorf("%s: %d overflows %s", path, n, name)
		}
		return n, nil
	case "f32", "f64":
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if name == "f32" && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, fmt.Errorf("%s: %g overflows f32", path, f)
		}
		return f, nil
	case "string":
		if s, ok := v.(string); ok {
			return s, nil
		}
	case "binary":
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case "date":
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("%s: %T is not a %s", path, v, name)
}

func primitiveFromWire(name string, w any, path string) (any, error) {
	switch name {
	case "i8", "i16", "i32", "i64":
		return primitiveToWire(name, w, path)
	case "f32", "f64":
		return toFloat64(w)
	case "binary":
		// Loose decoding yields bin payloads as string.
		switch b := w.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
	case "date":
		if t, ok := w.(time.Time); ok {
			return t.UTC(), nil
		}
	default:
		return primitiveToWire(name, w, path)
	}
	return nil, fmt.Errorf("%s: %T is not a %s", path, w, name)
}

func asRecord(v any) (Record, bool) {
	switch v := v.(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	}
	return nil, false
}

func typeName(t ir.TypeRef) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	}
	return 0, fmt.Errorf("%T is not an integer", v)
}

func toUint64(v any) (uint64, error) {
	if n, ok := v.(uint64); ok {
		return n, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return uint64(n), nil
}

func toFloat64(v any) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("%T is not a number", v)
	}
	return float64(n), nil
}
