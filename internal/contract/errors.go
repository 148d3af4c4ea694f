package contract

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"bridgeidl/internal/ir"
)

// The generic variant carries errors that no error domain declares.
const (
	GenericDomain  = "bridge"
	GenericVariant = "unexpected"
)

// ErrorValue is a raised variant of an error domain with its payload.
type ErrorValue struct {
	Domain  string
	Variant string
	Fields  Record
}

func (e *ErrorValue) Error() string {
	var b strings.Builder
	b.WriteString(e.Domain)
	b.WriteByte('.')
	b.WriteString(e.Variant)
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for n := range e.Fields {
			names = append(names, n)
		}
		slices.Sort(names)
		b.WriteByte('(')
		for i, n := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", n, e.Fields[n])
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Is matches on domain and variant identity, ignoring the payload.
func (e *ErrorValue) Is(target error) bool {
	t, ok := target.(*ErrorValue)
	return ok && t.Domain == e.Domain && t.Variant == e.Variant
}

// Generic reports whether e is the catch-all variant.
func (e *ErrorValue) Generic() bool {
	return e.Domain == GenericDomain && e.Variant == GenericVariant
}

// Raise builds a checked value of variant. The payload must name exactly
// the declared fields; absent optional fields may be left out.
func Raise(p *ir.Program, dom *ir.ErrorDomain, variant string, fields Record) (*ErrorValue, error) {
	v, ok := dom.Variant(variant)
	if !ok {
		return nil, fmt.Errorf("%s has no variant %q", dom.QualifiedName(), variant)
	}
	c := codec{prog: p}
	w, err := c.payloadToWire(dom, v, fields)
	if err != nil {
		return nil, err
	}
	checked, err := c.payloadFromWire(dom, v, w)
	if err != nil {
		return nil, err
	}
	return &ErrorValue{Domain: dom.QualifiedName(), Variant: variant, Fields: checked}, nil
}

type wireError struct {
	Domain  string `msgpack:"domain"`
	Variant string `msgpack:"variant"`
	Payload []any  `msgpack:"payload"`
}

// Cross sends err over a simulated language boundary and returns what the
// other side observes. Error domain values keep their identity and payload;
// any other error arrives as the generic variant with its message.
func Cross(p *ir.Program, raised error) (*ErrorValue, error) {
	if raised == nil {
		return nil, nil
	}
	c := codec{prog: p}
	var ev *ErrorValue
	if !errors.As(raised, &ev) {
		ev = genericError(raised)
	}
	dom, variant, declared := c.variantOf(ev)
	if !declared && !ev.Generic() {
		ev = genericError(raised)
	}

	payload := []any{ev.Error()}
	if declared {
		w, err := c.payloadToWire(dom, variant, ev.Fields)
		if err != nil {
			return nil, err
		}
		payload = w
	} else if msg, ok := ev.Fields["message"].(string); ok {
		payload = []any{msg}
	}
	data, err := msgpack.Marshal(wireError{Domain: ev.Domain, Variant: ev.Variant, Payload: payload})
	if err != nil {
		return nil, err
	}

	loose, err := decodeWire(data)
	if err != nil {
		return nil, err
	}
	wire, ok := loose.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("crossed error has shape %T", loose)
	}
	out := &ErrorValue{}
	out.Domain, _ = wire["domain"].(string)
	out.Variant, _ = wire["variant"].(string)
	slots, _ := wire["payload"].([]any)
	if !declared {
		if len(slots) == 1 {
			out.Fields = Record{"message": slots[0]}
		}
		return out, nil
	}
	out.Fields, err = c.payloadFromWire(dom, variant, slots)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func genericError(err error) *ErrorValue {
	return &ErrorValue{Domain: GenericDomain, Variant: GenericVariant, Fields: Record{"message": err.Error()}}
}

func (c codec) variantOf(ev *ErrorValue) (*ir.ErrorDomain, *ir.ErrorVariant, bool) {
	if ev.Generic() || c.prog == nil {
		return nil, nil, false
	}
	d, ok := c.prog.Lookup(ev.Domain)
	if !ok {
		return nil, nil, false
	}
	dom, ok := d.(*ir.ErrorDomain)
	if !ok {
		return nil, nil, false
	}
	v, ok := dom.Variant(ev.Variant)
	return dom, v, ok
}

func (c codec) payloadToWire(dom *ir.ErrorDomain, v *ir.ErrorVariant, fields Record) ([]any, error) {
	path := dom.QualifiedName() + "." + v.Name
	for name := range fields {
		if !slices.ContainsFunc(v.Fields, func(f ir.Field) bool { return f.Name == name }) {
			return nil, fmt.Errorf("%s has no field %q", path, name)
		}
	}
	out := make([]any, len(v.Fields))
	for i, f := range v.Fields {
		w, err := c.toWire(f.Type, fields[f.Name], path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (c codec) payloadFromWire(dom *ir.ErrorDomain, v *ir.ErrorVariant, slots []any) (Record, error) {
	path := dom.QualifiedName() + "." + v.Name
	if len(slots) != len(v.Fields) {
		return nil, fmt.Errorf("%s: expected %d payload fields, got %d", path, len(v.Fields), len(slots))
	}
	out := make(Record, len(v.Fields))
	for i, f := range v.Fields {
		val, err := c.fromWire(f.Type, slots[i], path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		if val != nil {
			out[f.Name] = val
		}
	}
	return out, nil
}
