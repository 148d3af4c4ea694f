package externs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/target"
)

var validate = validator.New()

// Entry is the file and configuration form of an extern type.
type Entry struct {
	Name       string      `json:"name" yaml:"name" toml:"name" validate:"required,excludes=."`
	Namespace  Namespace   `json:"namespace,omitempty" yaml:"namespace" toml:"namespace"`
	Primitive  string      `json:"primitive,omitempty" yaml:"primitive" toml:"primitive" validate:"omitempty,oneof=primitive collection record enum flags interface function"`
	Params     []string    `json:"params,omitempty" yaml:"params" toml:"params" validate:"dive,required"`
	Comment    string      `json:"comment,omitempty" yaml:"comment" toml:"comment"`
	Deprecated Deprecation `json:"deprecated,omitempty" yaml:"deprecated" toml:"deprecated"`
	Cpp        *ir.Mapping `json:"cpp,omitempty" yaml:"cpp" toml:"cpp"`
	Java       *ir.Mapping `json:"java,omitempty" yaml:"java" toml:"java"`
	ObjC       *ir.Mapping `json:"objc,omitempty" yaml:"objc" toml:"objc"`
	CppCLI     *ir.Mapping `json:"cppcli,omitempty" yaml:"cppcli" toml:"cppcli"`
}

func (e *Entry) empty() bool {
	return e.Name == "" && len(e.Namespace) == 0 && e.Primitive == "" && len(e.Params) == 0 &&
		e.Cpp == nil && e.Java == nil && e.ObjC == nil && e.CppCLI == nil
}

func (e *Entry) mapping(t target.Target) *ir.Mapping {
	switch t {
	case target.Cpp:
		return e.Cpp
	case target.Java:
		return e.Java
	case target.ObjC:
		return e.ObjC
	case target.CppCLI:
		return e.CppCLI
	}
	return nil
}

func (e *Entry) mappings() map[target.Target]ir.Mapping {
	out := make(map[target.Target]ir.Mapping, len(target.All))
	for _, t := range target.All {
		if m := e.mapping(t); m != nil {
			out[t] = *m
		}
	}
	return out
}

// Type validates e and converts it to a registry entry.
func (e *Entry) Type(origin string) (*ir.ExternType, error) {
	if err := validate.Struct(e); err != nil {
		return nil, &failure.ConfigurationError{
			Code: diag.CfgMalformedExternFile,
			Path: origin,
			Type: e.Name,
			Msg:  "invalid extern type entry",
			Err:  err,
		}
	}
	kind := ir.ExternPrimitive
	if e.Primitive != "" {
		kind, _ = ir.ParseExternKind(e.Primitive)
	}
	for _, t := range target.All {
		if m := e.mapping(t); m != nil && m.Typename == "" {
			return nil, failure.Configf(diag.CfgMalformedExternFile, origin,
				"extern type %s: %s mapping has no typename", e.Name, t)
		}
	}
	var lines []string
	if e.Comment != "" {
		lines = strings.Split(strings.TrimRight(e.Comment, "\n"), "\n")
	}
	doc := ir.ParseDoc(lines)
	if e.Deprecated.Set {
		doc.Deprecated = true
		if doc.DeprecatedNote == "" {
			doc.DeprecatedNote = e.Deprecated.Note
		}
	}
	return &ir.ExternType{
		Name:      e.Name,
		Namespace: []string(e.Namespace),
		Kind:      kind,
		Params:    e.Params,
		Doc:       doc,
		Mappings:  e.mappings(),
		Origin:    origin,
	}, nil
}

// Mapping is re-exported for callers that build entries in code.
type Mapping = ir.Mapping

// Namespace accepts either a dotted string or a list of segments.
type Namespace []string

func (n *Namespace) set(v any) error {
	switch v := v.(type) {
	case nil:
		*n = nil
	case string:
		*n = nil
		if v != "" {
			*n = strings.Split(v, ".")
		}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("namespace segment %v is not a string", item)
			}
			out = append(out, s)
		}
		*n = out
	default:
		return fmt.Errorf("namespace must be a string or a list, got %T", v)
	}
	return nil
}

func (n *Namespace) UnmarshalYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	return n.set(v)
}

func (n *Namespace) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return n.set(v)
}

func (n *Namespace) UnmarshalTOML(v any) error { return n.set(v) }

// Deprecation accepts `true` or a note string.
type Deprecation struct {
	Set  bool
	Note string
}

func (d *Deprecation) set(v any) error {
	switch v := v.(type) {
	case nil:
		*d = Deprecation{}
	case bool:
		*d = Deprecation{Set: v}
	case string:
		*d = Deprecation{Set: true, Note: v}
	default:
		return fmt.Errorf("deprecated must be a bool or a string, got %T", v)
	}
	return nil
}

func (d *Deprecation) UnmarshalYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Deprecation) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Deprecation) UnmarshalTOML(v any) error { return d.set(v) }

func (d Deprecation) MarshalJSON() ([]byte, error) {
	if d.Note != "" {
		return json.Marshal(d.Note)
	}
	return json.Marshal(d.Set)
}
