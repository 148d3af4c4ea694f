package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bridgeidl/internal/ident"
	"bridgeidl/internal/target"
)

// Generator is the generate section of one target. Listing a target enables
// it; `false` lists it disabled.
type Generator struct {
	Enabled    bool
	Out        string
	Identifier Identifier
	// Options holds every other key for the external generate step.
	Options map[string]any
}

func (g *Generator) UnmarshalJSON(data []byte) error {
	*g = Generator{Enabled: true}
	switch string(bytes.TrimSpace(data)) {
	case "null", "true":
		return nil
	case "false":
		g.Enabled = false
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		var err error
		switch key {
		case "enabled":
			err = json.Unmarshal(value, &g.Enabled)
		case "out":
			err = json.Unmarshal(value, &g.Out)
		case "identifier":
			dec := json.NewDecoder(bytes.NewReader(value))
			dec.DisallowUnknownFields()
			err = dec.Decode(&g.Identifier)
		case "options":
			var opts map[string]any
			if err = json.Unmarshal(value, &opts); err == nil {
				for k, v := range opts {
					g.option(k, v)
				}
			}
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				g.option(key, v)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (g *Generator) option(key string, value any) {
	if g.Options == nil {
		g.Options = make(map[string]any)
	}
	g.Options[key] = value
}

var defaultStyles = map[target.Target]ident.Styles{
	target.Cpp: {
		Type:     ident.Pascal,
		Enum:     ident.Screaming,
		Method:   ident.Snake,
		Field:    ident.Snake,
		Param:    ident.Snake,
		Const:    ident.Screaming,
		Property: ident.Snake,
		File:     ident.Snake,
	},
	target.Java: {
		Type:     ident.Pascal,
		Enum:     ident.Screaming,
		Method:   ident.Camel,
		Field:    ident.Camel,
		Param:    ident.Camel,
		Const:    ident.Screaming,
		Property: ident.Camel,
		File:     ident.Pascal,
	},
	target.ObjC: {
		Type:     ident.Pascal,
		Enum:     ident.Pascal,
		Method:   ident.Camel,
		Field:    ident.Camel,
		Param:    ident.Pascal,
		Const:    ident.Pascal,
		Property: ident.Camel,
		File:     ident.Pascal,
	},
	target.CppCLI: {
		Type:     ident.Pascal,
		Enum:     ident.Pascal,
		Method:   ident.Pascal,
		Field:    ident.Pascal,
		Param:    ident.Camel,
		Const:    ident.Snake,
		Property: ident.Pascal,
		File:     ident.Pascal,
	},
}
