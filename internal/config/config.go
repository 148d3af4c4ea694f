// Package config loads the compiler configuration. A document is read from
// YAML, JSON or TOML, command-line overrides are merged into it, and the
// result is decoded into Config and validated.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/externs"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ident"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/target"
)

var validate = validator.New()

// Config is the validated configuration of one compilation.
type Config struct {
	Generate        map[string]Generator `json:"generate"`
	Externs         []externs.Entry      `json:"externs" validate:"dive"`
	ExternFiles     []string             `json:"extern_files" validate:"dive,required"`
	IncludeDirs     []string             `json:"include_dirs" validate:"dive,required"`
	DefaultDeriving []string             `json:"default_deriving" validate:"dive,required"`
	MaxDiagnostics  int                  `json:"max_diagnostics" validate:"gte=0"`
	Jobs            int                  `json:"jobs" validate:"gte=0,lte=1024"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `json:"-"`

	targets    target.Set
	generators map[target.Target]Generator
	styles     map[target.Target]ident.Styles
	deriving   ir.Deriving
}

// Identifier overrides the naming style of individual identifier kinds.
// Empty entries keep the target's default.
type Identifier struct {
	Type     string `json:"type,omitempty"`
	Enum     string `json:"enum,omitempty"`
	Method   string `json:"method,omitempty"`
	Field    string `json:"field,omitempty"`
	Param    string `json:"param,omitempty"`
	Const    string `json:"const,omitempty"`
	Property string `json:"property,omitempty"`
	File     string `json:"file,omitempty"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	if err := c.finish(); err != nil {
		panic(err)
	}
	return c
}

// Load reads path and applies overrides. A missing file is an application
// error; everything else wrong with the document is a ConfigurationError.
func Load(path string, overrides []string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, failure.Application("load configuration", err)
		}
		return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "failed to read configuration", Err: err}
	}
	return Parse(path, data, overrides)
}

// Parse decodes data, whose format is chosen by the extension of path, and
// applies overrides. An empty path parses data as YAML.
func Parse(path string, data []byte, overrides []string) (*Config, error) {
	doc, err := toJSON(path, data)
	if err != nil {
		return nil, err
	}
	doc, err = applyOverrides(path, doc, overrides)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "invalid configuration", Err: err}
	}
	cfg.Path = path
	if err := validate.Struct(cfg); err != nil {
		return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "invalid configuration", Err: err}
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toJSON converts the source document to JSON so overrides can be merged
// into it.
func toJSON(path string, data []byte) ([]byte, error) {
	var out []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "failed to parse TOML", Err: err}
		}
		b, err := json.Marshal(m)
		if err != nil {
			return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "failed to convert TOML", Err: err}
		}
		out = b
	case ".json":
		if len(bytes.TrimSpace(data)) > 0 {
			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "failed to parse JSON", Err: err}
			}
		}
		out = data
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		b, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, &failure.ConfigurationError{Code: diag.CfgInvalid, Path: path, Msg: "failed to parse YAML", Err: err}
		}
		out = b
	}
	out = bytes.TrimSpace(out)
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return []byte("{}"), nil
	}
	if out[0] != '{' {
		return nil, failure.Configf(diag.CfgInvalid, path, "configuration must be a mapping")
	}
	return out, nil
}

// finish resolves target names, identifier styles and deriving traits.
func (c *Config) finish() error {
	c.generators = make(map[target.Target]Generator, len(c.Generate))
	c.styles = make(map[target.Target]ident.Styles, len(target.All))
	for _, t := range target.All {
		c.styles[t] = defaultStyles[t]
	}

	keys := make([]string, 0, len(c.Generate))
	for k := range c.Generate {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		gen := c.Generate[key]
		t, ok := target.Lookup(key)
		if !ok {
			return failure.Configf(diag.CfgUnknownTarget, c.Path, "unknown target %q in generate", key)
		}
		if _, dup := c.generators[t]; dup {
			return failure.Configf(diag.CfgUnknownTarget, c.Path, "target %s is configured twice", t)
		}
		c.generators[t] = gen
		styles, err := gen.Identifier.apply(c.styles[t])
		if err != nil {
			return &failure.ConfigurationError{
				Code:   diag.CfgBadIdentifierStyle,
				Path:   c.Path,
				Target: t.String(),
				Msg:    fmt.Sprintf("generate.%s.identifier", key),
				Err:    err,
			}
		}
		c.styles[t] = styles
		if gen.Enabled {
			c.targets = c.targets.With(t)
		}
	}

	for _, name := range c.DefaultDeriving {
		d, ok := ir.ParseDeriving(name)
		if !ok {
			return failure.Configf(diag.CfgBadDeriving, c.Path, "unknown deriving trait %q in default_deriving", name)
		}
		c.deriving |= d
	}
	return nil
}

func (id Identifier) apply(base ident.Styles) (ident.Styles, error) {
	for _, it := range []struct {
		name string
		dst  *ident.Style
	}{
		{id.Type, &base.Type},
		{id.Enum, &base.Enum},
		{id.Method, &base.Method},
		{id.Field, &base.Field},
		{id.Param, &base.Param},
		{id.Const, &base.Const},
		{id.Property, &base.Property},
		{id.File, &base.File},
	} {
		if it.name == "" {
			continue
		}
		st, err := ident.ParseStyle(it.name)
		if err != nil {
			return base, err
		}
		*it.dst = st
	}
	return base, nil
}

// Targets is the set of enabled generation targets.
func (c *Config) Targets() target.Set { return c.targets }

// Styles returns the identifier styles of t, defaults included.
func (c *Config) Styles(t target.Target) ident.Styles { return c.styles[t] }

// Deriving is the default deriving set of records without a deriving clause.
func (c *Config) Deriving() ir.Deriving { return c.deriving }

// Generator returns the generate section of t.
func (c *Config) Generator(t target.Target) (Generator, bool) {
	g, ok := c.generators[t]
	return g, ok
}

// Dir is the directory relative paths in the configuration are based on.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Resolve makes p relative to the configuration directory.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), filepath.FromSlash(p))
}

// ExternFilePaths are the configured extern files, resolved.
func (c *Config) ExternFilePaths() []string {
	out := make([]string, len(c.ExternFiles))
	for i, p := range c.ExternFiles {
		out[i] = c.Resolve(p)
	}
	return out
}

// IncludePaths are the configured import search directories, resolved.
func (c *Config) IncludePaths() []string {
	out := make([]string, len(c.IncludeDirs))
	for i, p := range c.IncludeDirs {
		out[i] = c.Resolve(p)
	}
	return out
}
