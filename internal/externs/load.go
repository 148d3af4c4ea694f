package externs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/source"
)

type tomlFile struct {
	Type []Entry `toml:"type"`
}

// Decode parses the content of an extern file. YAML files may hold several
// documents, one entry each; TOML files use [[type]] tables; JSON files hold
// one entry or a list of entries.
func Decode(path string, data []byte) ([]Entry, error) {
	entries, _, err := decode(path, data)
	return entries, err
}

// decode also returns where each entry starts: the line of its name when it
// has one.
func decode(path string, data []byte) ([]Entry, []source.Position, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(path, data)
	case ".json":
		return decodeYAML(path, "JSON", data)
	default:
		return decodeYAML(path, "YAML", data)
	}
}

func decodeYAML(path, format string, data []byte) ([]Entry, []source.Position, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, nil, malformed(path, "failed to parse "+format, err)
	}
	var (
		out []Entry
		pos []source.Position
	)
	for _, doc := range file.Docs {
		for _, node := range entryNodes(doc.Body) {
			var e Entry
			if err := yaml.NodeToValue(node, &e, yaml.DisallowUnknownField()); err != nil {
				return nil, nil, malformed(path, "failed to parse "+format, err)
			}
			if e.empty() {
				continue
			}
			out = append(out, e)
			pos = append(pos, entryPosition(path, node))
		}
	}
	return out, pos, nil
}

// entryNodes splits a document body into entries: one per element of a
// sequence, otherwise the body itself.
func entryNodes(body ast.Node) []ast.Node {
	switch n := body.(type) {
	case nil:
		return nil
	case *ast.SequenceNode:
		return n.Values
	}
	return []ast.Node{body}
}

func entryPosition(path string, node ast.Node) source.Position {
	var pairs []*ast.MappingValueNode
	switch n := node.(type) {
	case *ast.MappingNode:
		pairs = n.Values
	case *ast.MappingValueNode:
		pairs = []*ast.MappingValueNode{n}
	}
	tok := node.GetToken()
	for _, kv := range pairs {
		if k := kv.Key.GetToken(); k != nil && k.Value == "name" && kv.Value != nil {
			tok = kv.Value.GetToken()
			break
		}
	}
	if tok == nil || tok.Position == nil {
		return source.Position{Path: path}
	}
	return position(path, tok.Position.Line, tok.Position.Column)
}

func decodeTOML(path string, data []byte) ([]Entry, []source.Position, error) {
	var doc tomlFile
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, nil, malformed(path, "failed to parse TOML", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, nil, failure.Configf(diag.CfgMalformedExternFile, path, "unknown key %s", undecoded[0])
	}
	if !meta.IsDefined("type") {
		return nil, nil, failure.Configf(diag.CfgMalformedExternFile, path, "missing [[type]] tables")
	}
	return doc.Type, tablePositions(path, data, len(doc.Type)), nil
}

// tablePositions returns the header line of each of the first n [[type]]
// tables.
func tablePositions(path string, data []byte, n int) []source.Position {
	out := make([]source.Position, 0, n)
	for i, line := range strings.Split(string(data), "\n") {
		header, _, _ := strings.Cut(line, "#")
		if strings.ReplaceAll(strings.TrimSpace(header), " ", "") != "[[type]]" {
			continue
		}
		out = append(out, position(path, i+1, len(line)-len(strings.TrimLeft(line, " \t"))+1))
		if len(out) == n {
			break
		}
	}
	for len(out) < n {
		out = append(out, source.Position{Path: path})
	}
	return out
}

func position(path string, line, col int) source.Position {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return source.Position{Path: path}
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		return source.Position{Path: path, Line: l}
	}
	return source.Position{Path: path, Line: l, Col: c}
}

func malformed(path, msg string, err error) error {
	return &failure.ConfigurationError{Code: diag.CfgMalformedExternFile, Path: path, Msg: msg, Err: err}
}

// LoadFile reads path and registers every entry it declares.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failure.Application("load extern file", err)
		}
		return malformed(path, "failed to read extern file", err)
	}
	return r.LoadData(path, data)
}

// LoadData registers the entries of an already-read extern file. A failing
// entry's error carries the position of that entry.
func (r *Registry) LoadData(path string, data []byte) error {
	entries, pos, err := decode(path, data)
	if err != nil {
		return err
	}
	for i := range entries {
		if err := r.RegisterEntry(&entries[i], path); err != nil {
			var cfgErr *failure.ConfigurationError
			if errors.As(err, &cfgErr) {
				cfgErr.Pos = pos[i]
			}
			return err
		}
	}
	return nil
}

// RegisterEntry converts e and registers it.
func (r *Registry) RegisterEntry(e *Entry, origin string) error {
	t, err := e.Type(origin)
	if err != nil {
		return err
	}
	_, err = r.Register(t)
	return err
}
