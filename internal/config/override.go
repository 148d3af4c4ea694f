package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
)

// Override is one `a.b.c=value` assignment from the command line.
type Override struct {
	Path  []string
	Value any
}

// ParseOverride splits s on the first '='. The value is coerced to a bool,
// integer, float or null when it spells one, and decoded as JSON when it is
// a list or an object; otherwise it stays a string.
func ParseOverride(s string) (Override, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Override{}, failure.Configf(diag.CfgBadOverride, "", "override %q is not of the form key=value", s)
	}
	path := strings.Split(strings.TrimSpace(key), ".")
	for _, p := range path {
		if p == "" {
			return Override{}, failure.Configf(diag.CfgBadOverride, "", "override %q has an empty key segment", s)
		}
	}
	return Override{Path: path, Value: coerce(value)}, nil
}

func coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if t := strings.TrimSpace(s); strings.HasPrefix(t, "[") || strings.HasPrefix(t, "{") {
		var v any
		if err := json.Unmarshal([]byte(t), &v); err == nil {
			return v
		}
	}
	return s
}

// patch is the merge patch setting o.Path to o.Value. A null value removes
// the key.
func (o Override) patch() map[string]any {
	root := make(map[string]any)
	cur := root
	for _, p := range o.Path[:len(o.Path)-1] {
		next := make(map[string]any)
		cur[p] = next
		cur = next
	}
	cur[o.Path[len(o.Path)-1]] = o.Value
	return root
}

// applyOverrides merges each override into doc, in order, as a JSON merge
// patch.
func applyOverrides(path string, doc []byte, overrides []string) ([]byte, error) {
	for _, s := range overrides {
		o, err := ParseOverride(s)
		if err != nil {
			var cfgErr *failure.ConfigurationError
			if errors.As(err, &cfgErr) {
				cfgErr.Path = path
			}
			return nil, err
		}
		p, err := json.Marshal(o.patch())
		if err != nil {
			return nil, failure.Configf(diag.CfgBadOverride, path, "override %q: %v", s, err)
		}
		doc, err = jsonpatch.MergePatch(doc, p)
		if err != nil {
			return nil, &failure.ConfigurationError{
				Code: diag.CfgBadOverride,
				Path: path,
				Msg:  fmt.Sprintf("cannot apply override %q", s),
				Err:  err,
			}
		}
	}
	return doc, nil
}
