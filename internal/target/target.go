// Package target enumerates the generator targets an IDL element can be
// included in or excluded from.
package target

import (
	"fmt"
	"slices"
	"strings"
)

// Target is one downstream generator.
type Target uint8

const (
	Cpp Target = iota + 1
	Java
	ObjC
	CppCLI
)

// All lists every target in canonical order.
var All = []Target{Cpp, Java, ObjC, CppCLI}

var names = map[Target]string{
	Cpp:    "cpp",
	Java:   "java",
	ObjC:   "objc",
	CppCLI: "cppcli",
}

var lookup = map[string]Target{
	"cpp":    Cpp,
	"c":      Cpp,
	"java":   Java,
	"j":      Java,
	"objc":   ObjC,
	"o":      ObjC,
	"cppcli": CppCLI,
	"n":      CppCLI,
}

func (t Target) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("target(%d)", uint8(t))
}

// Host reports whether the target is a host language binding (anything but
// the C++ core).
func (t Target) Host() bool {
	return t != Cpp
}

// Lookup resolves a target name or its one-letter alias.
func Lookup(name string) (Target, bool) {
	t, ok := lookup[strings.ToLower(name)]
	return t, ok
}

// Any is the marker name that stands for every known target.
const Any = "any"

// Expand resolves a marker name to the targets it includes: every target for
// "any", otherwise the single target Lookup finds.
func Expand(name string) ([]Target, bool) {
	if strings.EqualFold(name, Any) {
		return slices.Clone(All), true
	}
	t, ok := Lookup(name)
	if !ok {
		return nil, false
	}
	return []Target{t}, true
}

// Set is a bit set of targets.
type Set uint8

func SetOf(ts ...Target) Set {
	var s Set
	for _, t := range ts {
		s = s.With(t)
	}
	return s
}

func (s Set) With(t Target) Set       { return s | 1<<t }
func (s Set) Without(t Target) Set    { return s &^ (1 << t) }
func (s Set) Has(t Target) bool       { return s&(1<<t) != 0 }
func (s Set) Empty() bool             { return s == 0 }
func (s Set) Intersect(other Set) Set { return s & other }

// Slice returns the members in canonical order.
func (s Set) Slice() []Target {
	var out []Target
	for _, t := range All {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, 0, len(All))
	for _, t := range s.Slice() {
		parts = append(parts, t.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Marker is one "+x" or "-x" annotation on a declaration.
type Marker struct {
	Target  Target
	Include bool
}

// Effective applies markers to the configured targets: explicit inclusions
// replace the configured set, exclusions are removed afterwards.
func Effective(configured Set, markers []Marker) Set {
	var include Set
	for _, m := range markers {
		if m.Include {
			include = include.With(m.Target)
		}
	}
	out := configured
	if !include.Empty() {
		out = include
	}
	for _, m := range markers {
		if !m.Include {
			out = out.Without(m.Target)
		}
	}
	return out
}
