package contract

import (
	"fmt"
	"strings"

	"bridgeidl/internal/ir"
)

// FlagSet is a value of a flags declaration.
type FlagSet struct {
	decl *ir.Flags
	bits uint64
}

// NoFlags is the empty set of decl.
func NoFlags(decl *ir.Flags) FlagSet { return FlagSet{decl: decl} }

// AllFlags holds every member of decl.
func AllFlags(decl *ir.Flags) FlagSet { return FlagSet{decl: decl, bits: decl.All()} }

// FlagsOf combines the named members. `all` and `none` members are accepted.
func FlagsOf(decl *ir.Flags, names ...string) (FlagSet, error) {
	s := FlagSet{decl: decl}
	for _, n := range names {
		m, ok := decl.Member(n)
		if !ok {
			return FlagSet{}, fmt.Errorf("%s has no member %q", decl.QualifiedName(), n)
		}
		switch m.Special {
		case ir.FlagAll:
			s.bits |= decl.All()
		case ir.FlagNone:
		default:
			s.bits |= m.Value
		}
	}
	return s, nil
}

// FlagsFromBits rejects bits no member defines.
func FlagsFromBits(decl *ir.Flags, bits uint64) (FlagSet, error) {
	if extra := bits &^ decl.All(); extra != 0 {
		return FlagSet{}, fmt.Errorf("%s: undefined bits %#x", decl.QualifiedName(), extra)
	}
	return FlagSet{decl: decl, bits: bits}, nil
}

func (s FlagSet) Bits() uint64 { return s.bits }
func (s FlagSet) Empty() bool  { return s.bits == 0 }

func (s FlagSet) Combine(o FlagSet) FlagSet   { return FlagSet{decl: s.decl, bits: s.bits | o.bits} }
func (s FlagSet) Intersect(o FlagSet) FlagSet { return FlagSet{decl: s.decl, bits: s.bits & o.bits} }
func (s FlagSet) Without(o FlagSet) FlagSet   { return FlagSet{decl: s.decl, bits: s.bits &^ o.bits} }

// Contains reports whether every bit of o is set in s.
func (s FlagSet) Contains(o FlagSet) bool { return s.bits&o.bits == o.bits }

// Has reports whether the named plain member is set.
func (s FlagSet) Has(name string) bool {
	m, ok := s.decl.Member(name)
	if !ok || m.Special != ir.FlagPlain || m.Value == 0 {
		return false
	}
	return s.bits&m.Value == m.Value
}

// Names lists the plain members set, in declaration order.
func (s FlagSet) Names() []string {
	var out []string
	for _, m := range s.decl.Members {
		if m.Special == ir.FlagPlain && m.Value != 0 && s.bits&m.Value == m.Value {
			out = append(out, m.Name)
		}
	}
	return out
}

func (s FlagSet) String() string {
	if s.bits == 0 {
		return "none"
	}
	return strings.Join(s.Names(), "|")
}
