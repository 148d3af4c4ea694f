// Package contract is the marshaling contract between the compiler and the
// generators: the rules a program must satisfy to be accepted, the
// behavioural guarantees generated code honours, and a reference runtime
// that exercises those guarantees.
package contract

import (
	"slices"

	"bridgeidl/internal/diag"
)

// Construct is the IDL construct a rule or guarantee applies to.
type Construct uint8

const (
	ConstructFlags Construct = iota + 1
	ConstructEnum
	ConstructRecord
	ConstructInterface
	ConstructAsync
	ConstructErrorDomain
	ConstructOptional
	ConstructCollection
	ConstructConst
	ConstructExtern
)

var constructNames = [...]string{
	ConstructFlags:       "flags",
	ConstructEnum:        "enum",
	ConstructRecord:      "record",
	ConstructInterface:   "interface",
	ConstructAsync:       "async method",
	ConstructErrorDomain: "error domain",
	ConstructOptional:    "optional",
	ConstructCollection:  "collection",
	ConstructConst:       "const",
	ConstructExtern:      "extern type",
}

func (c Construct) String() string {
	if int(c) < len(constructNames) && constructNames[c] != "" {
		return constructNames[c]
	}
	return "unknown"
}

// RuleID names a validation rule.
type RuleID string

const (
	FlagsValue           RuleID = "flags.value"
	FlagsUnique          RuleID = "flags.unique"
	FlagsMembers         RuleID = "flags.members"
	EnumMembers          RuleID = "enum.members"
	RecordCycle          RuleID = "record.cycle"
	RecordBase           RuleID = "record.base"
	RecordDeriving       RuleID = "record.deriving"
	RecordFieldType      RuleID = "record.field-type"
	RecordMembers        RuleID = "record.members"
	InterfaceMain        RuleID = "interface.main"
	InterfaceStatic      RuleID = "interface.static"
	InterfaceStaticConst RuleID = "interface.static-const"
	InterfaceCallback    RuleID = "interface.callback"
	InterfaceMembers     RuleID = "interface.members"
	AsyncConst           RuleID = "async.const"
	AsyncPlacement       RuleID = "async.placement"
	AsyncResult          RuleID = "async.result"
	ErrorVariants        RuleID = "error.variants"
	ErrorMembers         RuleID = "error.members"
	ErrorPayload         RuleID = "error.payload"
	ErrorThrows          RuleID = "error.throws"
	ErrorValueUse        RuleID = "error.value"
	CollectionKey        RuleID = "collection.key"
	ConstType            RuleID = "const.type"
	ConstValue           RuleID = "const.value"
	ExternMapping        RuleID = "extern.mapping"
)

// Rule is one check a program must pass.
type Rule struct {
	ID        RuleID
	Construct Construct
	Code      diag.Code
	Severity  diag.Severity
	Summary   string
	// Fatal rules fail the compilation with a ConfigurationError instead of
	// a diagnostic.
	Fatal bool
}

// Rules is the contract table in evaluation order.
var Rules = []Rule{
	{FlagsValue, ConstructFlags, diag.SemaInvalidFlagsValue, diag.SevError, "every value is 0 or a power of two", false},
	{FlagsUnique, ConstructFlags, diag.SemaInvalidFlagsValue, diag.SevError, "no two members share a non-zero value", false},
	{FlagsMembers, ConstructFlags, diag.SemaDuplicateMember, diag.SevError, "member names are unique", false},
	{EnumMembers, ConstructEnum, diag.SemaDuplicateMember, diag.SevError, "member names are unique", false},
	{RecordCycle, ConstructRecord, diag.SemaCyclicRecord, diag.SevError, "no self reference without optional, collection or interface indirection", false},
	{RecordBase, ConstructRecord, diag.SemaInvalidBase, diag.SevError, "the base chain is acyclic", false},
	{RecordDeriving, ConstructRecord, diag.SemaInvalidDeriving, diag.SevError, "ord is derivable for every field", false},
	{RecordFieldType, ConstructRecord, diag.SemaInvalidFieldType, diag.SevError, "fields are values, not functions or error domains", false},
	{RecordMembers, ConstructRecord, diag.SemaDuplicateMember, diag.SevError, "field names are unique, including inherited fields", false},
	{InterfaceMain, ConstructInterface, diag.SemaInvalidMain, diag.SevError, "a 'main' interface is implemented in C++ only", false},
	{InterfaceStatic, ConstructInterface, diag.SemaInvalidStatic, diag.SevError, "static methods only on main interfaces", false},
	{InterfaceStaticConst, ConstructInterface, diag.SemaStaticConst, diag.SevError, "a method is not both static and const", false},
	{InterfaceCallback, ConstructInterface, diag.SemaCallbackSurface, diag.SevError, "callback interfaces declare an instance method", false},
	{InterfaceMembers, ConstructInterface, diag.SemaDuplicateMember, diag.SevError, "method and property names are unique", false},
	{AsyncConst, ConstructAsync, diag.SemaInvalidAsyncUsage, diag.SevError, "async methods are not const", false},
	{AsyncPlacement, ConstructAsync, diag.SemaInvalidAsyncUsage, diag.SevError, "async applies to interface methods only", false},
	{AsyncResult, ConstructAsync, diag.SemaInvalidAsyncUsage, diag.SevError, "async results are not inline functions", false},
	{ErrorVariants, ConstructErrorDomain, diag.SemaEmptyErrorDomain, diag.SevError, "at least one variant", false},
	{ErrorMembers, ConstructErrorDomain, diag.SemaDuplicateMember, diag.SevError, "variant and payload field names are unique", false},
	{ErrorPayload, ConstructErrorDomain, diag.SemaInvalidFieldType, diag.SevError, "payload fields are values", false},
	{ErrorThrows, ConstructErrorDomain, diag.SemaInvalidThrows, diag.SevError, "only error domains are thrown", false},
	{ErrorValueUse, ConstructErrorDomain, diag.SemaErrorAsValue, diag.SevError, "error domains are never parameters, results or properties", false},
	{CollectionKey, ConstructCollection, diag.SemaInvalidCollectionKey, diag.SevError, "set elements and map keys are not optional, functions or collections", false},
	{ConstType, ConstructConst, diag.SemaInvalidConst, diag.SevError, "the declared type is a primitive built-in", false},
	{ConstValue, ConstructConst, diag.SemaInvalidConst, diag.SevError, "the value fits the declared type", false},
	{ExternMapping, ConstructExtern, diag.SemaMissingExternalMapping, diag.SevError, "a mapping exists for every target the referencing declaration is generated for", true},
}

// Guarantee is a behaviour every generator must preserve at runtime.
type Guarantee struct {
	Construct Construct
	Text      string
}

var Guarantees = []Guarantee{
	{ConstructFlags, "ALL is the union of every member and NONE is empty, whether declared or not"},
	{ConstructFlags, "combination and intersection are bitwise"},
	{ConstructEnum, "the string form is the member name"},
	{ConstructRecord, "equality is structural over fields in declaration order"},
	{ConstructRecord, "the string form lists every field in declaration order"},
	{ConstructRecord, "ord compares fields lexicographically in declaration order"},
	{ConstructAsync, "a call completes exactly once, with a value or a failure"},
	{ConstructAsync, "completion never blocks the calling thread"},
	{ConstructErrorDomain, "variant identity and payload survive crossing a boundary"},
	{ConstructErrorDomain, "errors without a declared variant arrive as the generic variant"},
	{ConstructOptional, "absence marshals to the target's no-value form and back to absence"},
	{ConstructCollection, "lists keep their order"},
	{ConstructCollection, "sets and maps keep element and key uniqueness, not order"},
}

// Lookup returns the rule with the given ID.
func Lookup(id RuleID) (Rule, bool) {
	i := slices.IndexFunc(Rules, func(r Rule) bool { return r.ID == id })
	if i < 0 {
		return Rule{}, false
	}
	return Rules[i], true
}

// For lists the rules of one construct in table order.
func For(c Construct) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Construct == c {
			out = append(out, r)
		}
	}
	return out
}

// GuaranteesFor lists the guarantees of one construct.
func GuaranteesFor(c Construct) []Guarantee {
	var out []Guarantee
	for _, g := range Guarantees {
		if g.Construct == c {
			out = append(out, g)
		}
	}
	return out
}
