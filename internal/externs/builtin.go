package externs

import "bridgeidl/internal/ir"

var builtinPrimitives = []string{"bool", "i8", "i16", "i32", "i64", "f32", "f64", "string", "binary", "date"}

var builtinCollections = []struct {
	name   string
	params []string
}{
	{"list", []string{"T"}},
	{"set", []string{"T"}},
	{"map", []string{"K", "V"}},
}

func builtins() []*ir.ExternType {
	out := make([]*ir.ExternType, 0, len(builtinPrimitives)+len(builtinCollections))
	for _, name := range builtinPrimitives {
		out = append(out, &ir.ExternType{Name: name, Kind: ir.ExternPrimitive, Builtin: true, Origin: "builtin"})
	}
	for _, c := range builtinCollections {
		out = append(out, &ir.ExternType{Name: c.name, Kind: ir.ExternCollection, Params: c.params, Builtin: true, Origin: "builtin"})
	}
	return out
}

// IsPrimitive reports whether e is a built-in scalar.
func IsPrimitive(e *ir.ExternType) bool {
	return e != nil && e.Builtin && e.Kind == ir.ExternPrimitive
}

// IsInteger reports whether e is one of the built-in integer types.
func IsInteger(e *ir.ExternType) bool {
	if !IsPrimitive(e) {
		return false
	}
	switch e.Name {
	case "i8", "i16", "i32", "i64":
		return true
	}
	return false
}

// IntRange is the inclusive range of a built-in integer type.
func IntRange(name string) (lo, hi int64, ok bool) {
	switch name {
	case "i8":
		return -1 << 7, 1<<7 - 1, true
	case "i16":
		return -1 << 15, 1<<15 - 1, true
	case "i32":
		return -1 << 31, 1<<31 - 1, true
	case "i64":
		return -1 << 63, 1<<63 - 1, true
	}
	return 0, 0, false
}
