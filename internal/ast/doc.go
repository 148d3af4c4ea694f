// Package ast holds the raw, position-tagged syntax tree of one IDL file.
//
// The tree is produced by internal/parser and consumed by internal/builder.
// It is never mutated after parsing and carries no symbol or type
// information: type references are kept as written (TypeExpr).
package ast
