// Package fuzztests holds Go fuzz harnesses for the compiler front end:
// source bytes go through the lexer, the parser and the semantic passes.
// They guard against panics and hangs on arbitrary input.
package fuzztests
