// Package token defines lexical token kinds and trivia for the IDL front-end.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Directives are lexed as '@' (Kind: At) + Ident; no per-directive token kinds.
//   - Doc comments ('#' lines) are leading Trivia (TriviaDocLine) and never
//     appear in the main token stream.
//   - Built-in type names (i32, string, list, ...) are identifiers.
//     They are recognized by the external type registry, not the lexer.
package token
