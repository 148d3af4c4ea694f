package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwNamespace represents the 'namespace' keyword.
	KwNamespace // namespace
	// KwEnum represents the 'enum' keyword.
	KwEnum // enum
	// KwFlags represents the 'flags' keyword.
	KwFlags // flags
	// KwRecord represents the 'record' keyword.
	KwRecord // record
	// KwInterface represents the 'interface' keyword.
	KwInterface // interface
	// KwMain marks an interface implemented by the core.
	KwMain // main
	// KwExt marks an interface implemented by the host language.
	KwExt // ext
	// KwFunction represents the 'function' keyword.
	KwFunction // function
	// KwError represents the 'error' keyword.
	KwError // error
	// KwConst represents the 'const' keyword.
	KwConst // const
	// KwExtern represents the 'extern' keyword.
	KwExtern // extern
	// KwStatic represents the 'static' keyword.
	KwStatic // static
	// KwAsync represents the 'async' keyword.
	KwAsync // async
	// KwProperty represents the 'property' keyword.
	KwProperty // property
	// KwThrows represents the 'throws' keyword.
	KwThrows // throws
	// KwDeriving represents the 'deriving' keyword.
	KwDeriving // deriving
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false

	// IntLit represents the integer literal token.
	IntLit
	// FloatLit represents the float literal token.
	FloatLit
	// StringLit represents the string literal token.
	StringLit

	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	Lt        // <
	Gt        // >
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Semicolon // ;
	Colon     // :
	Assign    // =
	Question  // ?
	Dot       // .
	Slash     // /
	Plus      // +
	Minus     // -
	Star      // *
	Percent   // %
	Pipe      // |
	Amp       // &
	Caret     // ^
	Bang      // !
	Tilde     // ~
	EqEq      // ==
	BangEq    // !=
	LtEq      // <=
	GtEq      // >=
	AndAnd    // &&
	OrOr      // ||
	Arrow     // ->
	At        // @
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "Ident",
	KwNamespace: "namespace",
	KwEnum:      "enum",
	KwFlags:     "flags",
	KwRecord:    "record",
	KwInterface: "interface",
	KwMain:      "main",
	KwExt:       "ext",
	KwFunction:  "function",
	KwError:     "error",
	KwConst:     "const",
	KwExtern:    "extern",
	KwStatic:    "static",
	KwAsync:     "async",
	KwProperty:  "property",
	KwThrows:    "throws",
	KwDeriving:  "deriving",
	KwTrue:      "true",
	KwFalse:     "false",
	IntLit:      "IntLit",
	FloatLit:    "FloatLit",
	StringLit:   "StringLit",
	LBrace:      "{",
	RBrace:      "}",
	LParen:      "(",
	RParen:      ")",
	Lt:          "<",
	Gt:          ">",
	LBracket:    "[",
	RBracket:    "]",
	Comma:       ",",
	Semicolon:   ";",
	Colon:       ":",
	Assign:      "=",
	Question:    "?",
	Dot:         ".",
	Slash:       "/",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Percent:     "%",
	Pipe:        "|",
	Amp:         "&",
	Caret:       "^",
	Bang:        "!",
	Tilde:       "~",
	EqEq:        "==",
	BangEq:      "!=",
	LtEq:        "<=",
	GtEq:        ">=",
	AndAnd:      "&&",
	OrOr:        "||",
	Arrow:       "->",
	At:          "@",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
