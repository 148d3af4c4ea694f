package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005

	// Syntax
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectIdentifier  Code = 2002
	SynExpectType        Code = 2003
	SynUnknownTarget     Code = 2004
	SynExpectSemicolon   Code = 2005
	SynUnclosedBrace     Code = 2006
	SynUnknownDeclKind   Code = 2007
	SynBadFlagsValue     Code = 2008
	SynUnknownDeriving   Code = 2009
	SynUnclosedParen     Code = 2010
	SynUnclosedAngle     Code = 2011
	SynBadDirective      Code = 2012
	SynExpectExpression  Code = 2013
	SynDuplicateModifier Code = 2014

	// Semantic
	SemaInfo                   Code = 3000
	SemaDuplicateSymbol        Code = 3001
	SemaUnresolvedType         Code = 3002
	SemaInvalidFlagsValue      Code = 3003
	SemaCyclicRecord           Code = 3004
	SemaArityMismatch          Code = 3005
	SemaInvalidAsyncUsage      Code = 3006
	SemaMissingExternalMapping Code = 3007
	SemaInvalidStatic          Code = 3010
	SemaStaticConst            Code = 3011
	SemaInvalidThrows          Code = 3012
	SemaErrorAsValue           Code = 3013
	SemaInvalidFieldType       Code = 3014
	SemaInvalidDeriving        Code = 3015
	SemaInvalidBase            Code = 3016
	SemaDuplicateMember        Code = 3017
	SemaInvalidConst           Code = 3018
	SemaCallbackSurface        Code = 3019
	SemaNotAType               Code = 3020
	SemaInvalidCollectionKey   Code = 3021
	SemaEmptyErrorDomain       Code = 3022
	SemaDeprecatedUse          Code = 3023
	SemaInvalidMain            Code = 3024

	// IO
	IOLoadFileError Code = 4001

	// Project (imports)
	ProjMissingImport Code = 5001
	ProjSelfImport    Code = 5002

	// Configuration
	CfgInvalid             Code = 6001
	CfgUnknownTarget       Code = 6002
	CfgBadIdentifierStyle  Code = 6003
	CfgBadDeriving         Code = 6004
	CfgBadOverride         Code = 6005
	CfgDuplicateExtern     Code = 6006
	CfgMalformedExternFile Code = 6007
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed number literal",
		LexTokenTooLong:             "Token too long",

		SynInfo:              "Syntax information",
		SynUnexpectedToken:   "Unexpected token",
		SynExpectIdentifier:  "Expected identifier",
		SynExpectType:        "Expected type",
		SynUnknownTarget:     "Unknown target",
		SynExpectSemicolon:   "Expected semicolon",
		SynUnclosedBrace:     "Unclosed brace",
		SynUnknownDeclKind:   "Unknown declaration kind",
		SynBadFlagsValue:     "Invalid flags member value",
		SynUnknownDeriving:   "Unknown deriving trait",
		SynUnclosedParen:     "Unclosed parenthesis",
		SynUnclosedAngle:     "Unclosed angle bracket",
		SynBadDirective:      "Malformed directive",
		SynExpectExpression:  "Expected expression",
		SynDuplicateModifier: "Duplicate modifier",

		SemaInfo:                   "Semantic information",
		SemaDuplicateSymbol:        "Duplicate symbol",
		SemaUnresolvedType:         "Unresolved type",
		SemaInvalidFlagsValue:      "Invalid flags value",
		SemaCyclicRecord:           "Cyclic record",
		SemaArityMismatch:          "Generic arity mismatch",
		SemaInvalidAsyncUsage:      "Invalid async usage",
		SemaMissingExternalMapping: "Missing external type mapping",
		SemaInvalidStatic:          "Static method outside a main interface",
		SemaStaticConst:            "Method is both static and const",
		SemaInvalidThrows:          "Thrown type is not an error domain",
		SemaErrorAsValue:           "Error domain used as a value",
		SemaInvalidFieldType:       "Invalid field type",
		SemaInvalidDeriving:        "Invalid deriving",
		SemaInvalidBase:            "Invalid base record",
		SemaDuplicateMember:        "Duplicate member",
		SemaInvalidConst:           "Invalid constant",
		SemaCallbackSurface:        "Callback interface without instance methods",
		SemaNotAType:               "Name does not denote a type",
		SemaInvalidCollectionKey:   "Invalid set element or map key",
		SemaEmptyErrorDomain:       "Error domain without variants",
		SemaDeprecatedUse:          "Use of deprecated declaration",
		SemaInvalidMain:            "Main interface implemented outside C++",

		IOLoadFileError: "I/O load file error",

		ProjMissingImport: "Missing import",
		ProjSelfImport:    "Module imports itself",

		CfgInvalid:             "Invalid configuration",
		CfgUnknownTarget:       "Unknown target",
		CfgBadIdentifierStyle:  "Unknown identifier style",
		CfgBadDeriving:         "Unknown deriving trait",
		CfgBadOverride:         "Malformed override",
		CfgDuplicateExtern:     "Duplicate external type",
		CfgMalformedExternFile: "Malformed external type file",
	}

	// codeKind holds the stable kind tag consumers match on.
	codeKind = map[Code]string{
		LexUnknownChar:              "UnknownCharacter",
		LexUnterminatedString:       "UnterminatedString",
		LexUnterminatedBlockComment: "UnterminatedComment",
		LexBadNumber:                "BadNumber",
		LexTokenTooLong:             "TokenTooLong",

		SynUnexpectedToken:   "UnexpectedToken",
		SynExpectIdentifier:  "ExpectIdentifier",
		SynExpectType:        "ExpectType",
		SynUnknownTarget:     "UnknownTarget",
		SynExpectSemicolon:   "ExpectSemicolon",
		SynUnclosedBrace:     "UnclosedBrace",
		SynUnknownDeclKind:   "UnknownDeclarationKind",
		SynBadFlagsValue:     "BadFlagsValue",
		SynUnknownDeriving:   "UnknownDeriving",
		SynUnclosedParen:     "UnclosedParen",
		SynUnclosedAngle:     "UnclosedAngle",
		SynBadDirective:      "BadDirective",
		SynExpectExpression:  "ExpectExpression",
		SynDuplicateModifier: "DuplicateModifier",

		SemaDuplicateSymbol:        "DuplicateSymbol",
		SemaUnresolvedType:         "UnresolvedType",
		SemaInvalidFlagsValue:      "InvalidFlagsValue",
		SemaCyclicRecord:           "CyclicRecord",
		SemaArityMismatch:          "ArityMismatch",
		SemaInvalidAsyncUsage:      "InvalidAsyncUsage",
		SemaMissingExternalMapping: "MissingExternalMapping",
		SemaInvalidStatic:          "InvalidStatic",
		SemaStaticConst:            "StaticConst",
		SemaInvalidThrows:          "InvalidThrows",
		SemaErrorAsValue:           "ErrorAsValue",
		SemaInvalidFieldType:       "InvalidFieldType",
		SemaInvalidDeriving:        "InvalidDeriving",
		SemaInvalidBase:            "InvalidBase",
		SemaDuplicateMember:        "DuplicateMember",
		SemaInvalidConst:           "InvalidConst",
		SemaCallbackSurface:        "CallbackSurface",
		SemaNotAType:               "NotAType",
		SemaInvalidCollectionKey:   "InvalidCollectionKey",
		SemaEmptyErrorDomain:       "EmptyErrorDomain",
		SemaDeprecatedUse:          "DeprecatedUse",
		SemaInvalidMain:            "InvalidMain",

		IOLoadFileError: "LoadFailure",

		ProjMissingImport: "MissingImport",
		ProjSelfImport:    "SelfImport",

		CfgInvalid:             "InvalidConfiguration",
		CfgUnknownTarget:       "UnknownTarget",
		CfgBadIdentifierStyle:  "BadIdentifierStyle",
		CfgBadDeriving:         "BadDeriving",
		CfgBadOverride:         "BadOverride",
		CfgDuplicateExtern:     "DuplicateExternalType",
		CfgMalformedExternFile: "MalformedExternalFile",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// Kind returns the stable kind tag ("DuplicateSymbol", "CyclicRecord", ...).
func (c Code) Kind() string {
	if k, ok := codeKind[c]; ok {
		return k
	}
	return "Unknown"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
