package driver

import (
	"bridgeidl/internal/diag"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/lexer"
	"bridgeidl/internal/source"
	"bridgeidl/internal/token"
)

// TokenizeResult is the token stream of one file.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes path on its own, outside any compilation. Lexical errors
// are collected in the result's Bag.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, failure.Application("tokenize", err)
	}
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}).All()
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
