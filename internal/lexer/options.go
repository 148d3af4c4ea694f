package lexer

import (
	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
)

// DefaultMaxTokenLength bounds a single token; longer input is reported once
// and the rest of the file is skipped.
const DefaultMaxTokenLength = 64 * 1024

type Options struct {
	Reporter       diag.Reporter // may be nil: errors are dropped, lexing continues
	MaxTokenLength int           // 0 means DefaultMaxTokenLength
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(diag.NewError(code, sp, msg))
	}
}

func (lx *Lexer) maxTokenLength() uint32 {
	if lx.opts.MaxTokenLength > 0 {
		return uint32(lx.opts.MaxTokenLength)
	}
	return DefaultMaxTokenLength
}
