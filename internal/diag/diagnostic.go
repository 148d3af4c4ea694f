package diag

import (
	"slices"

	"bridgeidl/internal/source"
)

// Note points at a secondary location, such as the first definition of a
// duplicated name.
type Note struct {
	Span source.Span
	Msg  string
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested edit, e.g. inserting a missing ';'.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding of the compiler, positioned at Primary.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// IsError reports whether d rejects the compilation.
func (d Diagnostic) IsError() bool { return d.Severity == SevError }

// WithNote returns a copy of d with a secondary location appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns a copy of d with a suggested edit appended.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(slices.Clip(d.Fixes), Fix{Title: title, Edits: edits})
	return d
}
