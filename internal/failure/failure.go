// Package failure defines the structured failures returned by the compiler
// API. Each one maps to a process exit code.
package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
)

const (
	ExitOK            = 0
	ExitApplication   = 1
	ExitFileNotFound  = 2
	ExitConfiguration = 140
	ExitParsing       = 150
	ExitRejected      = 170
)

// ParsingError carries every syntax error found by one Parse call.
type ParsingError struct {
	Diagnostics []diag.Diagnostic
	Files       *source.FileSet
}

func (e *ParsingError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "syntax error"
	}
	msg := e.Diagnostics[0].Message
	if pos := e.Position(); pos.Line > 0 {
		msg = fmt.Sprintf("%s: %s", pos, msg)
	}
	if n := e.count(); n > 1 {
		msg += fmt.Sprintf(" (and %d more syntax errors)", n-1)
	}
	return msg
}

func (e *ParsingError) count() int {
	n := 0
	for _, d := range e.Diagnostics {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n
}

// Position is the location of the first syntax error.
func (e *ParsingError) Position() source.Position {
	if len(e.Diagnostics) == 0 || e.Files == nil {
		return source.Position{}
	}
	return e.Files.Position(e.Diagnostics[0].Primary)
}

func (e *ParsingError) ExitCode() int { return ExitParsing }

// ConfigurationError is a malformed or incomplete configuration, including a
// missing external type mapping. It is never batched.
type ConfigurationError struct {
	Code diag.Code
	// Path is the configuration or extern file, when known.
	Path string
	// Target and Type are set for MissingExternalMapping.
	Target string
	Type   string
	Msg    string
	Pos    source.Position
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	switch {
	case e.Pos.Line > 0:
		fmt.Fprintf(&b, " at %s", e.Pos)
	case e.Path != "":
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Code != diag.UnknownCode {
		fmt.Fprintf(&b, " [%s %s]", e.Code.ID(), e.Code.Kind())
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
func (e *ConfigurationError) ExitCode() int { return ExitConfiguration }

// Configf builds a ConfigurationError with a formatted message.
func Configf(code diag.Code, path, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Code: code, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// RejectedError is the outcome of a compilation whose diagnostic batch holds
// at least one error. The IR is discarded.
type RejectedError struct {
	Diagnostics []diag.Diagnostic
	Files       *source.FileSet
}

func (e *RejectedError) Error() string {
	errs, warns := 0, 0
	var first *diag.Diagnostic
	for i := range e.Diagnostics {
		switch e.Diagnostics[i].Severity {
		case diag.SevError:
			errs++
			if first == nil {
				first = &e.Diagnostics[i]
			}
		case diag.SevWarning:
			warns++
		}
	}
	msg := fmt.Sprintf("compilation rejected: %d error(s), %d warning(s)", errs, warns)
	if first != nil {
		if e.Files != nil {
			msg += fmt.Sprintf("; first: %s: %s %s", e.Files.Position(first.Primary), first.Code.Kind(), first.Message)
		} else {
			msg += fmt.Sprintf("; first: %s %s", first.Code.Kind(), first.Message)
		}
	}
	return msg
}

func (e *RejectedError) ExitCode() int { return ExitRejected }

// ApplicationError wraps any other failure: I/O, broken invariants,
// recovered panics.
type ApplicationError struct {
	Op  string
	Err error
}

func (e *ApplicationError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ApplicationError) Unwrap() error { return e.Err }

func (e *ApplicationError) ExitCode() int {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return ExitFileNotFound
	}
	return ExitApplication
}

// Application wraps err unless it already is a structured failure.
func Application(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return err
	}
	return &ApplicationError{Op: op, Err: err}
}

// FromPanic turns a recovered panic value into an ApplicationError.
func FromPanic(op string, r any) error {
	if err, ok := r.(error); ok {
		return &ApplicationError{Op: op, Err: fmt.Errorf("internal error: %w", err)}
	}
	return &ApplicationError{Op: op, Err: fmt.Errorf("internal error: %v", r)}
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ExitFileNotFound
	}
	return ExitApplication
}
