// Package diag defines the diagnostic model shared by all compiler phases.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable ID ("SEM3004") and a
//     stable kind tag ("CyclicRecord"); see codes.go.
//   - Message: short, actionable text.
//   - Primary span: the source.Span pointing to the issue.
//   - Notes: secondary spans, e.g. "first defined here".
//   - Fixes: optional text edits.
//
// # Emitting diagnostics
//
// Phases emit through a Reporter, usually a BagReporter over a Bag owned by
// the pass. ReportError/ReportWarning return a ReportBuilder so callers can
// chain WithNote before Emit.
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt;
// FormatGoldenDiagnostics is the one stable text form kept here for tests.
package diag
