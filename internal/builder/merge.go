package builder

import (
	"fmt"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/symbols"
)

// Merge adds the names of one module to the compilation-wide table. A name
// an earlier module already declared is reported at the later declaration
// with a note at the first one. It returns the number of conflicts.
func Merge(dst, src *symbols.Table, rep diag.Reporter) int {
	conflicts := dst.Merge(src)
	for _, c := range conflicts {
		diag.ReportError(rep, diag.SemaDuplicateSymbol, c.Second.Span,
			fmt.Sprintf("%s %s is already declared", c.Second.Kind, c.Second.Name)).
			WithNote(c.First.Span, "first declared here").
			Emit()
	}
	return len(conflicts)
}
