package diagfmt

import (
	"fmt"
	"io"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/source"
)

// Short writes one line per diagnostic in the stable golden layout.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
