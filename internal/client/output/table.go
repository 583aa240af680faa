package output

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// TableWriter wraps tabwriter for aligned key/value output
type TableWriter struct {
	writer *tabwriter.Writer
}

// NewTableWriter creates a new table writer on w
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// WriteRow writes a table row
func (t *TableWriter) WriteRow(values ...string) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(t.writer, "\t")
		}
		fmt.Fprint(t.writer, v)
	}
	fmt.Fprintln(t.writer)
}

// Flush writes buffered output
func (t *TableWriter) Flush() error {
	return t.writer.Flush()
}

// PrintSuccess prints a success message with checkmark
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✓ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "✗ %s\n", message)
}
