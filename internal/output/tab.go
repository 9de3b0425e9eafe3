// Package output provides writers for filtered variant exports.
package output

import (
	"bufio"
	"encoding/csv"
	"io"
)

// TableWriter writes a delimited table preceded by optional "#" comment lines.
type TableWriter struct {
	w       *bufio.Writer
	csv     *csv.Writer
	columns []string
}

// NewTableWriter creates a comma-delimited table writer with the given header columns.
func NewTableWriter(w io.Writer, columns []string) *TableWriter {
	bw := bufio.NewWriter(w)
	return &TableWriter{
		w:       bw,
		csv:     csv.NewWriter(bw),
		columns: columns,
	}
}

// WriteComment writes a "# "-prefixed line. Comments must precede the header.
func (tw *TableWriter) WriteComment(text string) error {
	tw.csv.Flush()
	if err := tw.csv.Error(); err != nil {
		return err
	}
	_, err := tw.w.WriteString("# " + text + "\n")
	return err
}

// WriteHeader writes the header line.
func (tw *TableWriter) WriteHeader() error {
	return tw.csv.Write(tw.columns)
}

// Write writes a single row. Rows longer than the header are rejected.
func (tw *TableWriter) Write(values []string) error {
	if len(values) > len(tw.columns) {
		return &RowError{Columns: len(tw.columns), Values: len(values)}
	}
	return tw.csv.Write(values)
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TableWriter) Flush() error {
	tw.csv.Flush()
	if err := tw.csv.Error(); err != nil {
		return err
	}
	return tw.w.Flush()
}
