package output

import "fmt"

// RowError reports a table row wider than the table header.
type RowError struct {
	Columns int
	Values  int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row has %d values, table has %d columns", e.Values, e.Columns)
}
