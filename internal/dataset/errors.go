package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns that are absent after header normalization,
// or headers that resolve to the same column.
type SchemaError struct {
	Missing   []string
	Duplicate []string
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "columns mapped more than once: "+strings.Join(e.Duplicate, ", "))
	}
	if len(parts) == 0 {
		return "schema error"
	}
	return strings.Join(parts, "; ")
}

// TypeError reports a cell that cannot be coerced to its column type.
// Row is the 1-based data row, not counting the header.
type TypeError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("row %d: column %q: value %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

// KeyError reports a reference to a column the table does not have or cannot use.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unknown column %q", e.Key)
	}
	return fmt.Sprintf("column %q: %s", e.Key, e.Reason)
}
