package model

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrRaggedRow is returned when a row's width differs from the header.
	ErrRaggedRow = errors.New("row width does not match columns")

	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Frame is a table of rows with named columns.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame returns an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

// Append adds a row. Values are positional, matching Columns.
func (f *Frame) Append(values ...any) *Frame {
	f.Rows = append(f.Rows, values)
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Index returns the position of column name, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i in column name.
func (f *Frame) Value(i int, name string) (any, bool) {
	j := f.Index(name)
	if j < 0 || i < 0 || i >= len(f.Rows) || j >= len(f.Rows[i]) {
		return nil, false
	}
	return f.Rows[i][j], true
}

// Records returns each row as a column name to value map.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, len(f.Rows))
	for i, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for j, c := range f.Columns {
			if j < len(row) {
				rec[c] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

// Validate checks that column names are unique and every row is as wide as the header.
func (f *Frame) Validate() error {
	seen := make(map[string]struct{}, len(f.Columns))
	for _, c := range f.Columns {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedRow, i, len(row), len(f.Columns))
		}
	}
	return nil
}

// FoldColumns returns a copy of f whose column names are lower-cased the way
// PostgreSQL folds unquoted identifiers. Rows are shared, not copied.
func (f *Frame) FoldColumns() *Frame {
	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = FoldName(c)
	}
	return &Frame{Columns: cols, Rows: f.Rows}
}

// FoldName lower-cases an identifier using Unicode case rules.
func FoldName(s string) string {
	return cases.Lower(language.Und).String(s)
}
