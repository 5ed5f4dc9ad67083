// Package listing defines the raw listing table and the canonical fact model
// shared by the analytics packages.
package listing

import "strings"

// RawTable is a header-indexed string table, one row per listing as loaded
// from CSV, XLSX, or Postgres. Column presence is never assumed: accessors
// report absence instead of panicking, and empty cells stand for null.
type RawTable struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// NewRawTable builds a table from a header row and data rows. Header names
// are matched case-insensitively with surrounding whitespace ignored. Rows
// shorter than the header are padded with empty cells.
func NewRawTable(header []string, rows [][]string) *RawTable {
	t := &RawTable{
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		key := normalizeColumn(name)
		t.header[i] = key
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	t.rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns the normalized column names in file order.
func (t *RawTable) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// HasColumn reports whether the named column exists.
func (t *RawTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[normalizeColumn(name)]
	return ok
}

// Value returns the cell at (row, column), or "" when the column is absent
// or the row index is out of range.
func (t *RawTable) Value(row int, column string) string {
	if t == nil || row < 0 || row >= len(t.rows) {
		return ""
	}
	i, ok := t.index[normalizeColumn(column)]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][i])
}

// NonNull returns the count of non-empty cells in the named column,
// 0 when the column is absent.
func (t *RawTable) NonNull(column string) int {
	if t == nil || !t.HasColumn(column) {
		return 0
	}
	n := 0
	for row := range t.rows {
		if t.Value(row, column) != "" {
			n++
		}
	}
	return n
}
