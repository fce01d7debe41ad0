// Package model defines the core data types shared across gridline: records,
// headers, tables, filter configuration, and the DataState snapshot that the
// record store broadcasts to observers.
package model

import (
	"fmt"
	"strings"
)

// AllColumns is the sentinel column name meaning "match any column".
const AllColumns = "All Columns"

// Record is one row of cell values, positionally aligned to a Header.
// A record may legitimately be shorter or longer than the header it is
// displayed under; consumers must index defensively.
type Record = []string

// Header is an ordered sequence of column names. Uniqueness is NOT enforced:
// spreadsheet and CSV sources routinely repeat column names, and silently
// deduplicating them would corrupt positional alignment. Column lookups
// resolve to the first match.
type Header = []string

// Table pairs headers with rows. It is the unit of exchange between the
// datasource collaborators (readers/writers) and the record store.
type Table struct {
	Headers Header
	Rows    []Record
}

// ColumnIndex returns the position of the first column named name, or -1.
func ColumnIndex(headers Header, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns row[i], or "" when the row is shorter than i+1.
func Cell(row Record, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// CopyRows returns a shallow copy of rows: a fresh outer slice sharing the
// row slices. Rows are treated as immutable once loaded, so sharing them is
// safe and keeps snapshots cheap.
func CopyRows(rows []Record) []Record {
	out := make([]Record, len(rows))
	copy(out, rows)
	return out
}

// FilterConfig is an immutable description of the active filter.
type FilterConfig struct {
	Text          string
	Column        string // a header name, or AllColumns
	CaseSensitive bool
}

// IsEmpty reports whether the filter matches everything.
func (c FilterConfig) IsEmpty() bool {
	return c.Text == ""
}

// String returns a compact human-readable form, used in logs and the status bar.
func (c FilterConfig) String() string {
	if c.IsEmpty() {
		return "none"
	}
	sens := "i"
	if c.CaseSensitive {
		sens = "s"
	}
	return fmt.Sprintf("%q in %s (%s)", c.Text, c.Column, sens)
}

// DataState is the full snapshot owned by the record store. Observers receive
// a value copy whose slices are shared with the store; treat it as read-only.
type DataState struct {
	Raw      []Record
	Filtered []Record
	Headers  Header
	Filter   FilterConfig
	// SortColumn is empty when no sort is active.
	SortColumn    string
	SortAscending bool
}

// Sorted reports whether a column sort is active.
func (s DataState) Sorted() bool {
	return s.SortColumn != ""
}

// Summary is a pure-read digest of the store state.
type Summary struct {
	TotalRows    int
	FilteredRows int
	Columns      int
	Filter       FilterConfig
	SortColumn   string
	SortAsc      bool
	// ColumnStats holds numeric profiles for columns that parse as numbers,
	// keyed by column name. Only columns with at least one numeric cell appear.
	ColumnStats map[string]ColumnStats
}

// ColumnStats is a numeric profile of one column over the filtered rows.
type ColumnStats struct {
	Count  int // cells that parsed as numbers
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// String renders the summary in the form the status bar and robot output use.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d rows, %d cols", s.FilteredRows, s.TotalRows, s.Columns)
	if !s.Filter.IsEmpty() {
		fmt.Fprintf(&b, ", filter %s", s.Filter)
	}
	if s.SortColumn != "" {
		dir := "asc"
		if !s.SortAsc {
			dir = "desc"
		}
		fmt.Fprintf(&b, ", sort %s %s", s.SortColumn, dir)
	}
	return b.String()
}
