// Package testutil provides table builders and generators shared by tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/moorberry/gridline/pkg/model"
)

// MakeTable builds a table from a header row and row literals.
//
//	tbl := testutil.MakeTable(
//	    []string{"NAME", "ROLE"},
//	    []string{"Alice", "Captain"},
//	    []string{"Bob", "Medic"},
//	)
func MakeTable(headers []string, rows ...[]string) model.Table {
	return model.Table{Headers: headers, Rows: rows}
}

// Headers generates n column names: C1, C2, ...
func Headers(n int) model.Header {
	out := make(model.Header, n)
	for i := range out {
		out[i] = fmt.Sprintf("C%d", i+1)
	}
	return out
}

// RandomTable generates rows x cols cells of mixed numeric and word data
// using the given source, suitable for fuzz-ish store tests. Roughly half
// the cells parse as numbers.
func RandomTable(r *rand.Rand, rows, cols int) model.Table {
	words := []string{"alpha", "Beta", "GAMMA", "delta", "épsilon", "zeta", ""}

	t := model.Table{Headers: Headers(cols)}
	t.Rows = make([]model.Record, rows)
	for i := range t.Rows {
		row := make(model.Record, cols)
		for j := range row {
			if r.Intn(2) == 0 {
				row[j] = strconv.Itoa(r.Intn(2000) - 1000)
			} else {
				row[j] = words[r.Intn(len(words))]
			}
		}
		t.Rows[i] = row
	}
	return t
}

// RaggedTable generates a table whose rows alternate between shorter and
// longer than the header, exercising the store's length-mismatch tolerance.
func RaggedTable(rows, cols int) model.Table {
	t := model.Table{Headers: Headers(cols)}
	t.Rows = make([]model.Record, rows)
	for i := range t.Rows {
		width := cols
		switch i % 3 {
		case 1:
			width = cols - 1
		case 2:
			width = cols + 1
		}
		row := make(model.Record, width)
		for j := range row {
			row[j] = fmt.Sprintf("r%dc%d", i, j)
		}
		t.Rows[i] = row
	}
	return t
}
