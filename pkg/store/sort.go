package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/moorberry/gridline/pkg/model"
)

// SortEngine orders rows by one column. Cells that parse as decimal numbers
// (after trimming surrounding whitespace) form a block ordered by numeric
// value; all remaining cells form a second block ordered by case-folded
// string. The numeric block always precedes the string block, and descending
// order reverses the entire two-block order, not each block independently.
// The sort is stable, so ties keep their prior relative order.
type SortEngine struct{}

type sortKey struct {
	numeric bool
	num     float64
	str     string
}

func makeSortKey(cell string) sortKey {
	trimmed := strings.TrimSpace(cell)
	if trimmed != "" {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return sortKey{numeric: true, num: n}
		}
	}
	return sortKey{str: strings.ToLower(cell)}
}

// less imposes the ascending two-block total order.
func (a sortKey) less(b sortKey) bool {
	if a.numeric != b.numeric {
		return a.numeric // numeric block first
	}
	if a.numeric {
		return a.num < b.num
	}
	return a.str < b.str
}

// Sort orders rows in place by the column at index col. A missing cell
// (row shorter than col+1) keys as the empty string.
func (SortEngine) Sort(rows []model.Record, col int, ascending bool) {
	keys := make([]sortKey, len(rows))
	for i, row := range rows {
		keys[i] = makeSortKey(model.Cell(row, col))
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if ascending {
			return keys[idx[i]].less(keys[idx[j]])
		}
		return keys[idx[j]].less(keys[idx[i]])
	})

	out := make([]model.Record, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	copy(rows, out)
}
