package store

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/moorberry/gridline/pkg/model"
)

// Summary returns a pure-read digest of the store: row and column counts,
// the active filter/sort, and a numeric profile per column computed over the
// filtered rows. It never mutates state.
func (s *Store) Summary() model.Summary {
	sum := model.Summary{
		TotalRows:    len(s.raw),
		FilteredRows: len(s.filtered),
		Columns:      len(s.headers),
		Filter:       s.filter,
		SortColumn:   s.sortCol,
		SortAsc:      s.sortAsc,
	}

	for i, name := range s.headers {
		cs, ok := columnProfile(s.filtered, i)
		if !ok {
			continue
		}
		if sum.ColumnStats == nil {
			sum.ColumnStats = make(map[string]model.ColumnStats)
		}
		// First column wins on duplicate header names, matching lookup rules.
		if _, exists := sum.ColumnStats[name]; !exists {
			sum.ColumnStats[name] = cs
		}
	}
	return sum
}

// columnProfile gathers the numeric cells of column col and profiles them.
// Returns ok=false when no cell parses as a number.
func columnProfile(rows []model.Record, col int) (model.ColumnStats, bool) {
	var vals []float64
	for _, row := range rows {
		cell := strings.TrimSpace(model.Cell(row, col))
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return model.ColumnStats{}, false
	}

	cs := model.ColumnStats{
		Count: len(vals),
		Mean:  stat.Mean(vals, nil),
		Min:   vals[0],
		Max:   vals[0],
	}
	if len(vals) > 1 {
		cs.StdDev = stat.StdDev(vals, nil)
	}
	for _, v := range vals[1:] {
		if v < cs.Min {
			cs.Min = v
		}
		if v > cs.Max {
			cs.Max = v
		}
	}
	return cs, true
}
