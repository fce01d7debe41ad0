package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moorberry/gridline/pkg/model"
)

// ErrColumnNotFound is returned when a filter or sort names a column that is
// absent from the current headers. It is recoverable: the store falls back to
// the unfiltered input (filter) or a no-op (sort) rather than failing.
var ErrColumnNotFound = errors.New("column not found")

// FilterEngine evaluates one row against a FilterConfig. It is stateless;
// the zero value is ready to use.
type FilterEngine struct{}

// Matches reports whether row matches cfg under the given headers.
//
// With the model.AllColumns sentinel the row matches when any cell contains
// cfg.Text as a substring. With a specific column only that column's cell is
// considered; an unresolvable column yields ErrColumnNotFound.
func (FilterEngine) Matches(headers model.Header, row model.Record, cfg model.FilterConfig) (bool, error) {
	if cfg.IsEmpty() {
		return true, nil
	}

	needle := cfg.Text
	if !cfg.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	if cfg.Column == model.AllColumns {
		for _, cell := range row {
			if containsFold(cell, needle, cfg.CaseSensitive) {
				return true, nil
			}
		}
		return false, nil
	}

	idx := model.ColumnIndex(headers, cfg.Column)
	if idx < 0 {
		return false, fmt.Errorf("%w: %q", ErrColumnNotFound, cfg.Column)
	}
	return containsFold(model.Cell(row, idx), needle, cfg.CaseSensitive), nil
}

// containsFold checks substring containment; needle is already lowercased
// when caseSensitive is false.
func containsFold(haystack, needle string, caseSensitive bool) bool {
	if !caseSensitive {
		haystack = strings.ToLower(haystack)
	}
	return strings.Contains(haystack, needle)
}
