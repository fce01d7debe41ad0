// Package store implements the stateful record store at the heart of
// gridline: canonical rows and headers, the filtered projection, filter and
// sort engines, and observer broadcast.
//
// The store is deliberately NOT internally synchronized. All mutating calls
// must come from the single owning goroutine (in the TUI that is the
// bubbletea update loop). Background work computes on its own inputs and
// commits results back through callbacks scheduled onto the owning
// goroutine; see the tasks package.
package store

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/moorberry/gridline/pkg/debug"
	"github.com/moorberry/gridline/pkg/model"
)

// ErrEmptyHeaders is returned by Load when headers are empty.
var ErrEmptyHeaders = errors.New("load rejected: empty headers")

// Observer receives a full DataState snapshot after every mutation.
type Observer func(model.DataState)

// Option configures a Store.
type Option func(*Store)

// WithWarnf overrides the warning sink. The default writes via log.Printf.
func WithWarnf(f func(format string, args ...any)) Option {
	return func(s *Store) {
		s.warnf = f
	}
}

// Store owns the canonical data state. See the package comment for the
// threading rules.
type Store struct {
	raw      []model.Record
	filtered []model.Record
	headers  model.Header
	filter   model.FilterConfig
	sortCol  string // empty when no sort active
	sortAsc  bool

	filterEngine FilterEngine
	sortEngine   SortEngine

	observers []Observer
	warnf     func(format string, args ...any)
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		warnf: log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store contents with rows and headers. It rejects only
// empty headers; rows whose length differs from the header length are kept
// as-is with a warning (no padding or truncation). Load resets the active
// filter and sort, then notifies observers.
func (s *Store) Load(rows []model.Record, headers model.Header) error {
	defer debug.LogEnterExit("store.Load")()

	if len(headers) == 0 {
		s.warnf("store: %v", ErrEmptyHeaders)
		return ErrEmptyHeaders
	}

	mismatched := 0
	for _, row := range rows {
		if len(row) != len(headers) {
			mismatched++
		}
	}
	if mismatched > 0 {
		s.warnf("store: %d of %d rows have a length different from the %d headers; stored unmodified",
			mismatched, len(rows), len(headers))
	}

	s.raw = rows
	s.headers = headers
	s.filter = model.FilterConfig{}
	s.sortCol = ""
	s.sortAsc = true
	s.filtered = model.CopyRows(rows)

	s.notify()
	return nil
}

// ApplyFilter sets cfg as the active filter and recomputes the filtered
// projection. An empty filter text yields an identity copy of the raw rows.
// An unresolvable column is recoverable: the store keeps cfg, falls back to
// the unfiltered rows, and returns ErrColumnNotFound alongside them so the
// caller can surface it. Observers are notified in all cases.
func (s *Store) ApplyFilter(cfg model.FilterConfig) ([]model.Record, error) {
	start := time.Now()
	s.filter = cfg

	var fallbackErr error
	if cfg.IsEmpty() {
		s.filtered = model.CopyRows(s.raw)
	} else {
		matched := make([]model.Record, 0, len(s.raw))
		for _, row := range s.raw {
			ok, err := s.filterEngine.Matches(s.headers, row, cfg)
			if err != nil {
				// Recoverable lookup failure: revert to the full dataset.
				s.warnf("store: filter fallback to unfiltered rows: %v", err)
				matched = model.CopyRows(s.raw)
				fallbackErr = err
				break
			}
			if ok {
				matched = append(matched, row)
			}
		}
		s.filtered = matched
	}

	if s.sortCol != "" {
		s.resort()
	}

	debug.LogTiming("store.ApplyFilter", time.Since(start))
	s.notify()
	return s.filtered, fallbackErr
}

// SortByColumn sets the sort state and re-sorts the filtered rows in place.
// An unknown column is a logged no-op returning ErrColumnNotFound; the
// previous sort state is left intact.
func (s *Store) SortByColumn(column string, ascending bool) ([]model.Record, error) {
	if model.ColumnIndex(s.headers, column) < 0 {
		s.warnf("store: sort ignored, %v: %q", ErrColumnNotFound, column)
		return s.filtered, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	s.sortCol = column
	s.sortAsc = ascending
	s.resort()

	s.notify()
	return s.filtered, nil
}

// ClearFilter drops the active filter and recomputes the filtered rows from
// raw, re-applying the active sort if any. Filter and sort are orthogonal:
// clearing one never discards the other.
func (s *Store) ClearFilter() {
	s.filter = model.FilterConfig{}
	s.filtered = model.CopyRows(s.raw)
	if s.sortCol != "" {
		s.resort()
	}
	s.notify()
}

// ClearSort drops the sort state and recomputes the filtered rows from raw,
// re-applying the active filter if any.
func (s *Store) ClearSort() {
	s.sortCol = ""
	s.sortAsc = true
	if s.filter.IsEmpty() {
		s.filtered = model.CopyRows(s.raw)
	} else {
		// Re-run the filter to restore source order.
		matched := make([]model.Record, 0, len(s.raw))
		for _, row := range s.raw {
			ok, err := s.filterEngine.Matches(s.headers, row, s.filter)
			if err != nil {
				s.warnf("store: filter fallback to unfiltered rows: %v", err)
				matched = model.CopyRows(s.raw)
				break
			}
			if ok {
				matched = append(matched, row)
			}
		}
		s.filtered = matched
	}
	s.notify()
}

func (s *Store) resort() {
	idx := model.ColumnIndex(s.headers, s.sortCol)
	if idx < 0 {
		return
	}
	s.sortEngine.Sort(s.filtered, idx, s.sortAsc)
}

// State returns the current DataState snapshot. The snapshot shares row
// slices with the store; callers must treat it as read-only.
func (s *Store) State() model.DataState {
	return model.DataState{
		Raw:           s.raw,
		Filtered:      s.filtered,
		Headers:       s.headers,
		Filter:        s.filter,
		SortColumn:    s.sortCol,
		SortAscending: s.sortAsc,
	}
}

// RegisterObserver adds a callback invoked with the full DataState after
// every mutating call. Observers run on the owning goroutine, in
// registration order.
func (s *Store) RegisterObserver(fn Observer) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// notify broadcasts the current state to every observer. A panicking
// observer is recovered and logged; the remaining observers still run.
func (s *Store) notify() {
	state := s.State()
	for i, fn := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.warnf("store: observer %d panicked: %v", i, r)
				}
			}()
			fn(state)
		}()
	}
}
