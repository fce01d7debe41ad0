// Package datasource reads and writes tabular data files for gridline. It
// dispatches on file extension: CSV/TSV/plain text, Excel workbooks, and
// SQLite databases. The package is the store's only file I/O collaborator;
// its contract is "produce rows+headers" / "consume rows+headers".
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// SourceType identifies how a file is parsed.
type SourceType string

const (
	SourceTypeCSV    SourceType = "csv"
	SourceTypeTSV    SourceType = "tsv"
	SourceTypeText   SourceType = "text"
	SourceTypeExcel  SourceType = "excel"
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeUnknown is used for unrecognized extensions; reads fail,
	// writes fall back to delimiter-joined plain text.
	SourceTypeUnknown SourceType = "unknown"
)

// DetectType classifies a path by extension.
func DetectType(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SourceTypeCSV
	case ".tsv":
		return SourceTypeTSV
	case ".txt":
		return SourceTypeText
	case ".xlsx", ".xlsm", ".xls":
		return SourceTypeExcel
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	default:
		return SourceTypeUnknown
	}
}

// Source describes one discovered data file.
type Source struct {
	Path    string     `json:"path"`
	Type    SourceType `json:"type"`
	ModTime time.Time  `json:"mod_time"`
	Size    int64      `json:"size"`
	// Valid is set during validation; RowCount is a probe, not a full parse.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	RowCount        int    `json:"row_count"`
	ColumnCount     int    `json:"column_count"`
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, %d rows, %d cols, mod=%s, %s)",
		s.Path, s.Type, s.RowCount, s.ColumnCount, s.ModTime.Format(time.RFC3339), status)
}

// DiscoverDir lists the loadable files directly under dir, newest first,
// validating each source concurrently. Unsupported extensions are skipped;
// files that fail validation are included with Valid=false so the caller can
// explain them.
func DiscoverDir(ctx context.Context, dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		typ := DetectType(e.Name())
		if typ == SourceTypeUnknown {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sources = append(sources, Source{
			Path:    filepath.Join(dir, e.Name()),
			Type:    typ,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	// Validate in parallel; each probe opens and partially parses a file.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range sources {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sources[i].validate()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].ModTime.After(sources[j].ModTime)
	})
	return sources, nil
}

// validate probes the source, filling Valid, RowCount, and ColumnCount.
func (s *Source) validate() {
	table, err := LoadFile(s.Path, Options{})
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return
	}
	s.Valid = true
	s.RowCount = len(table.Rows)
	s.ColumnCount = len(table.Headers)
}
