package datasource

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/moorberry/gridline/pkg/model"
)

// readDelimited parses a CSV/TSV file. The first record is the header row.
// Ragged rows are kept as-is with a warning; the store tolerates them.
func readDelimited(path string, delim rune, opts Options) (model.Table, error) {
	if opts.Delimiter != 0 {
		delim = opts.Delimiter
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	warn := opts.warn()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1 // ragged rows are legal
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return model.Table{}, fmt.Errorf("%s: no rows", path)
	}

	headers := stripBOMRow(records[0])
	rows := records[1:]

	ragged := 0
	for _, row := range rows {
		if len(row) != len(headers) {
			ragged++
		}
	}
	if ragged > 0 {
		warn(fmt.Sprintf("%s: %d rows have a different field count than the header", path, ragged))
	}

	return model.Table{Headers: headers, Rows: rows}, nil
}

// readText parses a .txt file with delimiter detection: tab when the header
// line contains one, comma otherwise. A single-column file is legal.
func readText(path string, opts Options) (model.Table, error) {
	delim := opts.Delimiter
	if delim == 0 {
		first, err := firstLine(path)
		if err != nil {
			return model.Table{}, err
		}
		if strings.ContainsRune(first, '\t') {
			delim = '\t'
		} else {
			delim = ','
		}
	}
	forced := opts
	forced.Delimiter = delim
	return readDelimited(path, delim, forced)
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return "", nil
}

// writeDelimited writes headers then rows through encoding/csv.
func writeDelimited(path string, table model.Table, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.Write(table.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// writeText is the plain-text fallback writer: one line per row, cells
// joined by the delimiter (tab by default), no quoting.
func writeText(path string, table model.Table, opts Options) error {
	delim := "\t"
	if opts.Delimiter != 0 {
		delim = string(opts.Delimiter)
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(table.Headers, delim))
	buf.WriteByte('\n')
	for _, row := range table.Rows {
		buf.WriteString(strings.Join(row, delim))
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// stripBOMRow removes a UTF-8 BOM from the first header cell if present.
func stripBOMRow(row []string) []string {
	if len(row) > 0 {
		row[0] = strings.TrimPrefix(row[0], "\uFEFF")
	}
	return row
}
