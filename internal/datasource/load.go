package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/moorberry/gridline/pkg/debug"
	"github.com/moorberry/gridline/pkg/model"
)

// Options configures reading behavior.
type Options struct {
	// WarningHandler is called with non-fatal parse warnings (ragged rows,
	// skipped sheets). If nil, warnings are printed to stderr.
	WarningHandler func(string)

	// Delimiter overrides delimiter detection for text-like files.
	Delimiter rune

	// Table selects the SQLite table or Excel sheet. Empty selects the
	// first one found.
	Table string
}

func (o Options) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadFile reads path into a table, dispatching on the file extension. The
// first row of text-like files is treated as the header row.
func LoadFile(path string, opts Options) (model.Table, error) {
	defer debug.LogEnterExit("datasource.LoadFile")()
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		return model.Table{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		table model.Table
		err   error
	)
	switch typ := DetectType(path); typ {
	case SourceTypeCSV:
		table, err = readDelimited(path, ',', opts)
	case SourceTypeTSV:
		table, err = readDelimited(path, '\t', opts)
	case SourceTypeText:
		table, err = readText(path, opts)
	case SourceTypeExcel:
		table, err = readExcel(path, opts)
	case SourceTypeSQLite:
		table, err = readSQLite(path, opts)
	default:
		return model.Table{}, fmt.Errorf("unsupported file type: %s", path)
	}
	if err != nil {
		return model.Table{}, err
	}

	debug.Log("datasource: loaded %d rows x %d cols from %s in %v",
		len(table.Rows), len(table.Headers), path, time.Since(start))
	return table, nil
}

// SaveFile writes table to path, dispatching on extension. Unrecognized
// extensions fall back to delimiter-joined plain text.
func SaveFile(path string, table model.Table, opts Options) error {
	defer debug.LogEnterExit("datasource.SaveFile")()

	switch DetectType(path) {
	case SourceTypeCSV:
		return writeDelimited(path, table, ',')
	case SourceTypeTSV:
		return writeDelimited(path, table, '\t')
	case SourceTypeText:
		return writeText(path, table, opts)
	case SourceTypeExcel:
		return writeExcel(path, table, opts)
	case SourceTypeSQLite:
		return writeSQLite(path, table, opts)
	default:
		return writeText(path, table, opts)
	}
}
