package datasource

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/moorberry/gridline/pkg/model"
)

// readSQLite reads one table of a SQLite database into rows+headers. The
// column names become the header row; every value is rendered as its string
// form. opts.Table selects the table; otherwise the first user table wins.
func readSQLite(path string, opts Options) (model.Table, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()

	name := opts.Table
	if name == "" {
		name, err = firstUserTable(db)
		if err != nil {
			return model.Table{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return model.Table{}, fmt.Errorf("querying table %q: %w", name, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return model.Table{}, fmt.Errorf("reading columns of %q: %w", name, err)
	}

	var out []model.Record
	scan := make([]any, len(headers))
	cells := make([]sql.NullString, len(headers))
	for i := range cells {
		scan[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return model.Table{}, fmt.Errorf("scanning row of %q: %w", name, err)
		}
		row := make(model.Record, len(headers))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("iterating table %q: %w", name, err)
	}

	return model.Table{Headers: headers, Rows: out}, nil
}

// firstUserTable returns the name of the first non-internal table.
func firstUserTable(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid LIMIT 1
	`)
	if err != nil {
		return "", fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", fmt.Errorf("database has no tables")
	}
	var name string
	if err := rows.Scan(&name); err != nil {
		return "", fmt.Errorf("reading table name: %w", err)
	}
	return name, rows.Err()
}

// writeSQLite exports the table into a SQLite database, replacing the target
// table if it exists. All columns are TEXT. Duplicate header names get a
// positional suffix because SQL column names must be unique; rows are padded
// or truncated to the column count for the same reason. The in-memory table
// is not modified.
func writeSQLite(path string, table model.Table, opts Options) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("refusing to export a table with no headers")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()

	name := opts.Table
	if name == "" {
		name = "data"
	}

	cols := uniqueColumns(table.Headers)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c) + " TEXT"
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("dropping table %q: %w", name, err)
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(quoted, ", "))
	if _, err := tx.Exec(createStmt); err != nil {
		return fmt.Errorf("creating table %q: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	args := make([]any, len(cols))
	for i, row := range table.Rows {
		for j := range cols {
			args[j] = model.Cell(row, j)
		}
		if _, err := insert.Exec(args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

// uniqueColumns disambiguates duplicate header names with a positional
// suffix ("NAME", "NAME_2", ...). Empty names become "col_N".
func uniqueColumns(headers model.Header) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		name := h
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
