package datasource

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/moorberry/gridline/pkg/model"
	"github.com/moorberry/gridline/pkg/testutil"
)

func TestSQLite_RoundTrip(t *testing.T) {
	tbl := testutil.MakeTable(
		[]string{"name", "score"},
		[]string{"Alice", "10"},
		[]string{"Bob", ""},
		[]string{"quote\"inside", "3"},
	)
	path := filepath.Join(t.TempDir(), "export.db")

	if err := SaveFile(path, tbl, quiet()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	got, err := LoadFile(path, quiet())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(got.Headers, tbl.Headers) {
		t.Errorf("headers=%v, want %v", got.Headers, tbl.Headers)
	}
	if !reflect.DeepEqual(got.Rows, tbl.Rows) {
		t.Errorf("rows=%v, want %v", got.Rows, tbl.Rows)
	}
}

func TestSQLite_NamedTable(t *testing.T) {
	tbl := testutil.MakeTable([]string{"k"}, []string{"v"})
	path := filepath.Join(t.TempDir(), "named.sqlite")

	opts := quiet()
	opts.Table = "metrics"
	if err := SaveFile(path, tbl, opts); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	// Reading the named table works; reading the default name does not exist
	// so the first user table (metrics) is still found.
	got, err := LoadFile(path, opts)
	if err != nil {
		t.Fatalf("LoadFile(table=metrics) failed: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0][0] != "v" {
		t.Errorf("rows=%v", got.Rows)
	}

	byDefault, err := LoadFile(path, quiet())
	if err != nil {
		t.Fatalf("LoadFile(first table) failed: %v", err)
	}
	if !reflect.DeepEqual(byDefault.Rows, got.Rows) {
		t.Errorf("first-table read=%v, want same as named read", byDefault.Rows)
	}
}

func TestSQLite_MissingTable(t *testing.T) {
	tbl := testutil.MakeTable([]string{"k"}, []string{"v"})
	path := filepath.Join(t.TempDir(), "one.db")
	if err := SaveFile(path, tbl, quiet()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	opts := quiet()
	opts.Table = "does_not_exist"
	if _, err := LoadFile(path, opts); err == nil {
		t.Fatal("expected an error for a missing table")
	}
}

func TestSQLite_RaggedRowsPadded(t *testing.T) {
	tbl := model.Table{
		Headers: model.Header{"a", "b", "c"},
		Rows: []model.Record{
			{"1"},
			{"1", "2", "3", "4"},
		},
	}
	path := filepath.Join(t.TempDir(), "ragged.db")
	if err := SaveFile(path, tbl, quiet()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	got, err := LoadFile(path, quiet())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	want := []model.Record{
		{"1", "", ""},
		{"1", "2", "3"},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("rows=%v, want padded/truncated %v", got.Rows, want)
	}
}

func TestUniqueColumns(t *testing.T) {
	got := uniqueColumns(model.Header{"id", "id", "", "id"})
	want := []string{"id", "id_2", "col_3", "id_3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueColumns=%v, want %v", got, want)
	}
}

func TestWriteSQLite_RejectsEmptyHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	err := SaveFile(path, model.Table{}, quiet())
	if err == nil {
		t.Fatal("expected an error for a headerless table")
	}
}
