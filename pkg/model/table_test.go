package model

import (
	"strings"
	"testing"
)

func TestColumnIndex(t *testing.T) {
	headers := Header{"id", "name", "id"}

	if got := ColumnIndex(headers, "name"); got != 1 {
		t.Errorf("ColumnIndex(name)=%d, want 1", got)
	}
	if got := ColumnIndex(headers, "id"); got != 0 {
		t.Errorf("ColumnIndex(id)=%d, want first match 0", got)
	}
	if got := ColumnIndex(headers, "missing"); got != -1 {
		t.Errorf("ColumnIndex(missing)=%d, want -1", got)
	}
	if got := ColumnIndex(nil, "x"); got != -1 {
		t.Errorf("ColumnIndex on nil headers=%d, want -1", got)
	}
}

func TestCell(t *testing.T) {
	row := Record{"a", "b"}

	if got := Cell(row, 1); got != "b" {
		t.Errorf("Cell(1)=%q, want b", got)
	}
	if got := Cell(row, 2); got != "" {
		t.Errorf("Cell past the end=%q, want empty", got)
	}
	if got := Cell(row, -1); got != "" {
		t.Errorf("Cell(-1)=%q, want empty", got)
	}
	if got := Cell(nil, 0); got != "" {
		t.Errorf("Cell on nil row=%q, want empty", got)
	}
}

func TestCopyRows(t *testing.T) {
	rows := []Record{{"a"}, {"b"}}
	cp := CopyRows(rows)

	cp[0] = Record{"changed"}
	if rows[0][0] != "a" {
		t.Error("replacing an element of the copy must not affect the source")
	}

	// Shallow: inner rows are shared.
	cp = CopyRows(rows)
	cp[1][0] = "mutated"
	if rows[1][0] != "mutated" {
		t.Error("CopyRows is documented as shallow; inner rows are shared")
	}
}

func TestFilterConfigString(t *testing.T) {
	if got := (FilterConfig{}).String(); got != "none" {
		t.Errorf("empty filter String()=%q, want none", got)
	}

	cfg := FilterConfig{Text: "abc", Column: AllColumns}
	if s := cfg.String(); !strings.Contains(s, `"abc"`) || !strings.Contains(s, AllColumns) {
		t.Errorf("String()=%q, want text and column included", s)
	}
	if !strings.Contains(cfg.String(), "(i)") {
		t.Errorf("String()=%q, want case-insensitive marker", cfg.String())
	}

	cfg.CaseSensitive = true
	if !strings.Contains(cfg.String(), "(s)") {
		t.Errorf("String()=%q, want case-sensitive marker", cfg.String())
	}
}

func TestDataStateSorted(t *testing.T) {
	var s DataState
	if s.Sorted() {
		t.Error("zero DataState must not report a sort")
	}
	s.SortColumn = "x"
	if !s.Sorted() {
		t.Error("DataState with a sort column must report sorted")
	}
}
