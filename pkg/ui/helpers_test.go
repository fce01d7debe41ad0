package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/moorberry/gridline/pkg/model"

	"github.com/mattn/go-runewidth"
)

func TestTruncateCell(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello w…"},
		{"x", 0, ""},
		{"hello", 1, "…"},
	}
	for _, c := range cases {
		if got := truncateCell(c.in, c.width); got != c.want {
			t.Errorf("truncateCell(%q, %d)=%q, want %q", c.in, c.width, got, c.want)
		}
	}
}

func TestTruncateCell_WideRunes(t *testing.T) {
	// CJK characters occupy two cells each.
	s := "日本語テキスト"
	got := truncateCell(s, 6)
	if w := runewidth.StringWidth(got); w > 6 {
		t.Errorf("truncated width=%d, want <= 6 (%q)", w, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncation marker missing from %q", got)
	}
}

func TestPadCell(t *testing.T) {
	if got := padCell("ab", 5); got != "ab   " {
		t.Errorf("padCell=%q, want %q", got, "ab   ")
	}
	if got := padCell("toolong", 4); runewidth.StringWidth(got) != 4 {
		t.Errorf("padCell over-wide result %q, want width 4", got)
	}
}

func TestColumnWidths(t *testing.T) {
	headers := model.Header{"id", "description"}
	rows := []model.Record{
		{"1", "short"},
		{"2", strings.Repeat("long ", 20)},
	}

	widths := columnWidths(headers, rows, 30)
	if len(widths) != 2 {
		t.Fatalf("widths=%v, want 2 entries", widths)
	}
	if widths[0] != minColWidth {
		t.Errorf("narrow column width=%d, want floor %d", widths[0], minColWidth)
	}
	if widths[1] != 30 {
		t.Errorf("wide column width=%d, want capped at 30", widths[1])
	}
}

func TestColumnWidths_RaggedRowsIgnoreMissingCells(t *testing.T) {
	headers := model.Header{"a", "b"}
	rows := []model.Record{{"only-one-cell-here"}}

	widths := columnWidths(headers, rows, 40)
	want := []int{len("only-one-cell-here"), minColWidth}
	if !reflect.DeepEqual(widths, want) {
		t.Errorf("widths=%v, want %v", widths, want)
	}
}

func TestFormatCount(t *testing.T) {
	if got := formatCount(10, 10); got != "10 rows" {
		t.Errorf("formatCount(10,10)=%q", got)
	}
	if got := formatCount(3, 10); got != "3/10 rows" {
		t.Errorf("formatCount(3,10)=%q", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 3); got != 3 {
		t.Errorf("clamp(5,0,3)=%d", got)
	}
	if got := clamp(-1, 0, 3); got != 0 {
		t.Errorf("clamp(-1,0,3)=%d", got)
	}
	if got := clamp(2, 0, 3); got != 2 {
		t.Errorf("clamp(2,0,3)=%d", got)
	}
}
