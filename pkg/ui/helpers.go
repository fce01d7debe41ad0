package ui

import (
	"fmt"
	"strings"

	"github.com/moorberry/gridline/pkg/model"

	"github.com/mattn/go-runewidth"
)

const (
	minColWidth  = 4
	colSeparator = "  "
	// Rows sampled when measuring column widths. Measuring every row of a
	// large file on each repaint is too slow.
	widthSampleRows = 200
)

// truncateCell truncates a string to max visual width (cells), adding an
// ellipsis if needed. Uses go-runewidth so wide characters count correctly.
func truncateCell(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padCell pads s with spaces to exactly width visual cells, truncating first
// when it is too wide.
func padCell(s string, width int) string {
	s = truncateCell(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// columnWidths measures headers plus a sample of rows and returns one width
// per column, each capped at maxColWidth.
func columnWidths(headers model.Header, rows []model.Record, maxColWidth int) []int {
	if maxColWidth < minColWidth {
		maxColWidth = minColWidth
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	sample := rows
	if len(sample) > widthSampleRows {
		sample = sample[:widthSampleRows]
	}
	for _, row := range sample {
		for i := range widths {
			if w := runewidth.StringWidth(model.Cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}

// formatCount renders the visible/total row counter, e.g. "42/1000 rows".
func formatCount(filtered, total int) string {
	if filtered == total {
		return fmt.Sprintf("%d rows", total)
	}
	return fmt.Sprintf("%d/%d rows", filtered, total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
