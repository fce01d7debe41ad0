package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/moorberry/gridline/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

const maxStatsLines = 5

func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	if m.focus == focusHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteByte('\n')

	widths := columnWidths(m.state.Headers, m.state.Filtered, m.cfg.UI.MaxColWidth)
	b.WriteString(m.headerLine(widths))
	b.WriteByte('\n')
	b.WriteString(m.bodyLines(widths))

	if m.showStats {
		b.WriteByte('\n')
		b.WriteString(m.statsPanel())
	}
	if m.focus == focusFilterInput {
		b.WriteByte('\n')
		b.WriteString(m.filterInput.View())
	}
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) titleLine() string {
	parts := []string{
		titleStyle.Render("gridline"),
		filepath.Base(m.path),
		dimStyle.Render(formatCount(len(m.state.Filtered), len(m.state.Raw))),
	}
	if !m.state.Filter.IsEmpty() {
		parts = append(parts, filterLabelStyle.Render(m.state.Filter.String()))
	}
	if m.state.SortColumn != "" {
		dir := "▲"
		if !m.state.SortAscending {
			dir = "▼"
		}
		parts = append(parts, sortLabelStyle.Render("sort:"+m.state.SortColumn+dir))
	}
	if m.selCol != allColumnsIndex {
		parts = append(parts, dimStyle.Render("col:"+m.selColName()))
	}
	if m.loading {
		parts = append(parts, dimStyle.Render("⟳"))
	}
	return truncateLine(strings.Join(parts, "  "), m.width)
}

func (m *Model) headerLine(widths []int) string {
	var cells []string
	for i := m.colOffset; i < len(m.state.Headers); i++ {
		cell := padCell(m.state.Headers[i], widths[i])
		if i == m.selCol {
			cells = append(cells, headerSelectedStyle.Render(cell))
		} else {
			cells = append(cells, headerStyle.Render(cell))
		}
	}
	if len(cells) == 0 {
		return dimStyle.Render("(no columns)")
	}
	return truncateLine(strings.Join(cells, colSeparator), m.width)
}

func (m *Model) bodyLines(widths []int) string {
	body := m.bodyHeight()
	if body <= 0 {
		return ""
	}
	rows := m.state.Filtered
	if len(rows) == 0 {
		lines := make([]string, body)
		lines[0] = dimStyle.Render("(no rows)")
		return strings.Join(lines, "\n")
	}

	lines := make([]string, 0, body)
	for i := m.rowOffset; i < len(rows) && len(lines) < body; i++ {
		var cells []string
		for c := m.colOffset; c < len(widths); c++ {
			cells = append(cells, padCell(model.Cell(rows[i], c), widths[c]))
		}
		line := truncateLine(strings.Join(cells, colSeparator), m.width)
		if i == m.cursor {
			line = rowCursorStyle.Render(line)
		} else {
			line = rowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < body {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// statsPanel renders per-column numeric profiles from the current summary.
func (m *Model) statsPanel() string {
	var lines []string
	for _, h := range m.state.Headers {
		st, ok := m.summary.ColumnStats[h]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-16s n=%-6d mean=%-10.4g σ=%-10.4g min=%-10.4g max=%-10.4g",
			truncateCell(h, 16), st.Count, st.Mean, st.StdDev, st.Min, st.Max))
		if len(lines) >= maxStatsLines {
			break
		}
	}
	if len(lines) == 0 {
		lines = []string{"no numeric columns"}
	}
	content := statsTitleStyle.Render("numeric columns") + "\n" + strings.Join(lines, "\n")
	return statsPanelStyle.Width(maxInt(0, m.width-2)).Render(content)
}

func (m *Model) statusLine() string {
	if m.status != "" {
		if m.statusIsErr {
			return truncateLine(statusErrStyle.Render(m.status), m.width)
		}
		return truncateLine(statusStyle.Render(m.status), m.width)
	}
	hint := "/ filter · tab column · s/S sort · c/C clear · r reload · y yank · t stats · ? help · q quit"
	return truncateLine(dimStyle.Render(hint), m.width)
}

func (m *Model) helpView() string {
	rows := [][2]string{
		{"/", "edit filter text (enter applies, esc cancels)"},
		{"tab / shift+tab", "cycle filter & sort column (includes " + model.AllColumns + ")"},
		{"s / S", "sort selected column ascending / descending"},
		{"c / C", "clear filter / clear sort"},
		{"i", "toggle case sensitive matching"},
		{"r", "reload the file in the background"},
		{"y", "copy the cursor row to the clipboard"},
		{"t", "toggle numeric column stats"},
		{"g / G", "jump to first / last row"},
		{"h / l", "scroll columns"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("gridline keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-18s %s\n", statusStyle.Render(r[0]), r[1])
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("press any key to return"))
	return b.String()
}

// bodyHeight is the number of table rows that fit under the chrome.
func (m *Model) bodyHeight() int {
	chrome := 3 // title, header, status
	if m.focus == focusFilterInput {
		chrome++
	}
	if m.showStats {
		chrome += m.statsHeight()
	}
	return maxInt(0, m.height-chrome)
}

// statsHeight is the rendered height of the stats panel plus its border.
func (m *Model) statsHeight() int {
	n := len(m.summary.ColumnStats)
	if n == 0 {
		n = 1
	}
	if n > maxStatsLines {
		n = maxStatsLines
	}
	return n + 3 // title line plus top and bottom border
}

// truncateLine cuts a styled line to the terminal width. lipgloss handles
// the embedded escape sequences, so per-cell styling survives the cut.
func truncateLine(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
