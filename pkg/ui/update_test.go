package ui

import (
	"strings"
	"testing"

	"github.com/moorberry/gridline/pkg/config"
	"github.com/moorberry/gridline/pkg/model"
	"github.com/moorberry/gridline/pkg/store"
	"github.com/moorberry/gridline/pkg/tasks"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.DefaultConfig()
	st := store.New(store.WithWarnf(func(string, ...any) {}))
	rows := []model.Record{
		{"Alice", "30"},
		{"Bob", "25"},
		{"Carol", "35"},
	}
	if err := st.Load(rows, model.Header{"name", "age"}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	q := tasks.New()
	m := New(&cfg, st, q, nil, nil, "/tmp/people.csv")
	m.width = 80
	m.height = 24
	return m
}

// drainEvents applies every pending observer snapshot to the model.
func drainEvents(m *Model) {
	for {
		select {
		case msg := <-m.events:
			m.Update(msg)
		default:
			return
		}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestFilterKeySequence(t *testing.T) {
	m := newTestModel(t)

	press(m, "/")
	if m.focus != focusFilterInput {
		t.Fatal("'/' must focus the filter input")
	}

	press(m, "a", "l", "i")
	press(m, "enter")
	drainEvents(m)

	if m.focus != focusTable {
		t.Error("enter must return focus to the table")
	}
	if got := len(m.state.Filtered); got != 1 {
		t.Errorf("filtered rows=%d, want 1 (Alice)", got)
	}
	if m.state.Filter.Text != "ali" {
		t.Errorf("active filter=%q, want ali", m.state.Filter.Text)
	}
}

func TestFilterEscCancels(t *testing.T) {
	m := newTestModel(t)

	press(m, "/", "x", "esc")
	drainEvents(m)

	if m.focus != focusTable {
		t.Error("esc must return focus to the table")
	}
	if len(m.state.Filtered) != 3 {
		t.Errorf("filtered rows=%d, want all 3 untouched", len(m.state.Filtered))
	}
}

func TestCycleColumn(t *testing.T) {
	m := newTestModel(t)

	if m.selCol != allColumnsIndex {
		t.Fatalf("selCol=%d, want the all-columns sentinel", m.selCol)
	}
	press(m, "tab")
	if m.selCol != 0 {
		t.Errorf("selCol=%d after tab, want 0", m.selCol)
	}
	press(m, "tab", "tab")
	if m.selCol != allColumnsIndex {
		t.Errorf("selCol=%d after wrapping, want sentinel", m.selCol)
	}
	press(m, "shift+tab")
	if m.selCol != 1 {
		t.Errorf("selCol=%d after shift+tab, want last column", m.selCol)
	}
}

func TestSortKeys(t *testing.T) {
	m := newTestModel(t)

	press(m, "tab", "tab") // select the age column
	press(m, "s")
	drainEvents(m)

	if m.state.SortColumn != "age" || !m.state.SortAscending {
		t.Fatalf("sort=%q asc=%v, want age ascending", m.state.SortColumn, m.state.SortAscending)
	}
	if m.state.Filtered[0][1] != "25" {
		t.Errorf("first row age=%q, want 25", m.state.Filtered[0][1])
	}

	press(m, "S")
	drainEvents(m)
	if m.state.SortAscending {
		t.Error("'S' must sort descending")
	}
	if m.state.Filtered[0][1] != "35" {
		t.Errorf("first row age=%q, want 35 descending", m.state.Filtered[0][1])
	}
}

func TestSortWithoutColumnSelection(t *testing.T) {
	m := newTestModel(t)

	press(m, "s")
	drainEvents(m)
	if m.state.SortColumn != "" {
		t.Error("sorting with the all-columns sentinel selected must be refused")
	}
}

func TestClearKeys(t *testing.T) {
	m := newTestModel(t)

	press(m, "/", "b", "o", "enter")
	press(m, "tab", "s")
	drainEvents(m)

	press(m, "c")
	drainEvents(m)
	if !m.state.Filter.IsEmpty() {
		t.Error("'c' must clear the filter")
	}
	if m.state.SortColumn == "" {
		t.Error("'c' must leave the sort in place")
	}

	press(m, "C")
	drainEvents(m)
	if m.state.SortColumn != "" {
		t.Error("'C' must clear the sort")
	}
}

func TestCursorNavigationClamps(t *testing.T) {
	m := newTestModel(t)

	press(m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor=%d after up at top, want 0", m.cursor)
	}
	press(m, "down", "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor=%d, want clamped to last row", m.cursor)
	}
	press(m, "g")
	if m.cursor != 0 {
		t.Errorf("cursor=%d after g, want 0", m.cursor)
	}
	press(m, "G")
	if m.cursor != 2 {
		t.Errorf("cursor=%d after G, want last row", m.cursor)
	}
}

func TestCallbackMsgRunsClosure(t *testing.T) {
	m := newTestModel(t)

	var ran bool
	m.Update(callbackMsg(func() { ran = true }))
	if !ran {
		t.Error("callbackMsg must execute its closure in Update")
	}
}

func TestWindowSizeReclampsCursor(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 6})
	if m.width != 40 || m.height != 6 {
		t.Errorf("size=%dx%d, want 40x6", m.width, m.height)
	}
	if m.cursor < m.rowOffset || m.cursor >= m.rowOffset+m.bodyHeight() {
		t.Errorf("cursor %d not visible in window [%d,%d)", m.cursor, m.rowOffset, m.rowOffset+m.bodyHeight())
	}
}

func TestViewRendersHeadersAndRows(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	out := m.View()
	for _, want := range []string{"name", "age", "Alice", "Bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if !strings.Contains(out, "3 rows") {
		t.Errorf("view missing the row counter: %q", out)
	}
}

func TestViewHelpOverlay(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	press(m, "?")
	out := m.View()
	if !strings.Contains(out, "gridline keys") {
		t.Error("help overlay not rendered")
	}
	press(m, "q") // any key leaves help
	if m.focus != focusTable {
		t.Error("any key must leave the help overlay")
	}
}

func TestStatsToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	press(m, "t")
	if !m.showStats {
		t.Fatal("'t' must enable the stats panel")
	}
	out := m.View()
	if !strings.Contains(out, "numeric columns") {
		t.Error("stats panel not rendered")
	}
	if _, ok := m.summary.ColumnStats["age"]; !ok {
		t.Error("age column stats missing")
	}

	press(m, "t")
	if m.showStats {
		t.Error("'t' must toggle the stats panel off")
	}
}
