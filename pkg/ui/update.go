package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/moorberry/gridline/internal/datasource"
	"github.com/moorberry/gridline/pkg/debug"
	"github.com/moorberry/gridline/pkg/model"
	"github.com/moorberry/gridline/pkg/store"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

const statusLifetime = 4 * time.Second

// Update is the single place application state changes. Background workers
// never touch the store or cache directly; their results arrive here as
// callbackMsg closures.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampView()
		return m, nil

	case dataStateMsg:
		m.state = model.DataState(msg)
		m.loading = false
		if m.showStats {
			m.summary = m.store.Summary()
		}
		m.clampView()
		return m, m.listenEvents()

	case callbackMsg:
		msg()
		return m, m.listenCallbacks()

	case fileChangedMsg:
		debug.Log("ui: %s changed on disk, reloading", m.path)
		cmds := []tea.Cmd{m.listenWatcher(), m.setStatus("file changed, reloading…", false)}
		m.scheduleReload()
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.status = msg.text
		m.statusIsErr = msg.isErr
		m.statusSeq++
		seq := m.statusSeq
		return m, tea.Tick(statusLifetime, func(time.Time) tea.Msg {
			if seq != m.statusSeq {
				return nil
			}
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.status = ""
		m.statusIsErr = false
		return m, nil

	case tea.KeyMsg:
		if m.focus == focusFilterInput {
			return m.updateFilterInput(msg)
		}
		if m.focus == focusHelp {
			m.focus = focusTable
			return m, nil
		}
		return m.updateTableKeys(msg)
	}
	return m, nil
}

// updateFilterInput handles keys while the filter prompt is focused.
func (m *Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.filterInput.Value())
		m.focus = focusTable
		m.filterInput.Blur()
		return m, m.applyFilter(text)
	case "esc":
		m.focus = focusTable
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) updateTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.focus = focusHelp
		return m, nil

	case "/":
		m.focus = focusFilterInput
		m.filterInput.SetValue(m.state.Filter.Text)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()

	case "tab":
		m.cycleColumn(1)
		return m, nil
	case "shift+tab":
		m.cycleColumn(-1)
		return m, nil

	case "s":
		return m, m.applySort(true)
	case "S":
		return m, m.applySort(false)

	case "c":
		m.store.ClearFilter()
		return m, m.setStatus("filter cleared", false)
	case "C":
		m.store.ClearSort()
		return m, m.setStatus("sort cleared", false)

	case "i":
		m.caseSensitive = !m.caseSensitive
		if m.state.Filter.IsEmpty() {
			return m, m.setStatus(caseLabel(m.caseSensitive), false)
		}
		cfg := m.state.Filter
		cfg.CaseSensitive = m.caseSensitive
		if _, err := m.store.ApplyFilter(cfg); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, m.setStatus(caseLabel(m.caseSensitive), false)

	case "r":
		m.scheduleReload()
		return m, m.setStatus("reloading "+filepath.Base(m.path), false)

	case "t":
		m.showStats = !m.showStats
		if m.showStats {
			m.summary = m.store.Summary()
		}
		m.clampView()
		return m, nil

	case "y":
		return m, m.yankRow()

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+u":
		m.moveCursor(-m.bodyHeight())
	case "pgdown", "ctrl+d":
		m.moveCursor(m.bodyHeight())
	case "g", "home":
		m.cursor = 0
		m.rowOffset = 0
	case "G", "end":
		m.cursor = len(m.state.Filtered) - 1
		m.clampView()
	case "left", "h":
		m.colOffset = clamp(m.colOffset-1, 0, maxInt(0, len(m.state.Headers)-1))
	case "right", "l":
		m.colOffset = clamp(m.colOffset+1, 0, maxInt(0, len(m.state.Headers)-1))
	}
	return m, nil
}

// applyFilter runs the filter on the store and reports column errors without
// losing the view: the store already fell back to the unfiltered rows.
func (m *Model) applyFilter(text string) tea.Cmd {
	cfg := m.filterConfig(text)
	if _, err := m.store.ApplyFilter(cfg); err != nil {
		if errors.Is(err, store.ErrColumnNotFound) {
			return m.setStatus(fmt.Sprintf("column %q not found, filter skipped", cfg.Column), true)
		}
		return m.setStatus(err.Error(), true)
	}
	if text == "" {
		return m.setStatus("filter cleared", false)
	}
	return m.setStatus(fmt.Sprintf("filter %q on %s", text, cfg.Column), false)
}

func (m *Model) applySort(ascending bool) tea.Cmd {
	if m.selCol == allColumnsIndex {
		return m.setStatus("select a column to sort (tab)", true)
	}
	col := m.selColName()
	if _, err := m.store.SortByColumn(col, ascending); err != nil {
		return m.setStatus(fmt.Sprintf("cannot sort by %q", col), true)
	}
	dir := "▲"
	if !ascending {
		dir = "▼"
	}
	return m.setStatus(fmt.Sprintf("sorted by %s %s", col, dir), false)
}

// scheduleReload reads the file on the worker and commits the result here.
func (m *Model) scheduleReload() {
	if m.loading {
		return
	}
	m.loading = true
	path := m.path
	opts := datasource.Options{}
	m.queue.SubmitNamed("reload:"+filepath.Base(path), func() (any, error) {
		return datasource.LoadFile(path, opts)
	}, func(res any) {
		t, ok := res.(model.Table)
		if !ok {
			m.loading = false
			return
		}
		m.loading = false
		if err := m.store.Load(t.Rows, t.Headers); err != nil {
			m.status = "reload failed: " + err.Error()
			m.statusIsErr = true
			return
		}
		m.cacheTable(path, t)
	})
}

// cacheTable stores the table in memory and ships the disk write to the
// worker, keeping the interactive path free of file IO.
func (m *Model) cacheTable(path string, t model.Table) {
	if m.cache == nil {
		return
	}
	m.cache.SetInMemory(path, t, m.cfg.Cache.TTL)
	if fn, ok := m.cache.PersistFunc(path); ok {
		m.queue.SubmitNamed("persist:"+filepath.Base(path), func() (any, error) {
			return nil, fn()
		}, nil)
	}
}

func (m *Model) yankRow() tea.Cmd {
	if len(m.state.Filtered) == 0 {
		return nil
	}
	row := m.state.Filtered[clamp(m.cursor, 0, len(m.state.Filtered)-1)]
	if err := clipboard.WriteAll(strings.Join(row, "\t")); err != nil {
		return m.setStatus("clipboard unavailable", true)
	}
	return m.setStatus("row copied", false)
}

func (m *Model) cycleColumn(delta int) {
	n := len(m.state.Headers)
	if n == 0 {
		m.selCol = allColumnsIndex
		return
	}
	// Cycle through allColumnsIndex, 0 .. n-1.
	cur := m.selCol + 1 // shift so the sentinel becomes 0
	cur = (cur + delta + n + 1) % (n + 1)
	m.selCol = cur - 1
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampView()
}

// clampView keeps the cursor inside the filtered rows and the row offset
// positioned so the cursor stays visible.
func (m *Model) clampView() {
	m.cursor = clamp(m.cursor, 0, maxInt(0, len(m.state.Filtered)-1))
	body := m.bodyHeight()
	if body <= 0 {
		m.rowOffset = m.cursor
		return
	}
	if m.cursor < m.rowOffset {
		m.rowOffset = m.cursor
	}
	if m.cursor >= m.rowOffset+body {
		m.rowOffset = m.cursor - body + 1
	}
	m.rowOffset = clamp(m.rowOffset, 0, maxInt(0, len(m.state.Filtered)-1))
	if m.selCol >= len(m.state.Headers) {
		m.selCol = allColumnsIndex
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

func caseLabel(sensitive bool) string {
	if sensitive {
		return "case sensitive matching"
	}
	return "case insensitive matching"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
