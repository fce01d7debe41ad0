package ui

import (
	"github.com/moorberry/gridline/pkg/cache"
	"github.com/moorberry/gridline/pkg/config"
	"github.com/moorberry/gridline/pkg/model"
	"github.com/moorberry/gridline/pkg/store"
	"github.com/moorberry/gridline/pkg/tasks"
	"github.com/moorberry/gridline/pkg/watcher"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focus represents which UI element has keyboard focus.
type focus int

const (
	focusTable focus = iota
	focusFilterInput
	focusHelp
)

// allColumnsIndex is the selected-column sentinel meaning "match any column".
const allColumnsIndex = -1

// Messages delivered into Update. All state mutation happens there, so the
// store and cache only ever see the Update goroutine.
type (
	// dataStateMsg carries a store snapshot pushed by the observer.
	dataStateMsg model.DataState

	// callbackMsg is a completed background task's commit closure. Update
	// invokes it so results land on the owning goroutine.
	callbackMsg func()

	// fileChangedMsg fires when the watcher sees the open file change.
	fileChangedMsg struct{}

	// statusMsg replaces the transient status line.
	statusMsg struct {
		text  string
		isErr bool
	}

	// clearStatusMsg erases a stale status line.
	clearStatusMsg struct{}
)

// Model is the bubbletea model for the table browser. It owns the store and
// cache: every mutation goes through Update, background tasks only hand back
// closures via the queue's callback channel.
type Model struct {
	cfg   *config.Config
	store *store.Store
	queue *tasks.Queue
	cache *cache.Cache[model.Table]
	watch *watcher.Watcher
	path  string

	state   model.DataState
	summary model.Summary

	cursor    int // cursor row, index into state.Filtered
	rowOffset int // first visible row
	colOffset int // first visible column
	selCol    int // column for filter/sort, allColumnsIndex = all

	filterInput   textinput.Model
	focus         focus
	caseSensitive bool

	width, height int
	showStats     bool
	loading       bool

	status      string
	statusIsErr bool
	statusSeq   int // invalidates pending clearStatus ticks

	events chan tea.Msg
}

// New builds a Model around an already-loaded store. The caller starts the
// queue and watcher; the model only reads their channels.
func New(cfg *config.Config, st *store.Store, q *tasks.Queue, c *cache.Cache[model.Table], w *watcher.Watcher, path string) *Model {
	ti := textinput.New()
	ti.Placeholder = "filter text"
	ti.Prompt = "/"
	ti.CharLimit = 256

	m := &Model{
		cfg:           cfg,
		store:         st,
		queue:         q,
		cache:         c,
		watch:         w,
		path:          path,
		state:         st.State(),
		filterInput:   ti,
		selCol:        allColumnsIndex,
		caseSensitive: cfg.UI.CaseSensitive,
		showStats:     cfg.UI.ShowStats,
		events:        make(chan tea.Msg, 16),
	}
	st.RegisterObserver(func(ds model.DataState) {
		select {
		case m.events <- dataStateMsg(ds):
		default:
			// Never block the store's notify path; a dropped snapshot is
			// superseded by the next one anyway.
		}
	})
	return m
}

// Init wires up the long-running listeners.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenEvents(), m.listenCallbacks()}
	if m.watch != nil {
		cmds = append(cmds, m.listenWatcher())
	}
	return tea.Batch(cmds...)
}

// listenEvents forwards one observer snapshot into the program.
func (m *Model) listenEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// listenCallbacks forwards one completed-task closure into the program.
func (m *Model) listenCallbacks() tea.Cmd {
	return func() tea.Msg {
		fn, ok := <-m.queue.Callbacks()
		if !ok {
			return nil
		}
		return callbackMsg(fn)
	}
}

// listenWatcher forwards one file-change notification into the program.
func (m *Model) listenWatcher() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.watch.Changed(); !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Headers returns the headers of the current snapshot.
func (m *Model) Headers() model.Header {
	return m.state.Headers
}

// selColName maps the selected column index to a filter/sort column name.
func (m *Model) selColName() string {
	if m.selCol == allColumnsIndex || m.selCol >= len(m.state.Headers) {
		return model.AllColumns
	}
	return m.state.Headers[m.selCol]
}

// filterConfig assembles the filter from current input and selection.
func (m *Model) filterConfig(text string) model.FilterConfig {
	return model.FilterConfig{
		Text:          text,
		Column:        m.selColName(),
		CaseSensitive: m.caseSensitive,
	}
}
