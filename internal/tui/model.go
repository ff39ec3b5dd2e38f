package tui

import (
	"pysweep/internal/clean"
	"pysweep/internal/model"
	"pysweep/internal/scan"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// pendingDelete is one guard-bound candidate awaiting user confirmation.
type pendingDelete struct {
	Label string
	Path  string
	Size  int64
}

// AppModel holds the TUI state.
type AppModel struct {
	// Collaborators
	Engine *scan.Engine
	Guard  *clean.Guard

	// Data
	Result   *model.DiscoveryResult
	Analyzer *scan.Analyzer
	Loading  bool
	Err      error

	// Navigation
	Nav        *Nav
	WindowSize tea.WindowSizeMsg

	// Search State
	InputMode    bool
	InputBuffer  textinput.Model
	SearchActive bool
	FilteredRows []int // original indices of visible rows; nil when unfiltered

	// Deletion confirmation
	Pending    []pendingDelete
	Confirming bool

	Status string
}

// InitialModel returns the initial state.
func InitialModel(engine *scan.Engine, guard *clean.Guard) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 50
	ti.Width = 24

	return AppModel{
		Engine:      engine,
		Guard:       guard,
		Loading:     true,
		InputBuffer: ti,
		Nav:         NewNav(10),
	}
}

func (m AppModel) Init() tea.Cmd {
	return InitScanCmd(m.Engine)
}

// visibleCount is the number of rows in the current (possibly filtered) view.
func (m *AppModel) visibleCount() int {
	if m.Result == nil {
		return 0
	}
	if m.SearchActive {
		return len(m.FilteredRows)
	}
	switch m.Nav.View {
	case ViewInterpreters:
		return len(m.Result.Interpreters)
	case ViewVenvs:
		return len(m.Result.Venvs)
	}
	return 0
}

// originalIndex maps a row index of the current view back into the entity
// list, accounting for an active search filter.
func (m *AppModel) originalIndex(idx int) int {
	if m.SearchActive {
		if idx < 0 || idx >= len(m.FilteredRows) {
			return -1
		}
		return m.FilteredRows[idx]
	}
	return idx
}

// syncNavCounts refreshes the navigator's row counts after data or filter
// changes. System interpreter rows are flagged so delete never proposes them.
func (m *AppModel) syncNavCounts() {
	if m.Result == nil {
		return
	}
	interpRows := len(m.Result.Interpreters)
	venvRows := len(m.Result.Venvs)
	if m.SearchActive {
		switch m.Nav.View {
		case ViewInterpreters:
			interpRows = len(m.FilteredRows)
		case ViewVenvs:
			venvRows = len(m.FilteredRows)
		}
	}
	m.Nav.InterpreterRows = interpRows
	m.Nav.VenvRows = venvRows

	system := map[int]struct{}{}
	for row := 0; row < interpRows; row++ {
		orig := row
		if m.SearchActive && m.Nav.View == ViewInterpreters {
			orig = m.FilteredRows[row]
		}
		if orig >= 0 && orig < len(m.Result.Interpreters) && m.Result.Interpreters[orig].IsSystem {
			system[row] = struct{}{}
		}
	}
	m.Nav.SystemRows = system

	if m.Nav.View != ViewMain && m.Nav.Cursor >= m.visibleCount() && m.visibleCount() > 0 {
		m.Nav.Cursor = m.visibleCount() - 1
	}
}
