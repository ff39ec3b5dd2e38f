package tui

import (
	"fmt"
	"strings"

	"pysweep/internal/clean"
	"pysweep/internal/model"
	"pysweep/internal/scan"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// MsgScanReady indicates that discovery has completed.
type MsgScanReady *model.DiscoveryResult

// MsgAnalysisReady carries the built package analyzer.
type MsgAnalysisReady *scan.Analyzer

// MsgError indicates an error occurred.
type MsgError error

// InitScanCmd runs discovery in the background. Packages are not probed
// here; the analysis view triggers that lazily.
func InitScanCmd(engine *scan.Engine) tea.Cmd {
	return func() tea.Msg {
		return MsgScanReady(engine.Scan(false))
	}
}

// analyzeCmd builds the package index, probing unprobed venvs through the
// engine's bounded pool.
func analyzeCmd(engine *scan.Engine, venvs []model.VirtualEnv) tea.Cmd {
	return func() tea.Msg {
		return MsgAnalysisReady(scan.NewAnalyzer(engine, venvs))
	}
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Nav.PageSize = pageSizeFor(msg.Height)
		return m, nil

	case MsgScanReady:
		m.Loading = false
		m.Result = (*model.DiscoveryResult)(msg)
		m.Analyzer = nil
		m.syncNavCounts()
		m.Status = fmt.Sprintf("Found %d interpreters and %d virtual environments",
			len(m.Result.Interpreters), len(m.Result.Venvs))
		return m, nil

	case MsgAnalysisReady:
		m.Analyzer = (*scan.Analyzer)(msg)
		return m, nil

	case MsgError:
		m.Err = msg
		m.Loading = false
		return m, nil

	case tea.KeyMsg:
		if m.Loading {
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.Confirming {
			return m.updateConfirm(msg)
		}

		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.applySearch()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.clearSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.SearchActive {
				m.clearSearch()
				return m, nil
			}
			m.clearSearch()
			m.Nav.Handle(EvBack)
			m.syncNavCounts()
		case "up", "k":
			m.Nav.Handle(EvUp)
		case "down", "j":
			m.Nav.Handle(EvDown)
		case "enter":
			wasMain := m.Nav.View == ViewMain
			m.Nav.Handle(EvSelect)
			if wasMain && m.Nav.View != ViewMain {
				m.clearSearch()
				m.syncNavCounts()
				if m.Nav.View == ViewPackages && m.Analyzer == nil {
					return m, analyzeCmd(m.Engine, m.Result.Venvs)
				}
			}
		case " ":
			m.Nav.Handle(EvToggle)
		case "d":
			return m.proposeDelete()
		case "r":
			m.Loading = true
			m.clearSearch()
			m.Nav.transition(ViewMain)
			return m, InitScanCmd(m.Engine)
		case "/":
			if m.Nav.View == ViewInterpreters || m.Nav.View == ViewVenvs {
				m.InputMode = true
				m.InputBuffer.Focus()
				m.InputBuffer.SetValue("")
				return m, textinput.Blink
			}
		}
	}

	return m, cmd
}

// proposeDelete turns the marked rows into guard-bound candidates and asks
// for confirmation. System interpreters were never markable as candidates;
// the navigator drops them before we get here.
func (m AppModel) proposeDelete() (tea.Model, tea.Cmd) {
	reqs := m.Nav.Handle(EvDelete)
	if len(reqs) == 0 {
		if m.Nav.View == ViewInterpreters || m.Nav.View == ViewVenvs {
			m.Status = "Nothing marked; press space to mark rows first"
		}
		return m, nil
	}

	m.Pending = nil
	for _, req := range reqs {
		orig := m.originalIndex(req.Index)
		if orig < 0 {
			continue
		}
		switch req.View {
		case ViewInterpreters:
			if orig < len(m.Result.Interpreters) {
				it := m.Result.Interpreters[orig]
				m.Pending = append(m.Pending, pendingDelete{Label: it.Path, Path: it.Path, Size: it.SizeBytes})
			}
		case ViewVenvs:
			if orig < len(m.Result.Venvs) {
				v := m.Result.Venvs[orig]
				m.Pending = append(m.Pending, pendingDelete{Label: v.ProjectName, Path: v.Path, Size: v.SizeBytes})
			}
		}
	}
	if len(m.Pending) == 0 {
		return m, nil
	}
	m.Confirming = true
	return m, nil
}

// updateConfirm handles the y/N confirmation for a pending batch delete.
// Each candidate goes through the guard individually; one failure does not
// stop the rest.
func (m AppModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		deleted := 0
		var freed int64
		var firstErr error
		for _, p := range m.Pending {
			plan, err := m.Guard.Plan(p.Path)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			res, err := m.Guard.Execute(plan, clean.Options{SkipConfirmation: true})
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			deleted++
			freed += res.SizeBytes
		}
		total := len(m.Pending)
		m.Pending = nil
		m.Confirming = false
		if firstErr != nil {
			m.Status = fmt.Sprintf("Deleted %d/%d (%s freed); first error: %v",
				deleted, total, model.FormatBytes(freed), firstErr)
		} else {
			m.Status = fmt.Sprintf("Deleted %d/%d (%s freed). Press r to rescan.",
				deleted, total, model.FormatBytes(freed))
		}
		return m, nil
	default:
		m.Pending = nil
		m.Confirming = false
		m.Status = "Cancelled"
		return m, nil
	}
}

// applySearch fuzzy-filters the current view's rows. Marks are discarded:
// their indices would silently point at different rows once the row set
// changes underneath them.
func (m *AppModel) applySearch() {
	term := strings.TrimSpace(m.InputBuffer.Value())
	if term == "" {
		m.clearSearch()
		return
	}

	var haystack []string
	switch m.Nav.View {
	case ViewInterpreters:
		for _, it := range m.Result.Interpreters {
			haystack = append(haystack, it.Path+" "+string(it.Manager)+" "+it.Version)
		}
	case ViewVenvs:
		for _, v := range m.Result.Venvs {
			haystack = append(haystack, v.ProjectName+" "+string(v.Manager)+" "+v.Path)
		}
	default:
		return
	}

	matches := fuzzy.Find(term, haystack)
	m.FilteredRows = make([]int, 0, len(matches))
	for _, match := range matches {
		m.FilteredRows = append(m.FilteredRows, match.Index)
	}
	m.SearchActive = true
	m.Nav.Marked = map[int]struct{}{}
	m.Nav.Cursor = 0
	m.Nav.Scroll = 0
	m.syncNavCounts()
}

// clearSearch resets the filter to show every row.
func (m *AppModel) clearSearch() {
	if !m.SearchActive && m.InputBuffer.Value() == "" {
		return
	}
	m.SearchActive = false
	m.FilteredRows = nil
	m.InputBuffer.SetValue("")
	m.Nav.Marked = map[int]struct{}{}
	m.Nav.Cursor = 0
	m.Nav.Scroll = 0
	m.syncNavCounts()
}

// pageSizeFor derives the list window height from the terminal height,
// leaving room for title, headers and footer.
func pageSizeFor(termHeight int) int {
	h := termHeight - 9
	if h < 3 {
		h = 3
	}
	return h
}
