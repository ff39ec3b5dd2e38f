package tui

import "sort"

// View is the current screen of the navigation state machine.
type View int

const (
	ViewMain View = iota
	ViewInterpreters
	ViewVenvs
	ViewPackages
)

func (v View) String() string {
	switch v {
	case ViewInterpreters:
		return "interpreters"
	case ViewVenvs:
		return "venvs"
	case ViewPackages:
		return "packages"
	default:
		return "main"
	}
}

// mainMenuRows are the selectable rows of the main view, in order.
const mainMenuRows = 3

// Event is a single discrete navigation input. Every state change is caused
// by exactly one event; there are no timers or background transitions.
type Event int

const (
	EvUp Event = iota
	EvDown
	EvSelect
	EvBack
	EvToggle
	EvDelete
)

// DeleteRequest proposes removal of one row. The navigator only proposes;
// the caller must route every request through the deletion guard.
type DeleteRequest struct {
	View  View
	Index int
}

// Nav is the navigation state machine: a view tag plus cursor, scroll offset
// and the marked-index set. It holds row counts, not entities; index
// validity depends on the underlying lists not changing mid-session.
type Nav struct {
	View   View
	Cursor int
	Scroll int
	Marked map[int]struct{}

	// PageSize is the number of visible rows; scroll keeps the cursor
	// inside [Scroll, Scroll+PageSize).
	PageSize int

	// Row counts per view, supplied when data loads.
	InterpreterRows int
	VenvRows        int
	PackageRows     int

	// SystemRows flags interpreter indices that are system-owned; Delete
	// silently skips them so they are never even proposed.
	SystemRows map[int]struct{}
}

func NewNav(pageSize int) *Nav {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Nav{
		PageSize:   pageSize,
		Marked:     map[int]struct{}{},
		SystemRows: map[int]struct{}{},
	}
}

// rowCount returns the number of selectable rows in the current view.
func (n *Nav) rowCount() int {
	switch n.View {
	case ViewMain:
		return mainMenuRows
	case ViewInterpreters:
		return n.InterpreterRows
	case ViewVenvs:
		return n.VenvRows
	case ViewPackages:
		return n.PackageRows
	}
	return 0
}

// Handle applies one event and returns any deletion proposals it produced.
func (n *Nav) Handle(ev Event) []DeleteRequest {
	switch ev {
	case EvUp:
		if n.Cursor > 0 {
			n.Cursor--
		}
		n.clampScroll()
	case EvDown:
		if n.Cursor < n.rowCount()-1 {
			n.Cursor++
		}
		n.clampScroll()
	case EvSelect:
		if n.View == ViewMain {
			switch n.Cursor {
			case 0:
				n.transition(ViewInterpreters)
			case 1:
				n.transition(ViewVenvs)
			case 2:
				n.transition(ViewPackages)
			}
		}
	case EvBack:
		if n.View != ViewMain {
			n.transition(ViewMain)
		}
	case EvToggle:
		// Packages is a read-only report; nothing to mark there.
		if n.View != ViewInterpreters && n.View != ViewVenvs {
			return nil
		}
		if n.rowCount() == 0 {
			return nil
		}
		if _, ok := n.Marked[n.Cursor]; ok {
			delete(n.Marked, n.Cursor)
		} else {
			n.Marked[n.Cursor] = struct{}{}
		}
	case EvDelete:
		if n.View != ViewInterpreters && n.View != ViewVenvs {
			return nil
		}
		var reqs []DeleteRequest
		for idx := range n.Marked {
			if n.View == ViewInterpreters {
				if _, sys := n.SystemRows[idx]; sys {
					continue
				}
			}
			reqs = append(reqs, DeleteRequest{View: n.View, Index: idx})
		}
		sort.Slice(reqs, func(i, j int) bool { return reqs[i].Index < reqs[j].Index })
		n.Marked = map[int]struct{}{}
		return reqs
	}
	return nil
}

// transition moves to a view and resets cursor, scroll and marks. Marks are
// discarded, never carried across views.
func (n *Nav) transition(v View) {
	n.View = v
	n.Cursor = 0
	n.Scroll = 0
	n.Marked = map[int]struct{}{}
}

// clampScroll keeps the cursor inside the visible window.
func (n *Nav) clampScroll() {
	if n.Cursor < n.Scroll {
		n.Scroll = n.Cursor
	}
	if n.Cursor >= n.Scroll+n.PageSize {
		n.Scroll = n.Cursor - n.PageSize + 1
	}
	if n.Scroll < 0 {
		n.Scroll = 0
	}
}

// IsMarked reports whether a row index is in the marked set.
func (n *Nav) IsMarked(idx int) bool {
	_, ok := n.Marked[idx]
	return ok
}
