package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/procmon/internal/reconcile"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyCycleSort   = "s"
	KeyReverseSort = "S"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeyPageUp      = "pgup"
	KeyPageDown    = "pgdown"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyFilter      = "/"
	KeyFilterHelp  = "f"
	KeySpecs       = "i"
	KeyKill        = "x"
	KeyForceKill   = "X"
	KeyApply       = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// sortKeys maps the number row to columns in display order.
var sortKeys = map[string]SortColumn{
	"1": SortByPID,
	"2": SortByName,
	"3": SortByCPU,
	"4": SortByMem,
	"5": SortByGPU,
	"6": SortByNet,
	"7": SortByTime,
	"8": SortByType,
}

// HandleKeyMsg processes keyboard input for the table. It reports whether
// the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Overlays swallow everything except their own toggles, Esc and quit.
	if m.overlay != overlayNone {
		switch {
		case key == KeyCollapse,
			key == KeyToggleHelp && m.overlay == overlayHelp,
			key == KeyFilterHelp && m.overlay == overlayFilterHelp,
			key == KeySpecs && m.overlay == overlaySpecs:
			m.overlay = overlayNone
			return true, nil
		case key == KeyQuit || key == KeyQuitAlt:
			m.quitting = true
			return true, tea.Quit
		}
		return true, nil
	}

	if col, ok := sortKeys[key]; ok {
		m.sortBy(col)
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyToggleHelp:
		m.overlay = overlayHelp
		return true, nil

	case KeyFilterHelp:
		m.overlay = overlayFilterHelp
		return true, nil

	case KeySpecs:
		m.overlay = overlaySpecs
		if m.specs == nil && m.source != nil {
			return true, m.specsCmd()
		}
		return true, nil

	case KeyRefresh:
		m.sync()
		return true, nil

	case KeyCycleSort:
		m.sortBy(m.sortCol.Next())
		return true, nil

	case KeyReverseSort:
		m.sortDesc = !m.sortDesc
		m.resort()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		m.selectIndex(m.cursor - 1)
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		m.selectIndex(m.cursor + 1)
		return true, nil

	case KeyPageUp:
		m.selectIndex(m.cursor - m.tableHeight())
		return true, nil

	case KeyPageDown:
		m.selectIndex(m.cursor + m.tableHeight())
		return true, nil

	case KeySelectFirst:
		m.selectIndex(0)
		return true, nil

	case KeySelectLast:
		m.selectIndex(len(m.view) - 1)
		return true, nil

	case KeyFilter:
		m.filtering = true
		m.filter.CursorEnd()
		return true, m.filter.Focus()

	case KeyCollapse:
		if !m.pred.Empty() {
			m.filter.SetValue("")
			m.filterErr = nil
			m.setFilter(reconcile.Predicate{})
		}
		return true, nil

	case KeyKill:
		return true, m.startKill(false)

	case KeyForceKill:
		return true, m.startKill(true)
	}

	return false, nil
}

// sortBy switches to col, or flips the direction when col is already active.
func (m *Model) sortBy(col SortColumn) {
	if col == m.sortCol {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol = col
		m.sortDesc = col.DescendingByDefault()
	}
	m.resort()
}

// updateFilter edits the filter bar. Each edit that parses is applied
// immediately; a parse error is shown and the previous filter stays.
func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuitAlt:
		m.quitting = true
		return m, tea.Quit

	case KeyApply:
		if m.filterErr == nil {
			m.filtering = false
			m.filter.Blur()
		}
		return m, nil

	case KeyCollapse:
		m.filtering = false
		m.filterErr = nil
		m.filter.Blur()
		m.filter.SetValue(m.pred.String())
		return m, nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() == before {
		return m, cmd
	}

	pred, err := reconcile.ParsePredicate(m.filter.Value())
	if err != nil {
		m.filterErr = err
		return m, cmd
	}
	m.filterErr = nil
	m.setFilter(pred)
	return m, cmd
}
