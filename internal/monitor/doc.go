// Package monitor implements the live process table.
//
// The table never samples anything itself. On every tick it pulls the
// newest snapshot from a Source (the collector's freshness bin), runs the
// reconcile engine with the active filter and applies the returned
// operations to its rows. Rows are keyed by a handle the engine stores, so
// a refresh only touches rows that actually changed and the selection
// follows its PID wherever the sort moves it.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: rows, sort column and direction, selection, filter, overlays
//   - Update: keystrokes, refresh ticks, specs and kill results
//   - View: header with system gauges, the table, and a footer
//
// # Key Components
//
//	Model      - The Bubble Tea model holding table state
//	rowSet     - Rendered rows, changed only by reconcile operations
//	History    - Ring buffers of system CPU, memory and GPU for sparklines
//	killPrompt - huh confirmation shown before terminating a process
//
// # Message Flow
//
//  1. tickMsg fires every ui.refresh (default 250ms)
//  2. sync() reads Source.Latest(); a new sequence number triggers reconcile
//  3. the operation list is applied to rowSet and the view is re-sorted
//  4. View() renders the visible window around the selection
//
// # Keyboard Controls
//
//	q, Ctrl+C    Quit
//	up/k, down/j Move selection
//	s, S, 1-8    Sort column, reverse, pick column
//	/            Filter (field:value terms, see f)
//	x, X         Terminate selected process (X allows system processes)
//	i            Host specs
//	?            Help overlay
package monitor
