package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/config"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/procctl"
	"github.com/rileyhilliard/procmon/internal/reconcile"
)

// LayoutMode controls which columns fit the terminal width.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: PID, name, CPU, memory
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: adds network, runtime and type
	LayoutCompact
	// LayoutStandard is for terminals 120+ columns: every column
	LayoutStandard
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
)

// HeightMinimal is the height below which the summary lines are dropped.
const HeightMinimal = 24

const (
	statusTTL    = 4 * time.Second
	killTimeout  = 10 * time.Second
	specsTimeout = 5 * time.Second
)

// Source feeds the table. *collector.Collector satisfies it.
type Source interface {
	Latest() (collector.Snapshot, bool)
	Specs(ctx context.Context) (collector.HostSpecs, error)
}

// Killer terminates processes. *procctl.Terminator satisfies it.
type Killer interface {
	Terminate(ctx context.Context, rec collector.ProcessRecord, opts procctl.Options) (procctl.Result, error)
}

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayFilterHelp
	overlaySpecs
)

// Options configures a Model.
type Options struct {
	Source Source
	// Killer is optional; without it the kill keys report that termination
	// is unavailable.
	Killer Killer
	UI     config.UIConfig
	// Filter is the initial filter expression.
	Filter string
	Clock  func() time.Time
}

// Model is the Bubble Tea model for the live process table.
type Model struct {
	source  Source
	killer  Killer
	engine  *reconcile.Engine
	rows    *rowSet
	history *History

	pred    reconcile.Predicate
	snap    collector.Snapshot
	hasSnap bool
	lastSeq uint64

	view        []*row
	sortCol     SortColumn
	sortDesc    bool
	selectedPID int
	cursor      int
	offset      int

	filter    textinput.Model
	filtering bool
	filterErr error

	overlay  overlay
	specs    *collector.HostSpecs
	specsErr error

	confirm *killPrompt

	status      string
	statusErr   bool
	statusUntil time.Time

	refresh    time.Duration
	thresholds config.ThresholdConfig
	width      int
	height     int
	quitting   bool
	now        func() time.Time
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// specsMsg carries the host specs once they are read.
type specsMsg struct {
	specs collector.HostSpecs
	err   error
}

// killResultMsg reports the outcome of a termination.
type killResultMsg struct {
	rec collector.ProcessRecord
	res procctl.Result
	err error
}

// NewModel creates the table model. It fails only when the initial filter
// does not parse.
func NewModel(opts Options) (Model, error) {
	pred, err := reconcile.ParsePredicate(opts.Filter)
	if err != nil {
		return Model{}, err
	}

	defaults := config.DefaultConfig().UI
	ui := opts.UI
	if ui.Refresh <= 0 {
		ui.Refresh = defaults.Refresh
	}
	if ui.Thresholds.CPU.Critical == 0 {
		ui.Thresholds.CPU = defaults.Thresholds.CPU
	}
	if ui.Thresholds.RAM.Critical == 0 {
		ui.Thresholds.RAM = defaults.Thresholds.RAM
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = `name:chrome cpu:5+ mem:[100MB,1GB]`
	ti.CharLimit = 256
	ti.SetValue(pred.String())

	col := ParseSortColumn(ui.DefaultSort)

	return Model{
		source:      opts.Source,
		killer:      opts.Killer,
		engine:      reconcile.NewEngine(),
		rows:        newRowSet(),
		history:     NewHistory(DefaultHistorySize),
		pred:        pred,
		sortCol:     col,
		sortDesc:    col.DescendingByDefault(),
		// -1 so macOS kernel_task (PID 0) isn't preselected
		selectedPID: -1,
		filter:      ti,
		refresh:     ui.Refresh,
		thresholds:  ui.Thresholds,
		now:         now,
	}, nil
}

// Init pulls whatever is already published; each tick schedules the next.
func (m Model) Init() tea.Cmd {
	now := m.now
	return func() tea.Msg { return tickMsg(now()) }
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filter.Width = max(10, m.width-4)
		m.clampScroll()
		return m, nil

	case tickMsg:
		m.sync()
		return m, m.tickCmd()

	case specsMsg:
		if msg.err != nil {
			m.specsErr = msg.err
		} else {
			specs := msg.specs
			m.specs = &specs
			m.specsErr = nil
		}
		return m, nil

	case killResultMsg:
		m.handleKillResult(msg)
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		return m, nil
	}

	// Anything else belongs to whichever component has focus.
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sync pulls the newest snapshot and reconciles it when it is new.
func (m *Model) sync() {
	if m.source == nil {
		return
	}
	snap, ok := m.source.Latest()
	if !ok || (m.hasSnap && snap.Seq == m.lastSeq) {
		return
	}
	m.snap = snap
	m.hasSnap = true
	m.lastSeq = snap.Seq
	m.history.Push(snap)
	m.reconcile()
}

// reconcile runs the engine against the current snapshot and predicate
// and applies the resulting operations to the rows.
func (m *Model) reconcile() {
	if !m.hasSnap {
		return
	}
	ops := m.engine.Reconcile(m.snap, m.pred)
	m.rows.apply(ops, m.engine)
	m.resort()
}

func (m *Model) resort() {
	m.view = m.rows.sorted(m.sortCol, m.sortDesc)
	m.restoreSelection()
}

// restoreSelection keeps the cursor on the same PID across refreshes. When
// that process is gone or filtered out the cursor stays at the same index.
func (m *Model) restoreSelection() {
	if len(m.view) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	for i, r := range m.view {
		if r.record.PID == m.selectedPID {
			m.cursor = i
			m.clampScroll()
			return
		}
	}
	m.selectIndex(m.cursor)
}

func (m *Model) selectIndex(i int) {
	if len(m.view) == 0 {
		m.cursor = 0
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.view) {
		i = len(m.view) - 1
	}
	m.cursor = i
	m.selectedPID = m.view[i].record.PID
	m.clampScroll()
}

// clampScroll keeps the cursor inside the visible window.
func (m *Model) clampScroll() {
	h := m.tableHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if maxOffset := max(0, len(m.view)-h); m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// tableHeight is the number of process rows that fit.
func (m Model) tableHeight() int {
	if m.height == 0 {
		return len(m.view) + 1
	}
	return max(1, m.height-m.chromeLines())
}

// chromeLines counts the header, column header and footer lines.
func (m Model) chromeLines() int {
	lines := 4 // title, metrics, column header, footer
	if m.showSummary() {
		lines += len(m.summaryLines())
	}
	return lines
}

func (m Model) showSummary() bool {
	return m.height == 0 || m.height >= HeightMinimal
}

func (m Model) summaryLines() []string {
	if !m.hasSnap {
		return nil
	}
	return m.snap.Summary.Lines()
}

// layoutMode returns the column layout for the current width.
func (m Model) layoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointStandard || m.width == 0:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// Selected returns the record under the cursor.
func (m Model) Selected() (collector.ProcessRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return collector.ProcessRecord{}, false
	}
	return m.view[m.cursor].record, true
}

// Predicate returns the active filter.
func (m Model) Predicate() reconcile.Predicate {
	return m.pred
}

// Rows returns the visible records in display order.
func (m Model) Rows() []collector.ProcessRecord {
	out := make([]collector.ProcessRecord, len(m.view))
	for i, r := range m.view {
		out[i] = r.record
	}
	return out
}

// setFilter replaces the predicate and reconciles so hidden rows come back
// through Show and filtered rows leave through Hide.
func (m *Model) setFilter(pred reconcile.Predicate) {
	m.pred = pred
	m.reconcile()
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
	m.statusUntil = m.now().Add(statusTTL)
}

func (m *Model) setError(err error) {
	m.status = errors.Headline(err)
	m.statusErr = true
	m.statusUntil = m.now().Add(statusTTL)
}

func (m Model) statusLine() (string, bool) {
	if m.status == "" || m.now().After(m.statusUntil) {
		return "", false
	}
	return m.status, m.statusErr
}

func (m Model) specsCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), specsTimeout)
		defer cancel()
		specs, err := source.Specs(ctx)
		return specsMsg{specs: specs, err: err}
	}
}
