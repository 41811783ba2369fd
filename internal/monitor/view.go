package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/ui"
)

const (
	barWidth       = 10
	sparkWidth     = 20
	minNameWidth   = 12
	defaultWidth   = BreakpointStandard
	columnSpacing  = 1
	rowIndentation = 1
)

// column is one rendered table column.
type column struct {
	col   SortColumn
	width int
	right bool
}

var fixedColumns = map[SortColumn]column{
	SortByPID:  {col: SortByPID, width: 7, right: true},
	SortByCPU:  {col: SortByCPU, width: 6, right: true},
	SortByMem:  {col: SortByMem, width: 10, right: true},
	SortByGPU:  {col: SortByGPU, width: 7, right: true},
	SortByNet:  {col: SortByNet, width: 11, right: true},
	SortByTime: {col: SortByTime, width: 11, right: true},
	SortByType: {col: SortByType, width: 6},
}

var layoutColumns = map[LayoutMode][]SortColumn{
	LayoutMinimal:  {SortByPID, SortByName, SortByCPU, SortByMem},
	LayoutCompact:  {SortByPID, SortByName, SortByCPU, SortByMem, SortByNet, SortByTime, SortByType},
	LayoutStandard: {SortByPID, SortByName, SortByCPU, SortByMem, SortByGPU, SortByNet, SortByTime, SortByType},
}

// View renders the table or whichever overlay is open.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelpOverlay()
	case overlayFilterHelp:
		return m.renderFilterHelpOverlay()
	case overlaySpecs:
		return m.renderSpecsOverlay()
	}

	if m.confirm != nil {
		return m.place(helpBoxStyle.Render(m.confirm.form.View()))
	}

	return m.renderTable()
}

func (m Model) renderTable() string {
	cols := m.columns()

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(m.renderMetrics())
	b.WriteString("\n")
	if m.showSummary() {
		for _, line := range m.summaryLines() {
			b.WriteString(MutedStyle.Render(" " + line))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.renderColumnHeader(cols))
	b.WriteString("\n")

	height := m.tableHeight()
	switch {
	case !m.hasSnap:
		b.WriteString(LabelStyle.Render(" Collecting process data..."))
		b.WriteString(strings.Repeat("\n", height))
	case len(m.view) == 0:
		b.WriteString(LabelStyle.Render(" No processes match " + m.pred.String()))
		b.WriteString(strings.Repeat("\n", height))
	default:
		end := min(len(m.view), m.offset+height)
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRow(m.view[i].record, cols, i == m.cursor))
			b.WriteString("\n")
		}
		if pad := height - (end - m.offset); pad > 0 && m.height > 0 {
			b.WriteString(strings.Repeat("\n", pad))
		}
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTitle() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("procmon")

	parts := []string{title}
	if m.hasSnap {
		count := fmt.Sprintf("%d processes", len(m.snap.Processes))
		if !m.pred.Empty() {
			count += fmt.Sprintf(", %d shown", len(m.view))
		}
		parts = append(parts, ValueStyle.Render(count))
	}

	arrow := "↑"
	if m.sortDesc {
		arrow = "↓"
	}
	parts = append(parts, LabelStyle.Render("sort "+m.sortCol.Title()+" "+arrow))

	if !m.pred.Empty() {
		parts = append(parts, LabelStyle.Render("filter ")+ValueStyle.Render(m.pred.String()))
	}

	if m.hasSnap {
		if m.snap.Throttled {
			parts = append(parts, WarningStyle.Render("throttled"))
		}
		if m.snap.Partial {
			parts = append(parts, WarningStyle.Render("partial"))
		}
		if m.snap.Truncated {
			parts = append(parts, WarningStyle.Render("truncated"))
		}
	}

	sep := MutedStyle.Render(" · ")
	return " " + strings.Join(parts, sep)
}

func (m Model) renderMetrics() string {
	if !m.hasSnap {
		return ""
	}
	cpu := m.thresholds.CPU
	ram := m.thresholds.RAM

	cpuPart := LabelStyle.Render("CPU ") +
		CompactProgressBarWithThresholds(barWidth, m.snap.CPUPercent, cpu.Warning, cpu.Critical) + " " +
		MetricStyleWithThresholds(m.snap.CPUPercent, cpu.Warning, cpu.Critical).Render(fmt.Sprintf("%5.1f%%", m.snap.CPUPercent))
	memPart := LabelStyle.Render("MEM ") +
		CompactProgressBarWithThresholds(barWidth, m.snap.MemPercent, ram.Warning, ram.Critical) + " " +
		MetricStyleWithThresholds(m.snap.MemPercent, ram.Warning, ram.Critical).Render(fmt.Sprintf("%5.1f%%", m.snap.MemPercent))

	if m.layoutMode() != LayoutMinimal {
		cpuPart += " " + RenderSparkline(m.history.CPU(sparkWidth), sparkWidth, cpu)
		memPart += " " + RenderSparkline(m.history.Mem(sparkWidth), sparkWidth, ram)
	}

	gpuPart := LabelStyle.Render("GPU ") + ValueStyle.Render(m.snap.GPU)

	return " " + cpuPart + "   " + memPart + "   " + gpuPart
}

// columns returns the columns that fit, with the name column taking
// whatever width is left.
func (m Model) columns() []column {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	order := layoutColumns[m.layoutMode()]
	cols := make([]column, 0, len(order))
	used := rowIndentation
	for _, c := range order {
		if c == SortByName {
			cols = append(cols, column{col: SortByName})
			continue
		}
		cols = append(cols, fixedColumns[c])
		used += fixedColumns[c].width
	}
	used += columnSpacing * (len(order) - 1)

	nameWidth := max(minNameWidth, width-used)
	for i := range cols {
		if cols[i].col == SortByName {
			cols[i].width = nameWidth
		}
	}
	return cols
}

func (m Model) renderColumnHeader(cols []column) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		title := c.col.Title()
		style := ColumnHeaderStyle
		if c.col == m.sortCol {
			if m.sortDesc {
				title += "↓"
			} else {
				title += "↑"
			}
			style = SortedColumnStyle
		}
		cells[i] = style.Render(padCell(title, c.width, c.right))
	}
	return strings.Repeat(" ", rowIndentation) + strings.Join(cells, strings.Repeat(" ", columnSpacing))
}

func (m Model) renderRow(rec collector.ProcessRecord, cols []column, selected bool) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = padCell(ui.Truncate(cellText(rec, c.col), c.width), c.width, c.right)
	}
	indent := strings.Repeat(" ", rowIndentation)
	spacing := strings.Repeat(" ", columnSpacing)

	if selected {
		return SelectedRowStyle.Render(indent + strings.Join(cells, spacing))
	}

	for i, c := range cols {
		switch {
		case c.col == SortByCPU:
			cpu := m.thresholds.CPU
			cells[i] = MetricStyleWithThresholds(rec.CPU, cpu.Warning, cpu.Critical).Render(cells[i])
		case rec.Class == collector.ClassSystem:
			cells[i] = SystemRowStyle.Render(cells[i])
		}
	}
	return indent + strings.Join(cells, spacing)
}

func cellText(rec collector.ProcessRecord, col SortColumn) string {
	switch col {
	case SortByPID:
		return fmt.Sprintf("%d", rec.PID)
	case SortByName:
		return rec.Name
	case SortByCPU:
		return ui.FormatPercent(rec.CPU)
	case SortByMem:
		return ui.FormatBytes(rec.MemoryBytes)
	case SortByGPU:
		return rec.GPU
	case SortByNet:
		return ui.FormatRate(rec.NetRate)
	case SortByTime:
		return ui.FormatRuntime(rec.RuntimeSeconds)
	case SortByType:
		return rec.Class.String()
	}
	return ""
}

// padCell pads s with spaces to width display cells.
func padCell(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func (m Model) renderFooter() string {
	if m.filtering {
		line := FilterPromptStyle.Render(m.filter.View())
		if m.filterErr != nil {
			line += "  " + ErrorStyle.Render(filterErrorText(m.filterErr))
		}
		return line
	}

	if msg, isErr := m.statusLine(); msg != "" {
		if isErr {
			return FooterStyle.Render(ErrorStyle.Render(msg))
		}
		return FooterStyle.Render(ValueStyle.Render(msg))
	}

	hints := "? keys  / filter  f filter help  s sort  x kill  i specs  q quit"
	if !m.pred.Empty() {
		hints = "esc clear filter  " + hints
	}
	return FooterStyle.Render(hints)
}

// filterErrorText keeps the headline and hint of a filter error on one line.
func filterErrorText(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}
