package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/procmon/internal/collector"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table sized to show every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selected in printed output.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// ProcessColumns returns the snapshot table columns. The name column takes
// whatever is left of width.
func ProcessColumns(width int) []TableColumn {
	cols := []TableColumn{
		{Title: "PID", Width: 7},
		{Title: "NAME"},
		{Title: "CPU%", Width: 6},
		{Title: "MEM", Width: 10},
		{Title: "GPU", Width: 6},
		{Title: "NET", Width: 11},
		{Title: "TIME", Width: 11},
		{Title: "TYPE", Width: 6},
	}

	used := 0
	for _, c := range cols {
		// bubbles pads each cell by one on both sides
		used += c.Width + 2
	}
	cols[1].Width = max(16, width-used)
	return cols
}

// ProcessRows formats records in the given order for ProcessColumns.
func ProcessRows(recs []collector.ProcessRecord) [][]string {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			fmt.Sprintf("%d", r.PID),
			r.Name,
			FormatPercent(r.CPU),
			FormatBytes(r.MemoryBytes),
			r.GPU,
			FormatRate(r.NetRate),
			FormatRuntime(r.RuntimeSeconds),
			r.Class.String(),
		}
	}
	return rows
}

// RenderProcessTable renders records as a plain table width cells wide.
func RenderProcessTable(recs []collector.ProcessRecord, width int) string {
	if len(recs) == 0 {
		return MutedStyle().Render("No processes")
	}
	return RenderSimpleTable(ProcessColumns(width), ProcessRows(recs))
}

// SpecRows returns the label/value pairs describing the host in display
// order. Empty values are skipped.
func SpecRows(s collector.HostSpecs) [][2]string {
	rows := [][2]string{
		{"Host", s.Hostname},
		{"Machine", s.Machine},
		{"Processor", s.Processor},
		{"Cores", countText(s.Cores)},
		{"Memory", bytesText(s.MemoryBytes)},
		{"OS", s.OS},
		{"Kernel", s.Kernel},
	}
	if s.Uptime > 0 {
		rows = append(rows, [2]string{"Uptime", FormatRuntime(int64(s.Uptime.Seconds()))})
	}

	out := rows[:0]
	for _, r := range rows {
		if r[1] != "" {
			out = append(out, r)
		}
	}
	return out
}

func countText(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func bytesText(n uint64) string {
	if n == 0 {
		return ""
	}
	return FormatBytes(int64(n))
}

// RenderKeyValues renders label/value rows with the labels padded to a
// common width.
func RenderKeyValues(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	label := lipgloss.NewStyle().Foreground(ColorSecondary)
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(label.Render(padRight(r[0], width+2)))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
