package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/procmon/internal/reconcile"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines all keyboard shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "up / k", Desc: "Select previous process"},
	{Key: "down / j", Desc: "Select next process"},
	{Key: "PgUp / PgDn", Desc: "Move one page"},
	{Key: "Home / End", Desc: "Select first / last process"},
	{Key: "s", Desc: "Cycle sort column"},
	{Key: "S", Desc: "Reverse sort direction"},
	{Key: "1-8", Desc: "Sort by PID, name, CPU, MEM, GPU, NET, time, type"},
	{Key: "/", Desc: "Edit filter (Enter to close, Esc to cancel)"},
	{Key: "Esc", Desc: "Clear filter / close overlay"},
	{Key: "f", Desc: "Filter syntax"},
	{Key: "x", Desc: "Terminate selected process"},
	{Key: "X", Desc: "Terminate, including system processes"},
	{Key: "i", Desc: "Host specs"},
	{Key: "r", Desc: "Refresh now"},
	{Key: "?", Desc: "Toggle this help"},
}

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay renders a centered box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}
	lines = append(lines, "", LabelStyle.Render("Press ? to close"))

	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}

// renderFilterHelpOverlay lists the filter grammar.
func (m Model) renderFilterHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Filter Syntax"), ""}
	for _, l := range reconcile.HelpLines() {
		lines = append(lines, helpDescStyle.Render(l))
	}
	if !m.pred.Empty() {
		lines = append(lines, "", LabelStyle.Render("Active: ")+ValueStyle.Render(m.pred.String()))
	}
	lines = append(lines, "", LabelStyle.Render("Press f to close"))

	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}

// place centers content in the terminal.
func (m Model) place(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
