package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/ui"
)

var specLabelStyle = lipgloss.NewStyle().
	Foreground(ColorTextSecondary).
	Width(12)

func (m Model) renderSpecsOverlay() string {
	lines := []string{helpTitleStyle.Render("Host Specs"), ""}

	switch {
	case m.specsErr != nil:
		lines = append(lines, ErrorStyle.Render(errors.Headline(m.specsErr)))
	case m.specs == nil:
		lines = append(lines, LabelStyle.Render("Reading host details..."))
	default:
		for _, r := range ui.SpecRows(*m.specs) {
			lines = append(lines, specLabelStyle.Render(r[0])+ValueStyle.Render(r[1]))
		}
	}
	lines = append(lines, "", LabelStyle.Render("Press i to close"))

	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}
