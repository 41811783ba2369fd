package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/procmon/internal/config"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws percentage data on a fixed 0-100 scale using the
// newest width points. Shorter series are right-aligned so the newest
// point always sits at the right edge. The color follows the last value.
func RenderSparkline(data []float64, width int, thresh config.ThresholdValues) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(data)))
	for _, v := range data {
		b.WriteRune(sparklineBlocks[sparkLevel(v)])
	}

	color := MetricColorWithThresholds(data[len(data)-1], thresh.Warning, thresh.Critical)
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

func sparkLevel(v float64) int {
	top := len(sparklineBlocks) - 1
	level := int(v / 100 * float64(top))
	if level < 0 {
		return 0
	}
	if level > top {
		return top
	}
	return level
}
