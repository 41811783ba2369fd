package ui

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count with binary units ("2.0 KiB").
// Negative values render as 0 B.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatRate renders bytes per second. Zero renders as "-" so idle rows
// stay quiet.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 || math.IsNaN(bytesPerSecond) {
		return "-"
	}
	return humanize.IBytes(uint64(math.Round(bytesPerSecond))) + "/s"
}

// FormatRuntime renders elapsed seconds as mm:ss, hh:mm:ss or "Nd hh:mm".
func FormatRuntime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	s := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %02d:%02d", days, h, m)
	case h > 0:
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	default:
		return fmt.Sprintf("%02d:%02d", m, s)
	}
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f", p)
}

// Truncate shortens s to at most width runes, ending with an ellipsis
// when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
