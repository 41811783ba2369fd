package collector

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/procmon/internal/parsers"
)

// FormatSummary renders parsed summary counters as display lines. inRate
// and outRate are bytes/sec; haveRates is false on the first sample.
func FormatSummary(s parsers.SystemSummary, inRate, outRate float64, haveRates bool) SystemSummary {
	return SystemSummary{
		Network:       formatNetwork(s.Network, inRate, outRate, haveRates),
		VirtualMemory: formatVM(s.VM),
		Disk:          formatDisk(s.Disk),
	}
}

func formatNetwork(n parsers.NetworkTotals, inRate, outRate float64, haveRates bool) string {
	if !n.Present {
		return NetworkPlaceholder
	}

	rates := ""
	if haveRates {
		rates = fmt.Sprintf(" (↓%s/s ↑%s/s)", humanize.IBytes(uint64(inRate)), humanize.IBytes(uint64(outRate)))
	}

	switch {
	case n.InText != "" && n.OutText != "":
		return fmt.Sprintf("Network: %s downloaded, %s uploaded%s", n.InText, n.OutText, rates)
	case n.InText != "":
		return fmt.Sprintf("Network: %s downloaded%s", n.InText, rates)
	default:
		return NetworkPlaceholder
	}
}

func formatVM(v parsers.VMStats) string {
	if !v.Present {
		return VMPlaceholder
	}

	swap := fmt.Sprintf(" (Swap-ins: %d, Swap-outs: %d)", v.SwapIns, v.SwapOuts)
	switch {
	case v.AppsVSize != "" && v.FrameworkVSize != "":
		return fmt.Sprintf("Virtual Memory: %s address space for apps, %s for system%s", v.AppsVSize, v.FrameworkVSize, swap)
	case v.AppsVSize != "":
		return fmt.Sprintf("Virtual Memory: %s address space reserved (not actual RAM used)%s", v.AppsVSize, swap)
	default:
		return "Virtual Memory: System managing address space" + swap
	}
}

func formatDisk(d parsers.DiskStats) string {
	switch {
	case !d.Present:
		return DiskPlaceholder
	case d.ReadText != "" && d.WrittenText != "":
		return fmt.Sprintf("Disk Activity: %s read, %s written", d.ReadText, d.WrittenText)
	case d.ReadText != "":
		return fmt.Sprintf("Disk Activity: %s read", d.ReadText)
	case d.WrittenText != "":
		return fmt.Sprintf("Disk Activity: %s written", d.WrittenText)
	default:
		return DiskPlaceholder
	}
}
