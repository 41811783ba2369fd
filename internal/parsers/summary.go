package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

// Anchors that introduce the summary lines in top's header.
const (
	AnchorNetworks = "Networks:"
	AnchorVM       = "VM:"
	AnchorDisks    = "Disks:"
)

// NetworkTotals are cumulative interface counters since boot.
type NetworkTotals struct {
	Present  bool
	InText   string
	OutText  string
	InBytes  int64
	OutBytes int64
}

// VMStats describes virtual memory pressure.
type VMStats struct {
	Present        bool
	AppsVSize      string
	FrameworkVSize string
	SwapIns        int64
	SwapOuts       int64
}

// DiskStats are cumulative disk I/O counters.
type DiskStats struct {
	Present      bool
	ReadText     string
	WrittenText  string
	ReadBytes    int64
	WrittenBytes int64
}

// SystemSummary is the parsed form of top's Networks/VM/Disks lines.
// A section whose anchor was missing has Present == false.
type SystemSummary struct {
	Network NetworkTotals
	VM      VMStats
	Disk    DiskStats
}

var (
	// "Networks: packets: 21060567/26G in, 7375591/1598M out."
	networksRe = regexp.MustCompile(`\d+/(\S+) in(?:,\s*\d+/(\S+) out)?`)
	// "VM: 2437G vsize, 1100M framework vsize, 12(0) swapins, 34(0) swapouts."
	vsizeRe     = regexp.MustCompile(`(\S+) vsize`)
	frameworkRe = regexp.MustCompile(`(\S+) framework vsize`)
	swapInsRe   = regexp.MustCompile(`(\d+)(?:\(\d+\))? swapins`)
	swapOutsRe  = regexp.MustCompile(`(\d+)(?:\(\d+\))? swapouts`)
	// "Disks: 6543210/123G read, 3210987/98G written."
	disksRe = regexp.MustCompile(`\d+/(\S+) read(?:,\s*\d+/(\S+) written)?`)
)

// ParseSystemSummary extracts network, VM and disk totals from free-form
// status lines. It never fails; missing anchors or unparseable values
// leave the matching section empty.
func ParseSystemSummary(output string) SystemSummary {
	var s SystemSummary

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, AnchorNetworks):
			s.Network = parseNetworksLine(line)
		case strings.Contains(line, AnchorVM):
			s.VM = parseVMLine(line)
		case strings.Contains(line, AnchorDisks):
			s.Disk = parseDisksLine(line)
		}
	}

	return s
}

func parseNetworksLine(line string) NetworkTotals {
	n := NetworkTotals{Present: true}
	m := networksRe.FindStringSubmatch(line)
	if m == nil {
		return n
	}
	n.InText = trimAmount(m[1])
	n.OutText = trimAmount(m[2])
	n.InBytes = ParseMemoryString(n.InText)
	n.OutBytes = ParseMemoryString(n.OutText)
	return n
}

func parseVMLine(line string) VMStats {
	v := VMStats{Present: true}
	// The first "X vsize" match is the app total; the framework figure is
	// matched separately because its own match would read "framework".
	if m := vsizeRe.FindStringSubmatch(line); m != nil && m[1] != "framework" {
		v.AppsVSize = trimAmount(m[1])
	}
	if m := frameworkRe.FindStringSubmatch(line); m != nil {
		v.FrameworkVSize = trimAmount(m[1])
	}
	if m := swapInsRe.FindStringSubmatch(line); m != nil {
		v.SwapIns, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := swapOutsRe.FindStringSubmatch(line); m != nil {
		v.SwapOuts, _ = strconv.ParseInt(m[1], 10, 64)
	}
	return v
}

func parseDisksLine(line string) DiskStats {
	d := DiskStats{Present: true}
	m := disksRe.FindStringSubmatch(line)
	if m == nil {
		return d
	}
	d.ReadText = trimAmount(m[1])
	d.WrittenText = trimAmount(m[2])
	d.ReadBytes = ParseMemoryString(d.ReadText)
	d.WrittenBytes = ParseMemoryString(d.WrittenText)
	return d
}

func trimAmount(s string) string {
	return strings.TrimRight(s, ".,")
}
