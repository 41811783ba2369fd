package collector

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Classification separates processes the user launched from OS daemons.
type Classification int

const (
	ClassUser Classification = iota
	ClassSystem
)

// String returns the display name of the classification.
func (c Classification) String() string {
	if c == ClassSystem {
		return "System"
	}
	return "User"
}

// MarshalText renders the classification as "System" or "User".
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "System" or "User" in any case.
func (c *Classification) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "system":
		*c = ClassSystem
	case "user":
		*c = ClassUser
	default:
		return fmt.Errorf("unknown classification %q", text)
	}
	return nil
}

// GPUUnavailable is shown when no GPU reading exists.
const GPUUnavailable = "N/A"

// ProcessRecord is one row of the merged process table. Every field always
// holds a value; sources that have not reported leave their defaults.
type ProcessRecord struct {
	PID            int            `json:"pid" yaml:"pid"`
	Name           string         `json:"name" yaml:"name"`
	CPU            float64        `json:"cpu" yaml:"cpu"`
	MemoryBytes    int64          `json:"memory_bytes" yaml:"memory_bytes"`
	GPU            string         `json:"gpu" yaml:"gpu"`
	NetRate        float64        `json:"net_rate" yaml:"net_rate"`
	RuntimeSeconds int64          `json:"runtime_seconds" yaml:"runtime_seconds"`
	Class          Classification `json:"class" yaml:"class"`
}

// Equal reports whether two records would render identically.
func (r ProcessRecord) Equal(o ProcessRecord) bool {
	return r == o
}

// SystemSummary holds the human-readable network, VM and disk lines.
type SystemSummary struct {
	Network       string `json:"network" yaml:"network"`
	VirtualMemory string `json:"virtual_memory" yaml:"virtual_memory"`
	Disk          string `json:"disk" yaml:"disk"`
}

// Lines returns the non-empty summary lines in display order.
func (s SystemSummary) Lines() []string {
	lines := make([]string, 0, 3)
	for _, l := range []string{s.Network, s.VirtualMemory, s.Disk} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Snapshot is one merged, internally consistent view of the host.
// Treat it as immutable once published; use Clone before changing it.
type Snapshot struct {
	Processes   map[int]ProcessRecord
	Summary     SystemSummary
	CPUPercent  float64
	MemPercent  float64
	GPU         string
	CollectedAt time.Time
	Seq         uint64

	// Truncated is set when the process cap dropped rows this cycle.
	Truncated bool
	// Partial is set when a source ran out of cycle budget mid-parse.
	Partial bool
	// Throttled is set while the collector is backing off after repeated failures.
	Throttled bool
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Processes = make(map[int]ProcessRecord, len(s.Processes))
	for pid, r := range s.Processes {
		c.Processes[pid] = r
	}
	return c
}

// Sorted returns the records ordered by PID.
func (s Snapshot) Sorted() []ProcessRecord {
	out := make([]ProcessRecord, 0, len(s.Processes))
	for _, r := range s.Processes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// PIDs returns the process ids in ascending order.
func (s Snapshot) PIDs() []int {
	pids := make([]int, 0, len(s.Processes))
	for pid := range s.Processes {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}
