// Package parsers turns raw tool output into structured records.
//
// Every function here is pure: no I/O, no shared state. Loops over output
// lines take a context and check it once per line so a cancelled
// collection stops parsing promptly.
package parsers

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"
)

const (
	// MinProcessTokens is the fewest whitespace tokens a process line can
	// have: pid, at least one name token, cpu, memory, time.
	MinProcessTokens = 5

	// MaxNameLen bounds a process display name in bytes.
	MaxNameLen = 255

	// MaxCPUPercent is the upper clamp for normalized CPU.
	MaxCPUPercent = 999.9
)

// ErrRowLimit is returned with the rows parsed so far when MaxRows is hit.
var ErrRowLimit = errors.New("process row limit reached")

// ProcessRow is one parsed process table line.
type ProcessRow struct {
	PID            int
	Name           string
	CPU            float64
	MemoryBytes    int64
	RuntimeSeconds int64
}

// ProcessTableOptions controls normalization of parsed rows.
type ProcessTableOptions struct {
	// Cores divides raw CPU%. Values below 1 are treated as 1.
	Cores int
	// BareMemoryUnit multiplies memory values that carry no unit suffix.
	// Zero means bytes.
	BareMemoryUnit int64
	// MaxRows stops parsing after this many rows. Zero means unlimited.
	MaxRows int
}

// ParseProcessTable parses "pid name... cpu mem time" lines. Header lines
// and lines with too few tokens are skipped. On cancellation it returns the
// rows parsed so far together with ctx.Err().
func ParseProcessTable(ctx context.Context, output string, opts ProcessTableOptions) ([]ProcessRow, error) {
	cores := opts.Cores
	if cores < 1 {
		cores = 1
	}
	unit := opts.BareMemoryUnit
	if unit <= 0 {
		unit = 1
	}

	var rows []ProcessRow
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		row, ok := parseProcessLine(scanner.Text(), cores, unit)
		if !ok {
			continue
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return rows, ErrRowLimit
		}
		rows = append(rows, row)
	}

	return rows, scanner.Err()
}

func parseProcessLine(line string, cores int, bareUnit int64) (ProcessRow, bool) {
	fields := strings.Fields(line)
	if len(fields) < MinProcessTokens {
		return ProcessRow{}, false
	}

	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid < 0 {
		return ProcessRow{}, false
	}

	n := len(fields)
	row := ProcessRow{
		PID:            pid,
		Name:           truncateName(strings.Join(fields[1:n-3], " ")),
		CPU:            normalizeCPU(fields[n-3], cores),
		MemoryBytes:    parseMemoryWithUnit(fields[n-2], bareUnit),
		RuntimeSeconds: ParseRuntime(fields[n-1]),
	}
	return row, true
}

func normalizeCPU(s string, cores int) float64 {
	v, ok := parseFinite(strings.TrimSuffix(s, "%"))
	if !ok || v < 0 {
		return 0
	}
	v /= float64(cores)
	if v > MaxCPUPercent {
		return MaxCPUPercent
	}
	return v
}

func truncateName(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	// Back off to a rune boundary.
	cut := MaxNameLen
	for cut > 0 && !isRuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// LastSample returns output from the last occurrence of marker onward.
// top prints one block per sample and only the last one has meaningful
// CPU deltas. If the marker is absent the whole output is returned.
func LastSample(output, marker string) string {
	idx := strings.LastIndex(output, marker)
	if idx < 0 {
		return output
	}
	return output[idx:]
}
