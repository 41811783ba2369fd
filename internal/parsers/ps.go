package parsers

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// ParsePIDValues parses two-column "ps -eo pid,X" output into a map.
// The header and malformed lines are skipped.
func ParsePIDValues(ctx context.Context, output string) (map[int]float64, error) {
	result := make(map[int]float64)
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid < 0 {
			continue
		}
		v, ok := parseFinite(fields[1])
		if !ok {
			continue
		}
		result[pid] = v
	}

	return result, scanner.Err()
}

// ParseInt parses a single integer such as "sysctl -n hw.ncpu" output.
func ParseInt(output string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(output))
}

// NamedCPU is one "ps -eo pid,pcpu,comm" row. CPU is the raw ps value.
type NamedCPU struct {
	PID  int
	CPU  float64
	Name string
}

// ParseNamedCPU parses "ps -eo pid,pcpu,comm" output. The command keeps
// its embedded spaces.
func ParseNamedCPU(ctx context.Context, output string) ([]NamedCPU, error) {
	var rows []NamedCPU
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid < 0 {
			continue
		}
		cpu, ok := parseFinite(fields[1])
		if !ok {
			continue
		}
		rows = append(rows, NamedCPU{PID: pid, CPU: cpu, Name: strings.Join(fields[2:], " ")})
	}

	return rows, scanner.Err()
}
