package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseTopCPU returns system-wide CPU% from top's header line
// "CPU usage: 5.26% user, 10.52% sys, 84.21% idle". It prefers 100-idle
// and falls back to user+sys when idle is missing.
func ParseTopCPU(topOutput string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(topOutput))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "CPU usage:") {
			continue
		}

		var user, sys, idle float64
		haveIdle := false
		for _, part := range strings.Split(strings.TrimPrefix(line, "CPU usage:"), ",") {
			fields := strings.Fields(part)
			if len(fields) < 2 {
				continue
			}
			v, ok := parseFinite(strings.TrimSuffix(fields[0], "%"))
			if !ok {
				continue
			}
			switch fields[1] {
			case "user":
				user = v
			case "sys":
				sys = v
			case "idle":
				idle = v
				haveIdle = true
			}
		}

		if haveIdle {
			return clampPercent(100 - idle), nil
		}
		return clampPercent(user + sys), nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning top output: %w", err)
	}
	return 0, fmt.Errorf("no CPU usage line in top output")
}

// ParseVMStat returns memory used% from vm_stat page counts:
// used = active + inactive + wired + compressed,
// total = used + free + speculative.
func ParseVMStat(vmStatOutput string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(vmStatOutput))

	var active, inactive, wired, compressed, free, speculative int64
	found := 0

	for scanner.Scan() {
		line := scanner.Text()

		// "Pages active:    123456."
		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:colonIdx])
		valStr := strings.TrimSuffix(strings.TrimSpace(line[colonIdx+1:]), ".")
		val, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			continue
		}

		switch key {
		case "Pages active":
			active = val
		case "Pages inactive":
			inactive = val
		case "Pages wired down":
			wired = val
		case "Pages occupied by compressor":
			compressed = val
		case "Pages free":
			free = val
		case "Pages speculative":
			speculative = val
		default:
			continue
		}
		found++
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning vm_stat output: %w", err)
	}
	if found == 0 {
		return 0, fmt.Errorf("no page counts in vm_stat output")
	}

	used := active + inactive + wired + compressed
	total := used + free + speculative
	if total == 0 {
		return 0, nil
	}
	return float64(used) / float64(total) * 100, nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
