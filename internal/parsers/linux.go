package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// CPUTimes are the aggregate jiffy counters from /proc/stat. Usage is the
// delta between two readings.
type CPUTimes struct {
	Total int64
	Idle  int64
	Cores int
}

// UsageSince returns CPU% between prev and t. A zero or negative total
// delta (first reading, counter reset) yields 0.
func (t CPUTimes) UsageSince(prev CPUTimes) float64 {
	total := t.Total - prev.Total
	idle := t.Idle - prev.Idle
	if total <= 0 || idle < 0 {
		return 0
	}
	return clampPercent(float64(total-idle) / float64(total) * 100)
}

// ParseLinuxCPU parses the aggregate "cpu" line and counts per-core lines
// in /proc/stat.
func ParseLinuxCPU(procStat string) (CPUTimes, error) {
	var times CPUTimes
	found := false
	scanner := bufio.NewScanner(strings.NewReader(procStat))

	for scanner.Scan() {
		line := scanner.Text()

		// cpu0, cpu1, ...
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			times.Cores++
			continue
		}

		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return CPUTimes{}, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		// guest and guest_nice are already counted in user and nice.
		for i := 1; i < len(fields) && i <= 8; i++ {
			val, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return CPUTimes{}, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			times.Total += val
			if i == 4 || i == 5 {
				times.Idle += val
			}
		}
		found = true
	}

	if err := scanner.Err(); err != nil {
		return CPUTimes{}, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return CPUTimes{}, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}

	return times, nil
}

// MemInfo holds the /proc/meminfo fields procmon uses, in bytes.
type MemInfo struct {
	Total     int64
	Free      int64
	Available int64
	Buffers   int64
	Cached    int64
}

// UsedPercent prefers MemAvailable and falls back to free+buffers+cached
// on kernels that do not report it.
func (m MemInfo) UsedPercent() float64 {
	if m.Total <= 0 {
		return 0
	}
	avail := m.Available
	if avail == 0 {
		avail = m.Free + m.Buffers + m.Cached
	}
	return clampPercent(float64(m.Total-avail) / float64(m.Total) * 100)
}

// ParseLinuxMemory parses /proc/meminfo.
func ParseLinuxMemory(procMeminfo string) (MemInfo, error) {
	var info MemInfo
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	foundFields := 0

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values are in kB.
		valBytes := val * 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			info.Total = valBytes
		case "MemFree":
			info.Free = valBytes
		case "MemAvailable":
			info.Available = valBytes
		case "Buffers":
			info.Buffers = valBytes
		case "Cached":
			info.Cached = valBytes
		default:
			continue
		}
		foundFields++
	}

	if err := scanner.Err(); err != nil {
		return MemInfo{}, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if foundFields < 3 {
		return MemInfo{}, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}

	return info, nil
}
