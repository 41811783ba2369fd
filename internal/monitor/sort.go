package monitor

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/procmon/internal/collector"
)

// SortColumn is the column the table is ordered by.
type SortColumn int

const (
	SortByPID SortColumn = iota
	SortByName
	SortByCPU
	SortByMem
	SortByGPU
	SortByNet
	SortByTime
	SortByType
	sortColumnCount
)

var sortColumnNames = [...]string{"pid", "name", "cpu", "mem", "gpu", "net", "time", "type"}

var sortColumnTitles = [...]string{"PID", "NAME", "CPU%", "MEM", "GPU", "NET", "TIME", "TYPE"}

// String returns the config name of the column.
func (s SortColumn) String() string {
	if s < 0 || s >= sortColumnCount {
		return "cpu"
	}
	return sortColumnNames[s]
}

// Title returns the column header.
func (s SortColumn) Title() string {
	if s < 0 || s >= sortColumnCount {
		return ""
	}
	return sortColumnTitles[s]
}

// Next cycles to the next column.
func (s SortColumn) Next() SortColumn {
	return (s + 1) % sortColumnCount
}

// DescendingByDefault reports whether a freshly chosen column sorts
// largest first. Numeric columns do; PID, name and type don't.
func (s SortColumn) DescendingByDefault() bool {
	switch s {
	case SortByPID, SortByName, SortByType:
		return false
	default:
		return true
	}
}

// ParseSortColumn maps a config name to a column, defaulting to CPU.
func ParseSortColumn(name string) SortColumn {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sortColumnNames {
		if n == name {
			return SortColumn(i)
		}
	}
	return SortByCPU
}

// SortRecords orders recs in place the way the table does.
func SortRecords(recs []collector.ProcessRecord, col SortColumn, desc bool) {
	sort.Slice(recs, func(i, j int) bool {
		return lessRecord(recs[i], recs[j], col, desc)
	})
}

// lessRecord orders a before b by col. PID breaks ties in ascending order
// whatever the direction, so the order is total and stable across refreshes.
func lessRecord(a, b collector.ProcessRecord, col SortColumn, desc bool) bool {
	c := compareColumn(a, b, col)
	if desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.PID < b.PID
}

func compareColumn(a, b collector.ProcessRecord, col SortColumn) int {
	c := 0
	switch col {
	case SortByPID:
		c = compareInt(int64(a.PID), int64(b.PID))
	case SortByName:
		c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortByCPU:
		c = compareFloat(a.CPU, b.CPU)
	case SortByMem:
		c = compareInt(a.MemoryBytes, b.MemoryBytes)
	case SortByGPU:
		c = compareFloat(gpuSortValue(a.GPU), gpuSortValue(b.GPU))
	case SortByNet:
		c = compareFloat(a.NetRate, b.NetRate)
	case SortByTime:
		c = compareInt(a.RuntimeSeconds, b.RuntimeSeconds)
	case SortByType:
		c = compareInt(int64(a.Class), int64(b.Class))
	}
	return c
}

// gpuSortValue puts readings without a number below zero.
func gpuSortValue(s string) float64 {
	if v, ok := collector.GPUPercent(s); ok {
		return v
	}
	return -1
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
