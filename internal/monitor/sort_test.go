package monitor

import (
	"testing"

	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/stretchr/testify/assert"
)

func TestSortColumn_StringAndTitle(t *testing.T) {
	tests := []struct {
		col   SortColumn
		name  string
		title string
	}{
		{SortByPID, "pid", "PID"},
		{SortByName, "name", "NAME"},
		{SortByCPU, "cpu", "CPU%"},
		{SortByMem, "mem", "MEM"},
		{SortByGPU, "gpu", "GPU"},
		{SortByNet, "net", "NET"},
		{SortByTime, "time", "TIME"},
		{SortByType, "type", "TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.col.String())
			assert.Equal(t, tt.title, tt.col.Title())
			assert.Equal(t, tt.col, ParseSortColumn(tt.name))
		})
	}
}

func TestSortColumn_Next(t *testing.T) {
	assert.Equal(t, SortByName, SortByPID.Next())
	assert.Equal(t, SortByPID, SortByType.Next(), "wraps around")
}

func TestParseSortColumn_Fallback(t *testing.T) {
	assert.Equal(t, SortByCPU, ParseSortColumn(""))
	assert.Equal(t, SortByCPU, ParseSortColumn("bogus"))
	assert.Equal(t, SortByMem, ParseSortColumn(" MEM "))
}

func TestLessRecord_TiesBreakByPID(t *testing.T) {
	a := proc(10, "a", 5, 1)
	b := proc(20, "b", 5, 1)

	for _, desc := range []bool{false, true} {
		assert.True(t, lessRecord(a, b, SortByCPU, desc))
		assert.False(t, lessRecord(b, a, SortByCPU, desc))
	}
}

func TestLessRecord_Columns(t *testing.T) {
	small := collector.ProcessRecord{PID: 2, Name: "alpha", CPU: 1, MemoryBytes: 10, GPU: "~5%", NetRate: 1, RuntimeSeconds: 5}
	big := collector.ProcessRecord{PID: 1, Name: "Beta", CPU: 9, MemoryBytes: 99, GPU: "40%", NetRate: 50, RuntimeSeconds: 500, Class: collector.ClassSystem}

	for _, col := range []SortColumn{SortByName, SortByCPU, SortByMem, SortByGPU, SortByNet, SortByTime, SortByType} {
		t.Run(col.String(), func(t *testing.T) {
			assert.True(t, lessRecord(small, big, col, false))
			assert.True(t, lessRecord(big, small, col, true))
		})
	}

	assert.True(t, lessRecord(big, small, SortByPID, false))
}

func TestGPUSortValue(t *testing.T) {
	assert.Equal(t, 45.0, gpuSortValue("~45%"))
	assert.Equal(t, 12.0, gpuSortValue("12%"))
	assert.Equal(t, -1.0, gpuSortValue("N/A"))
	assert.Equal(t, -1.0, gpuSortValue("Busy"))
}

func TestDescendingByDefault(t *testing.T) {
	assert.False(t, SortByPID.DescendingByDefault())
	assert.False(t, SortByName.DescendingByDefault())
	assert.False(t, SortByType.DescendingByDefault())
	assert.True(t, SortByCPU.DescendingByDefault())
	assert.True(t, SortByNet.DescendingByDefault())
}

func TestSortRecords(t *testing.T) {
	recs := baseProcs()

	SortRecords(recs, SortByCPU, true)
	assert.Equal(t, []int{4242, 777, 1, 999}, pids(recs))

	SortRecords(recs, SortByName, false)
	assert.Equal(t, []int{777, 1, 4242, 999}, pids(recs))
}
