package monitor

import (
	"sync"
	"testing"

	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/stretchr/testify/assert"
)

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 100, 100},
		{"small size", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.Equal(t, tt.expected, h.size)
			assert.Zero(t, h.Count())
		})
	}
}

func TestHistoryPush(t *testing.T) {
	h := NewHistory(10)

	h.Push(collector.Snapshot{Seq: 1, CPUPercent: 12, MemPercent: 40, GPU: "~30%"})
	h.Push(collector.Snapshot{Seq: 2, CPUPercent: 18, MemPercent: 41, GPU: "Light"})
	h.Push(collector.Snapshot{Seq: 3, CPUPercent: 25, MemPercent: 42, GPU: "50%"})

	assert.Equal(t, []float64{12, 18, 25}, h.CPU(10))
	assert.Equal(t, []float64{40, 41, 42}, h.Mem(10))
	assert.Equal(t, []float64{30, 50}, h.GPU(10), "labels are skipped")
}

func TestHistoryPush_SameSeqIgnored(t *testing.T) {
	h := NewHistory(10)

	snap := collector.Snapshot{Seq: 7, CPUPercent: 12}
	h.Push(snap)
	h.Push(snap)
	h.Push(snap)

	assert.Equal(t, 1, h.Count())
}

func TestHistoryWraps(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Push(collector.Snapshot{Seq: uint64(i), CPUPercent: float64(i * 10)})
	}

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{30, 40, 50}, h.CPU(3))
	assert.Equal(t, []float64{40, 50}, h.CPU(2))
	assert.Nil(t, h.CPU(0))
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(5)
	assert.Nil(t, h.CPU(5))
	assert.Nil(t, h.GPU(5))
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h := NewHistory(50)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			h.Push(collector.Snapshot{Seq: uint64(n + 1), CPUPercent: float64(n)})
		}(i)
		go func() {
			defer wg.Done()
			_ = h.CPU(10)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, h.Count(), 10)
}
