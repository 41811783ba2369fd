package monitor

import (
	"sync"

	"github.com/rileyhilliard/procmon/internal/collector"
)

// DefaultHistorySize is the default number of data points to retain per metric.
const DefaultHistorySize = 60

// History keeps recent system-wide readings for the header sparklines.
// Only the last size points per metric are held.
type History struct {
	mu      sync.RWMutex
	size    int
	cpu     *ringBuffer
	mem     *ringBuffer
	gpu     *ringBuffer
	lastSeq uint64
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history with the given capacity per metric.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		cpu:  newRingBuffer(size),
		mem:  newRingBuffer(size),
		gpu:  newRingBuffer(size),
	}
}

// Push records snap's system readings. A snapshot already seen (same
// sequence number) is ignored so slow collectors don't flatten the graph.
// GPU values are recorded only when the reading is numeric.
func (h *History) Push(snap collector.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if snap.Seq != 0 && snap.Seq == h.lastSeq {
		return
	}
	h.lastSeq = snap.Seq

	h.cpu.push(snap.CPUPercent)
	h.mem.push(snap.MemPercent)
	if v, ok := collector.GPUPercent(snap.GPU); ok {
		h.gpu.push(v)
	}
}

// CPU returns up to count CPU readings, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Mem returns up to count memory readings, oldest first.
func (h *History) Mem(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mem.getLast(count)
}

// GPU returns up to count numeric GPU readings, oldest first.
func (h *History) GPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gpu.getLast(count)
}

// Count returns the number of CPU points stored.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}
