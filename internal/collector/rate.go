package collector

import (
	"strconv"
	"sync"
	"time"
)

// MinRateInterval is the shortest gap between samples that produces a rate.
// Closer samples are ignored so timer jitter can't inflate the result.
const MinRateInterval = 300 * time.Millisecond

// Sentinel keys for system-wide network counters.
const (
	SystemInKey  = "system.in"
	SystemOutKey = "system.out"
)

// PIDKey is the rate key for a process.
func PIDKey(pid int) string {
	return "pid." + strconv.Itoa(pid)
}

type rateState struct {
	bytes  int64
	at     time.Time
	missed int
}

// RateEngine turns cumulative byte counters into bytes/sec. It keeps only
// the previous sample per key.
type RateEngine struct {
	mu    sync.Mutex
	state map[string]*rateState
}

// NewRateEngine creates an empty engine.
func NewRateEngine() *RateEngine {
	return &RateEngine{state: make(map[string]*rateState)}
}

// ComputeRate records a cumulative counter and returns the rate since the
// previous sample. The first sample for a key returns 0. A sample closer
// than MinRateInterval returns 0 but still becomes the new baseline. A
// counter that went backwards (interface reset) yields 0.
func (e *RateEngine) ComputeRate(key string, cumulative int64, now time.Time) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.state[key]
	if !ok {
		e.state[key] = &rateState{bytes: cumulative, at: now}
		return 0
	}

	dt := now.Sub(prev.at)
	delta := cumulative - prev.bytes
	prev.bytes = cumulative
	prev.at = now
	prev.missed = 0

	if dt < MinRateInterval || delta <= 0 {
		return 0
	}
	return float64(delta) / dt.Seconds()
}

// Sweep forgets keys that were absent from live for more than one
// consecutive sweep.
func (e *RateEngine) Sweep(live map[string]struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, st := range e.state {
		if _, ok := live[key]; ok {
			st.missed = 0
			continue
		}
		st.missed++
		if st.missed > 1 {
			delete(e.state, key)
		}
	}
}

// Len returns the number of tracked keys.
func (e *RateEngine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.state)
}

// Seen reports whether key has a stored sample.
func (e *RateEngine) Seen(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.state[key]
	return ok
}
