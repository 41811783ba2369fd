package collector

import (
	"sync"
	"time"
)

// throttle counts consecutive failed process collections. Once the count
// reaches the threshold every further failure doubles the delay, up to max.
// Workers add the current delay to their interval while it is non-zero.
type throttle struct {
	threshold int
	base      time.Duration
	max       time.Duration

	mu       sync.Mutex
	failures int
	delay    time.Duration
}

func newThrottle(threshold int, base, max time.Duration) *throttle {
	if threshold < 1 {
		threshold = 1
	}
	return &throttle{threshold: threshold, base: base, max: max}
}

// Record notes a collection outcome and returns the delay to apply now.
func (t *throttle) Record(ok bool) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok {
		t.failures = 0
		t.delay = 0
		return 0
	}

	t.failures++
	if t.failures < t.threshold {
		return 0
	}
	if t.delay == 0 {
		t.delay = t.base
	} else {
		t.delay *= 2
	}
	if t.delay > t.max {
		t.delay = t.max
	}
	return t.delay
}

// Delay is the current extra wait, zero when not throttled.
func (t *throttle) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// Active reports whether the collector is backing off.
func (t *throttle) Active() bool {
	return t.Delay() > 0
}

// Failures is the current consecutive failure count.
func (t *throttle) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}
