package collector

import (
	"sync"
	"time"
)

// State is a source's position in its collection lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SourceView is a point-in-time copy of a SourceResult.
type SourceView[T any] struct {
	State     State
	UpdatedAt time.Time
	Payload   T

	// HasPayload is false until the source completes once.
	HasPayload bool
	// Stale is set when the last attempt failed and Payload is older data.
	Stale bool
	// Err is the last failure, if any.
	Err error
}

// Age is the time since the last completion. A source that never
// completed is infinitely old.
func (v SourceView[T]) Age(now time.Time) time.Duration {
	if v.UpdatedAt.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(v.UpdatedAt)
}

// Usable reports whether the merger should overlay this payload: only a
// Completed source no older than staleAfter qualifies.
func (v SourceView[T]) Usable(now time.Time, staleAfter time.Duration) bool {
	if !v.HasPayload || v.Age(now) > staleAfter {
		return false
	}
	return v.State == StateCompleted
}

// SourceResult is the slot a single worker writes its latest payload into.
// Only the owning worker mutates it; the merger reads copies through Read.
type SourceResult[T any] struct {
	name string

	mu         sync.RWMutex
	state      State
	updatedAt  time.Time
	payload    T
	hasPayload bool
	stale      bool
	err        error
}

// NewSourceResult creates an Idle slot.
func NewSourceResult[T any](name string) *SourceResult[T] {
	return &SourceResult[T]{name: name}
}

// Name identifies the source in logs.
func (r *SourceResult[T]) Name() string {
	return r.name
}

// Begin moves to Running. The previous payload stays readable and its
// staleness marker is cleared.
func (r *SourceResult[T]) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateRunning
	r.stale = false
}

// Complete stores a fresh payload.
func (r *SourceResult[T]) Complete(payload T, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateCompleted
	r.payload = payload
	r.hasPayload = true
	r.updatedAt = now
	r.stale = false
	r.err = nil
}

// Fail records a failed attempt, keeping the last completed payload and
// its timestamp.
func (r *SourceResult[T]) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateFailed
	r.stale = r.hasPayload
	r.err = err
}

// Read returns a copy of the slot.
func (r *SourceResult[T]) Read() SourceView[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return SourceView[T]{
		State:      r.state,
		UpdatedAt:  r.updatedAt,
		Payload:    r.payload,
		HasPayload: r.hasPayload,
		Stale:      r.stale,
		Err:        r.err,
	}
}
