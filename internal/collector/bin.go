package collector

import (
	"sync"
	"time"
)

// FreshnessBin holds the most recent snapshot. Publishing replaces the
// held snapshot; one older than the current (by Seq) is dropped, so readers
// never go backwards.
type FreshnessBin struct {
	mu          sync.RWMutex
	snap        Snapshot
	publishedAt time.Time
	has         bool
}

// NewFreshnessBin creates an empty bin.
func NewFreshnessBin() *FreshnessBin {
	return &FreshnessBin{}
}

// Publish stores s unless a snapshot with an equal or newer Seq is held.
// It reports whether s was accepted.
func (b *FreshnessBin) Publish(s Snapshot, at time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.has && s.Seq <= b.snap.Seq {
		return false
	}
	b.snap = s
	b.publishedAt = at
	b.has = true
	return true
}

// Latest returns a copy of the held snapshot and when it was published.
// ok is false until the first publish.
func (b *FreshnessBin) Latest() (snap Snapshot, publishedAt time.Time, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.has {
		return Snapshot{}, time.Time{}, false
	}
	return b.snap.Clone(), b.publishedAt, true
}
