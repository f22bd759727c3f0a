package backend

import (
	"sync"

	"gasbalance-cloud/internal/observability/metrics"
)

// Tracker sequences fetches per resource so that a slow response can never
// replace one that was issued later and already applied.
type Tracker struct {
	mu      sync.Mutex
	issued  map[string]uint64
	applied map[string]uint64
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// Begin hands out the next sequence number for resource.
func (t *Tracker) Begin(resource string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[resource]++
	return t.issued[resource]
}

// Resolve reports whether the response for seq may be applied. It returns
// false when a response with a newer sequence was already applied.
func (t *Tracker) Resolve(resource string, seq uint64) bool {
	t.mu.Lock()
	if seq <= t.applied[resource] {
		t.mu.Unlock()
		metrics.IncStaleDiscarded(resource)
		return false
	}
	t.applied[resource] = seq
	t.mu.Unlock()
	return true
}

// Applied returns the last applied sequence for resource.
func (t *Tracker) Applied(resource string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applied[resource]
}
