package stun

import "sync"

// Registry owns the heavy stun meters of a combat session, keyed by target id.
// Meters are created lazily on first reference and never replaced.
//
// Thread-safe: the id map is guarded by an RWMutex, meter state by each
// meter's own lock.
type Registry struct {
	mu     sync.RWMutex
	meters map[string]*Meter
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		meters: make(map[string]*Meter),
	}
}

// GetOrCreate returns the meter of targetID, creating an empty one if the
// target was never seen. Repeated calls return the same instance.
func (r *Registry) GetOrCreate(targetID string) *Meter {
	r.mu.RLock()
	m, ok := r.meters[targetID]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have created it between the locks.
	if m, ok := r.meters[targetID]; ok {
		return m
	}
	m = newMeter(targetID)
	r.meters[targetID] = m
	r.order = append(r.order, targetID)
	return m
}

// Get returns the meter of targetID without creating it.
func (r *Registry) Get(targetID string) (*Meter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meters[targetID]
	return m, ok
}

// TrackedIDs returns the tracked target ids in insertion order.
func (r *Registry) TrackedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of tracked targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meters)
}

// Clear drops every meter. Used by the owner at session boundaries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meters = make(map[string]*Meter)
	r.order = nil
}
