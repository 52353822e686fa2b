package errlog

import "sync"

// Ring is the guaranteed in-memory floor of the pipeline: a fixed-capacity,
// insertion-ordered buffer that silently evicts the oldest record when a new
// one would exceed capacity. It is safe for concurrent use.
type Ring struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

// NewRing creates a ring buffer with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = MemoryCapacity
	}
	return &Ring{capacity: capacity}
}

// Append adds a record, evicting the oldest entry when full.
func (r *Ring) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > r.capacity {
		r.records = r.records[len(r.records)-r.capacity:]
	}
}

// Snapshot returns a copy of the buffered records in insertion order.
func (r *Ring) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len reports the number of buffered records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
