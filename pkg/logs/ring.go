package logs

import "foliodb/pkg/models"

// ring is a bounded FIFO buffer of log entries. Oldest entries are evicted
// first once capacity is reached. Not safe for concurrent use on its own;
// the Service serializes access.
type ring struct {
	entries  []models.LogEntry
	capacity int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ring{capacity: capacity}
}

func (r *ring) append(e models.LogEntry) {
	r.entries = append(r.entries, e)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// snapshot returns the buffered entries newest-first.
func (r *ring) snapshot() []models.LogEntry {
	out := make([]models.LogEntry, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

func (r *ring) clear() {
	r.entries = nil
}

func (r *ring) len() int {
	return len(r.entries)
}
