// Package history implements the bounded in-memory reading history: a
// fixed-capacity ring buffer shared between the sampling goroutine and
// the HTTP handler goroutines.
package history

import (
	"sync"

	"github.com/luki/envmon/internal/sensor"
)

// DefaultCapacity matches the device's thousand-slot buffer.
const DefaultCapacity = 1000

// Store is a fixed-capacity ring buffer of sensor readings. One mutex
// guards all state; it is held for the duration of a single Append or
// Snapshot and never across sensor or network I/O.
type Store struct {
	mu     sync.Mutex
	buf    []sensor.Reading
	head   int    // next write position
	count  int    // stored entries, saturates at capacity
	total  uint64 // successful appends, uncapped
	faults uint64 // invalid readings dropped
}

// Snapshot is a copy-out view of the store at one instant. Callers never
// hold references into the ring.
type Snapshot struct {
	Current *sensor.Reading  // most recent reading, nil when empty
	History []sensor.Reading // oldest-first window ending at Current
	Total   uint64           // successful appends, uncapped
}

// New creates a store with the given capacity. Capacity <= 0 falls back
// to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{buf: make([]sensor.Reading, capacity)}
}

// slot maps a logical index, possibly negative or past the end, onto the
// ring. All wraparound arithmetic lives here.
func (s *Store) slot(i int) int {
	n := len(s.buf)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Append stores a reading, evicting the oldest once the ring is full.
// An invalid reading never occupies a slot or moves the cursor; it only
// bumps the fault counter.
func (s *Store) Append(r sensor.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !r.Valid {
		s.faults++
		return
	}

	s.buf[s.head] = r
	s.head = s.slot(s.head + 1)
	if s.count < len(s.buf) {
		s.count++
	}
	s.total++
}

// Snapshot returns the most recent reading and up to max readings in
// chronological order (oldest first). It never returns an invalid entry
// and never mutates the store; max larger than the stored count is
// clamped, max < 0 is treated as 0.
func (s *Store) Snapshot(max int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Total: s.total}
	if s.count == 0 {
		return snap
	}

	cur := s.buf[s.slot(s.head-1)]
	snap.Current = &cur

	n := max
	if n < 0 {
		n = 0
	}
	if n > s.count {
		n = s.count
	}

	snap.History = make([]sensor.Reading, n)
	start := s.head - n // oldest entry of the window
	for i := 0; i < n; i++ {
		snap.History[i] = s.buf[s.slot(start+i)]
	}
	return snap
}

// Reset returns the store to its freshly constructed state. The device
// calls this once at startup; it is exposed mainly for tests.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.buf {
		s.buf[i] = sensor.Reading{}
	}
	s.head = 0
	s.count = 0
	s.total = 0
	s.faults = 0
}

// Len returns the number of stored readings, at most Cap.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Cap returns the fixed capacity.
func (s *Store) Cap() int {
	return len(s.buf)
}

// Total returns the uncapped count of successful appends.
func (s *Store) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Faults returns the number of invalid readings dropped.
func (s *Store) Faults() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults
}
