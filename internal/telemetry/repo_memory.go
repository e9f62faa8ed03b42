package telemetry

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// DefaultCapacity bounds a MemoryRepository when none is given. A capped
// offline replay records at most a few events per attempt.
const DefaultCapacity = 20000

// Query selects events. The zero Query matches everything.
type Query struct {
	Since time.Time
	Types []EventType
}

func (q Query) matches(ev Event) bool {
	if ev.Timestamp.Before(q.Since) {
		return false
	}
	return len(q.Types) == 0 || slices.Contains(q.Types, ev.Type)
}

// Repository stores catch telemetry.
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	Events(q Query) ([]Event, error)
	Clear() error
}

// MemoryRepository keeps the most recent events in a ring. Once full, the
// oldest event is overwritten and counted in Dropped.
type MemoryRepository struct {
	mu      sync.RWMutex
	ring    []Event
	head    int
	size    int
	lastID  int
	dropped int
	now     func() time.Time
}

type Option func(*MemoryRepository)

// WithClock stamps events with now instead of wall time.
func WithClock(now func() time.Time) Option {
	return func(r *MemoryRepository) { r.now = now }
}

func WithCapacity(n int) Option {
	return func(r *MemoryRepository) {
		if n > 0 {
			r.ring = make([]Event, n)
		}
	}
}

func NewMemoryRepository(opts ...Option) *MemoryRepository {
	r := &MemoryRepository{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.ring == nil {
		r.ring = make([]Event, DefaultCapacity)
	}
	return r
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	md, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	slot := (r.head + r.size) % len(r.ring)
	if r.size == len(r.ring) {
		r.head = (r.head + 1) % len(r.ring)
		r.dropped++
	} else {
		r.size++
	}
	r.ring[slot] = Event{
		ID:        r.lastID,
		Type:      eventType,
		Timestamp: r.now(),
		Metadata:  string(md),
	}
	return nil
}

// Events returns matching events oldest first.
func (r *MemoryRepository) Events(q Query) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, r.size)
	for i := 0; i < r.size; i++ {
		ev := r.ring[(r.head+i)%len(r.ring)]
		if q.matches(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Clear empties the ring. IDs keep counting up.
func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.ring)
	r.head, r.size, r.dropped = 0, 0, 0
	return nil
}

// Discard drops every event. It is the Repository used when telemetry is off.
type Discard struct{}

func (Discard) RecordEvent(EventType, EventMetadata) error { return nil }
func (Discard) Events(Query) ([]Event, error)              { return nil, nil }
func (Discard) Clear() error                               { return nil }
