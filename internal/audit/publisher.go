package audit

import (
	"context"
	"sync"
	"time"
)

// Publisher accepts audit events. Implementations must be safe for
// concurrent use and should not block domain logic on sink latency.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events for the in-process sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// StorePublisher writes events straight to a store. Used when kafka is not
// configured and in tests.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// MemoryStore keeps events in memory, newest last.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of recorded events.
func (s *MemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
