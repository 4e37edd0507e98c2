// Package memory provides the in-memory cooldown store. Entries are expired
// lazily on read; for multi-instance deployments use the redis store so all
// instances see one clock per device.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	at        time.Time
	expiresAt time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) LastAccepted(_ context.Context, key string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return time.Time{}, nil
	}
	return e.at, nil
}

func (s *Store) Record(_ context.Context, key string, t time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{at: t, expiresAt: t.Add(ttl)}
	return nil
}
