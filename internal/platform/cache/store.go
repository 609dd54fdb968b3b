package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// Store is a TTL keyed cache. The ingestion cycle uses it to retain the
// last-known-good provider snapshot for fallback when a fetch fails.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// GetWithAge returns the value plus how long ago it was stored.
func (s *Store) GetWithAge(ctx context.Context, key string) (any, time.Duration, bool) {
	value, ok := s.Get(ctx, key)
	if !ok {
		return nil, 0, false
	}

	s.mu.RLock()
	e := s.entries[key]
	s.mu.RUnlock()
	return value, time.Since(e.storedAt), true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	now := time.Now()
	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		storedAt:  now,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}
