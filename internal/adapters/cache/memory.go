package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory with lazy expiry.
// It backs tests and cache-less deployments; the semantics match
// RedisStore, including the store owning deletion.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the entry for key, expiring it first if its lifespan passed.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool) {
	key = Key(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if s.expired(e) {
		s.mu.Lock()
		// re-check under the write lock; Set may have replaced it
		if cur, ok := s.entries[key]; ok && s.expired(cur) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Set stores payload under key with the given lifespan.
func (s *MemoryStore) Set(_ context.Context, key string, payload any, lifespan time.Duration) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.entries[Key(key)] = Entry{Payload: body, CreatedAt: s.now(), Lifespan: lifespan}
	s.mu.Unlock()
}

// Has reports whether key exists and has not expired.
func (s *MemoryStore) Has(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// SetClock replaces the time source; tests use it to force expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) expired(e Entry) bool {
	return s.now().After(e.CreatedAt.Add(e.Lifespan))
}
