package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultPruneInterval = time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in process. State is lost on restart and is not
// shared between instances.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*entry
	now       func() time.Time
	lastPrune time.Time
}

type MemoryOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastPrune = s.now()
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, max int, window time.Duration) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return Window{Allowed: true, Count: 1, TTL: window}, nil
	}

	ttl := e.resetAt.Sub(now)
	if e.count >= max {
		return Window{Allowed: false, Count: e.count, TTL: ttl}, nil
	}

	e.count++
	return Window{Allowed: true, Count: e.count, TTL: ttl}, nil
}

// Len returns the number of tracked identities, expired ones included until
// the next prune.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) prune(now time.Time) {
	if now.Sub(s.lastPrune) < defaultPruneInterval {
		return
	}
	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
		}
	}
	s.lastPrune = now
}
