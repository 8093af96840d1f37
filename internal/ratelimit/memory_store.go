package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryEntry holds the counter state for one key.
type memoryEntry struct {
	count       int
	lastFailure time.Time
}

// MemoryStore is the in-process Store implementation. Suitable for
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

// Increment adds one failure for key. A counter whose last failure is older
// than window restarts from one.
func (s *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.entries[key]
	if !ok || now.Sub(entry.lastFailure) > window {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	entry.count++
	entry.lastFailure = now
	return entry.count, nil
}

// Count returns the current failure count for key. A counter whose last
// failure is older than window reads as zero even before the sweep reclaims
// it.
func (s *MemoryStore) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || time.Since(entry.lastFailure) > window {
		return 0, nil
	}
	return entry.count, nil
}

// Clear removes the counter for key.
func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Sweep removes counters whose last failure is older than window.
func (s *MemoryStore) Sweep(ctx context.Context, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-window)
	removed := 0
	for key, entry := range s.entries {
		if entry.lastFailure.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
