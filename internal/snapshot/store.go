package snapshot

import "sync"

// Store keeps the most recent snapshot captured for each thread. Values are
// opaque to the store: Set replaces, it never merges, and nothing is evicted.
type Store[T any] struct {
	mu       sync.RWMutex
	byThread map[string]T
}

// NewStore creates an empty Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{byThread: map[string]T{}}
}

// Set overwrites the snapshot for a thread.
func (s *Store[T]) Set(threadID string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byThread[threadID] = value
}

// Get returns the snapshot for a thread, if one was captured.
func (s *Store[T]) Get(threadID string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.byThread[threadID]
	return value, ok
}

// Len reports how many threads have a snapshot.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byThread)
}
