package store

import (
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory cache. Its contents do not
// survive the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider cache key
	data map[string]Entry
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	return &MemoryStore{
		data: make(map[string]Entry),
		now:  o.now,
	}
}

// Get returns the entry stored under key, fresh or not.
func (s *MemoryStore) Get(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Put stores data under key with the current time.
func (s *MemoryStore) Put(key string, data json.RawMessage) error {
	entry := NewEntry(append(json.RawMessage(nil), data...), s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry
	return nil
}
