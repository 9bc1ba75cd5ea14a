// Package memory is a TTL map used by the response cache.
package memory

import (
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

// Storage ...
type Storage struct {
	mu    sync.RWMutex
	items map[string]item
}

// NewStorage ...
func NewStorage() *Storage {
	return &Storage{
		items: make(map[string]item),
	}
}

// Get returns the stored value or nil if the key is absent or expired.
func (s *Storage) Get(key string) interface{} {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	if time.Now().After(v.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()

		return nil
	}

	return v.value
}

// Set stores value under key for the given duration.
func (s *Storage) Set(key string, value interface{}, duration time.Duration) {
	s.mu.Lock()
	s.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(duration),
	}
	s.mu.Unlock()
}
