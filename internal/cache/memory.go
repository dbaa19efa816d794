package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is an in-process LRU cache with optional expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most maxEntries values for ttl.
// A zero maxEntries means unbounded and a zero ttl means no expiry.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](max(maxEntries, 0), nil, ttl)}
}

// Get returns a copy of the stored value.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value, evicting the least recently used entry when full.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, append([]byte(nil), value...))

	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// Close drops every entry.
func (m *MemoryCache) Close() error {
	m.lru.Purge()

	return nil
}
