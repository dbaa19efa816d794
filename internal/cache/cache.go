// Package cache memoizes rendered charts and page fragments.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"clusterdash/internal/config"
	"clusterdash/internal/logger"
)

// KeyPrefix namespaces every key written by the dashboard.
const KeyPrefix = "clusterdash"

// ErrUnknownBackend is returned by New for an unsupported cache backend.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache stores byte values by key.
type Cache interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New builds the cache selected by cfg.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return NewMemoryCache(cfg.MaxEntries, cfg.CacheTTL()), nil
	case config.CacheRedis:
		rc, err := NewRedisCache(ctx, RedisOptions{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
			TTL:  cfg.CacheTTL(),
		})
		if err != nil {
			return nil, err
		}

		return rc, nil
	case config.CacheNone:
		return Noop{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Key joins parts into a cache key. The dataset fingerprint should be one of
// the parts so that reloading the data invalidates old entries.
func Key(parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, KeyPrefix)

	for _, p := range parts {
		escaped = append(escaped, url.QueryEscape(p))
	}

	return strings.Join(escaped, ":")
}

// Memo computes values through a cache. Cache failures are logged and the
// value is computed directly, so a broken cache never breaks a page.
type Memo struct {
	cache  Cache
	logger *logger.Logger
}

// NewMemo creates a memoizer over c.
func NewMemo(c Cache, log *logger.Logger) *Memo {
	if c == nil {
		c = Noop{}
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Memo{cache: c, logger: log}
}

// Do returns the cached value for key, computing and storing it with fn on a miss.
func (m *Memo) Do(ctx context.Context, key string, fn func() ([]byte, error)) ([]byte, error) {
	value, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.Warn("cache get failed", "key", key, "error", err)
	} else if ok {
		return value, nil
	}

	value, err = fn()
	if err != nil {
		return nil, err
	}

	if err := m.cache.Set(ctx, key, value); err != nil {
		m.logger.Warn("cache set failed", "key", key, "error", err)
	}

	return value, nil
}

// Noop never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
