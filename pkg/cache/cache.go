package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Entry is a cached response payload with its creation time and validity window.
type Entry struct {
	Data      []byte        `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
}

// Valid reports whether the entry is still usable at now.
func (e Entry) Valid(now time.Time) bool {
	return now.Sub(e.Timestamp) < e.TTL
}

// Stats lists the keys currently held, including expired ones not yet evicted.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Store defines the response cache operations the fetch client relies on.
// Get evicts an expired entry lazily and reports ErrCacheMiss for it.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}
