package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCache implements Store in process memory. Expired entries are only
// removed when looked up; when MaxSize is reached the least recently used
// entry is evicted.
type MemoryCache struct {
	data    map[string]Entry
	access  map[string]time.Time
	mutex   sync.Mutex
	maxSize int
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 1000,
		Clock:   time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &MemoryCache{
		data:    make(map[string]Entry),
		access:  make(map[string]time.Time),
		maxSize: cfg.MaxSize,
		now:     cfg.Clock,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, entry Entry) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if _, exists := mc.data[key]; !exists && mc.maxSize > 0 && len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}

	mc.data[key] = entry
	mc.access[key] = mc.now()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string) (Entry, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	entry, exists := mc.data[key]
	if !exists {
		return Entry{}, ErrCacheMiss
	}

	now := mc.now()
	if !entry.Valid(now) {
		delete(mc.data, key)
		delete(mc.access, key)
		return Entry{}, ErrCacheMiss
	}

	mc.access[key] = now
	return entry, nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

func (mc *MemoryCache) Clear(_ context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.data = make(map[string]Entry)
	mc.access = make(map[string]time.Time)
	return nil
}

func (mc *MemoryCache) Stats(_ context.Context) (Stats, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	keys := make([]string, 0, len(mc.data))
	for key := range mc.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}, nil
}

func (mc *MemoryCache) evictLRU() {
	if len(mc.data) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, accessTime := range mc.access {
		if first || accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
			first = false
		}
	}

	delete(mc.data, oldestKey)
	delete(mc.access, oldestKey)
}

// Close is a no-op; kept so every store can be closed uniformly.
func (mc *MemoryCache) Close() error {
	return nil
}
