package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Store using Redis. Entries are stored as JSON with a
// Redis expiry matching their remaining TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(opts ...RedisOption) (*RedisCache, error) {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "betpulse",
		Clock:        time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: cfg.Prefix,
		now:    cfg.Clock,
	}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, entry Entry) error {
	remaining := entry.TTL - c.now().Sub(entry.Timestamp)
	if remaining <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return c.client.Set(ctx, c.wrapKey(key), data, remaining).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, error) {
	wrapped := c.wrapKey(key)

	data, err := c.client.Get(ctx, wrapped).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrCacheMiss
		}
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = c.client.Unlink(ctx, wrapped).Err()
		return Entry{}, ErrCacheMiss
	}

	if !entry.Valid(c.now()) {
		_ = c.client.Unlink(ctx, wrapped).Err()
		return Entry{}, ErrCacheMiss
	}
	return entry, nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Unlink(ctx, c.wrapKeys(keys...)...).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Unlink(ctx, keys...).Err()
}

func (c *RedisCache) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.scan(ctx)
	if err != nil {
		return Stats{}, err
	}

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.unwrapKey(key))
	}
	sort.Strings(out)
	return Stats{Size: len(out), Keys: out}, nil
}

func (c *RedisCache) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	pattern := BuildPattern(c.prefix + ":")
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (c *RedisCache) wrapKey(key string) string {
	return GenerateKey(c.prefix, key)
}

func (c *RedisCache) unwrapKey(key string) string {
	return strings.TrimPrefix(key, c.prefix+":")
}

func (c *RedisCache) wrapKeys(keys ...string) []string {
	wrapped := make([]string, len(keys))
	for i, key := range keys {
		wrapped[i] = c.wrapKey(key)
	}
	return wrapped
}
