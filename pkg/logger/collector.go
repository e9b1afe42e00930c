package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"sync"
	"time"
)

// Publisher ships a digest batch to a topic. The Kafka producer implements it.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig controls how warn/error entries are digested.
type CollectionConfig struct {
	Interval   time.Duration // flush period, default 30s
	MaxEntries int           // distinct entries that force an early flush, default 100
	Topic      string
	Source     string // service name stamped on every batch
	Publisher  Publisher
}

// ErrorDigest is one distinct warn/error entry and how often it fired.
type ErrorDigest struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// DigestBatch is the payload published on each flush. Entries are ordered by
// Count, most frequent first.
type DigestBatch struct {
	Source    string        `json:"source,omitempty"`
	FlushedAt time.Time     `json:"flushed_at"`
	Entries   []ErrorDigest `json:"entries"`
}

// LogCollector folds repeated warn/error entries into counted digests and
// publishes them in batches.
type LogCollector struct {
	cfg     CollectionConfig
	mu      sync.Mutex
	pending map[uint64]*ErrorDigest
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	cfg := *config
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}

	c := &LogCollector{
		cfg:     cfg,
		pending: make(map[uint64]*ErrorDigest),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Record counts one entry. Entries recorded after Close are dropped.
func (c *LogCollector) Record(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now().UTC()
	key := digestKey(level, message, fields, caller)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if d, ok := c.pending[key]; ok {
		d.Count++
		d.LastSeen = now
	} else {
		c.pending[key] = &ErrorDigest{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	if len(c.pending) >= c.cfg.MaxEntries {
		if batch, ok := c.takeLocked(); ok {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.publish(batch)
			}()
		}
	}
}

// digestKey hashes the identity of an entry. Field order does not matter.
func digestKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%s", level, message, caller)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "\x00%s=%v", k, fields[k])
	}
	return h.Sum64()
}

func (c *LogCollector) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			batch, ok := c.takeLocked()
			c.mu.Unlock()
			if ok {
				c.publish(batch)
			}
		case <-c.done:
			return
		}
	}
}

// takeLocked drains pending entries into a batch; caller holds mu.
func (c *LogCollector) takeLocked() (DigestBatch, bool) {
	if len(c.pending) == 0 || c.cfg.Publisher == nil {
		return DigestBatch{}, false
	}
	entries := make([]ErrorDigest, 0, len(c.pending))
	for _, d := range c.pending {
		entries = append(entries, *d)
	}
	c.pending = make(map[uint64]*ErrorDigest)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].FirstSeen.Before(entries[j].FirstSeen)
	})
	return DigestBatch{Source: c.cfg.Source, FlushedAt: time.Now().UTC(), Entries: entries}, true
}

func (c *LogCollector) publish(batch DigestBatch) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Logging through the logger here would feed the collector itself.
	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
		fmt.Fprintf(os.Stderr, "publish error digest (%d entries): %v\n", len(batch.Entries), err)
	}
}

// Close stops the flush loop, publishes what is pending and waits for
// in-flight publishes.
func (c *LogCollector) Close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.closed = true
		batch, ok := c.takeLocked()
		c.mu.Unlock()
		if ok {
			c.publish(batch)
		}
		c.wg.Wait()
	})
}
