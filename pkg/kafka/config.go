package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers     []string
	Compression string
	Async       bool
	// HashByKey routes equal keys to one partition, keeping per-range
	// snapshots ordered.
	HashByKey  bool
	Delivery   DeliveryConfig
	Batch      BatchConfig
	Registerer prometheus.Registerer
}

// DeliveryConfig controls acknowledgement and writer-level retries.
type DeliveryConfig struct {
	RequiredAcks int // -1 waits for all in-sync replicas
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// BatchConfig bounds how much the writer buffers before a flush.
type BatchConfig struct {
	Size   int
	Bytes  int
	Linger time.Duration
}

func defaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Compression: "gzip",
		Delivery: DeliveryConfig{
			RequiredAcks: -1,
			MaxAttempts:  3,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
		Batch: BatchConfig{
			Size:   100,
			Bytes:  1 << 20,
			Linger: time.Second,
		},
	}
}

// WithBrokers sets Kafka brokers.
func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithCompression sets the codec: gzip, snappy, lz4 or zstd.
func WithCompression(compression string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Compression = compression
	}
}

// WithDelivery sets acks and writer retry attempts. Zero values keep defaults.
func WithDelivery(requiredAcks, maxAttempts int) ProducerOption {
	return func(c *ProducerConfig) {
		c.Delivery.RequiredAcks = requiredAcks
		if maxAttempts > 0 {
			c.Delivery.MaxAttempts = maxAttempts
		}
	}
}

// WithTimeouts sets writer write/read timeouts.
func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.Delivery.WriteTimeout = write
		c.Delivery.ReadTimeout = read
	}
}

// WithBatching sets the flush thresholds. Zero values keep defaults.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.Batch.Size = size
		}
		if bytes > 0 {
			c.Batch.Bytes = bytes
		}
		if linger > 0 {
			c.Batch.Linger = linger
		}
	}
}

// WithAsync makes writes fire-and-forget.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.Async = async
	}
}

// WithHashByKey sets hash balancer for per-key ordering.
func WithHashByKey(hash bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.HashByKey = hash
	}
}

// WithProducerRegisterer registers producer metrics on reg.
func WithProducerRegisterer(reg prometheus.Registerer) ProducerOption {
	return func(c *ProducerConfig) {
		c.Registerer = reg
	}
}
