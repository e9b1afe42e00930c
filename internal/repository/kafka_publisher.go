package repository

import (
	"context"
	"time"

	"BetPulse/internal/domain/models"
	domainrepo "BetPulse/internal/domain/repository"
)

// Publisher is the producer capability the snapshot publisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// Snapshot is the message published for each computed range.
type Snapshot struct {
	Range       string                    `json:"range"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Metrics     models.PerformanceMetrics `json:"metrics"`
}

// KafkaSnapshotPublisher publishes metrics snapshots keyed by range, so
// each range stays ordered within its partition.
type KafkaSnapshotPublisher struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

var _ domainrepo.SnapshotPublisher = (*KafkaSnapshotPublisher)(nil)

func NewKafkaSnapshotPublisher(producer Publisher, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaSnapshotPublisher) PublishSnapshot(ctx context.Context, tr domainrepo.TimeRange, m models.PerformanceMetrics) error {
	return p.producer.Publish(ctx, p.topic, []byte(tr), Snapshot{
		Range:       string(tr),
		GeneratedAt: p.now().UTC(),
		Metrics:     m,
	})
}
