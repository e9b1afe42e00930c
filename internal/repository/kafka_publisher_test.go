package repository

import (
	"context"
	"testing"
	"time"

	"BetPulse/internal/domain/models"
	domainrepo "BetPulse/internal/domain/repository"
)

type capturePublisher struct {
	topic string
	key   []byte
	value interface{}
}

func (c *capturePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	c.topic, c.key, c.value = topic, key, value
	return nil
}

func TestKafkaSnapshotPublisher(t *testing.T) {
	cp := &capturePublisher{}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := NewKafkaSnapshotPublisher(cp, "betpulse.metrics")
	p.now = func() time.Time { return now }

	m := models.PerformanceMetrics{TotalBets: 4, WinRate: 50}
	if err := p.PublishSnapshot(context.Background(), domainrepo.RangeMonth, m); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if cp.topic != "betpulse.metrics" || string(cp.key) != "month" {
		t.Fatalf("unexpected topic/key %q/%q", cp.topic, cp.key)
	}
	snap, ok := cp.value.(Snapshot)
	if !ok {
		t.Fatalf("unexpected value type %T", cp.value)
	}
	if snap.Range != "month" || !snap.GeneratedAt.Equal(now) || snap.Metrics.TotalBets != 4 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
