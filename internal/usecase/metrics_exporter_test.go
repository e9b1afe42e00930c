package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"BetPulse/internal/domain/models"
	domrepo "BetPulse/internal/domain/repository"
	"BetPulse/pkg/logger"
)

type snapshotSink struct {
	mu     sync.Mutex
	ranges []domrepo.TimeRange
	fail   domrepo.TimeRange
	calls  chan struct{}
}

func (s *snapshotSink) PublishSnapshot(_ context.Context, tr domrepo.TimeRange, _ models.PerformanceMetrics) error {
	s.mu.Lock()
	s.ranges = append(s.ranges, tr)
	s.mu.Unlock()
	if s.calls != nil {
		select {
		case s.calls <- struct{}{}:
		default:
		}
	}
	if tr == s.fail {
		return errors.New("broker down")
	}
	return nil
}

func TestExportOncePublishesEveryRange(t *testing.T) {
	bets := &fakeBets{bets: []models.BetRecord{{ID: "1", Amount: 10, Odds: 2, Status: models.BetWon, Timestamp: at(0)}}}
	sink := &snapshotSink{fail: domrepo.RangeDay}
	metrics := &recordingMetrics{}

	e, err := NewMetricsExporter(newAggregator(bets, &fakePredictions{}), sink, metrics, logger.Nop(), time.Minute, []string{"day", "week"})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	err = e.ExportOnce(context.Background())
	if err == nil {
		t.Fatal("expected joined publish error")
	}
	if len(sink.ranges) != 2 || sink.ranges[0] != domrepo.RangeDay || sink.ranges[1] != domrepo.RangeWeek {
		t.Fatalf("expected both ranges attempted, got %v", sink.ranges)
	}
	if len(metrics.snapshots) != 2 {
		t.Fatalf("expected 2 recorded snapshots, got %v", metrics.snapshots)
	}
	if len(metrics.errors) != 1 || metrics.errors[0] != "snapshot_publish" {
		t.Fatalf("unexpected error metrics %v", metrics.errors)
	}
}

func TestNewMetricsExporterValidates(t *testing.T) {
	agg := newAggregator(&fakeBets{}, &fakePredictions{})
	if _, err := NewMetricsExporter(agg, &snapshotSink{}, nil, nil, time.Minute, []string{"year"}); err == nil {
		t.Fatal("expected error for unknown range")
	}
	var cfgErr *models.ConfigurationError
	_, err := NewMetricsExporter(agg, &snapshotSink{}, nil, nil, time.Minute, []string{"fortnight"})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if _, err := NewMetricsExporter(agg, &snapshotSink{}, nil, nil, 0, nil); err == nil {
		t.Fatal("expected error for zero interval")
	}
	e, err := NewMetricsExporter(agg, &snapshotSink{}, nil, nil, time.Minute, nil)
	if err != nil || len(e.ranges) != 4 {
		t.Fatalf("expected all ranges by default, got %v %v", e, err)
	}
}

func TestMetricsExporterStartStop(t *testing.T) {
	sink := &snapshotSink{calls: make(chan struct{}, 1)}
	e, err := NewMetricsExporter(newAggregator(&fakeBets{}, &fakePredictions{}), sink, nil, nil, time.Hour, []string{"all"})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	e.Start(context.Background())
	select {
	case <-sink.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate export")
	}
	e.Stop()
	e.Stop()
}
