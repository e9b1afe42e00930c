package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domrepo "BetPulse/internal/domain/repository"
	"BetPulse/pkg/logger"
)

// MetricsExporter periodically computes performance snapshots for a set of
// ranges and publishes them downstream.
type MetricsExporter struct {
	agg       *PerformanceAggregator
	publisher domrepo.SnapshotPublisher
	metrics   domrepo.Metrics
	logger    *logger.Logger
	ranges    []domrepo.TimeRange
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewMetricsExporter validates ranges up front; an unknown range is a
// ConfigurationError.
func NewMetricsExporter(agg *PerformanceAggregator, publisher domrepo.SnapshotPublisher, metrics domrepo.Metrics, l *logger.Logger, interval time.Duration, ranges []string) (*MetricsExporter, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("exporter interval must be positive")
	}
	trs := make([]domrepo.TimeRange, 0, len(ranges))
	for _, r := range ranges {
		tr, err := domrepo.ParseTimeRange(r)
		if err != nil {
			return nil, err
		}
		trs = append(trs, tr)
	}
	if len(trs) == 0 {
		trs = domrepo.TimeRanges()
	}
	if l == nil {
		l = logger.Nop()
	}
	return &MetricsExporter{
		agg:       agg,
		publisher: publisher,
		metrics:   metrics,
		logger:    l.With(logger.String("component", "metrics_exporter")),
		ranges:    trs,
		interval:  interval,
	}, nil
}

// ExportOnce computes and publishes one snapshot per range. Publish errors
// are joined; every range is attempted.
func (e *MetricsExporter) ExportOnce(ctx context.Context) error {
	var errs []error
	for _, tr := range e.ranges {
		m, err := e.agg.GetPerformanceMetrics(ctx, string(tr))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e.metrics != nil {
			e.metrics.RecordSnapshot(string(tr), m.WinRate, m.ROI, m.ProfitLoss)
		}
		if err := e.publisher.PublishSnapshot(ctx, tr, m); err != nil {
			if e.metrics != nil {
				e.metrics.RecordError("snapshot_publish")
			}
			errs = append(errs, fmt.Errorf("publish %s: %w", tr, err))
			continue
		}
		e.logger.Debug("snapshot published",
			logger.String("range", string(tr)),
			logger.Bool("degraded", m.Degraded),
		)
	}
	return errors.Join(errs...)
}

// Start runs an export immediately and then on every interval until Stop.
func (e *MetricsExporter) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	go e.loop(ctx, e.done)
	e.logger.Info("metrics exporter started", logger.Duration("interval_ms", e.interval))
}

// Stop cancels the loop and waits for the running export to finish.
func (e *MetricsExporter) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (e *MetricsExporter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.ExportOnce(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error("metrics export failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
