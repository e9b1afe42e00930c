package repository

import (
	"context"

	"BetPulse/internal/domain/models"
)

// BetSource supplies bet records. Errors are treated as "no data" by the aggregator.
type BetSource interface {
	GetBets(ctx context.Context, tr TimeRange) ([]models.BetRecord, error)
	GetRecentBets(ctx context.Context, limit int) ([]models.BetRecord, error)
}

// PredictionSource supplies prediction records and detected opportunities.
type PredictionSource interface {
	GetPredictions(ctx context.Context, tr TimeRange) ([]models.PredictionRecord, error)
	GetRecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error)
	GetRecentOpportunities(ctx context.Context, limit int) ([]models.PredictionRecord, error)
}

// RecordStore persists records received from the event stream.
type RecordStore interface {
	Init(ctx context.Context) error
	StoreBets(ctx context.Context, bets []models.BetRecord) error
	StorePredictions(ctx context.Context, predictions []models.PredictionRecord) error
	Health(ctx context.Context) error
	Close() error
}

// SnapshotPublisher ships computed metrics downstream.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, tr TimeRange, m models.PerformanceMetrics) error
}

type Metrics interface {
	RecordSourceFailure(source string)
	RecordIngested(kind string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordSnapshot(timeRange string, winRate, roi, profitLoss float64)
}
