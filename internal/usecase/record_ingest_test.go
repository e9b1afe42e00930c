package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"BetPulse/internal/domain/models"
	pkgkafka "BetPulse/pkg/kafka"
	"BetPulse/pkg/logger"
)

type memoryStore struct {
	mu    sync.Mutex
	bets  []models.BetRecord
	preds []models.PredictionRecord
	err   error
}

func (s *memoryStore) Init(context.Context) error { return nil }

func (s *memoryStore) StoreBets(_ context.Context, bets []models.BetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.bets = append(s.bets, bets...)
	return nil
}

func (s *memoryStore) StorePredictions(_ context.Context, preds []models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.preds = append(s.preds, preds...)
	return nil
}

func (s *memoryStore) Health(context.Context) error { return nil }
func (s *memoryStore) Close() error                 { return nil }

type recordingMetrics struct {
	mu        sync.Mutex
	ingested  []string
	errors    []string
	snapshots []string
}

func (m *recordingMetrics) RecordSourceFailure(string) {}
func (m *recordingMetrics) RecordIngested(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, kind)
}
func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}
func (m *recordingMetrics) RecordLatency(string, float64) {}
func (m *recordingMetrics) RecordSnapshot(tr string, _, _, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, tr)
}

func TestRecordIngestStoresByKind(t *testing.T) {
	store := &memoryStore{}
	metrics := &recordingMetrics{}
	h := NewRecordIngestHandler("betpulse.records", store, metrics, logger.Nop())

	if h.Topic() != "betpulse.records" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte(`{"kind":"bet","id":"b1","amount":10,"odds":2,"status":"won","event":"A vs B"}`)); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"kind":"prediction","id":"p1","status":"correct","confidence":60}`)); err != nil {
		t.Fatalf("prediction: %v", err)
	}

	if len(store.bets) != 1 || store.bets[0].ID != "b1" || store.bets[0].Status != models.BetWon {
		t.Fatalf("unexpected bets %+v", store.bets)
	}
	if len(store.preds) != 1 || store.preds[0].ID != "p1" {
		t.Fatalf("unexpected predictions %+v", store.preds)
	}
	if len(metrics.ingested) != 2 || metrics.ingested[0] != "bet" || metrics.ingested[1] != "prediction" {
		t.Fatalf("unexpected ingested metrics %v", metrics.ingested)
	}
}

func TestRecordIngestRejectsInvalidPermanently(t *testing.T) {
	store := &memoryStore{}
	metrics := &recordingMetrics{}
	h := NewRecordIngestHandler("records", store, metrics, nil)

	err := h.Handle(context.Background(), []byte(`{"kind":"bet","id":"b1","odds":2,"status":"pending"}`))
	if !errors.Is(err, pkgkafka.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if len(store.bets) != 0 {
		t.Fatal("invalid record must not be stored")
	}
	if len(metrics.errors) != 1 || metrics.errors[0] != "ingest_decode" {
		t.Fatalf("unexpected error metrics %v", metrics.errors)
	}
}

func TestRecordIngestStoreFailureIsRetryable(t *testing.T) {
	store := &memoryStore{err: errors.New("clickhouse down")}
	metrics := &recordingMetrics{}
	h := NewRecordIngestHandler("records", store, metrics, nil)

	err := h.Handle(context.Background(), []byte(`{"kind":"bet","id":"b1","amount":1,"odds":2,"status":"lost"}`))
	if err == nil || errors.Is(err, pkgkafka.ErrPermanent) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if len(metrics.errors) != 1 || metrics.errors[0] != "ingest_store" {
		t.Fatalf("unexpected error metrics %v", metrics.errors)
	}
}
