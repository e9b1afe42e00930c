package usecase

import (
	"context"
	"fmt"
	"time"

	"BetPulse/internal/domain/models"
	domrepo "BetPulse/internal/domain/repository"
	"BetPulse/internal/repository"
	pkgkafka "BetPulse/pkg/kafka"
	"BetPulse/pkg/logger"
)

// RecordIngestHandler consumes bet/prediction events and writes them to the
// record store. Invalid events fail permanently so the consumer routes them
// to the DLQ without retrying.
type RecordIngestHandler struct {
	topic   string
	store   domrepo.RecordStore
	metrics domrepo.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewRecordIngestHandler(topic string, store domrepo.RecordStore, metrics domrepo.Metrics, l *logger.Logger) *RecordIngestHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &RecordIngestHandler{
		topic:   topic,
		store:   store,
		metrics: metrics,
		logger:  l.With(logger.String("component", "record_ingest")),
		now:     time.Now,
	}
}

func (h *RecordIngestHandler) Topic() string { return h.topic }

// incoming message schema: {"kind":"bet"|"prediction", ...record}
func (h *RecordIngestHandler) Handle(ctx context.Context, b []byte) error {
	ev, err := repository.DecodeRecordEvent(b)
	if err != nil {
		h.recordError("ingest_decode")
		h.logger.Warn("rejecting record event", logger.Error(err))
		return fmt.Errorf("%w: %v", pkgkafka.ErrPermanent, err)
	}

	start := h.now()
	var ts time.Time
	switch ev.Kind {
	case repository.KindBet:
		ts = ev.Bet.Timestamp
		err = h.store.StoreBets(ctx, []models.BetRecord{*ev.Bet})
	case repository.KindPrediction:
		ts = ev.Prediction.Timestamp
		err = h.store.StorePredictions(ctx, []models.PredictionRecord{*ev.Prediction})
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("ch_insert_seconds", h.now().Sub(start).Seconds())
	}
	if err != nil {
		h.recordError("ingest_store")
		return err
	}

	if h.metrics != nil {
		h.metrics.RecordIngested(string(ev.Kind))
		if !ts.IsZero() {
			h.metrics.RecordLatency("ingest_e2e_seconds", h.now().Sub(ts).Seconds())
		}
	}
	return nil
}

func (h *RecordIngestHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*RecordIngestHandler)(nil)
