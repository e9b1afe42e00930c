package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"BetPulse/internal/domain/models"
	"BetPulse/pkg/logger"
	"BetPulse/pkg/util"
)

// ErrInvalidRecord is returned for records that fail validation.
var ErrInvalidRecord = errors.New("invalid record")

var recordValidator = validator.New()

// betWire is the backend's bet payload. Timestamps arrive as RFC3339 or
// unix seconds/milliseconds.
type betWire struct {
	ID        string        `json:"id"`
	Amount    float64       `json:"amount"`
	Odds      float64       `json:"odds"`
	Status    string        `json:"status"`
	Event     string        `json:"event"`
	Timestamp util.FlexTime `json:"timestamp"`
}

type predictionWire struct {
	ID         string        `json:"id"`
	Event      string        `json:"event"`
	Status     string        `json:"status"`
	Timestamp  util.FlexTime `json:"timestamp"`
	Confidence float64       `json:"confidence"`
}

func (w betWire) record() models.BetRecord {
	return models.BetRecord{
		ID:        strings.TrimSpace(w.ID),
		Amount:    w.Amount,
		Odds:      w.Odds,
		Status:    models.BetStatus(strings.ToLower(strings.TrimSpace(w.Status))),
		Event:     w.Event,
		Timestamp: w.Timestamp.UTC(),
	}
}

func (w predictionWire) record() models.PredictionRecord {
	return models.PredictionRecord{
		ID:         strings.TrimSpace(w.ID),
		Event:      w.Event,
		Status:     models.PredictionStatus(strings.ToLower(strings.TrimSpace(w.Status))),
		Timestamp:  w.Timestamp.UTC(),
		Confidence: w.Confidence,
	}
}

// ValidateBet checks a bet against its field rules.
func ValidateBet(b models.BetRecord) error {
	if err := recordValidator.Struct(b); err != nil {
		return fmt.Errorf("%w: bet %q: %v", ErrInvalidRecord, b.ID, err)
	}
	return nil
}

// ValidatePrediction checks a prediction against its field rules.
func ValidatePrediction(p models.PredictionRecord) error {
	if err := recordValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: prediction %q: %v", ErrInvalidRecord, p.ID, err)
	}
	return nil
}

// normalizeBets converts wire bets and drops the ones that fail validation.
func normalizeBets(in []betWire, l *logger.Logger) []models.BetRecord {
	out := make([]models.BetRecord, 0, len(in))
	for _, w := range in {
		b := w.record()
		if err := ValidateBet(b); err != nil {
			l.Warn("dropping bet record", logger.Error(err))
			continue
		}
		out = append(out, b)
	}
	return out
}

func normalizePredictions(in []predictionWire, l *logger.Logger) []models.PredictionRecord {
	out := make([]models.PredictionRecord, 0, len(in))
	for _, w := range in {
		p := w.record()
		if err := ValidatePrediction(p); err != nil {
			l.Warn("dropping prediction record", logger.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out
}

// decodeList accepts either a bare JSON array or an envelope with the array
// under "data".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// RecordKind tags an event on the records topic.
type RecordKind string

const (
	KindBet        RecordKind = "bet"
	KindPrediction RecordKind = "prediction"
)

// RecordEvent is one decoded message from the records topic. Exactly one of
// Bet and Prediction is set.
type RecordEvent struct {
	Kind       RecordKind
	Bet        *models.BetRecord
	Prediction *models.PredictionRecord
}

// DecodeRecordEvent parses {"kind":"bet"|"prediction", ...record} and
// validates the record.
func DecodeRecordEvent(data []byte) (RecordEvent, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return RecordEvent{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	switch RecordKind(strings.ToLower(head.Kind)) {
	case KindBet:
		var w betWire
		if err := json.Unmarshal(data, &w); err != nil {
			return RecordEvent{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		b := w.record()
		if err := ValidateBet(b); err != nil {
			return RecordEvent{}, err
		}
		return RecordEvent{Kind: KindBet, Bet: &b}, nil
	case KindPrediction:
		var w predictionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return RecordEvent{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		p := w.record()
		if err := ValidatePrediction(p); err != nil {
			return RecordEvent{}, err
		}
		return RecordEvent{Kind: KindPrediction, Prediction: &p}, nil
	default:
		return RecordEvent{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, head.Kind)
	}
}
