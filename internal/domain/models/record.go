package models

import "time"

// BetStatus is the lifecycle state of a bet. Active moves to exactly one
// terminal state.
type BetStatus string

const (
	BetActive    BetStatus = "active"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
)

// Settled reports whether s is terminal.
func (s BetStatus) Settled() bool {
	return s == BetWon || s == BetLost || s == BetCancelled
}

type PredictionStatus string

const (
	PredictionPending     PredictionStatus = "pending"
	PredictionCorrect     PredictionStatus = "correct"
	PredictionIncorrect   PredictionStatus = "incorrect"
	PredictionOpportunity PredictionStatus = "opportunity"
)

// BetRecord is a single wager produced by the betting backend.
type BetRecord struct {
	ID        string    `json:"id" validate:"required"`
	Amount    float64   `json:"amount" validate:"gte=0"`
	Odds      float64   `json:"odds" validate:"gt=0"`
	Status    BetStatus `json:"status" validate:"oneof=active won lost cancelled"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// PredictionRecord is a model prediction for an event.
type PredictionRecord struct {
	ID         string           `json:"id" validate:"required"`
	Event      string           `json:"event"`
	Status     PredictionStatus `json:"status" validate:"oneof=pending correct incorrect opportunity"`
	Timestamp  time.Time        `json:"timestamp"`
	Confidence float64          `json:"confidence" validate:"gte=0,lte=100"`
}
