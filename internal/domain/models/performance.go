package models

import "time"

// PerformanceMetrics is recomputed on every call and never persisted.
// Degraded marks a snapshot in which at least one source failed and was
// treated as empty; DegradedSources names them.
type PerformanceMetrics struct {
	TotalBets          int       `json:"totalBets"`
	ActiveBets         int       `json:"activeBets"`
	WinRate            float64   `json:"winRate"`
	ProfitLoss         float64   `json:"profitLoss"`
	ROI                float64   `json:"roi"`
	BestStreak         int       `json:"bestStreak"`
	CurrentStreak      int       `json:"currentStreak"`
	AverageOdds        float64   `json:"averageOdds"`
	AverageStake       float64   `json:"averageStake"`
	TotalPredictions   int       `json:"totalPredictions"`
	PredictionAccuracy float64   `json:"predictionAccuracy"`
	Opportunities      int       `json:"opportunities"`
	Timestamp          time.Time `json:"timestamp"`
	Degraded           bool      `json:"degraded"`
	DegradedSources    []string  `json:"degradedSources,omitempty"`
}

type ActivityType string

const (
	ActivityBet         ActivityType = "bet"
	ActivityPrediction  ActivityType = "prediction"
	ActivityOpportunity ActivityType = "opportunity"
)

// Activity is one entry of the merged recent-activity feed.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Amount      float64      `json:"amount,omitempty"`
	Odds        float64      `json:"odds,omitempty"`
	Status      string       `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
}

// ActivityFeed is the result of a recent-activity query.
type ActivityFeed struct {
	Items           []Activity `json:"items"`
	Degraded        bool       `json:"degraded"`
	DegradedSources []string   `json:"degradedSources,omitempty"`
}
