package models

// RiskTolerance scales the raw Kelly fraction.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// KellyRecommendation is the sized stake for a single opportunity.
type KellyRecommendation struct {
	Edge             float64       `json:"edge"`
	Odds             float64       `json:"odds"`
	Bankroll         float64       `json:"bankroll"`
	Tolerance        RiskTolerance `json:"tolerance"`
	KellyFraction    float64       `json:"kellyFraction"`
	AdjustedFraction float64       `json:"adjustedFraction"`
	MaxStake         float64       `json:"maxStake"`
	RecommendedStake float64       `json:"recommendedStake"`
}
