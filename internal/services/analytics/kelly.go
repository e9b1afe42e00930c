package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"BetPulse/internal/domain/models"
)

var toleranceModifier = map[models.RiskTolerance]float64{
	models.RiskLow:    0.25,
	models.RiskMedium: 0.5,
	models.RiskHigh:   1.0,
}

// KellyFraction is edge / (odds - 1) for decimal odds.
func KellyFraction(edge, odds float64) float64 {
	if odds <= 1 {
		return 0
	}
	return edge / (odds - 1)
}

// RecommendStake sizes a bet with a tolerance-scaled Kelly fraction, capped
// at maxBetPct percent of the bankroll and rounded to cents.
func RecommendStake(edge, odds, bankroll, maxBetPct float64, tolerance models.RiskTolerance) (models.KellyRecommendation, error) {
	switch {
	case odds <= 1 || math.IsNaN(odds) || math.IsInf(odds, 0):
		return models.KellyRecommendation{}, models.NewConfigurationError("odds", odds, "decimal odds must be greater than 1")
	case bankroll < 0 || math.IsNaN(bankroll) || math.IsInf(bankroll, 0):
		return models.KellyRecommendation{}, models.NewConfigurationError("bankroll", bankroll, "must be finite and not negative")
	case !(maxBetPct > 0 && maxBetPct <= 100):
		return models.KellyRecommendation{}, models.NewConfigurationError("maxBetPercentage", maxBetPct, "must be in (0, 100]")
	case math.IsNaN(edge) || math.IsInf(edge, 0):
		return models.KellyRecommendation{}, models.NewConfigurationError("edge", edge, "must be a finite number")
	}
	modifier, ok := toleranceModifier[tolerance]
	if !ok {
		return models.KellyRecommendation{}, models.NewConfigurationError("tolerance", tolerance, "must be one of low, medium, high")
	}

	kelly := KellyFraction(edge, odds)
	adjusted := math.Max(0, kelly*modifier)

	bank := decimal.NewFromFloat(bankroll)
	maxStake := bank.Mul(decimal.NewFromFloat(maxBetPct)).Div(decimal.NewFromInt(100))
	stake := decimal.Min(bank.Mul(decimal.NewFromFloat(adjusted)), maxStake)

	return models.KellyRecommendation{
		Edge:             edge,
		Odds:             odds,
		Bankroll:         bankroll,
		Tolerance:        tolerance,
		KellyFraction:    kelly,
		AdjustedFraction: adjusted,
		MaxStake:         maxStake.Round(2).InexactFloat64(),
		RecommendedStake: stake.Round(2).InexactFloat64(),
	}, nil
}
