package models

// Requests for analytics HTTP endpoints. Range is checked by the aggregator
// so an unknown value surfaces as a ConfigurationError.

type PerformanceRequest struct {
	Range string `query:"range" json:"range" default:"week"`
}

type ActivityRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type KellyRequest struct {
	Edge      float64 `query:"edge" json:"edge" validate:"gte=-1,lte=1"`
	Odds      float64 `query:"odds" json:"odds" validate:"required,gt=1"`
	Bankroll  float64 `query:"bankroll" json:"bankroll" validate:"gte=0"`
	MaxBetPct float64 `query:"max_bet_pct" json:"max_bet_pct" default:"5" validate:"gt=0,lte=100"`
	Tolerance string  `query:"tolerance" json:"tolerance" default:"medium" validate:"oneof=low medium high"`
}
