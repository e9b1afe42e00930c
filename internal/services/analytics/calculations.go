package analytics

import (
	"sort"

	"BetPulse/internal/domain/models"
)

// WinRate is the percentage of bets won; 0 for no bets.
func WinRate(bets []models.BetRecord) float64 {
	if len(bets) == 0 {
		return 0
	}
	won := 0
	for _, b := range bets {
		if b.Status == models.BetWon {
			won++
		}
	}
	return float64(won) / float64(len(bets)) * 100
}

// ProfitLoss sums net winnings of won bets minus stakes of lost bets.
// Active and cancelled bets contribute nothing.
func ProfitLoss(bets []models.BetRecord) float64 {
	total := 0.0
	for _, b := range bets {
		switch b.Status {
		case models.BetWon:
			total += b.Amount*b.Odds - b.Amount
		case models.BetLost:
			total -= b.Amount
		}
	}
	return total
}

// TotalStaked sums bet amounts.
func TotalStaked(bets []models.BetRecord) float64 {
	total := 0.0
	for _, b := range bets {
		total += b.Amount
	}
	return total
}

// ROI is profit/loss as a percentage of total staked; 0 when nothing was staked.
func ROI(bets []models.BetRecord) float64 {
	staked := TotalStaked(bets)
	if staked == 0 {
		return 0
	}
	return ProfitLoss(bets) / staked * 100
}

// Streaks walks bets oldest first. A win extends the run, a loss resets it,
// other statuses are ignored. current is the run at the end of the sequence.
func Streaks(bets []models.BetRecord) (best, current int) {
	ordered := make([]models.BetRecord, len(bets))
	copy(ordered, bets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	run := 0
	for _, b := range ordered {
		switch b.Status {
		case models.BetWon:
			run++
			current = run
			if run > best {
				best = run
			}
		case models.BetLost:
			run = 0
			current = 0
		}
	}
	return best, current
}

func AverageOdds(bets []models.BetRecord) float64 {
	if len(bets) == 0 {
		return 0
	}
	total := 0.0
	for _, b := range bets {
		total += b.Odds
	}
	return total / float64(len(bets))
}

func AverageStake(bets []models.BetRecord) float64 {
	if len(bets) == 0 {
		return 0
	}
	return TotalStaked(bets) / float64(len(bets))
}

// ActiveBets counts bets not yet settled.
func ActiveBets(bets []models.BetRecord) int {
	n := 0
	for _, b := range bets {
		if b.Status == models.BetActive {
			n++
		}
	}
	return n
}

// PredictionAccuracy is the percentage of predictions marked correct; 0 for none.
func PredictionAccuracy(predictions []models.PredictionRecord) float64 {
	if len(predictions) == 0 {
		return 0
	}
	correct := 0
	for _, p := range predictions {
		if p.Status == models.PredictionCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions)) * 100
}

func Opportunities(predictions []models.PredictionRecord) int {
	n := 0
	for _, p := range predictions {
		if p.Status == models.PredictionOpportunity {
			n++
		}
	}
	return n
}
