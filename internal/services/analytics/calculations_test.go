package analytics

import (
	"math"
	"testing"
	"time"

	"BetPulse/internal/domain/models"
)

var base = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

func bet(id string, amount, odds float64, status models.BetStatus, minutes int) models.BetRecord {
	return models.BetRecord{
		ID:        id,
		Amount:    amount,
		Odds:      odds,
		Status:    status,
		Event:     "Lakers vs Warriors",
		Timestamp: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEmptyCollectionsAreZero(t *testing.T) {
	if WinRate(nil) != 0 || ProfitLoss(nil) != 0 || ROI(nil) != 0 {
		t.Fatalf("rates over no bets must be 0")
	}
	if AverageOdds(nil) != 0 || AverageStake(nil) != 0 {
		t.Fatalf("averages over no bets must be 0")
	}
	if PredictionAccuracy(nil) != 0 || Opportunities(nil) != 0 {
		t.Fatalf("prediction stats over none must be 0")
	}
	if best, current := Streaks(nil); best != 0 || current != 0 {
		t.Fatalf("streaks over no bets must be 0")
	}
}

func TestWinRate(t *testing.T) {
	cases := []struct {
		name string
		bets []models.BetRecord
		want float64
	}{
		{"all won", []models.BetRecord{bet("1", 10, 2, models.BetWon, 0)}, 100},
		{"half", []models.BetRecord{bet("1", 10, 2, models.BetWon, 0), bet("2", 10, 2, models.BetLost, 1)}, 50},
		{"active counts in denominator", []models.BetRecord{
			bet("1", 10, 2, models.BetWon, 0),
			bet("2", 10, 2, models.BetActive, 1),
			bet("3", 10, 2, models.BetCancelled, 2),
			bet("4", 10, 2, models.BetLost, 3),
		}, 25},
		{"none won", []models.BetRecord{bet("1", 10, 2, models.BetLost, 0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WinRate(tc.bets)
			if !almostEqual(got, tc.want) {
				t.Fatalf("want %v got %v", tc.want, got)
			}
			if got < 0 || got > 100 {
				t.Fatalf("win rate out of range: %v", got)
			}
		})
	}
}

func TestProfitLossAndROI(t *testing.T) {
	bets := []models.BetRecord{
		bet("1", 100, 2.5, models.BetWon, 0),   // +150
		bet("2", 50, 1.8, models.BetLost, 1),   // -50
		bet("3", 20, 3.0, models.BetActive, 2), // 0
		bet("4", 30, 2.0, models.BetCancelled, 3),
	}
	if got := ProfitLoss(bets); !almostEqual(got, 100) {
		t.Fatalf("profit/loss: want 100 got %v", got)
	}
	if got := ROI(bets); !almostEqual(got, 50) {
		t.Fatalf("roi: want 50 got %v", got)
	}
}

func TestROIZeroStakeIsZero(t *testing.T) {
	bets := []models.BetRecord{bet("1", 0, 2, models.BetWon, 0), bet("2", 0, 2, models.BetLost, 1)}
	if got := ROI(bets); got != 0 {
		t.Fatalf("expected 0 for zero stake, got %v", got)
	}
}

func TestStreaks(t *testing.T) {
	cases := []struct {
		name          string
		statuses      []models.BetStatus
		best, current int
	}{
		{"won won lost won", []models.BetStatus{models.BetWon, models.BetWon, models.BetLost, models.BetWon}, 2, 1},
		{"ends on loss", []models.BetStatus{models.BetWon, models.BetWon, models.BetWon, models.BetLost}, 3, 0},
		{"active is a no-op", []models.BetStatus{models.BetWon, models.BetActive, models.BetWon, models.BetCancelled}, 2, 2},
		{"only active", []models.BetStatus{models.BetActive, models.BetActive}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bets := make([]models.BetRecord, len(tc.statuses))
			for i, s := range tc.statuses {
				bets[i] = bet("b", 10, 2, s, i)
			}
			best, current := Streaks(bets)
			if best != tc.best || current != tc.current {
				t.Fatalf("want best=%d current=%d, got best=%d current=%d", tc.best, tc.current, best, current)
			}
		})
	}
}

func TestStreaksUseChronologicalOrder(t *testing.T) {
	// Same sequence as above delivered newest first.
	bets := []models.BetRecord{
		bet("4", 10, 2, models.BetWon, 3),
		bet("3", 10, 2, models.BetLost, 2),
		bet("2", 10, 2, models.BetWon, 1),
		bet("1", 10, 2, models.BetWon, 0),
	}
	best, current := Streaks(bets)
	if best != 2 || current != 1 {
		t.Fatalf("want best=2 current=1, got %d/%d", best, current)
	}
	if bets[0].ID != "4" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestAverages(t *testing.T) {
	bets := []models.BetRecord{bet("1", 10, 1.5, models.BetWon, 0), bet("2", 30, 2.5, models.BetLost, 1)}
	if got := AverageOdds(bets); !almostEqual(got, 2) {
		t.Fatalf("average odds: %v", got)
	}
	if got := AverageStake(bets); !almostEqual(got, 20) {
		t.Fatalf("average stake: %v", got)
	}
	if got := ActiveBets(append(bets, bet("3", 5, 2, models.BetActive, 2))); got != 1 {
		t.Fatalf("active bets: %d", got)
	}
}

func TestPredictionStats(t *testing.T) {
	preds := []models.PredictionRecord{
		{ID: "1", Status: models.PredictionCorrect},
		{ID: "2", Status: models.PredictionIncorrect},
		{ID: "3", Status: models.PredictionOpportunity},
		{ID: "4", Status: models.PredictionCorrect},
	}
	if got := PredictionAccuracy(preds); !almostEqual(got, 50) {
		t.Fatalf("accuracy: %v", got)
	}
	if got := Opportunities(preds); got != 1 {
		t.Fatalf("opportunities: %d", got)
	}
}
