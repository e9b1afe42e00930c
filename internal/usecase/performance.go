package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"BetPulse/internal/domain/models"
	domrepo "BetPulse/internal/domain/repository"
	"BetPulse/internal/services/analytics"
	"BetPulse/pkg/logger"
)

const (
	sourceBets          = "bets"
	sourcePredictions   = "predictions"
	sourceOpportunities = "opportunities"
)

// PerformanceAggregator derives performance snapshots and the activity feed
// from bet and prediction sources. It holds no state between calls.
type PerformanceAggregator struct {
	bets        domrepo.BetSource
	predictions domrepo.PredictionSource
	metrics     domrepo.Metrics
	logger      *logger.Logger
	timeout     time.Duration
	now         func() time.Time
}

type AggregatorOption func(*PerformanceAggregator)

// WithAggregatorMetrics records source failures and latency.
func WithAggregatorMetrics(m domrepo.Metrics) AggregatorOption {
	return func(a *PerformanceAggregator) { a.metrics = m }
}

// WithAggregatorTimeout bounds each call, sources included.
func WithAggregatorTimeout(d time.Duration) AggregatorOption {
	return func(a *PerformanceAggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithAggregatorClock(now func() time.Time) AggregatorOption {
	return func(a *PerformanceAggregator) { a.now = now }
}

func NewPerformanceAggregator(bets domrepo.BetSource, predictions domrepo.PredictionSource, l *logger.Logger, opts ...AggregatorOption) *PerformanceAggregator {
	a := &PerformanceAggregator{
		bets:        bets,
		predictions: predictions,
		logger:      l,
		timeout:     10 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Nop()
	}
	return a
}

// GetPerformanceMetrics computes a fresh snapshot for timeRange. Only an
// unknown range is an error; a failing source degrades to an empty set.
func (a *PerformanceAggregator) GetPerformanceMetrics(ctx context.Context, timeRange string) (models.PerformanceMetrics, error) {
	tr, err := domrepo.ParseTimeRange(timeRange)
	if err != nil {
		return models.PerformanceMetrics{}, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		bets  []models.BetRecord
		preds []models.PredictionRecord
		errs  = make([]error, 2)
		wg    sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = safeFetch(func() (err error) {
			if a.bets == nil {
				return errSourceNotConfigured
			}
			bets, err = a.bets.GetBets(ctx, tr)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = safeFetch(func() (err error) {
			if a.predictions == nil {
				return errSourceNotConfigured
			}
			preds, err = a.predictions.GetPredictions(ctx, tr)
			return err
		})
	}()
	wg.Wait()

	var degraded []string
	if errs[0] != nil {
		bets = nil
		degraded = append(degraded, a.degrade(sourceBets, "getPerformanceMetrics", errs[0]))
	}
	if errs[1] != nil {
		preds = nil
		degraded = append(degraded, a.degrade(sourcePredictions, "getPerformanceMetrics", errs[1]))
	}

	best, current := analytics.Streaks(bets)
	m := models.PerformanceMetrics{
		TotalBets:          len(bets),
		ActiveBets:         analytics.ActiveBets(bets),
		WinRate:            analytics.WinRate(bets),
		ProfitLoss:         analytics.ProfitLoss(bets),
		ROI:                analytics.ROI(bets),
		BestStreak:         best,
		CurrentStreak:      current,
		AverageOdds:        analytics.AverageOdds(bets),
		AverageStake:       analytics.AverageStake(bets),
		TotalPredictions:   len(preds),
		PredictionAccuracy: analytics.PredictionAccuracy(preds),
		Opportunities:      analytics.Opportunities(preds),
		Timestamp:          a.now(),
		Degraded:           len(degraded) > 0,
		DegradedSources:    degraded,
	}

	if a.metrics != nil {
		a.metrics.RecordLatency("performance_metrics", time.Since(start).Seconds())
	}
	return m, nil
}

// GetRecentActivity merges recent bets, predictions and opportunities newest
// first, capped at limit. Entries with equal timestamps keep the order bets,
// predictions, opportunities.
func (a *PerformanceAggregator) GetRecentActivity(ctx context.Context, limit int) (models.ActivityFeed, error) {
	if limit <= 0 {
		return models.ActivityFeed{}, models.NewConfigurationError("limit", limit, "must be positive")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		bets  []models.BetRecord
		preds []models.PredictionRecord
		opps  []models.PredictionRecord
		errs  = make([]error, 3)
		wg    sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = safeFetch(func() (err error) {
			if a.bets == nil {
				return errSourceNotConfigured
			}
			bets, err = a.bets.GetRecentBets(ctx, limit)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = safeFetch(func() (err error) {
			if a.predictions == nil {
				return errSourceNotConfigured
			}
			preds, err = a.predictions.GetRecentPredictions(ctx, limit)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[2] = safeFetch(func() (err error) {
			if a.predictions == nil {
				return errSourceNotConfigured
			}
			opps, err = a.predictions.GetRecentOpportunities(ctx, limit)
			return err
		})
	}()
	wg.Wait()

	feed := models.ActivityFeed{Items: make([]models.Activity, 0, len(bets)+len(preds)+len(opps))}
	names := []string{sourceBets, sourcePredictions, sourceOpportunities}
	for i, err := range errs {
		if err != nil {
			feed.DegradedSources = append(feed.DegradedSources, a.degrade(names[i], "getRecentActivity", err))
		}
	}
	feed.Degraded = len(feed.DegradedSources) > 0

	if errs[0] == nil {
		for _, b := range bets {
			feed.Items = append(feed.Items, models.Activity{
				ID:          b.ID,
				Type:        models.ActivityBet,
				Description: fmt.Sprintf("Bet placed on %s", b.Event),
				Amount:      b.Amount,
				Odds:        b.Odds,
				Status:      string(b.Status),
				Timestamp:   b.Timestamp,
			})
		}
	}
	if errs[1] == nil {
		for _, p := range preds {
			feed.Items = append(feed.Items, predictionActivity(p, models.ActivityPrediction, "Prediction for %s"))
		}
	}
	if errs[2] == nil {
		for _, p := range opps {
			feed.Items = append(feed.Items, predictionActivity(p, models.ActivityOpportunity, "Opportunity detected for %s"))
		}
	}

	sort.SliceStable(feed.Items, func(i, j int) bool {
		return feed.Items[i].Timestamp.After(feed.Items[j].Timestamp)
	})
	if len(feed.Items) > limit {
		feed.Items = feed.Items[:limit]
	}

	if a.metrics != nil {
		a.metrics.RecordLatency("recent_activity", time.Since(start).Seconds())
	}
	return feed, nil
}

func predictionActivity(p models.PredictionRecord, typ models.ActivityType, format string) models.Activity {
	return models.Activity{
		ID:          p.ID,
		Type:        typ,
		Description: fmt.Sprintf(format, p.Event),
		Status:      string(p.Status),
		Timestamp:   p.Timestamp,
	}
}

func (a *PerformanceAggregator) degrade(source, method string, err error) string {
	a.logger.Warn("data source failed, using empty set",
		logger.String("source", source),
		logger.String("method", method),
		logger.Error(err))
	if a.metrics != nil {
		a.metrics.RecordSourceFailure(source)
	}
	return source
}

var errSourceNotConfigured = errors.New("source not configured")

// safeFetch turns a panicking source into an error so one bad source cannot
// take down the aggregation.
func safeFetch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return fn()
}
