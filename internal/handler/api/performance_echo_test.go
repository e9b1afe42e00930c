package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"BetPulse/internal/domain/models"
	domrepo "BetPulse/internal/domain/repository"
	"BetPulse/internal/service/metrics"
	"BetPulse/internal/usecase"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type stubBets struct {
	bets []models.BetRecord
	err  error
}

func (s stubBets) GetBets(context.Context, domrepo.TimeRange) ([]models.BetRecord, error) {
	return s.bets, s.err
}

func (s stubBets) GetRecentBets(context.Context, int) ([]models.BetRecord, error) {
	return s.bets, s.err
}

type stubPredictions struct {
	preds []models.PredictionRecord
}

func (s stubPredictions) GetPredictions(context.Context, domrepo.TimeRange) ([]models.PredictionRecord, error) {
	return s.preds, nil
}

func (s stubPredictions) GetRecentPredictions(context.Context, int) ([]models.PredictionRecord, error) {
	return s.preds, nil
}

func (s stubPredictions) GetRecentOpportunities(context.Context, int) ([]models.PredictionRecord, error) {
	return nil, nil
}

type stubHealth bool

func (s stubHealth) HealthCheck(context.Context) bool { return bool(s) }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestEcho(bets stubBets, health HealthChecker, m *metrics.APIMetrics) *echo.Echo {
	agg := usecase.NewPerformanceAggregator(bets, stubPredictions{preds: []models.PredictionRecord{
		{ID: "p1", Event: "C vs D", Status: models.PredictionCorrect, Timestamp: now.Add(-time.Minute)},
	}}, nil, usecase.WithAggregatorClock(func() time.Time { return now }))
	e := echo.New()
	NewPerformanceEchoHandler(nil, agg, health, m).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestPerformanceEndpoint(t *testing.T) {
	e := newTestEcho(stubBets{bets: []models.BetRecord{
		{ID: "b1", Amount: 100, Odds: 2, Status: models.BetWon, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "b2", Amount: 100, Odds: 2, Status: models.BetLost, Timestamp: now.Add(-time.Hour)},
	}}, nil, nil)

	rec, env := do(t, e, "/api/performance?range=day")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var m models.PerformanceMetrics
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if m.TotalBets != 2 || m.WinRate != 50 || m.ProfitLoss != 0 || m.TotalPredictions != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if rec.Header().Get(echo.HeaderCacheControl) == "" {
		t.Fatal("expected cache-control header")
	}
}

func TestPerformanceUnknownRange(t *testing.T) {
	e := newTestEcho(stubBets{}, nil, nil)

	rec, env := do(t, e, "/api/performance?range=year")
	if rec.Code != http.StatusBadRequest || env.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d/%d", rec.Code, env.Status)
	}
	var errs []struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(env.Data, &errs); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(errs) != 1 || errs[0].Code != "ERR_CONFIGURATION" || errs[0].Field != "timeRange" {
		t.Fatalf("unexpected errors %+v", errs)
	}
}

func TestPerformanceDegradedCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAPIMetrics(reg)
	e := newTestEcho(stubBets{err: errors.New("backend down")}, nil, m)

	rec, env := do(t, e, "/api/performance")
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded metrics must still be 200, got %d", rec.Code)
	}
	var pm models.PerformanceMetrics
	_ = json.Unmarshal(env.Data, &pm)
	if !pm.Degraded || pm.TotalBets != 0 {
		t.Fatalf("expected degraded empty bets, got %+v", pm)
	}
	if got := testutil.ToFloat64(m.Degraded.WithLabelValues("performance")); got != 1 {
		t.Fatalf("expected degraded counter 1, got %v", got)
	}
}

func TestActivityEndpoint(t *testing.T) {
	e := newTestEcho(stubBets{bets: []models.BetRecord{
		{ID: "b1", Event: "A vs B", Amount: 10, Odds: 2, Status: models.BetActive, Timestamp: now},
	}}, nil, nil)

	rec, env := do(t, e, "/api/activity?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var feed models.ActivityFeed
	if err := json.Unmarshal(env.Data, &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].ID != "b1" || feed.Items[0].Description != "Bet placed on A vs B" {
		t.Fatalf("unexpected feed %+v", feed.Items)
	}

	rec, _ = do(t, e, "/api/activity?limit=500")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit over 100, got %d", rec.Code)
	}
}

func TestKellyEndpoint(t *testing.T) {
	e := newTestEcho(stubBets{}, nil, nil)

	rec, env := do(t, e, "/api/kelly?edge=0.1&odds=3&bankroll=1000&max_bet_pct=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var k models.KellyRecommendation
	if err := json.Unmarshal(env.Data, &k); err != nil {
		t.Fatalf("decode kelly: %v", err)
	}
	if k.Tolerance != models.RiskMedium || k.RecommendedStake != 25 || k.MaxStake != 50 {
		t.Fatalf("unexpected recommendation %+v", k)
	}

	rec, _ = do(t, e, "/api/kelly?edge=0.1&odds=1&bankroll=1000")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for odds 1, got %d", rec.Code)
	}

	for _, q := range []string{"edge=0.1&odds=2&bankroll=Inf", "edge=Inf&odds=2&bankroll=1000"} {
		rec, _ = do(t, e, "/api/kelly?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", q, rec.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec, _ := do(t, newTestEcho(stubBets{}, stubHealth(true), nil), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec, _ = do(t, newTestEcho(stubBets{}, stubHealth(false), nil), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
