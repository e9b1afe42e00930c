package repository

import (
	"context"
	"fmt"

	"BetPulse/internal/domain/models"
	domainrepo "BetPulse/internal/domain/repository"
	xhttp "BetPulse/pkg/http"
	"BetPulse/pkg/logger"
)

// HTTPPaths are the backend endpoints the HTTP sources read from.
type HTTPPaths struct {
	Bets                string
	RecentBets          string
	Predictions         string
	RecentPredictions   string
	RecentOpportunities string
}

// DefaultHTTPPaths returns the backend's standard endpoints.
func DefaultHTTPPaths() HTTPPaths {
	return HTTPPaths{
		Bets:                "/api/bets",
		RecentBets:          "/api/bets/recent",
		Predictions:         "/api/predictions",
		RecentPredictions:   "/api/predictions/recent",
		RecentOpportunities: "/api/opportunities/recent",
	}
}

// HTTPSource reads bets and predictions through the resilient fetch client.
// It implements both BetSource and PredictionSource.
type HTTPSource struct {
	client *xhttp.Client
	paths  HTTPPaths
	log    *logger.Logger
}

var (
	_ domainrepo.BetSource        = (*HTTPSource)(nil)
	_ domainrepo.PredictionSource = (*HTTPSource)(nil)
)

// NewHTTPSource creates an HTTP-backed source. Empty paths take defaults.
func NewHTTPSource(client *xhttp.Client, paths HTTPPaths, l *logger.Logger) *HTTPSource {
	def := DefaultHTTPPaths()
	if paths.Bets == "" {
		paths.Bets = def.Bets
	}
	if paths.RecentBets == "" {
		paths.RecentBets = def.RecentBets
	}
	if paths.Predictions == "" {
		paths.Predictions = def.Predictions
	}
	if paths.RecentPredictions == "" {
		paths.RecentPredictions = def.RecentPredictions
	}
	if paths.RecentOpportunities == "" {
		paths.RecentOpportunities = def.RecentOpportunities
	}
	if l == nil {
		l = logger.Nop()
	}
	return &HTTPSource{client: client, paths: paths, log: l.With(logger.String("component", "http_source"))}
}

func (s *HTTPSource) GetBets(ctx context.Context, tr domainrepo.TimeRange) ([]models.BetRecord, error) {
	return s.bets(ctx, s.paths.Bets, map[string]interface{}{"range": string(tr)})
}

func (s *HTTPSource) GetRecentBets(ctx context.Context, limit int) ([]models.BetRecord, error) {
	return s.bets(ctx, s.paths.RecentBets, map[string]interface{}{"limit": limit})
}

func (s *HTTPSource) GetPredictions(ctx context.Context, tr domainrepo.TimeRange) ([]models.PredictionRecord, error) {
	return s.predictions(ctx, s.paths.Predictions, map[string]interface{}{"range": string(tr)})
}

func (s *HTTPSource) GetRecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	return s.predictions(ctx, s.paths.RecentPredictions, map[string]interface{}{"limit": limit})
}

func (s *HTTPSource) GetRecentOpportunities(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	return s.predictions(ctx, s.paths.RecentOpportunities, map[string]interface{}{"limit": limit})
}

func (s *HTTPSource) bets(ctx context.Context, endpoint string, params map[string]interface{}) ([]models.BetRecord, error) {
	resp := s.client.Get(ctx, endpoint, params)
	if !resp.Success {
		return nil, resp.Err
	}
	wire, err := decodeList[betWire](resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", xhttp.ErrDecode, endpoint, err)
	}
	return normalizeBets(wire, s.log), nil
}

func (s *HTTPSource) predictions(ctx context.Context, endpoint string, params map[string]interface{}) ([]models.PredictionRecord, error) {
	resp := s.client.Get(ctx, endpoint, params)
	if !resp.Success {
		return nil, resp.Err
	}
	wire, err := decodeList[predictionWire](resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", xhttp.ErrDecode, endpoint, err)
	}
	return normalizePredictions(wire, s.log), nil
}
