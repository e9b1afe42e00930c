package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"BetPulse/internal/domain/models"
	"BetPulse/internal/service/metrics"
	"BetPulse/internal/services/analytics"
	"BetPulse/internal/usecase"
	xhttp "BetPulse/pkg/http"
	xlogger "BetPulse/pkg/logger"
)

// HealthChecker probes the betting backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// PerformanceEchoHandler serves the dashboard's analytics endpoints.
type PerformanceEchoHandler struct {
	logger  *xlogger.Logger
	agg     *usecase.PerformanceAggregator
	health  HealthChecker
	metrics *metrics.APIMetrics
}

func NewPerformanceEchoHandler(logger *xlogger.Logger, agg *usecase.PerformanceAggregator, health HealthChecker, m *metrics.APIMetrics) *PerformanceEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PerformanceEchoHandler{logger: logger, agg: agg, health: health, metrics: m}
}

func (h *PerformanceEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/performance", h.Performance)
	g.GET("/activity", h.Activity)
	g.GET("/kelly", h.Kelly)
}

func (h *PerformanceEchoHandler) Performance(c echo.Context) error {
	start := time.Now()
	req := &models.PerformanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("performance", start, true, false)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.GetPerformanceMetrics(c.Request().Context(), req.Range)
	h.metrics.Observe("performance", start, err != nil, res.Degraded)
	if err != nil {
		return h.errorResponse(c, "performance", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *PerformanceEchoHandler) Activity(c echo.Context) error {
	start := time.Now()
	req := &models.ActivityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("activity", start, true, false)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.GetRecentActivity(c.Request().Context(), req.Limit)
	h.metrics.Observe("activity", start, err != nil, res.Degraded)
	if err != nil {
		return h.errorResponse(c, "activity", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PerformanceEchoHandler) Kelly(c echo.Context) error {
	start := time.Now()
	req := &models.KellyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("kelly", start, true, false)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := analytics.RecommendStake(req.Edge, req.Odds, req.Bankroll, req.MaxBetPct, models.RiskTolerance(req.Tolerance))
	h.metrics.Observe("kelly", start, err != nil, false)
	if err != nil {
		return h.errorResponse(c, "kelly", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Health reports liveness plus the betting backend's reachability.
func (h *PerformanceEchoHandler) Health(c echo.Context) error {
	if h.health == nil {
		return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if !h.health.HealthCheck(ctx) {
		return xhttp.ServiceUnavailableResponse(c, map[string]string{"status": "degraded", "backend": "unreachable"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok", "backend": "ok"})
}

// errorResponse renders a ConfigurationError as 400; anything else is a 500.
func (h *PerformanceEchoHandler) errorResponse(c echo.Context, endpoint string, err error) error {
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_CONFIGURATION", cfgErr.Field, cfgErr.Error(), http.StatusBadRequest).
			WithParam("value", cfgErr.Value).
			WithError(err))
	}
	h.logger.Error("analytics usecase error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

var _ xhttp.Handler = (*PerformanceEchoHandler)(nil)
