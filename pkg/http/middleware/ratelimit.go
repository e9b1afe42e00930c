package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower decides whether a client identified by key may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests once the client's bucket is empty. Clients are
// keyed by their real IP. deny writes the rejection; nil writes a bare 429.
func RateLimit(limiter Allower, deny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter.Allow(c.RealIP()) {
				return next(c)
			}
			c.Response().Header().Set("Retry-After", "1")
			if deny != nil {
				return deny(c)
			}
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"status":  http.StatusTooManyRequests,
				"message": http.StatusText(http.StatusTooManyRequests),
			})
		}
	}
}
