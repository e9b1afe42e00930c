package http

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"BetPulse/pkg/cache"
	"BetPulse/pkg/logger"
)

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the URL every endpoint is resolved against.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		c.retries = retries
	}
}

// WithRetryDelay sets the base backoff delay, doubled after each attempt.
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// WithCacheTTL sets the default TTL for cached GET responses.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithHealthPath sets the liveness endpoint used by HealthCheck.
func WithHealthPath(path string) ClientOption {
	return func(c *Client) {
		c.healthPath = path
	}
}

// WithDefaultHeader adds a header sent on every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithCache sets the response cache store.
func WithCache(store cache.Store) ClientOption {
	return func(c *Client) {
		c.cache = store
	}
}

func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithRateLimit caps outbound requests; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(s Sleeper) ClientOption {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithClock replaces time.Now for timestamps and cache validity.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

type requestConfig struct {
	cache    bool
	cacheTTL time.Duration
	headers  map[string]string
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// NoCache bypasses the response cache for a GET.
func NoCache() RequestOption {
	return func(r *requestConfig) {
		r.cache = false
	}
}

// CacheFor overrides the TTL of the entry stored for this GET.
func CacheFor(ttl time.Duration) RequestOption {
	return func(r *requestConfig) {
		r.cacheTTL = ttl
	}
}

// WithHeader sets a header on this request only.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers[key] = value
	}
}
