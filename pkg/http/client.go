package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"BetPulse/pkg/cache"
	"BetPulse/pkg/logger"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
)

const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
	DefaultCacheTTL   = 5 * time.Minute
	DefaultHealthPath = "/health"
)

// Observer receives one event per logical request and per cache lookup.
type Observer interface {
	ObserveRequest(method, endpoint, outcome string, attempts int, duration time.Duration)
	ObserveCache(endpoint string, hit bool)
}

// Sleeper waits d or returns early with the context cause.
type Sleeper func(ctx context.Context, d time.Duration) error

// Response is the result of a fetch. Failures never escape as panics or
// returned errors; they are reported with Success=false.
type Response[T any] struct {
	Success   bool      `json:"success"`
	Data      T         `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Err       error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Cached    bool      `json:"cached,omitempty"`
}

// Client issues JSON requests against a base URL with per-attempt timeouts,
// exponential-backoff retries, GET response caching and bulk cancellation.
type Client struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	cacheTTL   time.Duration
	healthPath string
	headers    map[string]string

	client   *http.Client
	cache    cache.Store
	logger   *logger.Logger
	observer Observer
	limiter  *rate.Limiter
	sleep    Sleeper
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]context.CancelCauseFunc
}

// NewClient creates a new fetch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		cacheTTL:   DefaultCacheTTL,
		healthPath: DefaultHealthPath,
		headers:    map[string]string{"Accept": "application/json"},
		sleep:      sleepContext,
		now:        time.Now,
		inflight:   make(map[string]context.CancelCauseFunc),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.cache == nil {
		c.cache = cache.NewMemoryCache(cache.WithMemoryClock(c.now))
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if c.retries < 0 {
		c.retries = 0
	}
	return c
}

// Get fetches endpoint with params as query string. Successful responses are
// cached under the request key unless NoCache is given.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]interface{}, opts ...RequestOption) Response[json.RawMessage] {
	return c.do(ctx, MethodGet, endpoint, params, nil, c.requestConfig(true, opts))
}

// Post sends body as JSON. Mutating verbs are never cached.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}, opts ...RequestOption) Response[json.RawMessage] {
	return c.do(ctx, MethodPost, endpoint, nil, body, c.requestConfig(false, opts))
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}, opts ...RequestOption) Response[json.RawMessage] {
	return c.do(ctx, MethodPut, endpoint, nil, body, c.requestConfig(false, opts))
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) Response[json.RawMessage] {
	return c.do(ctx, MethodDelete, endpoint, nil, nil, c.requestConfig(false, opts))
}

// AbortAllRequests cancels every tracked request. Safe with nothing in flight.
func (c *Client) AbortAllRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, cancel := range c.inflight {
		cancel(ErrAborted)
		delete(c.inflight, id)
	}
}

// ClearCache empties the response cache.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// CacheStats lists stored keys, including expired ones not yet evicted.
func (c *Client) CacheStats(ctx context.Context) (cache.Stats, error) {
	return c.cache.Stats(ctx)
}

// InFlight returns the number of tracked requests.
func (c *Client) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// HealthCheck performs an uncached GET against the liveness endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.Get(ctx, c.healthPath, nil, NoCache()).Success
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]interface{}, body interface{}, cfg *requestConfig) Response[json.RawMessage] {
	start := c.now()

	if endpoint == "" {
		return c.fail(method, endpoint, fmt.Errorf("%w: empty endpoint", ErrInvalidRequest), 0, start)
	}

	key := ""
	if method == MethodGet && cfg.cache {
		key = cache.RequestKey(endpoint, params)
		if resp, ok := c.fromCache(ctx, endpoint, key); ok {
			return resp
		}
	}

	target, err := c.buildURL(endpoint, params)
	if err != nil {
		return c.fail(method, endpoint, err, 0, start)
	}
	payload, err := encodeBody(body)
	if err != nil {
		return c.fail(method, endpoint, err, 0, start)
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	id := c.track(endpoint, start, cancel)
	defer func() {
		c.untrack(id)
		cancel(nil)
	}()

	data, attempts, err := c.execute(reqCtx, method, endpoint, target, payload, cfg.headers)
	if err != nil {
		return c.fail(method, endpoint, err, attempts, start)
	}

	if key != "" {
		entry := cache.Entry{Data: data, Timestamp: c.now(), TTL: cfg.cacheTTL}
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn("cache write failed", logger.String("key", key), logger.Error(err))
		}
	}

	if c.observer != nil {
		c.observer.ObserveRequest(method, endpoint, Outcome(nil), attempts, c.now().Sub(start))
	}
	return Response[json.RawMessage]{
		Success:   true,
		Data:      json.RawMessage(data),
		Timestamp: c.now(),
	}
}

func (c *Client) fromCache(ctx context.Context, endpoint, key string) (Response[json.RawMessage], bool) {
	entry, err := c.cache.Get(ctx, key)
	hit := err == nil
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("cache read failed", logger.String("key", key), logger.Error(err))
	}
	if c.observer != nil {
		c.observer.ObserveCache(endpoint, hit)
	}
	if !hit {
		c.logger.Debug("cache miss", logger.String("key", key))
		return Response[json.RawMessage]{}, false
	}

	c.logger.Debug("cache hit", logger.String("key", key))
	return Response[json.RawMessage]{
		Success:   true,
		Data:      json.RawMessage(entry.Data),
		Timestamp: c.now(),
		Cached:    true,
	}, true
}

// execute runs up to retries+1 attempts. Aborts end the loop immediately,
// including during a backoff wait.
func (c *Client) execute(ctx context.Context, method, endpoint, target string, payload []byte, headers map[string]string) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if c.limiter != nil {
			// Wait fails early when the deadline would pass before a token frees up.
			if err := c.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, attempt, abortError(ctx)
				}
				return nil, attempt, fmt.Errorf("%w: %v", ErrAborted, err)
			}
		}

		data, err := c.attempt(ctx, method, target, payload, headers)
		if err == nil {
			return data, attempt + 1, nil
		}
		if errors.Is(err, ErrAborted) {
			return nil, attempt + 1, err
		}
		lastErr = err

		if attempt < c.retries {
			delay := c.retryDelay * time.Duration(1<<attempt)
			c.logger.Warn("request attempt failed, retrying",
				logger.String("method", method),
				logger.String("endpoint", endpoint),
				logger.Int("attempt", attempt+1),
				logger.Duration("backoff_ms", delay),
				logger.Error(err))

			if err := c.sleep(ctx, delay); err != nil {
				return nil, attempt + 1, abortError(ctx)
			}
		}
	}

	return nil, c.retries + 1, lastErr
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, headers map[string]string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimeout)
	defer cancel()

	req, err := c.buildRequest(attemptCtx, method, target, payload, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, attemptCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	return body, nil
}

func (c *Client) fail(method, endpoint string, err error, attempts int, start time.Time) Response[json.RawMessage] {
	outcome := Outcome(err)
	fields := []logger.Field{
		logger.String("method", method),
		logger.String("endpoint", endpoint),
		logger.Int("attempts", attempts),
		logger.Error(err),
	}
	if outcome == "aborted" {
		c.logger.Debug("request aborted", fields...)
	} else {
		c.logger.Error("request failed", fields...)
	}

	if c.observer != nil {
		c.observer.ObserveRequest(method, endpoint, outcome, attempts, c.now().Sub(start))
	}
	return Response[json.RawMessage]{
		Success:   false,
		Error:     err.Error(),
		Err:       err,
		Timestamp: c.now(),
	}
}

func (c *Client) track(endpoint string, start time.Time, cancel context.CancelCauseFunc) string {
	id := fmt.Sprintf("%s:%d:%s", endpoint, start.UnixMilli(), uuid.NewString()[:8])

	c.mu.Lock()
	c.inflight[id] = cancel
	c.mu.Unlock()
	return id
}

func (c *Client) untrack(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Client) requestConfig(cacheable bool, opts []RequestOption) *requestConfig {
	cfg := &requestConfig{
		cache:    cacheable,
		cacheTTL: c.cacheTTL,
		headers:  make(map[string]string, len(c.headers)),
	}
	for k, v := range c.headers {
		cfg.headers[k] = v
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Client) buildURL(endpoint string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.baseURL, "/") + endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		q := u.Query()
		for _, k := range keys {
			q.Set(k, fmt.Sprint(params[k]))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) buildRequest(ctx context.Context, method, target string, payload []byte, headers map[string]string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// encodeBody turns a request body into bytes once so every retry resends the same payload.
func encodeBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	switch v := body.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", ErrInvalidRequest, err)
		}
		return data, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal json: %v", ErrInvalidRequest, err)
		}
		return data, nil
	}
}

// classify maps a transport error onto the fetch taxonomy. Cancellation of
// the request context wins over the per-attempt timeout.
func classify(reqCtx, attemptCtx context.Context, err error) error {
	if reqCtx.Err() != nil {
		return abortError(reqCtx)
	}
	if errors.Is(context.Cause(attemptCtx), ErrTimeout) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func abortError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(cause, ErrAborted) {
		return ErrAborted
	}
	return fmt.Errorf("%w: %v", ErrAborted, cause)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
