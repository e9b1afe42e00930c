package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

type observedRequest struct {
	method, endpoint, outcome string
	attempts                  int
}

type fakeObserver struct {
	mu       sync.Mutex
	requests []observedRequest
	hits     int
	misses   int
}

func (o *fakeObserver) ObserveRequest(method, endpoint, outcome string, attempts int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observedRequest{method, endpoint, outcome, attempts})
}

func (o *fakeObserver) ObserveCache(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestGetCachesAndSkipsNetworkOnHit(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK, `[{"id":"b1"}]`)
	obs := &fakeObserver{}
	c := NewClient(WithBaseURL(srv.URL), WithObserver(obs))
	ctx := context.Background()

	first := c.Get(ctx, "/bets", map[string]interface{}{"range": "week", "limit": 5})
	if !first.Success || first.Cached {
		t.Fatalf("first call should hit network: %+v", first)
	}

	second := c.Get(ctx, "/bets", map[string]interface{}{"limit": 5, "range": "week"})
	if !second.Success || !second.Cached {
		t.Fatalf("second call should be served from cache: %+v", second)
	}
	if string(second.Data) != `[{"id":"b1"}]` {
		t.Fatalf("unexpected cached data %s", second.Data)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected 1 network call, got %d", got)
	}
	if obs.hits != 1 || obs.misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", obs.hits, obs.misses)
	}
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK, `{}`)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewClient(WithBaseURL(srv.URL), WithClock(clock), WithCacheTTL(time.Minute))
	ctx := context.Background()

	c.Get(ctx, "/predictions", nil)
	now = now.Add(59 * time.Second)
	if resp := c.Get(ctx, "/predictions", nil); !resp.Cached {
		t.Fatalf("expected cached response within ttl")
	}

	now = now.Add(time.Second)
	if resp := c.Get(ctx, "/predictions", nil); resp.Cached || !resp.Success {
		t.Fatalf("expected fresh fetch after ttl: %+v", resp)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected 2 network calls, got %d", got)
	}
}

func TestNoCacheAndCacheForOptions(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK, `{}`)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	c.Get(ctx, "/live", nil, NoCache())
	c.Get(ctx, "/live", nil, NoCache())
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("NoCache should always hit network, got %d calls", got)
	}
	stats, _ := c.CacheStats(ctx)
	if stats.Size != 0 {
		t.Fatalf("NoCache must not store entries: %+v", stats)
	}

	c.Get(ctx, "/short", nil, CacheFor(time.Second))
	now = now.Add(2 * time.Second)
	if resp := c.Get(ctx, "/short", nil); resp.Cached {
		t.Fatalf("entry stored with CacheFor(1s) should have expired")
	}
}

func TestHTTPErrorRetriedWithBackoff(t *testing.T) {
	srv, calls := countingServer(t, http.StatusInternalServerError, `{"detail":"boom"}`)
	sleeper := &recordingSleeper{}
	obs := &fakeObserver{}
	c := NewClient(WithBaseURL(srv.URL), WithSleeper(sleeper.Sleep), WithObserver(obs))

	resp := c.Get(context.Background(), "/predictions", nil)
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if resp.Error != "HTTP 500: Internal Server Error" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
	var httpErr *HTTPError
	if !errors.As(resp.Err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTPError, got %v", resp.Err)
	}
	if got := atomic.LoadInt32(calls); got != DefaultRetries+1 {
		t.Fatalf("expected %d attempts, got %d", DefaultRetries+1, got)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d: want %v got %v", i, want[i], sleeper.delays[i])
		}
	}

	stats, _ := c.CacheStats(context.Background())
	if stats.Size != 0 {
		t.Fatalf("failures must not be cached: %+v", stats)
	}
	if len(obs.requests) != 1 || obs.requests[0].outcome != "http_error" || obs.requests[0].attempts != 4 {
		t.Fatalf("unexpected observed requests %+v", obs.requests)
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithSleeper(noSleep))
	resp := c.Get(context.Background(), "/bets", nil)
	if !resp.Success || string(resp.Data) != `{"ok":true}` {
		t.Fatalf("expected eventual success, got %+v", resp)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestTimeoutIsRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond), WithRetries(1), WithSleeper(noSleep))
	resp := c.Get(context.Background(), "/slow", nil)
	if resp.Success || !errors.Is(resp.Err, ErrTimeout) {
		t.Fatalf("expected timeout failure, got %+v", resp)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestNetworkErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(base), WithRetries(0))
	resp := c.Get(context.Background(), "/bets", nil)
	if resp.Success || !errors.Is(resp.Err, ErrNetwork) {
		t.Fatalf("expected network error, got %+v", resp)
	}
}

func TestAbortAllRequestsCancelsPendingGets(t *testing.T) {
	arrived := make(chan struct{}, 2)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		arrived <- struct{}{}
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithSleeper(noSleep))
	ctx := context.Background()

	results := make([]Response[json.RawMessage], 2)
	var wg sync.WaitGroup
	for i, endpoint := range []string{"/bets", "/predictions"} {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			results[i] = c.Get(ctx, endpoint, nil)
		}(i, endpoint)
	}

	<-arrived
	<-arrived
	if got := c.InFlight(); got != 2 {
		t.Fatalf("expected 2 tracked requests, got %d", got)
	}

	c.AbortAllRequests()
	wg.Wait()

	for i, resp := range results {
		if resp.Success || !errors.Is(resp.Err, ErrAborted) {
			t.Fatalf("request %d: expected abort, got %+v", i, resp)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("aborted requests must not be retried, got %d calls", got)
	}
	stats, _ := c.CacheStats(ctx)
	if stats.Size != 0 {
		t.Fatalf("aborted requests must not create cache entries: %+v", stats)
	}
	if c.InFlight() != 0 {
		t.Fatalf("request table should be empty")
	}

	// idempotent with nothing in flight
	c.AbortAllRequests()
}

func TestAbortDuringBackoffSkipsRemainingAttempts(t *testing.T) {
	srv, calls := countingServer(t, http.StatusServiceUnavailable, ``)
	sleeping := make(chan struct{})
	sleeper := func(ctx context.Context, d time.Duration) error {
		close(sleeping)
		<-ctx.Done()
		return context.Cause(ctx)
	}
	c := NewClient(WithBaseURL(srv.URL), WithSleeper(sleeper))

	done := make(chan Response[json.RawMessage])
	go func() { done <- c.Get(context.Background(), "/bets", nil) }()

	<-sleeping
	c.AbortAllRequests()
	resp := <-done

	if !errors.Is(resp.Err, ErrAborted) {
		t.Fatalf("expected abort, got %v", resp.Err)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestCallerCancellationIsAbort(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK, `{}`)
	c := NewClient(WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := c.Get(ctx, "/bets", nil)
	if !errors.Is(resp.Err, ErrAborted) {
		t.Fatalf("expected abort for cancelled context, got %v", resp.Err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("no request should reach the server")
	}
}

func TestPostSendsJSONAndIsNotCached(t *testing.T) {
	var (
		gotBody        map[string]interface{}
		gotContentType string
		gotMethod      string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"id":"bet-9","status":"active"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	type placed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	resp := PostJSON[placed](ctx, c, "/bets", map[string]interface{}{"amount": 25, "odds": 2.1})
	if !resp.Success || resp.Data.ID != "bet-9" || resp.Data.Status != "active" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gotMethod != http.MethodPost || gotContentType != "application/json" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotContentType)
	}
	if gotBody["amount"].(float64) != 25 || gotBody["odds"].(float64) != 2.1 {
		t.Fatalf("unexpected body %v", gotBody)
	}
	stats, _ := c.CacheStats(ctx)
	if stats.Size != 0 {
		t.Fatalf("POST must not be cached")
	}
}

func TestPutAndDeleteUseVerbs(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	if resp := c.Put(ctx, "/bets/1", map[string]string{"status": "cancelled"}); !resp.Success {
		t.Fatalf("put failed: %+v", resp)
	}
	if resp := DeleteJSON[struct{}](ctx, c, "/bets/1"); !resp.Success {
		t.Fatalf("delete failed: %+v", resp)
	}
	if len(methods) != 2 || methods[0] != "PUT /bets/1" || methods[1] != "DELETE /bets/1" {
		t.Fatalf("unexpected calls %v", methods)
	}
}

func TestGetJSONDecodeFailureIsFailureResponse(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, `"not an object"`)
	c := NewClient(WithBaseURL(srv.URL))

	resp := GetJSON[map[string]int](context.Background(), c, "/bets", nil)
	if resp.Success || !errors.Is(resp.Err, ErrDecode) {
		t.Fatalf("expected decode failure, got %+v", resp)
	}
}

func TestQueryParamsAreEncoded(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	c.Get(context.Background(), "/bets", map[string]interface{}{"range": "week", "limit": 10, "settled": true})
	if rawQuery != "limit=10&range=week&settled=true" {
		t.Fatalf("unexpected query %q", rawQuery)
	}
}

func TestEmptyEndpointFailsWithoutNetwork(t *testing.T) {
	c := NewClient()
	resp := c.Get(context.Background(), "", nil)
	if resp.Success || !errors.Is(resp.Err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %+v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := int32(1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || atomic.LoadInt32(&healthy) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithSleeper(noSleep))
	ctx := context.Background()

	if !c.HealthCheck(ctx) {
		t.Fatalf("expected healthy")
	}
	atomic.StoreInt32(&healthy, 0)
	if c.HealthCheck(ctx) {
		t.Fatalf("health check must not be served from cache")
	}
}

func TestRateLimitHonorsCancellation(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK, `{}`)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0.001, 1))

	if resp := c.Get(context.Background(), "/a", nil); !resp.Success {
		t.Fatalf("first request should pass the limiter: %+v", resp)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	resp := c.Get(ctx, "/b", nil)
	if !errors.Is(resp.Err, ErrAborted) {
		t.Fatalf("expected abort while waiting for limiter, got %v", resp.Err)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("limited request must not reach the server")
	}
}
