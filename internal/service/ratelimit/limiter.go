package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	m       map[string]*client
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// New creates a limiter refilling rps tokens per second up to burst.
// Buckets untouched for idleTTL are dropped on the next Allow.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		m:       make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictIdle(now)

	c, ok := l.m[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) evictIdle(now time.Time) {
	if l.idleTTL <= 0 {
		return
	}
	for key, c := range l.m {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.m, key)
		}
	}
}
