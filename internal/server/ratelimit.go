package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces a per-client sliding request limit.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	clients           map[string]*clientWindow

	// now is swappable for tests.
	now func() time.Time
}

// clientWindow tracks one client's requests within the current window.
type clientWindow struct {
	windowStart time.Time
	requests    int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute per client.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		clients:           make(map[string]*clientWindow),
		now:               time.Now,
	}
}

// Allow records a request for the client and reports whether it is within
// the limit. When denied, the returned error carries the retry delay.
func (rl *RateLimiter) Allow(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, ok := rl.clients[clientID]
	if !ok || now.Sub(win.windowStart) >= time.Minute {
		win = &clientWindow{windowStart: now}
		rl.clients[clientID] = win
	}

	if rl.requestsPerMinute > 0 && win.requests >= rl.requestsPerMinute {
		return &RateLimitError{
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(win.windowStart),
		}
	}

	win.requests++
	return nil
}

// Requests returns the request count in the client's current window.
func (rl *RateLimiter) Requests(clientID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[clientID]
	if !ok || rl.now().Sub(win.windowStart) >= time.Minute {
		return 0
	}
	return win.requests
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (limit: %d/min, retry after: %v)", e.Limit, e.RetryAfter)
}
