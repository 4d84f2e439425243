package provider

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the current window's permits are exhausted.
// The retry policy treats it as transient.
var ErrRateLimited = errors.New("rate limit exceeded for current window")

// RateLimiter is a fixed-window counter shared by all callers to the same
// upstream. Once the window's permits are spent, further requests are
// rejected immediately; there is no queuing. Constructed once at process
// start and never reset.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	windowStart time.Time
	count       int

	now func() time.Time
}

// NewRateLimiter creates a limiter that permits limit calls per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow consumes one permit from the current window. It returns
// ErrRateLimited without blocking when none remain.
func (r *RateLimiter) Allow() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.windowStart.IsZero() || now.Sub(r.windowStart) >= r.window {
		r.windowStart = now
		r.count = 0
	}

	if r.count >= r.limit {
		return ErrRateLimited
	}
	r.count++
	return nil
}
