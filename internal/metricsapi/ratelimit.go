package metricsapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter spaces out requests to the metrics service.
// It allows a fixed number of requests per minute and honours Retry-After.
type RateLimiter struct {
	mu sync.Mutex

	limit    int
	usage    int
	resetsAt time.Time

	// set from a 429 response
	blockedUntil time.Time

	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter allows perMinute requests per rolling minute window.
// perMinute <= 0 disables the window but keeps Retry-After handling.
func NewRateLimiter(perMinute int) *RateLimiter {
	r := &RateLimiter{
		limit: perMinute,
		now:   time.Now,
	}
	if perMinute > 0 {
		r.minInterval = time.Minute / time.Duration(perMinute) / 2
	}
	r.resetsAt = r.now().Add(time.Minute)
	return r
}

// Wait blocks until a request can be made without exceeding the limit
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if now.After(r.resetsAt) {
		r.usage = 0
		r.resetsAt = now.Add(time.Minute)
	}

	if now.Before(r.blockedUntil) {
		if err := r.sleep(ctx, r.blockedUntil.Sub(now)); err != nil {
			return err
		}
	}

	if r.limit > 0 && r.usage >= r.limit {
		if err := r.sleep(ctx, r.resetsAt.Sub(r.now())); err != nil {
			return err
		}
		r.usage = 0
		r.resetsAt = r.now().Add(time.Minute)
	}

	elapsed := r.now().Sub(r.lastRequest)
	if elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.usage++
	r.lastRequest = r.now()
	return nil
}

// sleep releases the lock while waiting. Callers hold r.mu.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders reads Retry-After (seconds) from a throttled response
func (r *RateLimiter) UpdateFromHeaders(status int, h http.Header) {
	if status != http.StatusTooManyRequests {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	wait := time.Minute
	if s := h.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	r.blockedUntil = r.now().Add(wait)
}

// Status returns the requests left in the current window, -1 when unlimited
func (r *RateLimiter) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit <= 0 {
		return -1
	}
	if r.now().After(r.resetsAt) {
		return r.limit
	}
	return r.limit - r.usage
}
