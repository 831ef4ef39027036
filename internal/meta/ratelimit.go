package meta

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrDailyLimitReached is returned when the daily Graph API call budget
	// has been exhausted.
	ErrDailyLimitReached = errors.New("daily API limit reached")

	// ErrThrottled is returned while Meta has asked us to back off.
	ErrThrottled = errors.New("graph API throttled")
)

// RateLimiter paces Graph API calls. It combines a token bucket for
// per-second pacing, a rolling 24-hour call budget, and a back-off deadline
// set when Meta reports throttling.
type RateLimiter struct {
	limiter *rate.Limiter
	nowFunc func() time.Time

	mu            sync.Mutex
	daily         int64
	maxDaily      int64
	resetAt       time.Time
	throttleUntil time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate,
// burst size and daily budget. A maxDaily of 0 disables the daily budget.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(24 * time.Hour)
	return r
}

// Wait blocks until a call is allowed or ctx is done. The daily slot is
// taken before waiting so concurrent callers cannot overrun the budget.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserveDaily(); err != nil {
		return err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.releaseDaily()
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (r *RateLimiter) reserveDaily() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.daily = 0
		r.resetAt = now.Add(24 * time.Hour)
	}

	if now.Before(r.throttleUntil) {
		return fmt.Errorf("%w until %s", ErrThrottled, r.throttleUntil.Format(time.RFC3339))
	}

	if r.maxDaily > 0 && r.daily >= r.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, r.daily, r.maxDaily)
	}

	r.daily++
	return nil
}

func (r *RateLimiter) releaseDaily() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.daily > 0 {
		r.daily--
	}
}

// Throttle blocks further calls for d.
func (r *RateLimiter) Throttle(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until := r.nowFunc().Add(d)
	if until.After(r.throttleUntil) {
		r.throttleUntil = until
	}
}

// DailyCount returns the current daily call count.
func (r *RateLimiter) DailyCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.daily
}

// Remaining returns the calls left in the current window, or -1 when the
// daily budget is disabled.
func (r *RateLimiter) Remaining() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxDaily <= 0 {
		return -1
	}
	return max(r.maxDaily-r.daily, 0)
}

// ResetAt returns when the current 24-hour window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}
