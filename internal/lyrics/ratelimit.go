package lyrics

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewLimiter paces provider requests at requestsPerSecond. Zero or negative
// rates disable pacing.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// StatusError maps an HTTP status to the chain's error vocabulary: 429 becomes
// ErrRateLimited and any other failure declines with ErrTryNext.
func StatusError(provider, operation string, resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Provider: provider, Operation: operation}
	}
	return Decline(provider, "%s failed (%s)", operation, resp.Status)
}

// RateLimitError reports an HTTP 429 from a provider.
type RateLimitError struct {
	Provider  string
	Operation string
}

func (e *RateLimitError) Error() string {
	return e.Provider + ": " + e.Operation + ": rate limited (429)"
}

// Unwrap lets errors.Is match ErrRateLimited and ErrTryNext.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
