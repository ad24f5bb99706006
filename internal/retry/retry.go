package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Policy retries an operation with a backoff schedule.
type Policy struct {
	MaxAttempts int                             // total attempts including the first
	Backoff     func(attempt int) time.Duration // wait after the given 1-based attempt failed
	Retryable   func(err error) bool            // nil means every error is retryable
	Sleep       func(ctx context.Context, d time.Duration) error
	OnRetry     func(attempt int, wait time.Duration, err error)
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsExhausted reports whether err is (or wraps) an ExhaustedError.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}

// Default is ten attempts with randomized exponential backoff between one second and one minute.
func Default() Policy {
	return Policy{
		MaxAttempts: 10,
		Backoff:     RandomExponential(time.Second, time.Minute),
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
// Non-retryable errors are returned as-is.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("backoff interrupted after attempt %d: %w", attempt, err)
		}
	}

	return &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// RandomExponential returns a schedule whose wait after attempt n is uniform in
// [min, clamp(min*2^(n-1), min, max)].
func RandomExponential(min, max time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		high := ExponentialCeiling(min, max, attempt)
		if high <= min {
			return min
		}
		return min + time.Duration(rand.Int63n(int64(high-min)+1))
	}
}

// ExponentialCeiling is the upper bound of the randomized wait for a 1-based attempt.
func ExponentialCeiling(min, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	high := min
	for i := 1; i < attempt; i++ {
		high *= 2
		if high >= max {
			return max
		}
	}
	if high > max {
		return max
	}
	return high
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
