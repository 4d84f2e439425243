package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// transientError marks a failure worth retrying: 5xx, 429, a network error,
// or a rate-limit rejection. Anything else propagates immediately.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func markTransient(err error) error {
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// withRetry runs fn up to maxAttempts times, sleeping an exponentially
// growing delay plus jitter between attempts. Cancellation during backoff
// aborts immediately without consuming further attempts.
func withRetry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		delay := backoffDelay(baseDelay, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("upstream unavailable after %d attempts: %w", maxAttempts, lastErr)
}

// backoffDelay doubles per attempt (base, 2*base, 4*base, ...) with up to 25%
// added jitter to avoid synchronized retries.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
