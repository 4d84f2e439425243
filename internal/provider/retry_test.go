package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryRecoversFromTransient(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return markTransient(errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("bad request")
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	inner := errors.New("always down")
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return markTransient(inner)
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 5, time.Minute, func() error {
		calls++
		cancel()
		return markTransient(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected backoff to abort after 1 call, got %d", calls)
	}
}

func TestIsTransientSeesWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := markTransient(ErrRateLimited)
	if !isTransient(wrapped) {
		t.Fatal("expected transient")
	}
	if !errors.Is(wrapped, ErrRateLimited) {
		t.Fatal("expected unwrap to reach the sentinel")
	}
	if isTransient(errors.New("plain")) {
		t.Fatal("plain error must not be transient")
	}
}
