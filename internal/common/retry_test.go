package common

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tendnotes/tend/internal/service"
)

func fastOpts(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastOpts(5))

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	}, fastOpts(3))

	if !errors.Is(err, ErrMaxRetries) {
		t.Errorf("expected ErrMaxRetries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	permanent := &RetryableError{Err: errors.New("bad request"), Retryable: false}
	err := WithRetry(context.Background(), func() error {
		attempts++
		return permanent
	}, fastOpts(5))

	if !errors.Is(err, permanent.Err) {
		t.Errorf("expected the wrapped error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("transient")
	}, fastOpts(5))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", ErrRateLimit, true},
		{"deadline", context.DeadlineExceeded, true},
		{"retryable wrapper", &RetryableError{Err: errors.New("x"), Retryable: true}, true},
		{"permanent wrapper", &RetryableError{Err: errors.New("x"), Retryable: false}, false},
		{"plain error", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartialBulkFailure_Error(t *testing.T) {
	err := &PartialBulkFailure{
		Succeeded: []string{"a", "b"},
		Failed:    map[string]error{"c": errors.New("locked")},
	}

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a message")
	}
	for _, want := range []string{"2 succeeded", "1 failed", "c"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
