// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Enrichment errors.
	ErrInvalidTransition = errors.New("invalid enrichment transition")
	ErrEnrichmentFailed  = errors.New("enrichment failed")

	// Classification errors. ErrRemoteClassification never escapes the
	// classifier; it exists so fallbacks can be logged with a stable cause.
	ErrRemoteClassification = errors.New("remote classification failed")

	// Cleanup errors.
	ErrEmptyGroup = errors.New("empty group")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PartialBulkFailure reports a bulk write where some ids failed. It is an
// error so callers cannot silently ignore the failed half.
type PartialBulkFailure struct {
	Succeeded []string
	Failed    map[string]error
}

func (e *PartialBulkFailure) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		failed = append(failed, id)
	}
	return fmt.Sprintf("bulk operation partially failed: %d succeeded, %d failed (%s)",
		len(e.Succeeded), len(e.Failed), strings.Join(failed, ", "))
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
