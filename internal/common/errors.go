// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Spreadsheet errors.
	ErrMalformedRow    = errors.New("malformed row")
	ErrIndexOutOfRange = errors.New("row index out of range")

	// Record errors.
	ErrNoPaymentMethod = errors.New("no payment method set")
	ErrInvalidRecord   = errors.New("invalid payment record")

	// Provider errors.
	ErrAuth         = errors.New("authentication failed")
	ErrClientCreate = errors.New("client creation failed")
	ErrRateLimit    = errors.New("rate limit exceeded")

	// Run errors.
	ErrAlreadyInvoiced   = errors.New("row already invoiced after first submission")
	ErrUnresolvedClient  = errors.New("client could not be resolved")
	ErrMissingCredential = errors.New("missing API credential")
)

// ProviderError carries a non-2xx response from the billing provider.
type ProviderError struct {
	Body   string
	Status int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
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

// IsRetryable determines if a provider error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Server-side failures are worth retrying; client-side ones are not.
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Status >= 500 || providerErr.Status == 429
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
