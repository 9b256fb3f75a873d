package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Razaranyi/GreenInvoice/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesTransientFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("transient"), Retryable: true}
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &ProviderError{Status: 503, Body: "unavailable"}
	}, fastRetry())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad input")
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	}, fastRetry())

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("transient"), Retryable: true}
	}, fastRetry())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ZeroOptionsGetDefaults(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	}, service.RetryOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "rate limit sentinel", err: ErrRateLimit, want: true},
		{name: "wrapped rate limit", err: fmt.Errorf("call failed: %w", ErrRateLimit), want: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "provider 500", err: &ProviderError{Status: 500}, want: true},
		{name: "provider 503", err: &ProviderError{Status: 503}, want: true},
		{name: "provider 429", err: &ProviderError{Status: 429}, want: true},
		{name: "provider 400", err: &ProviderError{Status: 400}, want: false},
		{name: "provider 401", err: &ProviderError{Status: 401}, want: false},
		{name: "retryable wrapper true", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
		{name: "retryable wrapper false", err: &RetryableError{Err: errors.New("x"), Retryable: false}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{Status: 404, Body: `{"errorMessage":"not found"}`}
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestUserError(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := NewUserError("could not reach the billing provider", inner)

	assert.Contains(t, err.Error(), "could not reach the billing provider")
	assert.ErrorIs(t, err, inner)
}
