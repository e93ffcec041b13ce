package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/models"
)

// fastRetryConfig keeps retry tests from sleeping for real.
func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 1.5,
		PlainBackoff:      time.Millisecond,
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", errors.New("Error 429: too many requests"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"quota", errors.New("quota exceeded for metric"), true},
		{"anthropic rate limit", errors.New(`{"type":"rate_limit_error","message":"limit reached"}`), true},
		{"anthropic overloaded", errors.New(`{"type":"overloaded_error"}`), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimitError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: quota exceeded. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	assert.InDelta(t, 45.387, ExtractRetryDelay(err).Seconds(), 0.001)

	err = errors.New("retryDelay: 30s")
	assert.Equal(t, 30*time.Second, ExtractRetryDelay(err))

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("no delay hint here")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	// First attempt without an API hint uses the initial backoff
	assert.Equal(t, DefaultInitialBackoff, cfg.CalculateBackoff(0, 0))

	// An API-provided delay becomes the base plus a small buffer
	assert.Equal(t, 35*time.Second, cfg.CalculateBackoff(0, 30*time.Second))

	// Later attempts multiply the base
	assert.Equal(t, 67500*time.Millisecond, cfg.CalculateBackoff(1, 0))

	// And are capped at MaxBackoff
	assert.Equal(t, DefaultMaxBackoff, cfg.CalculateBackoff(4, 0))
}

func TestCallWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := callWithRetry(context.Background(), fastRetryConfig(3), arbor.NewLogger(), "test", func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient failure %d", calls)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCallWithRetryExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("persistent failure")
	calls := 0
	err := callWithRetry(context.Background(), fastRetryConfig(2), arbor.NewLogger(), "test", func() error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 3, calls) // initial attempt plus two retries
}

func TestCallWithRetryDoesNotRetrySafetyBlocks(t *testing.T) {
	calls := 0
	err := callWithRetry(context.Background(), fastRetryConfig(3), arbor.NewLogger(), "test", func() error {
		calls++
		return &models.GenerationBlocked{Provider: ProviderGemini, Reason: "SAFETY"}
	})

	require.Error(t, err)
	assert.True(t, models.IsBlocked(err))
	assert.Equal(t, 1, calls)
}

func TestCallWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := callWithRetry(ctx, fastRetryConfig(3), arbor.NewLogger(), "test", func() error {
		calls++
		return errors.New("failure under cancelled context")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
