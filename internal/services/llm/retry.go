package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/models"
)

// RetryConfig defines retry behavior for provider API calls. The defaults are
// tuned for Gemini's per-minute quota window; Claude rate limits recover on
// the same scale.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 5)
	MaxRetries int

	// InitialBackoff is the wait before the first rate-limit retry
	// (default: 45s). This matches Gemini's quota window reset time.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum wait time between retries (default: 90s)
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to backoff on each retry (default: 1.5)
	BackoffMultiplier float64

	// PlainBackoff is the per-attempt wait unit for errors that are not
	// rate limits; attempt N waits N*PlainBackoff (default: 2s).
	PlainBackoff time.Duration
}

// Default retry constants for provider rate limiting.
// Based on observed quota window of ~60 seconds.
const (
	DefaultMaxRetries        = 5
	DefaultInitialBackoff    = 45 * time.Second
	DefaultMaxBackoff        = 90 * time.Second
	DefaultBackoffMultiplier = 1.5
	DefaultPlainBackoff      = 2 * time.Second
)

// NewDefaultRetryConfig returns a RetryConfig with sensible defaults for
// handling provider API rate limits.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
		PlainBackoff:      DefaultPlainBackoff,
	}
}

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes, Gemini RESOURCE_EXHAUSTED/quota errors, and
// Anthropic rate_limit_error/overloaded_error responses.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "rate_limit_error") ||
		strings.Contains(errStr, "overloaded_error")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from a rate limit
// error. Returns 0 if no delay is found in the error message.
//
// Example error message:
// "Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff duration for a given attempt.
// If apiDelay > 0 (from ExtractRetryDelay), it's used as the base.
// Otherwise, InitialBackoff is used.
// The result is capped at MaxBackoff.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		// Use API-provided delay plus small buffer
		base = apiDelay + 5*time.Second
	}

	// Apply exponential multiplier
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}

// callWithRetry runs fn with the configured retry policy. Rate limit errors
// back off exponentially, honoring any API-suggested delay; other errors back
// off linearly. Safety blocks and context cancellation are never retried.
func callWithRetry(ctx context.Context, cfg *RetryConfig, logger arbor.ILogger, label string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		// A safety block is a policy outcome, not a transient failure
		if models.IsBlocked(lastErr) {
			return lastErr
		}

		if ctx.Err() != nil {
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * cfg.PlainBackoff
		if IsRateLimitError(lastErr) {
			backoff = cfg.CalculateBackoff(attempt, ExtractRetryDelay(lastErr))
		}

		logger.Warn().
			Str("call", label).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("Retrying provider API call")

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(backoff):
		}
	}

	return lastErr
}
