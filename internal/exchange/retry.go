package exchange

import (
	"context"
	"math"
	"math/rand"
	"time"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

// RetryConfig holds configuration for retry mechanisms
type RetryConfig struct {
	MaxRetries    int           `json:"maxRetries"`
	InitialDelay  time.Duration `json:"initialDelay"`
	MaxDelay      time.Duration `json:"maxDelay"`
	BackoffFactor float64       `json:"backoffFactor"`
	JitterEnabled bool          `json:"jitterEnabled"`
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned categorized.
func Retry(ctx context.Context, config RetryConfig, component, operation string, fn func() error) error {
	_, err := RetryValue(ctx, config, component, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryValue is Retry for calls that return a value.
func RetryValue[T any](ctx context.Context, config RetryConfig, component, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		attempts++
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == config.MaxRetries || !boterrors.IsRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(config.delay(attempt)):
		}
	}

	return zero, boterrors.CategorizeError(lastErr, component, operation).
		WithContext("attempts", attempts)
}

// delay calculates the wait before the next attempt with exponential backoff
func (c RetryConfig) delay(attempt int) time.Duration {
	delay := c.InitialDelay
	if attempt > 0 && c.BackoffFactor > 0 {
		delay = time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt)))
	}

	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}

	// +/-10%
	if c.JitterEnabled {
		delay += time.Duration(float64(delay) * 0.1 * (2*rand.Float64() - 1))
	}

	return delay
}
