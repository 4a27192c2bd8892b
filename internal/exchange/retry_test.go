package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := RetryValue(context.Background(), fastRetry(), "test", "op", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset by peer")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), "test", "op", func() error {
		calls++
		return boterrors.NewValidationError("test", "op", "bad input")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryValidation))
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), "test", "op", func() error {
		calls++
		return errors.New("i/o timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	botErr, ok := boterrors.As(err)
	require.True(t, ok)
	assert.Equal(t, boterrors.ErrorCategoryTimeout, botErr.Category)
	assert.Equal(t, 4, botErr.Context["attempts"])
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastRetry(), "test", "op", func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}
	assert.Equal(t, time.Second, cfg.delay(0))
	assert.Equal(t, 2*time.Second, cfg.delay(1))
	assert.Equal(t, 4*time.Second, cfg.delay(2))
	assert.Equal(t, 5*time.Second, cfg.delay(5))

	cfg.JitterEnabled = true
	for i := 0; i < 20; i++ {
		d := cfg.delay(1)
		assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
		assert.LessOrEqual(t, d, 2200*time.Millisecond)
	}
}
