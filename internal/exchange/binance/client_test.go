package binance

import (
	"context"
	"errors"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/safety"
)

func TestToInterval(t *testing.T) {
	for in, want := range map[string]string{"1m": "1m", "5m": "5m", "60": "1h", "4h": "4h", "1d": "1d", "1w": "1w"} {
		got, err := ToInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ToInterval("7m")
	assert.Error(t, err)
}

func TestConvertKlines(t *testing.T) {
	klines := []*binance.Kline{
		{OpenTime: 1700000000000, Open: "1.5", High: "1.7", Low: "1.4", Close: "1.6", Volume: "100", CloseTime: 1700000299999},
		{OpenTime: 1700000300000, Open: "1.6", High: "1.8", Low: "1.5", Close: "1.75", Volume: "120", CloseTime: 1700000599999},
	}

	candles, err := convertKlines(klines)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), candles[0].Timestamp)
	assert.Equal(t, 1.75, candles[1].Close)
	assert.Equal(t, 120.0, candles[1].Volume)

	_, err = convertKlines([]*binance.Kline{{Open: "x"}})
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryData))
}

func TestWrapError(t *testing.T) {
	limited := wrapError("get_klines", &common.APIError{Code: -1003, Message: "Too many requests"})
	assert.True(t, boterrors.IsCategory(limited, boterrors.ErrorCategoryRateLimit))
	assert.True(t, boterrors.IsRetryable(limited))

	badSymbol := wrapError("get_klines", &common.APIError{Code: -1121, Message: "Invalid symbol."})
	assert.True(t, boterrors.IsCategory(badSymbol, boterrors.ErrorCategoryConfiguration))
	assert.False(t, boterrors.IsRetryable(badSymbol))

	unknown := wrapError("place_order", &common.APIError{Code: -2010, Message: "Account has insufficient balance"})
	assert.True(t, boterrors.IsCategory(unknown, boterrors.ErrorCategoryExchange))
	botErr, ok := boterrors.As(unknown)
	require.True(t, ok)
	assert.Equal(t, int64(-2010), botErr.Context["code"])

	network := wrapError("get_price", errors.New("dial tcp: connection refused"))
	assert.True(t, boterrors.IsCategory(network, boterrors.ErrorCategoryNetwork))
}

// TestFetchHistory_WaitsForPacer stops before any request when the pacer is drained
func TestFetchHistory_WaitsForPacer(t *testing.T) {
	limiter := safety.NewRateLimiter("test", 1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := NewClient().WithRateLimit(limiter).FetchHistory(ctx, "BTCUSDT", "5m", end.Add(-time.Hour), end)
	assert.ErrorIs(t, err, context.Canceled)
}
