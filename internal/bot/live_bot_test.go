package bot

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/mocks"
	"github.com/ducminhle1904/rsi-tier-bot/internal/logger"
	"github.com/ducminhle1904/rsi-tier-bot/internal/monitoring"
	"github.com/ducminhle1904/rsi-tier-bot/internal/notifications"
	"github.com/ducminhle1904/rsi-tier-bot/internal/state"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 3, 0, time.UTC)

type harness struct {
	dir      string
	market   *mocks.MockMarketData
	executor *mocks.MockOrderExecutor
	metrics  *monitoring.Metrics
	health   *monitoring.HealthChecker
	alerts   *recordingNotifier
}

type recordingNotifier struct {
	levels   []string
	messages []string
}

func (r *recordingNotifier) SendAlert(_ context.Context, level, message string) error {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
	return nil
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	return &harness{
		dir:      t.TempDir(),
		market:   mocks.NewMockMarketData(ctrl),
		executor: mocks.NewMockOrderExecutor(ctrl),
		metrics:  monitoring.NewMetrics(),
		health:   monitoring.NewHealthChecker(time.Hour, 3),
		alerts:   &recordingNotifier{},
	}
}

func (h *harness) config() Config {
	return Config{
		Symbol:       "btcusdt",
		Interval:     "5m",
		InitialBank:  1000,
		Strategy:     strategy.DefaultConfig(),
		StateDir:     filepath.Join(h.dir, "state"),
		TradeLogPath: filepath.Join(h.dir, "logs", "live_trades.csv"),
	}
}

func (h *harness) newBot(t *testing.T) *LiveBot {
	t.Helper()
	log, err := logger.NewLoggerWithOptions("BTCUSDT", "5m", logger.Options{Dir: filepath.Join(h.dir, "logs")})
	require.NoError(t, err)

	b, err := NewLiveBot(h.config(), Dependencies{
		Market:   h.market,
		Executor: h.executor,
		Logger:   log,
		Metrics:  h.metrics,
		Health:   h.health,
		Notifier: h.alerts,
	})
	require.NoError(t, err)
	b.out = io.Discard
	b.now = func() time.Time { return testNow }

	t.Cleanup(func() {
		b.Close()
		log.Close()
	})
	return b
}

// fallingKlines returns n 5m candles whose closes drop by 1 each bar, which
// pins the RSI at 0.
func fallingKlines(n int, from float64) []types.OHLCV {
	start := testNow.Truncate(5 * time.Minute).Add(-time.Duration(n) * 5 * time.Minute)
	out := make([]types.OHLCV, n)
	for i := range out {
		c := from - float64(i)
		out[i] = types.OHLCV{
			Open: c + 0.5, High: c + 1, Low: c - 1, Close: c, Volume: 10,
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
		}
	}
	return out
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(strings.Split(strings.TrimSpace(string(raw)), "\n"))
}

func TestLiveBot_TickBuysFirstTier(t *testing.T) {
	h := newHarness(t)
	klines := fallingKlines(20, 120)

	h.market.EXPECT().GetKlines(gomock.Any(), "BTCUSDT", "5m", DefaultKlineLimit).Return(klines, nil)
	h.market.EXPECT().GetLatestPrice(gomock.Any(), "BTCUSDT").Return(100.0, nil)
	h.executor.EXPECT().
		PlaceMarketOrder(gomock.Any(), "BTCUSDT", types.OrderSideBuy, gomock.Any()).
		DoAndReturn(func(_ context.Context, symbol string, side types.OrderSide, qty float64) (*types.Order, error) {
			assert.InDelta(t, 3.9996, qty, 1e-9)
			return &types.Order{OrderID: "1", Symbol: symbol, Side: side, Quantity: qty, Status: "Filled"}, nil
		})

	b := h.newBot(t)
	require.NoError(t, b.Tick(context.Background()))

	st := b.State()
	assert.InDelta(t, 600, st.Portfolio.Bank, 1e-9)
	assert.InDelta(t, 3.9996, st.Portfolio.Holdings, 1e-9)
	assert.Equal(t, 100.0, st.Portfolio.BuyPrice)
	assert.True(t, st.Portfolio.EnteredTier1)
	assert.Equal(t, 1, st.TradeCount)
	assert.Equal(t, klines[len(klines)-1].Timestamp, st.LastCandle)

	assert.Equal(t, 2, countLines(t, h.config().TradeLogPath))
	assert.FileExists(t, filepath.Join(h.config().StateDir, "BTCUSDT.json"))

	n, err := testutil.GatherAndCount(h.metrics.Registry(), "rsi_bot_trades_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 100.0, h.health.Status().LastPrice)

	require.Len(t, h.alerts.messages, 1)
	assert.Equal(t, notifications.LevelInfo, h.alerts.levels[0])
	assert.Contains(t, h.alerts.messages[0], "BUY1 BTCUSDT")
}

func TestLiveBot_RestoresStateOnRestart(t *testing.T) {
	h := newHarness(t)
	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fallingKlines(20, 120), nil)
	h.market.EXPECT().GetLatestPrice(gomock.Any(), gomock.Any()).Return(100.0, nil)
	h.executor.EXPECT().PlaceMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&types.Order{OrderID: "1"}, nil)

	first := h.newBot(t)
	require.NoError(t, first.Tick(context.Background()))
	before := first.State()

	second := h.newBot(t)
	after := second.State()
	assert.Equal(t, before.Portfolio, after.Portfolio)
	assert.Equal(t, 1, after.TradeCount)
}

func TestLiveBot_OrderFailureKeepsFilledSteps(t *testing.T) {
	h := newHarness(t)

	seed := state.NewSystemState("BTCUSDT", "5m", 1000)
	seed.Portfolio = strategy.PortfolioState{Holdings: 1, BuyPrice: 100, EnteredTier1: true, PeakValue: 1000}
	require.NoError(t, state.NewStatePersistence(h.config().StateDir, "BTCUSDT").Save(seed))

	rejected := boterrors.NewOrderError("bybit", "place_order", errors.New("insufficient balance"))

	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fallingKlines(20, 120), nil)
	h.market.EXPECT().GetLatestPrice(gomock.Any(), gomock.Any()).Return(110.0, nil)
	gomock.InOrder(
		h.executor.EXPECT().PlaceMarketOrder(gomock.Any(), "BTCUSDT", types.OrderSideSell, 0.8).
			Return(&types.Order{OrderID: "tp1"}, nil),
		h.executor.EXPECT().PlaceMarketOrder(gomock.Any(), "BTCUSDT", types.OrderSideSell, gomock.Any()).
			Return(nil, rejected),
	)

	b := h.newBot(t)
	err := b.Tick(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rejected)

	st := b.State()
	assert.True(t, st.Portfolio.TP1Hit)
	assert.InDelta(t, 0.2, st.Portfolio.Holdings, 1e-9)
	assert.InDelta(t, 0.8*110*(1-0.0001), st.Portfolio.Bank, 1e-9)
	assert.Equal(t, 100.0, st.Portfolio.BuyPrice)
	assert.Equal(t, 1, st.TradeCount)
	assert.Equal(t, 2, countLines(t, h.config().TradeLogPath))

	reloaded, found, err := state.NewStatePersistence(h.config().StateDir, "BTCUSDT").Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, st.Portfolio, reloaded.Portfolio)
}

func TestLiveBot_UndefinedRSISkips(t *testing.T) {
	h := newHarness(t)
	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fallingKlines(10, 120), nil)

	b := h.newBot(t)
	require.NoError(t, b.Tick(context.Background()))

	assert.Equal(t, 1000.0, b.State().Portfolio.Bank)
	assert.Zero(t, b.State().TradeCount)
}

func TestLiveBot_TickErrors(t *testing.T) {
	h := newHarness(t)
	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	b := h.newBot(t)
	err := b.Tick(context.Background())
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryData))
}

func TestLiveBot_TickRejectsInvalidPrice(t *testing.T) {
	for name, price := range map[string]float64{
		"zero":     0,
		"negative": -5,
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.market.EXPECT().GetKlines(gomock.Any(), "BTCUSDT", "5m", DefaultKlineLimit).Return(fallingKlines(20, 120), nil)
			h.market.EXPECT().GetLatestPrice(gomock.Any(), "BTCUSDT").Return(price, nil)

			b := h.newBot(t)
			err := b.Tick(context.Background())
			require.Error(t, err)
			assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryValidation))

			botErr, ok := boterrors.As(err)
			require.True(t, ok)
			assert.NotEqual(t, boterrors.RecoveryActionStop, botErr.GetRecoveryAction())

			st := b.State()
			assert.Equal(t, 1000.0, st.Portfolio.Bank)
			assert.Zero(t, st.Portfolio.Holdings)
			assert.Zero(t, st.TradeCount)
			assert.NoFileExists(t, filepath.Join(h.config().StateDir, "BTCUSDT.json"))
		})
	}
}

func TestLiveBot_RunBacksOffAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.market.EXPECT().GetName().Return("binance").AnyTimes()
	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, boterrors.NewNetworkError("binance", "get_klines", errors.New("connection reset")))

	b := h.newBot(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	b.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	require.NoError(t, b.Run(ctx))
	require.Len(t, waits, 3)
	assert.Equal(t, 5*time.Minute-3*time.Second, waits[0])
	assert.Equal(t, DefaultErrorBackoff, waits[1])

	status := h.health.Status()
	assert.Equal(t, 1, status.ConsecutiveFailures)
	n, err := testutil.GatherAndCount(h.metrics.Registry(), "rsi_bot_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{notifications.LevelError}, h.alerts.levels)
}

func TestLiveBot_RunStopsOnCredentialsError(t *testing.T) {
	h := newHarness(t)
	h.market.EXPECT().GetName().Return("bybit").AnyTimes()
	h.market.EXPECT().GetKlines(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, boterrors.NewCredentialsError("bybit", "get_klines", "invalid api key"))

	b := h.newBot(t)
	var waits int
	b.sleep = func(context.Context, time.Duration) error {
		waits++
		return nil
	}

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryCredentials))
	assert.Equal(t, 1, waits)
	assert.Equal(t, []string{notifications.LevelError}, h.alerts.levels)
}

func TestNewLiveBot_Validation(t *testing.T) {
	h := newHarness(t)
	log, err := logger.NewLoggerWithOptions("BTCUSDT", "5m", logger.Options{Dir: h.dir})
	require.NoError(t, err)
	defer log.Close()

	deps := Dependencies{Market: h.market, Executor: h.executor, Logger: log}

	cfg := h.config()
	cfg.Interval = "fortnight"
	_, err = NewLiveBot(cfg, deps)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))

	cfg = h.config()
	cfg.InitialBank = 0
	_, err = NewLiveBot(cfg, deps)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))

	_, err = NewLiveBot(h.config(), Dependencies{Logger: log})
	assert.Error(t, err)
}

func TestNextCandleBoundary(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		interval time.Duration
		want     time.Time
	}{
		{"mid 5m", time.Date(2024, 1, 1, 10, 7, 30, 0, time.UTC), 5 * time.Minute, time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC)},
		{"on boundary", time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC), 5 * time.Minute, time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"hour rollover", time.Date(2024, 1, 1, 23, 59, 1, 0, time.UTC), 15 * time.Minute, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"4h", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), 4 * time.Hour, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"daily", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), 24 * time.Hour, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"non-utc input", time.Date(2024, 1, 1, 12, 2, 0, 0, time.FixedZone("ICT", 7*3600)), time.Hour, time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextCandleBoundary(tt.now, tt.interval)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
