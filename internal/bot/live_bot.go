package bot

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/indicators"
	"github.com/ducminhle1904/rsi-tier-bot/internal/logger"
	"github.com/ducminhle1904/rsi-tier-bot/internal/monitoring"
	"github.com/ducminhle1904/rsi-tier-bot/internal/notifications"
	"github.com/ducminhle1904/rsi-tier-bot/internal/state"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/reporting"
)

const (
	DefaultKlineLimit   = 150
	DefaultErrorBackoff = 60 * time.Second
	DefaultStateDir     = "state"

	notifyTimeout = 10 * time.Second
)

// Tick outcomes reported to metrics
const (
	outcomeTraded  = "traded"
	outcomeIdle    = "idle"
	outcomeSkipped = "skipped"
	outcomePartial = "partial"
)

// Config holds the live loop settings
type Config struct {
	Symbol      string
	Interval    string
	InitialBank float64
	Strategy    strategy.Config

	KlineLimit   int
	ErrorBackoff time.Duration
	StateDir     string
	TradeLogPath string
}

func (c Config) withDefaults() Config {
	c.Symbol = strings.ToUpper(c.Symbol)
	if c.KlineLimit <= 0 {
		c.KlineLimit = DefaultKlineLimit
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = DefaultErrorBackoff
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.TradeLogPath == "" {
		c.TradeLogPath = reporting.DefaultLiveTradesPath
	}
	return c
}

// Dependencies are the collaborators of a LiveBot. Metrics, Health and
// Notifier may be nil.
type Dependencies struct {
	Market   exchange.MarketData
	Executor exchange.OrderExecutor
	Logger   *logger.Logger
	Metrics  *monitoring.Metrics
	Health   *monitoring.HealthChecker
	Notifier notifications.Notifier
}

// LiveBot runs the tiered RSI strategy against a live venue, one decision
// per candle.
type LiveBot struct {
	config   Config
	interval time.Duration

	market      exchange.MarketData
	executor    exchange.OrderExecutor
	strategy    strategy.Strategy
	persistence *state.StatePersistence
	tradeLog    *reporting.TradeLogWriter
	logger      *logger.Logger
	metrics     *monitoring.Metrics
	health      *monitoring.HealthChecker
	notifier    notifications.Notifier

	mu    sync.Mutex
	state *state.SystemState

	out   io.Writer
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLiveBot wires the bot and restores the persisted portfolio, if any.
func NewLiveBot(config Config, deps Dependencies) (*LiveBot, error) {
	config = config.withDefaults()

	if deps.Market == nil || deps.Executor == nil || deps.Logger == nil {
		return nil, boterrors.NewConfigurationError("bot", "new", "market, executor and logger are required")
	}
	if config.Symbol == "" {
		return nil, boterrors.NewConfigurationError("bot", "new", "symbol is required").WithContext("key", "pair")
	}
	if config.InitialBank <= 0 {
		return nil, boterrors.NewConfigurationError("bot", "new", "initial bank must be positive").WithContext("key", "initial_bank")
	}
	interval, err := data.ParseInterval(config.Interval)
	if err != nil {
		return nil, boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "bot", "new").WithContext("key", "timeframe")
	}

	if deps.Notifier == nil {
		deps.Notifier = notifications.Nop{}
	}

	bot := &LiveBot{
		config:      config,
		interval:    interval,
		market:      deps.Market,
		executor:    deps.Executor,
		strategy:    strategy.NewTieredRSIStrategy(config.Strategy),
		persistence: state.NewStatePersistence(config.StateDir, config.Symbol),
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		health:      deps.Health,
		notifier:    deps.Notifier,
		out:         os.Stdout,
		now:         time.Now,
		sleep:       sleepContext,
	}

	if err := bot.restoreState(); err != nil {
		return nil, err
	}

	tradeLog, err := reporting.OpenTradeLog(config.TradeLogPath)
	if err != nil {
		return nil, boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "bot", "open_trade_log").
			WithContext("path", config.TradeLogPath)
	}
	bot.tradeLog = tradeLog

	return bot, nil
}

func (bot *LiveBot) restoreState() error {
	saved, found, err := bot.persistence.Load()
	if err != nil {
		return err
	}
	if !found {
		bot.state = state.NewSystemState(bot.config.Symbol, bot.config.Interval, bot.config.InitialBank)
		bot.logger.Info("No saved state at %s, starting with bank %.2f", bot.persistence.Path(), bot.config.InitialBank)
		return nil
	}

	if saved.Interval != bot.config.Interval {
		bot.logger.Warning("Saved state was built on %s candles, now trading %s", saved.Interval, bot.config.Interval)
		saved.Interval = bot.config.Interval
	}
	bot.state = saved
	bot.logger.Info("Restored state: bank=%.4f holdings=%.8f buy_price=%.4f trades=%d",
		saved.Portfolio.Bank, saved.Portfolio.Holdings, saved.Portfolio.BuyPrice, saved.TradeCount)
	return nil
}

// State returns a copy of the current live state
func (bot *LiveBot) State() state.SystemState {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	return *bot.state
}

// Close releases the trade log. The session logger belongs to the caller.
func (bot *LiveBot) Close() error {
	return bot.tradeLog.Close()
}

// Run ticks once per candle until ctx is cancelled. Tick failures are
// recorded and followed by ErrorBackoff before the next attempt; failures
// whose recovery action is STOP end the loop with that error.
func (bot *LiveBot) Run(ctx context.Context) error {
	bot.printStartupInfo()
	bot.printBotConfiguration()
	bot.logger.Info("Trading %s on %s candles via %s", bot.config.Symbol, bot.config.Interval, bot.market.GetName())

	for {
		wait := timeUntilNextCandle(bot.now(), bot.interval)
		bot.logger.Info("Waiting %.0f seconds for next %s candle close", wait.Seconds(), bot.config.Interval)
		if err := bot.sleep(ctx, wait); err != nil {
			return nil
		}

		if err := bot.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if bot.recordFailure(ctx, err) == boterrors.RecoveryActionStop {
				return err
			}
			if err := bot.sleep(ctx, bot.config.ErrorBackoff); err != nil {
				return nil
			}
		}
	}
}

// Tick makes one decision on the latest candles and executes it.
func (bot *LiveBot) Tick(ctx context.Context) error {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	klines, err := bot.market.GetKlines(ctx, bot.config.Symbol, bot.config.Interval, bot.config.KlineLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch klines: %w", err)
	}
	if len(klines) == 0 {
		return boterrors.NewDataError("bot", "tick", fmt.Errorf("no klines returned for %s", bot.config.Symbol))
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}
	cfg := bot.strategy.Config()
	series := indicators.Series(closes, cfg.RSIPeriods, cfg.RSIEMA)
	rsi := series[len(series)-1]
	candle := klines[len(klines)-1].Timestamp

	if !rsi.Ready {
		bot.logger.Warning("RSI undefined on %d candles (period %d), skipping", len(klines), cfg.RSIPeriods)
		bot.recordTick(0, outcomeSkipped, false)
		return nil
	}
	if bot.metrics != nil {
		bot.metrics.UpdateRSI(bot.config.Symbol, rsi.Value)
	}

	price, err := bot.market.GetLatestPrice(ctx, bot.config.Symbol)
	if err != nil {
		return fmt.Errorf("failed to fetch latest price: %w", err)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return boterrors.NewValidationError("bot", "tick",
			fmt.Sprintf("invalid latest price %v for %s", price, bot.config.Symbol)).
			WithContext("price", price)
	}

	decision := bot.strategy.Decide(strategy.Tick{
		Timestamp: bot.now().UTC(),
		Price:     price,
		RSI:       rsi,
	}, bot.state.Portfolio)

	executed, orderErr := bot.execute(ctx, decision)

	next := decision.State
	if orderErr != nil {
		next = bot.state.Portfolio
		if executed > 0 {
			next = decision.Steps[executed-1].State
		}
		next.MarkToMarket(price)
	}

	bot.state.Portfolio = next
	bot.state.TradeCount += executed
	bot.state.LastCandle = candle
	bot.state.LastUpdated = bot.now().UTC()
	if err := bot.persistence.Save(bot.state); err != nil {
		bot.logger.Error("Failed to save state: %v", err)
	}

	bot.logStatus(price, rsi.Value, decision)

	if orderErr != nil {
		bot.recordTick(price, outcomePartial, executed > 0)
		return orderErr
	}
	outcome := outcomeIdle
	if executed > 0 {
		outcome = outcomeTraded
	}
	bot.recordTick(price, outcome, executed > 0)
	return nil
}

// execute places one market order per step, in order, and stops at the
// first failure. It returns how many steps were filled.
func (bot *LiveBot) execute(ctx context.Context, decision strategy.Decision) (int, error) {
	for i, step := range decision.Steps {
		ev := step.Event
		order, err := bot.executor.PlaceMarketOrder(ctx, bot.config.Symbol, ev.Action.Side(), ev.Size)
		if err != nil {
			bot.logger.Error("%s order for %.8f %s failed: %v", ev.Action, ev.Size, bot.config.Symbol, err)
			return i, fmt.Errorf("%s order failed: %w", ev.Action, err)
		}

		if err := bot.tradeLog.Append(ev); err != nil {
			bot.logger.Error("Failed to append trade log: %v", err)
		}
		bot.logger.Trade(ev.Action.String(),
			zap.String("order_id", order.OrderID),
			zap.String("side", string(order.Side)),
			zap.Float64("price", ev.Price),
			zap.Float64("rsi", ev.RSI),
			zap.Float64("size", ev.Size),
			zap.Float64("bank", ev.Bank),
			zap.Float64("holdings", ev.Holdings),
			zap.Float64("profit_percent", ev.ProfitPercent),
			zap.Float64("fee_paid", ev.FeePaid),
		)
		if bot.metrics != nil {
			bot.metrics.RecordTrade(bot.config.Symbol, ev.Action.String(), ev.Size)
		}
		level := notifications.LevelInfo
		switch ev.Action {
		case strategy.ActionTP2:
			level = notifications.LevelSuccess
		case strategy.ActionStopLoss:
			level = notifications.LevelWarning
		}
		bot.notify(ctx, level, fmt.Sprintf("%s %s\nsize %.8f @ %.4f (RSI %.2f)\nbank %.2f holdings %.8f",
			ev.Action, bot.config.Symbol, ev.Size, ev.Price, ev.RSI, ev.Bank, ev.Holdings))
	}
	return len(decision.Steps), nil
}

func (bot *LiveBot) recordTick(price float64, outcome string, traded bool) {
	if bot.health != nil {
		bot.health.RecordTick(price, traded)
	}
	if bot.metrics == nil {
		return
	}
	bot.metrics.RecordTick(bot.config.Symbol, outcome)
	if price <= 0 {
		return
	}
	p := bot.state.Portfolio
	bot.metrics.UpdatePrice(bot.config.Symbol, price)
	bot.metrics.UpdatePortfolio(bot.config.Symbol, p.Bank, p.Holdings, p.TotalValue(price), p.MaxDrawdown)
}

// recordFailure reports err everywhere and returns what Run should do next.
func (bot *LiveBot) recordFailure(ctx context.Context, err error) boterrors.RecoveryAction {
	botErr := boterrors.CategorizeError(err, "bot", "tick")
	category := botErr.Category
	bot.logger.Error("Tick failed (%s): %v", category, err)
	bot.notify(ctx, notifications.LevelError, fmt.Sprintf("%s tick failed (%s): %v", bot.config.Symbol, category, err))
	if bot.health != nil {
		bot.health.RecordFailure(err)
	}
	if bot.metrics != nil {
		bot.metrics.RecordError(string(category))
	}
	return botErr.GetRecoveryAction()
}

// notify is best effort; a failed alert never fails the tick.
func (bot *LiveBot) notify(ctx context.Context, level, message string) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := bot.notifier.SendAlert(ctx, level, message); err != nil {
		bot.logger.Warning("Failed to send %s alert: %v", level, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
