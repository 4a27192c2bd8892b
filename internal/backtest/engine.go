package backtest

import (
	"fmt"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/indicators"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// EnrichedBar is a bar with the RSI reading at its close.
type EnrichedBar struct {
	types.Bar
	RSI indicators.Value
}

// Enrich computes the RSI for every bar in one pass.
func Enrich(bars []types.Bar, period int, useEMA bool) []EnrichedBar {
	rsi := indicators.NewRSI(period, useEMA)
	out := make([]EnrichedBar, len(bars))
	for i, b := range bars {
		out[i] = EnrichedBar{Bar: b, RSI: rsi.Update(b.Close)}
	}
	return out
}

// Observer sees every bar with the decision made on it.
type Observer func(bar EnrichedBar, decision strategy.Decision)

type BacktestEngine struct {
	initialBank float64
	strategy    strategy.Strategy
	observer    Observer
}

type BacktestResults struct {
	InitialBank float64
	Bars        int
	LastPrice   float64
	Trades      []strategy.TradeEvent
	FinalState  strategy.PortfolioState
	Summary     Summary
}

func NewBacktestEngine(initialBank float64, strat strategy.Strategy) *BacktestEngine {
	return &BacktestEngine{
		initialBank: initialBank,
		strategy:    strat,
	}
}

// WithObserver registers a per-bar callback.
func (b *BacktestEngine) WithObserver(fn Observer) *BacktestEngine {
	b.observer = fn
	return b
}

// Run validates bars, computes the RSI with the strategy settings and
// simulates.
func (b *BacktestEngine) Run(bars []types.Bar) (*BacktestResults, error) {
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	cfg := b.strategy.Config()
	return b.RunEnriched(Enrich(bars, cfg.RSIPeriods, cfg.RSIEMA))
}

// RunEnriched simulates over bars that already carry their RSI. The bars
// are assumed valid.
//
// By default a bar that fires several rules keeps only the last fill in the
// trade log, while every fill still changes the portfolio. Config.LogEveryStep
// keeps all of them.
func (b *BacktestEngine) RunEnriched(bars []EnrichedBar) (*BacktestResults, error) {
	if !(b.initialBank > 0) {
		return nil, boterrors.NewConfigurationError("backtest", "run",
			fmt.Sprintf("initial bank must be positive, got %v", b.initialBank)).
			WithContext("key", "initial_bank")
	}
	if len(bars) == 0 {
		return nil, boterrors.NewValidationError("backtest", "run", "no bars provided")
	}

	logEveryStep := b.strategy.Config().LogEveryStep
	state := strategy.NewPortfolioState(b.initialBank)
	trades := make([]strategy.TradeEvent, 0)

	for _, bar := range bars {
		decision := b.strategy.Decide(strategy.Tick{
			Timestamp: bar.Timestamp,
			Price:     bar.Close,
			RSI:       bar.RSI,
		}, state)
		state = decision.State

		if logEveryStep {
			for _, step := range decision.Steps {
				trades = append(trades, step.Event)
			}
		} else if event, ok := decision.LastEvent(); ok {
			// The final fill of the bar carries the portfolio after all of them.
			trades = append(trades, event)
		}

		if b.observer != nil {
			b.observer(bar, decision)
		}
	}

	lastPrice := bars[len(bars)-1].Close
	return &BacktestResults{
		InitialBank: b.initialBank,
		Bars:        len(bars),
		LastPrice:   lastPrice,
		Trades:      trades,
		FinalState:  state,
		Summary:     Summarize(b.initialBank, state, lastPrice),
	}, nil
}

// Simulate is the one-call form used by the CLIs and the optimizer parity test.
func Simulate(bars []types.Bar, initialBank float64, cfg strategy.Config) (*BacktestResults, error) {
	return NewBacktestEngine(initialBank, strategy.NewTieredRSIStrategy(cfg)).Run(bars)
}
