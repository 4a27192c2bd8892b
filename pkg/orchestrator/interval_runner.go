// Package orchestrator runs one strategy config across every timeframe
// downloaded for a symbol.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/config"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// IntervalResult is the backtest of one timeframe. Err is set instead of
// Results when that timeframe could not be run.
type IntervalResult struct {
	Interval string
	Path     string
	Bars     int
	Results  *backtest.BacktestResults
	Err      error
}

// IntervalAnalysisResult collects every timeframe and the best one by ROI
type IntervalAnalysisResult struct {
	Symbol     string
	Exchange   string
	Results    []IntervalResult
	BestResult *IntervalResult
}

// IntervalRunner backtests local candle files under a data root
type IntervalRunner struct {
	dataRoot string
	loader   *data.Loader
}

func NewIntervalRunner(dataRoot string) *IntervalRunner {
	return &IntervalRunner{
		dataRoot: dataRoot,
		loader:   data.NewLoader(dataRoot, nil),
	}
}

// FindAvailableIntervals lists the interval directories holding a
// candles.csv for symbol, shortest first.
func (r *IntervalRunner) FindAvailableIntervals(exchange, symbol string) ([]string, error) {
	dir := filepath.Dir(filepath.Dir(data.DefaultDataPath(r.dataRoot, exchange, symbol, "x")))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, boterrors.NewDataError("orchestrator", "find_intervals",
			fmt.Errorf("no data for %s on %s under %s: %w", strings.ToUpper(symbol), exchange, r.dataRoot, err))
	}

	var intervals []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := data.ParseInterval(e.Name()); err != nil {
			continue
		}
		if data.FindDataFile(r.dataRoot, exchange, symbol, e.Name()) != "" {
			intervals = append(intervals, e.Name())
		}
	}
	if len(intervals) == 0 {
		return nil, boterrors.NewDataError("orchestrator", "find_intervals",
			fmt.Errorf("no candle files for %s on %s under %s", strings.ToUpper(symbol), exchange, r.dataRoot))
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		a, _ := data.ParseInterval(intervals[i])
		b, _ := data.ParseInterval(intervals[j])
		return a < b
	})
	return intervals, nil
}

// RunForInterval backtests cfg on the interval's local candles within the
// configured period.
func (r *IntervalRunner) RunForInterval(ctx context.Context, cfg *config.AppConfig, interval string) IntervalResult {
	res := IntervalResult{Interval: interval}

	start, end, err := cfg.Period()
	if err != nil {
		res.Err = err
		return res
	}
	loaded, err := r.loader.Load(ctx, data.Request{
		Exchange: cfg.Exchange,
		Symbol:   cfg.Pair,
		Interval: interval,
		Start:    start,
		End:      end,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = loaded.Path

	bars := types.BarsFromOHLCV(loaded.Candles)
	res.Bars = len(bars)
	res.Results, res.Err = backtest.Simulate(bars, cfg.InitialBank, cfg.Strategy())
	return res
}

// RunMultiInterval backtests every available interval. Failures of single
// intervals are kept in their result; only discovery and cancellation
// fail the run.
func (r *IntervalRunner) RunMultiInterval(ctx context.Context, cfg *config.AppConfig) (*IntervalAnalysisResult, error) {
	intervals, err := r.FindAvailableIntervals(cfg.Exchange, cfg.Pair)
	if err != nil {
		return nil, err
	}

	analysis := &IntervalAnalysisResult{
		Symbol:   strings.ToUpper(cfg.Pair),
		Exchange: cfg.Exchange,
		Results:  make([]IntervalResult, 0, len(intervals)),
	}
	for _, interval := range intervals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis.Results = append(analysis.Results, r.RunForInterval(ctx, cfg, interval))
	}

	for i := range analysis.Results {
		res := &analysis.Results[i]
		if res.Err != nil {
			continue
		}
		if analysis.BestResult == nil || res.Results.Summary.ROI > analysis.BestResult.Results.Summary.ROI {
			analysis.BestResult = res
		}
	}
	return analysis, nil
}
