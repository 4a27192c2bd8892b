package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// TopN is the length of each ranking.
const TopN = 10

// Grid lists the candidate values of every swept parameter. Everything not
// swept comes from the base config.
type Grid struct {
	BuyRSI1     []float64 `json:"buy_rsi_1" yaml:"buy_rsi_1"`
	BuyRSI2     []float64 `json:"buy_rsi_2" yaml:"buy_rsi_2"`
	BuyRSI3     []float64 `json:"buy_rsi_3" yaml:"buy_rsi_3"`
	SLPerc      []float64 `json:"sl_perc" yaml:"sl_perc"`
	FirstTPPerc []float64 `json:"first_tp_perc" yaml:"first_tp_perc"`
	SecTPPerc   []float64 `json:"sec_tp_perc" yaml:"sec_tp_perc"`
	RSIPeriods  []int     `json:"rsi_periods" yaml:"rsi_periods"`
	RSIEMA      []bool    `json:"rsi_ema" yaml:"rsi_ema"`
	Martingale  []bool    `json:"martingale" yaml:"martingale"`
}

// DefaultGrid is the stock sweep: 4x4x3x3x3x3x3x2x2 = 7776 combinations.
func DefaultGrid() Grid {
	return Grid{
		BuyRSI1:     []float64{28.5, 29, 29.5, 30},
		BuyRSI2:     []float64{27, 27.5, 28, 28.5},
		BuyRSI3:     []float64{26, 26.5, 27},
		SLPerc:      []float64{-1.5, -2, -2.5},
		FirstTPPerc: []float64{0.8, 1, 1.2},
		SecTPPerc:   []float64{1.2, 1.5, 2},
		RSIPeriods:  []int{12, 14, 16},
		RSIEMA:      []bool{true, false},
		Martingale:  []bool{true, false},
	}
}

func (g Grid) axes() []struct {
	name string
	size int
} {
	return []struct {
		name string
		size int
	}{
		{"buy_rsi_1", len(g.BuyRSI1)},
		{"buy_rsi_2", len(g.BuyRSI2)},
		{"buy_rsi_3", len(g.BuyRSI3)},
		{"sl_perc", len(g.SLPerc)},
		{"first_tp_perc", len(g.FirstTPPerc)},
		{"sec_tp_perc", len(g.SecTPPerc)},
		{"rsi_periods", len(g.RSIPeriods)},
		{"rsi_ema", len(g.RSIEMA)},
		{"martingale", len(g.Martingale)},
	}
}

// Size is the product of the axis lengths.
func (g Grid) Size() int {
	n := 1
	for _, a := range g.axes() {
		n *= a.size
	}
	return n
}

// Validate rejects empty axes and non-positive RSI periods.
func (g Grid) Validate() error {
	for _, a := range g.axes() {
		if a.size == 0 {
			return boterrors.NewConfigurationError("optimizer", "grid",
				fmt.Sprintf("grid axis %s has no values", a.name)).WithContext("key", a.name)
		}
	}
	for _, p := range g.RSIPeriods {
		if p < 1 {
			return boterrors.NewConfigurationError("optimizer", "grid",
				fmt.Sprintf("rsi period %d must be at least 1", p)).WithContext("key", "rsi_periods")
		}
	}
	return nil
}

// Combinations expands the grid over base. The last axis varies fastest.
func (g Grid) Combinations(base strategy.Config) []strategy.Config {
	out := make([]strategy.Config, 0, g.Size())
	for _, b1 := range g.BuyRSI1 {
		for _, b2 := range g.BuyRSI2 {
			for _, b3 := range g.BuyRSI3 {
				for _, sl := range g.SLPerc {
					for _, tp1 := range g.FirstTPPerc {
						for _, tp2 := range g.SecTPPerc {
							for _, period := range g.RSIPeriods {
								for _, ema := range g.RSIEMA {
									for _, mg := range g.Martingale {
										cfg := base
										cfg.BuyRSI1, cfg.BuyRSI2, cfg.BuyRSI3 = b1, b2, b3
										cfg.SLPerc, cfg.FirstTPPerc, cfg.SecTPPerc = sl, tp1, tp2
										cfg.RSIPeriods, cfg.RSIEMA, cfg.Martingale = period, ema, mg
										out = append(out, cfg)
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return out
}

// OptimizerConfig tunes a sweep.
type OptimizerConfig struct {
	Workers    int
	// OnProgress is called after every combination with the estimated
	// time the rest of the sweep needs.
	OnProgress func(done, total int, eta time.Duration)
}

// OptimizationReport holds every row in grid order plus the two rankings.
type OptimizationReport struct {
	Results    []OptimizationResult
	TopROI     []OptimizationResult
	TopWinRate []OptimizationResult
	Duration   time.Duration
}

// Optimizer sweeps a grid over one bar series.
type Optimizer struct {
	bars        []types.Bar
	initialBank float64
	base        strategy.Config
	grid        Grid
	cfg         OptimizerConfig
}

func NewOptimizer(bars []types.Bar, initialBank float64, base strategy.Config, grid Grid, cfg OptimizerConfig) *Optimizer {
	return &Optimizer{
		bars:        bars,
		initialBank: initialBank,
		base:        base,
		grid:        grid,
		cfg:         cfg,
	}
}

// Run evaluates every combination. The first failing combination aborts
// the sweep.
func (o *Optimizer) Run(ctx context.Context) (*OptimizationReport, error) {
	start := time.Now()

	if err := o.grid.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateBars(o.bars); err != nil {
		return nil, err
	}

	combos := o.grid.Combinations(o.base)
	series := make(map[rsiKey][]EnrichedBar)
	for _, c := range combos {
		key := rsiKey{period: c.RSIPeriods, useEMA: c.RSIEMA}
		if _, ok := series[key]; !ok {
			series[key] = Enrich(o.bars, key.period, key.useEMA)
		}
	}

	workers := o.cfg.Workers
	pool := NewWorkerPool(ctx, workers, 2*max(workers, 1), o.initialBank, series)
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, c := range combos {
			if err := pool.SubmitJob(OptimizationJob{Index: i, Config: c}); err != nil {
				return
			}
		}
	}()

	tracker := NewProgressTracker(len(combos))
	results := make([]OptimizationResult, len(combos))
	received := 0
	var firstErr error
	for res := range pool.GetResults() {
		results[res.Index] = res
		received++
		if res.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("combination %d: %w", res.Index, res.Error)
			pool.cancel()
		}
		done := tracker.Increment()
		if o.cfg.OnProgress != nil {
			o.cfg.OnProgress(done, len(combos), tracker.EstimateTimeRemaining())
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != len(combos) {
		return nil, fmt.Errorf("optimizer finished %d of %d combinations", received, len(combos))
	}

	return &OptimizationReport{
		Results:    results,
		TopROI:     Rank(results, TopN, ByROI),
		TopWinRate: Rank(results, TopN, ByWinRate),
		Duration:   time.Since(start),
	}, nil
}

// ByROI and ByWinRate are the two ranking keys reported after a sweep.
func ByROI(r OptimizationResult) float64     { return r.Summary.ROI }
func ByWinRate(r OptimizationResult) float64 { return r.Summary.WinRate }

// Rank returns the n best results by key, descending. Ties keep grid order.
func Rank(results []OptimizationResult, n int, key func(OptimizationResult) float64) []OptimizationResult {
	sorted := make([]OptimizationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
