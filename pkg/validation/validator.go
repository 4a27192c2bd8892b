// Package validation checks optimized parameters on data the optimizer
// never saw, either one holdout split or rolling walk-forward folds.
package validation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// Overfitting risk levels
const (
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
)

// FoldResult holds the best-ROI parameters of a train window and how they
// did on the following test window.
type FoldResult struct {
	Fold   int
	Window Fold
	Config strategy.Config
	Train  backtest.Summary
	Test   backtest.Summary
}

// Summary aggregates fold results. Returns and drawdowns are percentages.
type Summary struct {
	Results              []FoldResult
	AverageTrainReturn   float64
	AverageTestReturn    float64
	TestReturnStdDev     float64
	AverageTrainDrawdown float64
	AverageTestDrawdown  float64
	ReturnDegradation    float64
	IsRobust             bool
	OverfittingRisk      string
}

// WalkForwardValidator runs the grid optimizer on each train window.
type WalkForwardValidator struct {
	initialBank float64
	base        strategy.Config
	grid        backtest.Grid
	optimizer   backtest.OptimizerConfig
}

func NewWalkForwardValidator(initialBank float64, base strategy.Config, grid backtest.Grid, optimizer backtest.OptimizerConfig) *WalkForwardValidator {
	return &WalkForwardValidator{
		initialBank: initialBank,
		base:        base,
		grid:        grid,
		optimizer:   optimizer,
	}
}

// Holdout optimizes on the first ratio of bars and tests on the rest.
func (v *WalkForwardValidator) Holdout(ctx context.Context, bars []types.Bar, ratio float64) (*Summary, error) {
	train, test := SplitByRatio(bars, ratio)
	if len(train) < MinTrainBars || len(test) < MinTestBars {
		return nil, boterrors.NewValidationError("validation", "holdout",
			fmt.Sprintf("split %.2f of %d bars leaves %d train and %d test bars", ratio, len(bars), len(train), len(test)))
	}

	fold := Fold{
		Train:      train,
		Test:       test,
		TrainStart: train[0].Timestamp,
		TrainEnd:   train[len(train)-1].Timestamp,
		TestStart:  test[0].Timestamp,
		TestEnd:    test[len(test)-1].Timestamp,
	}
	res, err := v.runFold(ctx, 1, fold)
	if err != nil {
		return nil, err
	}
	return summarize([]FoldResult{res}), nil
}

// Rolling runs every fold from CreateRollingFolds in sequence.
func (v *WalkForwardValidator) Rolling(ctx context.Context, bars []types.Bar, train, test, roll time.Duration) (*Summary, error) {
	folds := CreateRollingFolds(bars, train, test, roll)
	if len(folds) == 0 {
		return nil, boterrors.NewValidationError("validation", "rolling", "not enough data for rolling walk-forward validation")
	}

	results := make([]FoldResult, 0, len(folds))
	for i, fold := range folds {
		res, err := v.runFold(ctx, i+1, fold)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return summarize(results), nil
}

func (v *WalkForwardValidator) runFold(ctx context.Context, n int, fold Fold) (FoldResult, error) {
	report, err := backtest.NewOptimizer(fold.Train, v.initialBank, v.base, v.grid, v.optimizer).Run(ctx)
	if err != nil {
		return FoldResult{}, fmt.Errorf("optimization failed for fold %d: %w", n, err)
	}
	best := report.TopROI[0]

	test, err := backtest.Simulate(fold.Test, v.initialBank, best.Config)
	if err != nil {
		return FoldResult{}, fmt.Errorf("test run failed for fold %d: %w", n, err)
	}

	return FoldResult{
		Fold:   n,
		Window: fold,
		Config: best.Config,
		Train:  best.Summary,
		Test:   test.Summary,
	}, nil
}

func summarize(results []FoldResult) *Summary {
	var trainReturns, testReturns, trainDD, testDD []float64
	for _, r := range results {
		trainReturns = append(trainReturns, r.Train.ROI*100)
		testReturns = append(testReturns, r.Test.ROI*100)
		trainDD = append(trainDD, r.Train.MaxDrawdown)
		testDD = append(testDD, r.Test.MaxDrawdown)
	}

	s := &Summary{
		Results:              results,
		AverageTrainReturn:   average(trainReturns),
		AverageTestReturn:    average(testReturns),
		TestReturnStdDev:     stdDev(testReturns),
		AverageTrainDrawdown: average(trainDD),
		AverageTestDrawdown:  average(testDD),
	}
	s.ReturnDegradation = (s.AverageTrainReturn - s.AverageTestReturn) / math.Max(0.01, math.Abs(s.AverageTrainReturn)) * 100

	switch {
	case s.ReturnDegradation > 30:
		s.OverfittingRisk = RiskHigh
	case s.ReturnDegradation > 15:
		s.OverfittingRisk = RiskModerate
	default:
		s.OverfittingRisk = RiskLow
	}
	s.IsRobust = s.ReturnDegradation <= 30
	return s
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := average(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
