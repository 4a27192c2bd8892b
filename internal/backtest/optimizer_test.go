package backtest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

func smallGrid() Grid {
	return Grid{
		BuyRSI1:     []float64{30, 35},
		BuyRSI2:     []float64{27, 30},
		BuyRSI3:     []float64{25},
		SLPerc:      []float64{-1, -2},
		FirstTPPerc: []float64{0.5, 1},
		SecTPPerc:   []float64{1.5},
		RSIPeriods:  []int{6, 14},
		RSIEMA:      []bool{true, false},
		Martingale:  []bool{true, false},
	}
}

// TestGrid_DefaultSize tests the stock grid dimensions and ordering
func TestGrid_DefaultSize(t *testing.T) {
	g := DefaultGrid()
	assert.Equal(t, 7776, g.Size())

	combos := g.Combinations(testStrategyConfig())
	require.Len(t, combos, 7776)

	first, second, last := combos[0], combos[1], combos[len(combos)-1]
	assert.Equal(t, 28.5, first.BuyRSI1)
	assert.True(t, first.Martingale)
	assert.False(t, second.Martingale)
	assert.Equal(t, first.RSIEMA, second.RSIEMA)
	assert.Equal(t, 30.0, last.BuyRSI1)
	assert.Equal(t, 16, last.RSIPeriods)
	assert.False(t, last.RSIEMA)
	// Parameters outside the grid come from the base config
	assert.Equal(t, 0.001, last.FeeRate)
	assert.Equal(t, 55.0, last.RSIValue2)
}

// TestGrid_EmptyAxis tests that a missing axis is a configuration error
func TestGrid_EmptyAxis(t *testing.T) {
	g := smallGrid()
	g.SecTPPerc = nil

	err := g.Validate()
	require.Error(t, err)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))
	assert.Contains(t, err.Error(), "sec_tp_perc")

	_, err = NewOptimizer(generateTestData(50, 1), 1000, testStrategyConfig(), g, OptimizerConfig{}).Run(context.Background())
	assert.Error(t, err)
}

// TestOptimizer_Run tests result count, ordering, rankings and parity with single runs
func TestOptimizer_Run(t *testing.T) {
	bars := generateTestData(1500, 11)
	grid := smallGrid()

	var calls int32
	opt := NewOptimizer(bars, 1000, testStrategyConfig(), grid, OptimizerConfig{
		Workers: 4,
		OnProgress: func(done, total int, eta time.Duration) {
			atomic.AddInt32(&calls, 1)
			assert.LessOrEqual(t, done, total)
			assert.GreaterOrEqual(t, eta, time.Duration(0))
			if done == total {
				assert.Zero(t, eta)
			}
		},
	})

	report, err := opt.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, grid.Size())
	assert.Equal(t, int32(grid.Size()), atomic.LoadInt32(&calls))

	combos := grid.Combinations(testStrategyConfig())
	for i, r := range report.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, combos[i], r.Config)
		require.NoError(t, r.Error)
	}

	for _, i := range []int{0, 17, len(combos) - 1} {
		single, err := Simulate(bars, 1000, combos[i])
		require.NoError(t, err)
		assert.Equal(t, single.Summary, report.Results[i].Summary)
	}

	require.Len(t, report.TopROI, TopN)
	require.Len(t, report.TopWinRate, TopN)
	for i := 1; i < TopN; i++ {
		assert.GreaterOrEqual(t, report.TopROI[i-1].Summary.ROI, report.TopROI[i].Summary.ROI)
		assert.GreaterOrEqual(t, report.TopWinRate[i-1].Summary.WinRate, report.TopWinRate[i].Summary.WinRate)
	}
	for _, r := range report.Results {
		assert.LessOrEqual(t, r.Summary.ROI, report.TopROI[0].Summary.ROI)
	}
}

// TestOptimizer_WorkerCountDoesNotMatter tests that parallelism does not change results
func TestOptimizer_WorkerCountDoesNotMatter(t *testing.T) {
	bars := generateTestData(800, 5)

	serial, err := NewOptimizer(bars, 1000, testStrategyConfig(), smallGrid(), OptimizerConfig{Workers: 1}).Run(context.Background())
	require.NoError(t, err)
	parallel, err := NewOptimizer(bars, 1000, testStrategyConfig(), smallGrid(), OptimizerConfig{Workers: 8}).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(serial.Results), len(parallel.Results))
	for i := range serial.Results {
		assert.Equal(t, serial.Results[i].Summary, parallel.Results[i].Summary)
	}
	assert.Equal(t, serial.TopROI[0].Index, parallel.TopROI[0].Index)
}

// TestOptimizer_Cancelled tests that a cancelled context stops the sweep
func TestOptimizer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOptimizer(generateTestData(100, 1), 1000, testStrategyConfig(), smallGrid(), OptimizerConfig{Workers: 2}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank_StableOnTies(t *testing.T) {
	results := []OptimizationResult{
		{Index: 0, Summary: Summary{ROI: 0.1}},
		{Index: 1, Summary: Summary{ROI: 0.3}},
		{Index: 2, Summary: Summary{ROI: 0.1}},
		{Index: 3, Summary: Summary{ROI: 0.2}},
	}

	top := Rank(results, 3, func(r OptimizationResult) float64 { return r.Summary.ROI })

	require.Len(t, top, 3)
	assert.Equal(t, []int{1, 3, 0}, []int{top[0].Index, top[1].Index, top[2].Index})
	assert.Equal(t, 0, results[0].Index, "input must not be reordered")
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(4)
	assert.Equal(t, 1, pt.Increment())
	assert.Equal(t, 2, pt.Increment())

	done, total, pct, _ := pt.GetProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 4, total)
	assert.Equal(t, 50.0, pct)

	pt.startTime = time.Now().Add(-10 * time.Second)
	assert.InDelta(t, (10 * time.Second).Seconds(), pt.EstimateTimeRemaining().Seconds(), 0.5)

	assert.Zero(t, NewProgressTracker(3).EstimateTimeRemaining())
}
