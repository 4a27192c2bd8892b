package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ducminhle1904/rsi-tier-bot/cmd/common"
	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/config"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/optimization"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/reporting"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/validation"
)

const appName = "optimize"

const (
	modeGrid = "grid"
	modeGA   = "ga"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		common.Error("Optimization failed: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)
	dataFile := fs.String("data", "", "CSV file with candles (default: data root, then the configured exchange)")
	gridFile := fs.String("grid", "", "Grid file (.json/.yaml) overriding the default sweep axes")
	workers := fs.Int("workers", runtime.NumCPU(), "Number of parallel workers")
	outPath := fs.String("out", reporting.DefaultOptimizationPath, "Optimization results CSV")
	xlsxPath := fs.String("xlsx", "", "Also write an Excel workbook with Results, Top ROI and Top WinRate sheets")
	bestPath := fs.String("best-config", "", "Write the best ROI combination merged into the base config to this JSON file")
	mode := fs.String("mode", modeGrid, "Search mode: grid (every combination) or ga (genetic search over the same grid)")
	population := fs.Int("population", optimization.GAPopulationSize, "GA population size")
	generations := fs.Int("generations", optimization.GAGenerations, "GA generations")
	seed := fs.Int64("seed", 0, "GA random seed (0 seeds from the clock)")
	holdout := fs.Float64("holdout", 0, "Optimize on this fraction of the bars and test the winner on the rest (0 disables)")
	wfTrain := fs.Int("wf-train", 0, "Rolling walk-forward train window in days (0 disables)")
	wfTest := fs.Int("wf-test", 7, "Rolling walk-forward test window in days")
	wfRoll := fs.Int("wf-roll", 7, "Days the rolling window advances per fold")

	common.NewUsageFormatter(appName, "Sweep the tiered RSI parameter grid and rank the combinations").
		AddExample("optimize -config config.json -workers 8", "Run the default 7776-combination sweep").
		AddExample("optimize -grid grid.yaml -best-config results/best.json", "Sweep a custom grid and keep the winner").
		AddExample("optimize -holdout 0.7", "Check the winner of the first 70% of bars on the last 30%").
		Install(fs)

	if exit, err := common.ParseFlags(fs, args, appName, flags); exit {
		return err
	}
	if err := common.LoadEnvFile(*flags.EnvFile); err != nil {
		return err
	}

	v := common.NewFlagValidator().
		ValidateInt("workers", *workers, 1, 1024).
		ValidateFile("data", *dataFile, false).
		ValidateFile("grid", *gridFile, false).
		ValidateChoice("mode", *mode, []string{modeGrid, modeGA})
	if *mode == modeGA {
		v.ValidateInt("population", *population, 2, 10000).ValidateInt("generations", *generations, 1, 10000)
	}
	if *holdout < 0 || *holdout >= 1 {
		v.AddError(fmt.Sprintf("holdout must be in [0, 1), got: %g", *holdout))
	}
	if *wfTrain > 0 {
		v.ValidateInt("wf-test", *wfTest, 1, 3650).ValidateInt("wf-roll", *wfRoll, 1, 3650)
	}
	if err := v.GetError(); err != nil {
		return err
	}

	cfg, err := common.LoadAppConfig(*flags.ConfigFile)
	if err != nil {
		return err
	}
	grid, err := config.LoadGrid(*gridFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.Header("Tiered RSI Optimization")
	bars, err := common.LoadBars(ctx, cfg, *dataFile, *flags.DataRoot)
	if err != nil {
		return err
	}

	var report *backtest.OptimizationReport
	if *mode == modeGA {
		report, err = runGA(ctx, bars, cfg, grid, optimization.GAConfig{
			PopulationSize: *population,
			Generations:    *generations,
			Workers:        *workers,
			Seed:           *seed,
		})
	} else {
		report, err = runGrid(ctx, bars, cfg, grid, *workers)
	}
	if err != nil {
		return err
	}
	common.Success("Evaluated %d combinations in %s", len(report.Results), common.FormatDuration(report.Duration))

	if !common.DefaultLogger.SilentMode {
		reporting.PrintTopResults(os.Stdout, fmt.Sprintf("TOP %d BY ROI", backtest.TopN), report.TopROI)
		reporting.PrintTopResults(os.Stdout, fmt.Sprintf("TOP %d BY WIN RATE", backtest.TopN), report.TopWinRate)
	}

	if err := reporting.WriteOptimizationCSV(report.Results, *outPath); err != nil {
		return err
	}
	common.Success("Results written to %s", *outPath)

	if *xlsxPath != "" {
		xlsx := common.ResolvePath(*xlsxPath, reporting.DefaultOutputDir(cfg.Pair, cfg.Timeframe), ".xlsx")
		if err := reporting.WriteOptimizationXLSX(report, xlsx); err != nil {
			return err
		}
		common.Success("Workbook written to %s", xlsx)
	}

	if *bestPath != "" && len(report.TopROI) > 0 {
		best := *cfg
		best.Config = report.TopROI[0].Config
		path := common.ResolvePath(*bestPath, reporting.DefaultOutputDir(cfg.Pair, cfg.Timeframe), ".json")
		if err := reporting.WriteBestConfigJSON(&best, path); err != nil {
			return err
		}
		common.Success("Best config written to %s", path)
	}

	return runValidation(ctx, bars, cfg, grid, backtest.OptimizerConfig{Workers: *workers}, validationFlags{
		holdout: *holdout,
		train:   *wfTrain,
		test:    *wfTest,
		roll:    *wfRoll,
	})
}

type validationFlags struct {
	holdout           float64
	train, test, roll int
}

// runValidation re-optimizes on in-sample bars and reports how the winners
// hold up on the bars that follow.
func runValidation(ctx context.Context, bars []types.Bar, cfg *config.AppConfig, grid backtest.Grid, opt backtest.OptimizerConfig, f validationFlags) error {
	if f.holdout == 0 && f.train == 0 {
		return nil
	}
	validator := validation.NewWalkForwardValidator(cfg.InitialBank, cfg.Strategy(), grid, opt)
	day := 24 * time.Hour

	var summary *validation.Summary
	var err error
	if f.train > 0 {
		common.Section(fmt.Sprintf("Rolling walk-forward: train %dd, test %dd, roll %dd", f.train, f.test, f.roll))
		summary, err = validator.Rolling(ctx, bars,
			time.Duration(f.train)*day, time.Duration(f.test)*day, time.Duration(f.roll)*day)
	} else {
		common.Section(fmt.Sprintf("Holdout validation: %.0f%% train", f.holdout*100))
		summary, err = validator.Holdout(ctx, bars, f.holdout)
	}
	if err != nil {
		return err
	}

	if !common.DefaultLogger.SilentMode {
		reporting.PrintWalkForward(os.Stdout, summary)
	}
	return nil
}

func runGrid(ctx context.Context, bars []types.Bar, cfg *config.AppConfig, grid backtest.Grid, workers int) (*backtest.OptimizationReport, error) {
	common.Info("Sweeping %d combinations over %d bars with %d workers", grid.Size(), len(bars), workers)
	bar := newProgressBar(grid.Size())
	defer func() { _ = bar.Finish() }()

	return backtest.NewOptimizer(bars, cfg.InitialBank, cfg.Strategy(), grid, backtest.OptimizerConfig{
		Workers: workers,
		OnProgress: func(done, _ int, eta time.Duration) {
			bar.Describe(fmt.Sprintf("optimizing (ETA %s)", common.FormatDuration(eta)))
			_ = bar.Set(done)
		},
	}).Run(ctx)
}

func runGA(ctx context.Context, bars []types.Bar, cfg *config.AppConfig, grid backtest.Grid, ga optimization.GAConfig) (*backtest.OptimizationReport, error) {
	common.Info("Genetic search: population %d, %d generations over a %d-combination grid",
		ga.PopulationSize, ga.Generations, grid.Size())
	bar := newProgressBar(ga.Generations)
	defer func() { _ = bar.Finish() }()

	ga.OnGeneration = func(gen int, best *optimization.Individual, avg float64) {
		_ = bar.Set(gen)
		common.Debug("generation %d: best ROI %.4f, average %.4f", gen, best.Fitness, avg)
	}
	return optimization.NewGeneticOptimizer(bars, cfg.InitialBank, cfg.Strategy(), grid, ga).Run(ctx)
}

func newProgressBar(total int) *progressbar.ProgressBar {
	if common.DefaultLogger.SilentMode {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("optimizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
