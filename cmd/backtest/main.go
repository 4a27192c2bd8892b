package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ducminhle1904/rsi-tier-bot/cmd/common"
	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/config"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/orchestrator"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/reporting"
)

const appName = "backtest"

func main() {
	if err := run(os.Args[1:]); err != nil {
		common.Error("Backtest failed: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)
	dataFile := fs.String("data", "", "CSV file with candles (default: data root, then the configured exchange)")
	tradesPath := fs.String("trades", "", "Trade log CSV path (default: trade_log from config or "+reporting.DefaultTradeLogPath+")")
	xlsxPath := fs.String("xlsx", "", "Also write an Excel workbook with Trades and Summary sheets")
	allIntervals := fs.Bool("all-intervals", false, "Backtest every timeframe downloaded under the data root and compare them")
	logEveryStep := fs.Bool("log-every-step", false, "Log every fill of a bar instead of only the last one")

	common.NewUsageFormatter(appName, "Run the tiered RSI strategy over historical candles").
		AddExample("backtest -config config.json", "Backtest the configured pair and period").
		AddExample("backtest -data data/binance/QNTUSDT/5m/candles.csv -xlsx results/qnt.xlsx", "Backtest a local file and export to Excel").
		AddExample("backtest -all-intervals", "Compare every downloaded timeframe of the configured pair").
		Install(fs)

	if exit, err := common.ParseFlags(fs, args, appName, flags); exit {
		return err
	}
	if err := common.LoadEnvFile(*flags.EnvFile); err != nil {
		return err
	}

	v := common.NewFlagValidator().ValidateFile("data", *dataFile, false)
	if err := v.GetError(); err != nil {
		return err
	}

	cfg, err := common.LoadAppConfig(*flags.ConfigFile)
	if err != nil {
		return err
	}
	if *logEveryStep {
		cfg.LogEveryStep = true
	}
	if interval := reporting.ExtractIntervalFromPath(*dataFile); interval != "" && !strings.EqualFold(interval, cfg.Timeframe) {
		common.Warn("Data file looks like %s candles, config timeframe is %s", interval, cfg.Timeframe)
		cfg.Timeframe = interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.Header("Tiered RSI Backtest")
	if *allIntervals {
		return runAllIntervals(ctx, cfg, *flags.DataRoot)
	}
	bars, err := common.LoadBars(ctx, cfg, *dataFile, *flags.DataRoot)
	if err != nil {
		return err
	}

	common.Progress("Simulating %d bars", len(bars))
	results, err := backtest.Simulate(bars, cfg.InitialBank, cfg.Strategy())
	if err != nil {
		return err
	}

	return outputResults(results, cfg.Pair, cfg.Timeframe, outputPaths{
		trades: firstNonEmpty(*tradesPath, cfg.TradeLog, reporting.DefaultTradeLogPath),
		xlsx:   *xlsxPath,
	})
}

func runAllIntervals(ctx context.Context, cfg *config.AppConfig, dataRoot string) error {
	analysis, err := orchestrator.NewIntervalRunner(dataRoot).RunMultiInterval(ctx, cfg)
	if err != nil {
		return err
	}
	if !common.DefaultLogger.SilentMode {
		printIntervalComparison(os.Stdout, analysis)
	}
	if analysis.BestResult == nil {
		return fmt.Errorf("no interval of %s could be backtested", analysis.Symbol)
	}
	common.Success("Best timeframe: %s (ROI %.2f%%)", analysis.BestResult.Interval, analysis.BestResult.Results.Summary.ROI*100)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
