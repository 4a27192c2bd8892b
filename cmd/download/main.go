package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/cmd/common"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/adapters"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
)

const appName = "download"

func main() {
	if err := run(os.Args[1:]); err != nil {
		common.Error("Download failed: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)
	venue := fs.String("exchange", exchange.NameBinance, "Exchange to download from (binance or bybit)")
	symbol := fs.String("symbol", "", "Trading pair (default: pair from config)")
	interval := fs.String("interval", "", "Candle interval such as 5m, 1h (default: timeframe from config)")
	from := fs.String("from", "", "Start date (default: starting_date from config)")
	to := fs.String("to", "", "End date (default: ending_date from config)")
	out := fs.String("out", "", "Output CSV (default: <data-root>/<exchange>/<SYMBOL>/<interval>/candles.csv)")

	common.NewUsageFormatter(appName, "Download historical klines into the CSV layout used by backtest and optimize").
		AddExample("download -symbol BTCUSDT -interval 1h -from 2024-01-01 -to 2024-06-30", "Fetch six months of hourly BTC candles from Binance").
		Install(fs)

	if exit, err := common.ParseFlags(fs, args, appName, flags); exit {
		return err
	}
	if err := common.LoadEnvFile(*flags.EnvFile); err != nil {
		return err
	}

	v := common.NewFlagValidator().ValidateChoice("exchange", strings.ToLower(*venue), exchange.SupportedExchanges())
	if err := v.GetError(); err != nil {
		return err
	}

	cfg, err := common.LoadAppConfig(*flags.ConfigFile)
	if err != nil {
		return err
	}
	cfg.Exchange = strings.ToLower(*venue)
	if *symbol != "" {
		cfg.Pair = strings.ToUpper(*symbol)
	}
	if *interval != "" {
		cfg.Timeframe = *interval
	}
	if *from != "" {
		cfg.StartingDate = *from
	}
	if *to != "" {
		cfg.EndingDate = *to
	}
	start, end, err := cfg.Period()
	if err != nil {
		return err
	}
	if _, err := data.ParseInterval(cfg.Timeframe); err != nil {
		return err
	}

	_, history, err := adapters.NewFactory().CreateMarketData(common.MarketDataConfig(cfg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.Header("Kline Download")
	common.Progress("Fetching %s %s from %s, %s to %s", cfg.Pair, cfg.Timeframe, cfg.Exchange,
		start.Format(time.DateOnly), end.Format(time.DateOnly))

	began := time.Now()
	candles, err := history.FetchHistory(ctx, cfg.Pair, cfg.Timeframe, start, end)
	if err != nil {
		return err
	}
	candles = data.FilterByDateRange(data.Normalize(candles), start, end)

	path := *out
	if path == "" {
		path = data.DefaultDataPath(*flags.DataRoot, cfg.Exchange, cfg.Pair, cfg.Timeframe)
	}
	if err := data.WriteCSVFile(path, candles); err != nil {
		return err
	}
	common.Success("Wrote %d candles to %s in %s", len(candles), path, common.FormatDuration(time.Since(began)))
	return nil
}

