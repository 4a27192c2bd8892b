package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/ducminhle1904/rsi-tier-bot/cmd/common"
	"github.com/ducminhle1904/rsi-tier-bot/internal/bot"
	envconfig "github.com/ducminhle1904/rsi-tier-bot/internal/config"
	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/adapters"
	"github.com/ducminhle1904/rsi-tier-bot/internal/logger"
	"github.com/ducminhle1904/rsi-tier-bot/internal/monitoring"
	"github.com/ducminhle1904/rsi-tier-bot/internal/notifications"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/config"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/reporting"
)

const appName = "live-bot"

func main() {
	if err := run(os.Args[1:]); err != nil {
		common.Error("Live bot stopped: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)
	paper := fs.Bool("paper", false, "Fill orders locally at the latest price instead of sending them to Bybit")
	metricsAddr := fs.String("metrics-addr", "", "Address for /metrics and /health (default: METRICS_ADDR or :8080)")
	stateDir := fs.String("state-dir", bot.DefaultStateDir, "Directory for the persisted portfolio")
	tradesPath := fs.String("trades", reporting.DefaultLiveTradesPath, "Live trade log CSV")

	common.NewUsageFormatter(appName, "Trade the tiered RSI strategy on closed candles").
		AddExample("live-bot -config config.json -paper", "Paper trade with live Binance data").
		AddExample("live-bot -config config.yaml -metrics-addr :9090", "Trade on Bybit with credentials from .env").
		Install(fs)

	if exit, err := common.ParseFlags(fs, args, appName, flags); exit {
		return err
	}
	if err := common.LoadEnvFile(*flags.EnvFile); err != nil {
		return err
	}
	env := envconfig.Load()
	if *metricsAddr == "" {
		*metricsAddr = env.Monitoring.MetricsAddr
	}

	if !*paper {
		if missing := env.MissingCredentials(); len(missing) > 0 {
			return boterrors.NewCredentialsError("live-bot", "startup",
				fmt.Sprintf("missing environment variables: %s (use -paper to trade without credentials)", strings.Join(missing, ", ")))
		}
	}

	cfg, err := common.LoadAppConfig(*flags.ConfigFile)
	if err != nil {
		return err
	}

	venue, err := adapters.NewFactory().CreateVenue(common.MarketDataConfig(cfg), tradeConfig(cfg, env), *paper)
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(env.LogLevel)
	if err != nil {
		common.Warn("Unknown LOG_LEVEL %q, using info", env.LogLevel)
		level = zapcore.InfoLevel
	}
	sessionLog, err := logger.NewLoggerWithOptions(cfg.Pair, cfg.Timeframe, logger.Options{Console: true, Level: level})
	if err != nil {
		return err
	}
	defer sessionLog.Close()

	interval, err := parseStaleAfter(cfg)
	if err != nil {
		return err
	}
	metrics := monitoring.NewMetrics()
	health := monitoring.NewHealthChecker(interval, 3)

	var notifier notifications.Notifier = notifications.Nop{}
	if env.TelegramEnabled() {
		notifier = notifications.NewTelegramNotifier(env.Telegram.Token, env.Telegram.ChatID, "RSI Bot "+cfg.Pair)
		common.Info("Telegram alerts enabled")
	}

	liveBot, err := bot.NewLiveBot(bot.Config{
		Symbol:       cfg.Pair,
		Interval:     cfg.Timeframe,
		InitialBank:  cfg.InitialBank,
		Strategy:     cfg.Strategy(),
		StateDir:     *stateDir,
		TradeLogPath: *tradesPath,
	}, bot.Dependencies{
		Market:   venue.Market,
		Executor: venue.Executor,
		Logger:   sessionLog,
		Metrics:  metrics,
		Health:   health,
		Notifier: notifier,
	})
	if err != nil {
		return err
	}
	defer liveBot.Close()

	server, err := monitoring.Start(*metricsAddr, monitoring.NewRouter(metrics, health))
	if err != nil {
		return err
	}
	common.Info("Metrics on http://%s/metrics, health on http://%s/health", server.Addr(), server.Addr())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *paper {
		common.Warn("Paper mode: orders are filled locally, nothing is sent to the exchange")
	}
	err = liveBot.Run(ctx)
	common.Info("Shutting down, state saved to %s", *stateDir)
	return err
}

func tradeConfig(cfg *config.AppConfig, env *envconfig.Environment) exchange.ExchangeConfig {
	return exchange.ExchangeConfig{
		Name:         exchange.NameBybit,
		Category:     cfg.Category,
		QtyPrecision: int32(cfg.QtyPrecision),
		Bybit: &exchange.BybitConfig{
			APIKey:    env.Exchange.APIKey,
			APISecret: env.Exchange.Secret,
			Testnet:   env.Exchange.Testnet,
			Demo:      env.Exchange.Demo,
		},
	}
}

// parseStaleAfter gives the health check two candles of slack before a
// missing tick counts as degraded.
func parseStaleAfter(cfg *config.AppConfig) (time.Duration, error) {
	d, err := data.ParseInterval(cfg.Timeframe)
	if err != nil {
		return 0, err
	}
	return 2 * d, nil
}
