package common

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/adapters"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/config"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// LoadAppConfig reads path, falling back to the defaults with a warning
// when the file does not exist.
func LoadAppConfig(path string) (*config.AppConfig, error) {
	cfg, usedDefaults, err := config.NewManager().LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if usedDefaults {
		Warn("Config file %s not found, using default parameters", path)
	} else {
		Info("Loaded config from %s", path)
	}
	return cfg, nil
}

// MarketDataConfig is the public data side of cfg
func MarketDataConfig(cfg *config.AppConfig) exchange.ExchangeConfig {
	return exchange.ExchangeConfig{
		Name:         cfg.Exchange,
		Category:     cfg.Category,
		QtyPrecision: int32(cfg.QtyPrecision),
	}
}

// LoadBars returns the configured period of bars from dataFile, the data
// root or the configured exchange, in that order.
func LoadBars(ctx context.Context, cfg *config.AppConfig, dataFile, dataRoot string) ([]types.Bar, error) {
	start, end, err := cfg.Period()
	if err != nil {
		return nil, err
	}

	var remote data.HistorySource
	if dataFile == "" {
		_, history, err := adapters.NewFactory().CreateMarketData(MarketDataConfig(cfg))
		if err != nil {
			return nil, err
		}
		remote = history
	}

	res, err := data.NewLoader(dataRoot, remote).Load(ctx, data.Request{
		Exchange: cfg.Exchange,
		Symbol:   cfg.Pair,
		Interval: cfg.Timeframe,
		Start:    start,
		End:      end,
		DataFile: dataFile,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Candles) == 0 {
		return nil, fmt.Errorf("no candles for %s %s between %s and %s",
			cfg.Pair, cfg.Timeframe, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	Info("Loaded %d %s candles of %s from %s (%s)", len(res.Candles), cfg.Timeframe, cfg.Pair, res.Path, res.Source)
	return types.BarsFromOHLCV(res.Candles), nil
}
