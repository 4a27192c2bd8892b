package adapters

import (
	"fmt"
	"strings"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/binance"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/bybit"
)

// Factory creates exchange clients based on configuration
type Factory struct {
	retry exchange.RetryConfig
}

// NewFactory creates a new exchange factory instance
func NewFactory() *Factory {
	return &Factory{retry: exchange.DefaultRetryConfig()}
}

// WithRetry sets the retry policy handed to every client the factory builds
func (f *Factory) WithRetry(config exchange.RetryConfig) *Factory {
	f.retry = config
	return f
}

// Venue bundles the read and write sides the live bot works with.
type Venue struct {
	Market   exchange.MarketData
	History  exchange.HistoryFetcher
	Executor exchange.OrderExecutor
}

// CreateMarketData returns a public market data client for name
func (f *Factory) CreateMarketData(config exchange.ExchangeConfig) (exchange.MarketData, exchange.HistoryFetcher, error) {
	if err := config.Validate(false); err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(strings.TrimSpace(config.Name)) {
	case exchange.NameBinance:
		client := binance.NewClient().WithRetry(f.retry)
		return client, client, nil
	case exchange.NameBybit:
		client := f.bybitClient(config)
		return client, client, nil
	default:
		return nil, nil, boterrors.NewConfigurationError("factory", "create_market_data",
			fmt.Sprintf("exchange %q is not supported", config.Name))
	}
}

// CreateVenue wires market data from dataConfig with an executor. With paper
// set, orders are filled locally at the latest price and no credentials are needed.
func (f *Factory) CreateVenue(dataConfig, tradeConfig exchange.ExchangeConfig, paper bool) (*Venue, error) {
	market, history, err := f.CreateMarketData(dataConfig)
	if err != nil {
		return nil, err
	}

	venue := &Venue{Market: market, History: history}
	if paper {
		venue.Executor = exchange.NewPaperExecutor(market)
		return venue, nil
	}

	if err := tradeConfig.Validate(true); err != nil {
		return nil, err
	}
	venue.Executor = f.bybitClient(tradeConfig)
	return venue, nil
}

func (f *Factory) bybitClient(config exchange.ExchangeConfig) *bybit.Client {
	cfg := bybit.Config{Category: config.Category, QtyPrecision: config.QtyPrecision}
	if config.Bybit != nil {
		cfg.APIKey = config.Bybit.APIKey
		cfg.APISecret = config.Bybit.APISecret
		cfg.Testnet = config.Bybit.Testnet
		cfg.Demo = config.Bybit.Demo
	}
	return bybit.NewClient(cfg).WithRetry(f.retry)
}
