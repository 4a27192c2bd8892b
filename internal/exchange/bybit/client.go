package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/safety"
)

// DemoBaseURL is Bybit's demo trading environment
const DemoBaseURL = "https://api-demo.bybit.com"

// History paging stays well under the 600 requests per 5s IP limit.
const (
	historyBurst = 10
	historyRate  = 10
)

// Client wraps the Bybit API client for market data and market orders.
type Client struct {
	httpClient   *bybit_api.Client
	category     string
	qtyPrecision int32
	testnet      bool
	demo         bool
	retry        exchange.RetryConfig
	pacer        *safety.RateLimiter
}

// Config holds the configuration for the Bybit client
type Config struct {
	APIKey       string
	APISecret    string
	Testnet      bool
	Demo         bool   // Demo trading environment
	Category     string // "spot" or "linear"
	QtyPrecision int32  // decimals kept when formatting order quantities
}

var (
	_ exchange.MarketData     = (*Client)(nil)
	_ exchange.HistoryFetcher = (*Client)(nil)
	_ exchange.OrderExecutor  = (*Client)(nil)
)

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := bybit_api.MAINNET
	if config.Demo {
		baseURL = DemoBaseURL
	} else if config.Testnet {
		baseURL = bybit_api.TESTNET
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	category := config.Category
	if category == "" {
		category = "spot"
	}

	return &Client{
		httpClient:   httpClient,
		category:     category,
		qtyPrecision: config.QtyPrecision,
		testnet:      config.Testnet,
		demo:         config.Demo,
		retry:        exchange.DefaultRetryConfig(),
		pacer:        safety.NewRateLimiter("bybit_history", historyBurst, historyRate),
	}
}

// WithRetry replaces the retry policy used for every API call
func (c *Client) WithRetry(config exchange.RetryConfig) *Client {
	c.retry = config
	return c
}

// WithRateLimit replaces the limiter that paces history pages
func (c *Client) WithRateLimit(limiter *safety.RateLimiter) *Client {
	c.pacer = limiter
	return c
}

// GetName returns the exchange name
func (c *Client) GetName() string {
	return exchange.NameBybit
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	switch {
	case c.demo:
		return "demo"
	case c.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}
