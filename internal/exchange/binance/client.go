// Package binance reads public market data from Binance spot. It is the
// default candle source for backtests and the live loop.
package binance

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/internal/safety"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// MaxKlineLimit is the largest page /api/v3/klines returns
const MaxKlineLimit = 1000

// A full klines page costs 2 of the 6000 request weight per minute.
const (
	historyBurst = 20
	historyRate  = 20
)

var intervalsByMinutes = map[int]string{
	1: "1m", 3: "3m", 5: "5m", 15: "15m", 30: "30m",
	60: "1h", 120: "2h", 240: "4h", 360: "6h", 480: "8h", 720: "12h",
	1440: "1d", 4320: "3d", 10080: "1w",
}

// Client wraps go-binance for klines and prices. No keys are needed.
type Client struct {
	client *binance.Client
	retry  exchange.RetryConfig
	pacer  *safety.RateLimiter
}

var (
	_ exchange.MarketData     = (*Client)(nil)
	_ exchange.HistoryFetcher = (*Client)(nil)
)

// NewClient creates an unauthenticated Binance client
func NewClient() *Client {
	return &Client{
		client: binance.NewClient("", ""),
		retry:  exchange.DefaultRetryConfig(),
		pacer:  safety.NewRateLimiter("binance_history", historyBurst, historyRate),
	}
}

// WithRetry replaces the retry policy
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
	return exchange.NameBinance
}

// ToInterval converts "5m", "60", "1h" style intervals to Binance codes
func ToInterval(interval string) (string, error) {
	minutes, err := data.IntervalMinutes(interval)
	if err != nil {
		return "", err
	}
	code, ok := intervalsByMinutes[minutes]
	if !ok {
		return "", fmt.Errorf("interval %q is not supported by binance", interval)
	}
	return code, nil
}

// GetKlines returns the most recent candles, oldest first. The last one is
// usually still open.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	code, err := ToInterval(interval)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxKlineLimit {
		limit = MaxKlineLimit
	}

	return exchange.RetryValue(ctx, c.retry, "binance", "get_klines", func() ([]types.OHLCV, error) {
		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval(code).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return nil, wrapError("get_klines", err)
		}
		return convertKlines(klines)
	})
}

// FetchHistory pages forward from start until end.
func (c *Client) FetchHistory(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error) {
	code, err := ToInterval(interval)
	if err != nil {
		return nil, err
	}

	endMillis := end.UnixMilli()
	cursor := start.UnixMilli()
	var all []types.OHLCV

	for cursor < endMillis {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		from := cursor
		page, err := exchange.RetryValue(ctx, c.retry, "binance", "fetch_history", func() ([]*binance.Kline, error) {
			klines, err := c.client.NewKlinesService().
				Symbol(symbol).
				Interval(code).
				StartTime(from).
				EndTime(endMillis).
				Limit(MaxKlineLimit).
				Do(ctx)
			if err != nil {
				return nil, wrapError("fetch_history", err)
			}
			return klines, nil
		})
		if err != nil {
			return nil, err
		}

		candles, err := convertKlines(page)
		if err != nil {
			return nil, err
		}
		all = append(all, candles...)

		if len(page) < MaxKlineLimit {
			break
		}
		// next page starts right after the last close
		cursor = page[len(page)-1].CloseTime + 1
	}

	return data.Normalize(all), nil
}

// GetLatestPrice returns the last traded price
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return exchange.RetryValue(ctx, c.retry, "binance", "get_price", func() (float64, error) {
		prices, err := c.client.NewListPricesService().Symbol(symbol).Do(ctx)
		if err != nil {
			return 0, wrapError("get_price", err)
		}
		for _, p := range prices {
			if p.Symbol == symbol {
				return strconv.ParseFloat(p.Price, 64)
			}
		}
		return 0, boterrors.NewBotError(boterrors.ErrorCategoryData, "binance", "get_price",
			fmt.Sprintf("no price for %s", symbol)).WithRetryable(false)
	})
}

func convertKlines(klines []*binance.Kline) ([]types.OHLCV, error) {
	candles := make([]types.OHLCV, 0, len(klines))
	for i, k := range klines {
		var values [5]float64
		for j, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, boterrors.NewDataError("binance", "convert_klines",
					fmt.Errorf("kline %d field %d: %w", i, j, err))
			}
			values[j] = v
		}
		candles = append(candles, types.OHLCV{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}
	return candles, nil
}

// wrapError categorizes go-binance errors. API errors carry a code; anything
// else is treated as transport trouble.
func wrapError(operation string, err error) error {
	var apiErr *common.APIError
	if !stderrors.As(err, &apiErr) {
		return boterrors.CategorizeError(err, "binance", operation)
	}

	switch apiErr.Code {
	case -1003, -1015:
		return boterrors.WrapError(err, boterrors.ErrorCategoryRateLimit, "binance", operation)
	case -1121, -1100, -1102, -1120:
		return boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "binance", operation)
	case -1001, -1021:
		return boterrors.WrapError(err, boterrors.ErrorCategoryTemporary, "binance", operation)
	default:
		return boterrors.NewExchangeError("binance", operation, err).WithContext("code", apiErr.Code)
	}
}
