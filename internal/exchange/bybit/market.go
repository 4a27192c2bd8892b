package bybit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/data"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
)

// MaxKlineLimit is the largest page /v5/market/kline returns
const MaxKlineLimit = 1000

var intervalsByMinutes = map[int]KlineInterval{
	1: Interval1m, 3: Interval3m, 5: Interval5m, 15: Interval15m, 30: Interval30m,
	60: Interval1h, 120: Interval2h, 240: Interval4h, 360: Interval6h, 720: Interval12h,
	1440: Interval1d, 10080: Interval1w,
}

// ToKlineInterval converts "5m", "1h", "1d" style intervals to Bybit codes
func ToKlineInterval(interval string) (KlineInterval, error) {
	minutes, err := data.IntervalMinutes(interval)
	if err != nil {
		return "", err
	}
	code, ok := intervalsByMinutes[minutes]
	if !ok {
		return "", fmt.Errorf("interval %q is not supported by bybit", interval)
	}
	return code, nil
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Symbol   string
	Interval KlineInterval
	Start    *time.Time
	End      *time.Time
	Limit    int // max 1000, default 200
}

// GetKlines returns the most recent candles, oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	code, err := ToKlineInterval(interval)
	if err != nil {
		return nil, err
	}
	return c.fetchKlines(ctx, KlineParams{Symbol: symbol, Interval: code, Limit: limit})
}

// FetchHistory pages backwards from end until start is covered.
func (c *Client) FetchHistory(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error) {
	code, err := ToKlineInterval(interval)
	if err != nil {
		return nil, err
	}

	var all []types.OHLCV
	cursor := end
	for cursor.After(start) {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := c.fetchKlines(ctx, KlineParams{
			Symbol:   symbol,
			Interval: code,
			Start:    &start,
			End:      &cursor,
			Limit:    MaxKlineLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		oldest := page[0].Timestamp
		if len(page) < MaxKlineLimit || !oldest.After(start) {
			break
		}
		cursor = oldest.Add(-time.Millisecond)
	}

	return data.Normalize(all), nil
}

func (c *Client) fetchKlines(ctx context.Context, params KlineParams) ([]types.OHLCV, error) {
	if params.Limit <= 0 {
		params.Limit = 200
	}
	if params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	reqParams := map[string]interface{}{
		"category": c.category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	return exchange.RetryValue(ctx, c.retry, "bybit", "get_klines", func() ([]types.OHLCV, error) {
		result, err := c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get klines: %w", err)
		}
		var klines KlineResult
		if err := decodeResult("get_klines", result, &klines); err != nil {
			return nil, err
		}
		return parseKlines(klines.List)
	})
}

// parseKlines converts Bybit rows [startTime, open, high, low, close, volume, turnover]
// (newest first) into candles sorted oldest first.
func parseKlines(rows [][]string) ([]types.OHLCV, error) {
	candles := make([]types.OHLCV, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row %d has %d fields", i, len(row))
		}
		ts, err := parseTimestamp(row[0])
		if err != nil {
			return nil, fmt.Errorf("kline row %d: bad start time: %w", i, err)
		}
		var values [5]float64
		for j := range values {
			if values[j], err = parseFloat64(row[j+1]); err != nil {
				return nil, fmt.Errorf("kline row %d: bad field %d: %w", i, j+1, err)
			}
		}
		candles = append(candles, types.OHLCV{
			Timestamp: ts,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// GetLatestPrice gets the latest traded price for a symbol
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	return exchange.RetryValue(ctx, c.retry, "bybit", "get_price", func() (float64, error) {
		result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest price: %w", err)
		}
		return parseLatestPrice(result)
	})
}

func parseLatestPrice(response interface{}) (float64, error) {
	var tickers TickerResult
	if err := decodeResult("get_price", response, &tickers); err != nil {
		return 0, err
	}
	if len(tickers.List) == 0 {
		return 0, fmt.Errorf("no ticker data found")
	}
	return parseFloat64(tickers.List[0].LastPrice)
}
