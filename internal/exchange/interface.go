package exchange

import (
	"context"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

//go:generate mockgen -source=interface.go -destination=mocks/mock_exchange.go -package=mocks

// MarketData is the read side the live loop needs: recent candles and a spot price.
type MarketData interface {
	GetName() string
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
}

// HistoryFetcher downloads a closed time range, oldest candle first.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error)
}

// OrderExecutor places market orders. Quantity is always in the base asset.
type OrderExecutor interface {
	PlaceMarketOrder(ctx context.Context, symbol string, side types.OrderSide, quantity float64) (*types.Order, error)
}
