package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/exchange/mocks"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

func TestPaperExecutor_FillsAtLatestPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	market := mocks.NewMockMarketData(ctrl)
	market.EXPECT().GetLatestPrice(gomock.Any(), "BTCUSDT").Return(101.5, nil).Times(2)

	paper := NewPaperExecutor(market)

	buy, err := paper.PlaceMarketOrder(context.Background(), "BTCUSDT", types.OrderSideBuy, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 101.5, buy.Price)
	assert.Equal(t, "Filled", buy.Status)
	assert.NotEmpty(t, buy.OrderID)

	sell, err := paper.PlaceMarketOrder(context.Background(), "BTCUSDT", types.OrderSideSell, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, buy.OrderID, sell.OrderID)

	orders := paper.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, types.OrderSideSell, orders[1].Side)
}

func TestPaperExecutor_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	market := mocks.NewMockMarketData(ctrl)
	market.EXPECT().GetLatestPrice(gomock.Any(), "ETHUSDT").Return(0.0, errors.New("connection refused"))

	paper := NewPaperExecutor(market)

	_, err := paper.PlaceMarketOrder(context.Background(), "ETHUSDT", types.OrderSideBuy, 0)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryOrder))

	_, err = paper.PlaceMarketOrder(context.Background(), "ETHUSDT", types.OrderSideBuy, 1)
	assert.Error(t, err)
	assert.Empty(t, paper.Orders())
}

func TestPaperExecutor_NoPriceSource(t *testing.T) {
	paper := NewPaperExecutor(nil)
	order, err := paper.PlaceMarketOrder(context.Background(), "BTCUSDT", types.OrderSideBuy, 1)
	require.NoError(t, err)
	assert.Zero(t, order.Price)
	assert.Equal(t, NamePaper, paper.GetName())
}

func TestExchangeConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ExchangeConfig
		trading  bool
		category boterrors.ErrorCategory
	}{
		{"empty name", ExchangeConfig{}, false, boterrors.ErrorCategoryConfiguration},
		{"unknown", ExchangeConfig{Name: "kraken"}, false, boterrors.ErrorCategoryConfiguration},
		{"negative precision", ExchangeConfig{Name: "bybit", QtyPrecision: -1}, false, boterrors.ErrorCategoryConfiguration},
		{"binance trading", ExchangeConfig{Name: "binance"}, true, boterrors.ErrorCategoryConfiguration},
		{"bybit no keys", ExchangeConfig{Name: "bybit"}, true, boterrors.ErrorCategoryCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.trading)
			assert.True(t, boterrors.IsCategory(err, tt.category), "got %v", err)
		})
	}

	assert.NoError(t, ExchangeConfig{Name: "binance"}.Validate(false))
	assert.NoError(t, ExchangeConfig{Name: "bybit", Bybit: &BybitConfig{APIKey: "k", APISecret: "s"}}.Validate(true))
}
