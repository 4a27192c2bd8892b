package bybit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// FormatQuantity truncates qty to precision decimals, never rounding up.
func FormatQuantity(qty float64, precision int32) string {
	return decimal.NewFromFloat(qty).Truncate(precision).String()
}

// PlaceMarketOrder places a market order sized in the base coin.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side types.OrderSide, quantity float64) (*types.Order, error) {
	qty := FormatQuantity(quantity, c.qtyPrecision)
	if q, _ := decimal.NewFromString(qty); !q.IsPositive() {
		return nil, boterrors.NewOrderError("bybit", "place_order",
			fmt.Errorf("quantity %v rounds to %s at precision %d", quantity, qty, c.qtyPrecision))
	}

	linkID := uuid.NewString()
	apiParams := map[string]interface{}{
		"category":    c.category,
		"symbol":      symbol,
		"side":        string(side),
		"orderType":   "Market",
		"qty":         qty,
		"orderLinkId": linkID,
	}
	if c.category == "spot" {
		apiParams["marketUnit"] = "baseCoin"
	}

	// Not retried: a timed out create may still have filled.
	result, err := c.httpClient.NewUtaBybitServiceWithParams(apiParams).PlaceOrder(ctx)
	if err != nil {
		return nil, boterrors.CategorizeError(fmt.Errorf("failed to place order: %w", err), "bybit", "place_order")
	}

	var created OrderResult
	if err := decodeResult("place_order", result, &created); err != nil {
		return nil, err
	}

	filledQty, _ := decimal.NewFromString(qty)
	return &types.Order{
		OrderID:     created.OrderID,
		ClientID:    linkID,
		Symbol:      symbol,
		Side:        side,
		Quantity:    filledQty.InexactFloat64(),
		Status:      "New",
		CreatedTime: time.Now(),
	}, nil
}
