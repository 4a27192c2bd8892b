package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// PaperExecutor fills every market order immediately at the latest price.
// Nothing leaves the process.
type PaperExecutor struct {
	prices MarketData
	now    func() time.Time

	mu     sync.Mutex
	orders []types.Order
}

// NewPaperExecutor creates a paper executor. prices may be nil, in which
// case fills carry a zero price.
func NewPaperExecutor(prices MarketData) *PaperExecutor {
	return &PaperExecutor{prices: prices, now: time.Now}
}

// GetName identifies the venue in logs
func (p *PaperExecutor) GetName() string {
	return NamePaper
}

// PlaceMarketOrder records a filled order
func (p *PaperExecutor) PlaceMarketOrder(ctx context.Context, symbol string, side types.OrderSide, quantity float64) (*types.Order, error) {
	if quantity <= 0 {
		return nil, boterrors.NewOrderError("paper", "place_order",
			fmt.Errorf("invalid quantity %v", quantity))
	}

	var price float64
	if p.prices != nil {
		var err error
		price, err = p.prices.GetLatestPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	order := types.Order{
		OrderID:     id,
		ClientID:    id,
		Symbol:      symbol,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Status:      "Filled",
		CreatedTime: p.now(),
	}

	p.mu.Lock()
	p.orders = append(p.orders, order)
	p.mu.Unlock()

	return &order, nil
}

// Orders returns a copy of every order filled so far
func (p *PaperExecutor) Orders() []types.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Order, len(p.orders))
	copy(out, p.orders)
	return out
}
