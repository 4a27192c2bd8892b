package strategy

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/indicators"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// Strategy turns one bar of market data plus the current portfolio into the
// next portfolio. Implementations must be pure: no I/O, no shared state.
type Strategy interface {
	// Decide evaluates the rules for one bar and returns every step that fired
	Decide(tick Tick, state PortfolioState) Decision

	// GetName returns the name of the strategy
	GetName() string

	// Config returns the parameters the strategy was built with
	Config() Config
}

// Tick is the per-bar input of a decision.
type Tick struct {
	Timestamp time.Time
	Price     float64
	RSI       indicators.Value
}

// Step is one rule that fired, with the portfolio right after it.
type Step struct {
	Event TradeEvent
	State PortfolioState
}

// Decision is the outcome of one bar. Steps are in rule priority order.
// State is the portfolio after every step and the drawdown bookkeeping.
type Decision struct {
	State PortfolioState
	Steps []Step
}

// Traded reports whether any rule fired.
func (d Decision) Traded() bool {
	return len(d.Steps) > 0
}

// LastEvent returns the event of the final step, the one a per-bar log keeps.
func (d Decision) LastEvent() (TradeEvent, bool) {
	if len(d.Steps) == 0 {
		return TradeEvent{}, false
	}
	return d.Steps[len(d.Steps)-1].Event, true
}

// TradeAction represents the type of trading action
type TradeAction int

const (
	ActionBuy1 TradeAction = iota + 1
	ActionBuy2
	ActionBuy3
	ActionTP1
	ActionTP2
	ActionStopLoss
)

func (ta TradeAction) String() string {
	switch ta {
	case ActionBuy1:
		return "BUY1"
	case ActionBuy2:
		return "BUY2"
	case ActionBuy3:
		return "BUY3"
	case ActionTP1:
		return "TP1"
	case ActionTP2:
		return "TP2"
	case ActionStopLoss:
		return "STOPLOSS"
	default:
		return "UNKNOWN"
	}
}

// IsEntry reports whether the action buys.
func (ta TradeAction) IsEntry() bool {
	return ta == ActionBuy1 || ta == ActionBuy2 || ta == ActionBuy3
}

// IsFullExit reports whether the action closes the whole position.
func (ta TradeAction) IsFullExit() bool {
	return ta == ActionTP2 || ta == ActionStopLoss
}

// Side maps the action to an exchange order side.
func (ta TradeAction) Side() types.OrderSide {
	if ta.IsEntry() {
		return types.OrderSideBuy
	}
	return types.OrderSideSell
}

// ParseTradeAction is the inverse of String.
func ParseTradeAction(s string) (TradeAction, error) {
	for a := ActionBuy1; a <= ActionStopLoss; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown trade action %q", s)
}

// MarshalText lets actions appear by name in JSON and logs.
func (ta TradeAction) MarshalText() ([]byte, error) {
	return []byte(ta.String()), nil
}

// UnmarshalText parses an action name.
func (ta *TradeAction) UnmarshalText(text []byte) error {
	a, err := ParseTradeAction(string(text))
	if err != nil {
		return err
	}
	*ta = a
	return nil
}

// TradeEvent is one fill. Bank, Holdings, BuyPrice and LastRealizedLoss are
// the values after the fill.
type TradeEvent struct {
	Timestamp        time.Time   `json:"timestamp"`
	Action           TradeAction `json:"action"`
	Price            float64     `json:"price"`
	RSI              float64     `json:"rsi"`
	Size             float64     `json:"size"`
	Bank             float64     `json:"bank"`
	Holdings         float64     `json:"holdings"`
	BuyPrice         float64     `json:"buy_price"`
	ProfitPercent    float64     `json:"profit_percent"`
	FeePaid          float64     `json:"fee_paid"`
	LossRecoveryUsed float64     `json:"used_loss"`
	LastRealizedLoss float64     `json:"last_realized_loss"`
}
