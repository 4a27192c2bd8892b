package backtest

import "github.com/ducminhle1904/rsi-tier-bot/internal/strategy"

// Summary is the scorecard of one run. ROI and WinRate are fractions,
// MaxDrawdown is a percentage that is never positive.
type Summary struct {
	ProfitLoss  float64 `json:"profit_loss"`
	ROI         float64 `json:"roi"`
	WinRate     float64 `json:"winrate"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	MaxDrawdown float64 `json:"max_drawdown"`
	FinalValue  float64 `json:"final_value"`
}

// Summarize values the final state at the last close.
func Summarize(initialBank float64, state strategy.PortfolioState, lastPrice float64) Summary {
	finalValue := state.TotalValue(lastPrice)
	profitLoss := finalValue - initialBank

	s := Summary{
		ProfitLoss:  profitLoss,
		Wins:        state.Wins,
		Losses:      state.Losses,
		MaxDrawdown: state.MaxDrawdown,
		FinalValue:  finalValue,
	}
	if initialBank != 0 {
		s.ROI = profitLoss / initialBank
	}
	if closed := state.ClosedTrades(); closed > 0 {
		s.WinRate = float64(state.Wins) / float64(closed)
	}
	return s
}
