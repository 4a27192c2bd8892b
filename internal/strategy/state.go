package strategy

// PortfolioState is the whole mutable state of one strategy run. It is a
// plain value: Decide takes a copy and returns the successor.
type PortfolioState struct {
	Bank     float64 `json:"bank"`
	Holdings float64 `json:"holdings"`
	BuyPrice float64 `json:"buy_price"`

	EnteredTier1 bool `json:"entered_tier_1"`
	EnteredTier2 bool `json:"entered_tier_2"`
	EnteredTier3 bool `json:"entered_tier_3"`
	TP1Hit       bool `json:"tp1_hit"`

	LastRealizedLoss float64 `json:"last_realized_loss"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	PeakValue   float64 `json:"peak_value"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// NewPortfolioState starts a run with all cash and the peak at the starting bank.
func NewPortfolioState(initialBank float64) PortfolioState {
	return PortfolioState{
		Bank:      initialBank,
		PeakValue: initialBank,
	}
}

// TotalValue marks the position at price.
func (s PortfolioState) TotalValue(price float64) float64 {
	return s.Bank + s.Holdings*price
}

// MarkToMarket updates the high-water mark and the worst drawdown (in
// percent, never positive) at price.
func (s *PortfolioState) MarkToMarket(price float64) {
	total := s.TotalValue(price)
	if total > s.PeakValue {
		s.PeakValue = total
	}
	if s.PeakValue <= 0 {
		return
	}
	dd := (total - s.PeakValue) / s.PeakValue * 100
	if dd < s.MaxDrawdown {
		s.MaxDrawdown = dd
	}
}

// ClosedTrades counts full exits.
func (s PortfolioState) ClosedTrades() int {
	return s.Wins + s.Losses
}

func (s *PortfolioState) clearCycle() {
	s.EnteredTier1 = false
	s.EnteredTier2 = false
	s.EnteredTier3 = false
}

func (s *PortfolioState) closePosition() {
	s.Holdings = 0
	s.BuyPrice = 0
	s.TP1Hit = false
	s.clearCycle()
}
