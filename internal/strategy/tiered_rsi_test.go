package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/rsi-tier-bot/internal/indicators"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tick(i int, price, rsi float64) Tick {
	return Tick{
		Timestamp: t0.Add(time.Duration(i) * 5 * time.Minute),
		Price:     price,
		RSI:       indicators.Defined(rsi),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FeeRate = 0.001
	return cfg
}

func actions(d Decision) []TradeAction {
	out := make([]TradeAction, 0, len(d.Steps))
	for _, s := range d.Steps {
		out = append(out, s.Event.Action)
	}
	return out
}

// TestDecide_Tier1Entry tests sizing of a fresh tier 1 entry
func TestDecide_Tier1Entry(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))

	require.Equal(t, []TradeAction{ActionBuy1}, actions(d))
	ev := d.Steps[0].Event
	assert.InDelta(t, 3.996, ev.Size, 1e-9)
	assert.InDelta(t, 0.4, ev.FeePaid, 1e-9)
	assert.InDelta(t, 600.0, d.State.Bank, 1e-9)
	assert.InDelta(t, 3.996, d.State.Holdings, 1e-9)
	assert.Equal(t, 100.0, d.State.BuyPrice)
	assert.True(t, d.State.EnteredTier1)
	assert.False(t, d.State.EnteredTier2)
	assert.Equal(t, 25.0, ev.RSI)
}

// TestDecide_OnlyOneTierPerBar tests that an RSI below every threshold buys tier 1 only
func TestDecide_OnlyOneTierPerBar(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 5), NewPortfolioState(1000))
	assert.Equal(t, []TradeAction{ActionBuy1}, actions(d))

	// Holding without TP1 closes the entry gate
	d = s.Decide(tick(1, 100, 5), d.State)
	assert.Empty(t, d.Steps)
	assert.False(t, d.State.EnteredTier2)
}

// TestDecide_SecondWave tests tiers 1 to 3 after TP1 reopened the gate
func TestDecide_SecondWave(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())
	state := PortfolioState{Bank: 500, Holdings: 1, BuyPrice: 100, TP1Hit: true, PeakValue: 600}

	d := s.Decide(tick(0, 100, 20), state)
	require.Equal(t, []TradeAction{ActionBuy1}, actions(d))
	assert.InDelta(t, 375.0, d.State.Bank, 1e-9)
	assert.InDelta(t, 1+125*0.999/100, d.State.Holdings, 1e-9)

	d = s.Decide(tick(1, 100, 20), d.State)
	require.Equal(t, []TradeAction{ActionBuy2}, actions(d))
	assert.InDelta(t, 187.5, d.State.Bank, 1e-9)

	d = s.Decide(tick(2, 100, 20), d.State)
	require.Equal(t, []TradeAction{ActionBuy3}, actions(d))
	assert.Equal(t, 0.0, d.State.Bank)

	d = s.Decide(tick(3, 100, 20), d.State)
	assert.Empty(t, d.Steps)
	assert.True(t, d.State.EnteredTier1 && d.State.EnteredTier2 && d.State.EnteredTier3)
}

// TestDecide_StopLoss tests a full stop-out one bar after entry
func TestDecide_StopLoss(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
	require.Equal(t, []TradeAction{ActionBuy1}, actions(d))

	d = s.Decide(tick(1, 98.5, 35), d.State)
	require.Equal(t, []TradeAction{ActionStopLoss}, actions(d))

	qty := 3.996
	net := qty * 98.5 * 0.999
	wantLoss := 100*qty - net

	ev := d.Steps[0].Event
	assert.InDelta(t, qty, ev.Size, 1e-9)
	assert.InDelta(t, -1.5, ev.ProfitPercent, 1e-9)
	assert.Equal(t, 0.0, d.State.Holdings)
	assert.Equal(t, 0.0, d.State.BuyPrice)
	assert.Equal(t, 1, d.State.Losses)
	assert.Equal(t, 0, d.State.Wins)
	assert.InDelta(t, wantLoss, d.State.LastRealizedLoss, 1e-9)
	assert.InDelta(t, 600+net, d.State.Bank, 1e-9)
	assert.False(t, d.State.EnteredTier1)
	assert.False(t, d.State.TP1Hit)
}

// TestDecide_Martingale tests that the carried loss is added once to the next entry
func TestDecide_Martingale(t *testing.T) {
	tests := []struct {
		name       string
		martingale bool
		recovery   float64
	}{
		{"enabled", true, 6.387606},
		{"disabled", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Martingale = tt.martingale
			s := NewTieredRSIStrategy(cfg)

			d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
			d = s.Decide(tick(1, 98.5, 35), d.State)
			require.Equal(t, []TradeAction{ActionStopLoss}, actions(d))
			bank := d.State.Bank
			assert.InDelta(t, 6.387606, d.State.LastRealizedLoss, 1e-9)

			d = s.Decide(tick(2, 98.5, 25), d.State)
			require.Equal(t, []TradeAction{ActionBuy1}, actions(d))
			ev := d.Steps[0].Event
			notional := bank*0.4 + tt.recovery
			assert.InDelta(t, tt.recovery, ev.LossRecoveryUsed, 1e-9)
			assert.InDelta(t, bank-notional, d.State.Bank, 1e-9)
			assert.Equal(t, 0.0, d.State.LastRealizedLoss)
		})
	}
}

// TestDecide_BankClamp tests that recovery never pushes the notional past the bank
func TestDecide_BankClamp(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())
	state := NewPortfolioState(100)
	state.LastRealizedLoss = 500

	d := s.Decide(tick(0, 10, 25), state)

	require.Equal(t, []TradeAction{ActionBuy1}, actions(d))
	assert.Equal(t, 0.0, d.State.Bank)
	assert.InDelta(t, 100*0.999/10, d.State.Holdings, 1e-9)
	assert.InDelta(t, 0.1, d.Steps[0].Event.FeePaid, 1e-9)
}

// TestDecide_TP1ThenTP2Win tests both targets firing on the same bar
func TestDecide_TP1ThenTP2Win(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
	d = s.Decide(tick(1, 102, 50), d.State)

	require.Equal(t, []TradeAction{ActionTP1, ActionTP2}, actions(d))
	assert.InDelta(t, 3.996*0.8, d.Steps[0].Event.Size, 1e-9)
	assert.True(t, d.Steps[0].State.TP1Hit)
	assert.InDelta(t, 3.996*0.2, d.Steps[1].Event.Size, 1e-9)
	// Both exits share the profit measured before TP1
	assert.InDelta(t, 2.0, d.Steps[1].Event.ProfitPercent, 1e-9)

	assert.Equal(t, 0.0, d.State.Holdings)
	assert.Equal(t, 1, d.State.Wins)
	assert.Equal(t, 0, d.State.Losses)
	assert.False(t, d.State.TP1Hit)
	assert.InDelta(t, 600+3.996*102*0.999, d.State.Bank, 1e-9)

	last, ok := d.LastEvent()
	require.True(t, ok)
	assert.Equal(t, ActionTP2, last.Action)
}

// TestDecide_TP2LossCarriesLoss tests an RSI-triggered exit below the entry price
func TestDecide_TP2LossCarriesLoss(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
	d = s.Decide(tick(1, 99.5, 60), d.State)

	require.Equal(t, []TradeAction{ActionTP1, ActionTP2}, actions(d))
	remaining := 3.996 * 0.2
	wantLoss := 100*remaining - remaining*99.5*0.999
	assert.Equal(t, 1, d.State.Losses)
	assert.Equal(t, 0, d.State.Wins)
	assert.InDelta(t, wantLoss, d.State.LastRealizedLoss, 1e-9)
}

// TestDecide_TP1Only tests that a partial exit scores nothing and opens a second wave
func TestDecide_TP1Only(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
	d = s.Decide(tick(1, 101.2, 40), d.State)

	require.Equal(t, []TradeAction{ActionTP1}, actions(d))
	assert.True(t, d.State.TP1Hit)
	assert.False(t, d.State.EnteredTier1)
	assert.Equal(t, 0, d.State.ClosedTrades())
	assert.InDelta(t, 3.996*0.2, d.State.Holdings, 1e-9)
	assert.Equal(t, 100.0, d.State.BuyPrice)
}

// TestDecide_StopLossAfterTP2IsNoop tests that an emptied position is not stopped out again
func TestDecide_StopLossAfterTP2IsNoop(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())

	d := s.Decide(tick(0, 100, 25), NewPortfolioState(1000))
	d = s.Decide(tick(1, 97, 70), d.State)

	assert.Equal(t, []TradeAction{ActionTP1, ActionTP2}, actions(d))
	assert.Equal(t, 1, d.State.Losses)
}

// TestDecide_UndefinedRSI tests that warmup bars trade nothing but still track drawdown
func TestDecide_UndefinedRSI(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())
	state := PortfolioState{Bank: 600, Holdings: 4, BuyPrice: 100, EnteredTier1: true, PeakValue: 1000}

	d := s.Decide(Tick{Timestamp: t0, Price: 90}, state)

	assert.False(t, d.Traded())
	assert.Equal(t, 4.0, d.State.Holdings)
	assert.InDelta(t, -4.0, d.State.MaxDrawdown, 1e-9)
}

// TestDecide_DoesNotMutateInput tests value semantics of the state
func TestDecide_DoesNotMutateInput(t *testing.T) {
	s := NewTieredRSIStrategy(testConfig())
	state := NewPortfolioState(1000)

	_ = s.Decide(tick(0, 100, 25), state)

	assert.Equal(t, NewPortfolioState(1000), state)
}

func TestPortfolioState_MarkToMarket(t *testing.T) {
	s := PortfolioState{Bank: 600, Holdings: 4, PeakValue: 1000}

	s.MarkToMarket(100)
	assert.Equal(t, 0.0, s.MaxDrawdown)
	s.MarkToMarket(90)
	assert.InDelta(t, -4.0, s.MaxDrawdown, 1e-9)
	s.MarkToMarket(110)
	assert.Equal(t, 1040.0, s.PeakValue)
	assert.InDelta(t, -4.0, s.MaxDrawdown, 1e-9)
	s.MarkToMarket(104)
	assert.InDelta(t, -4.0, s.MaxDrawdown, 1e-9)
}

func TestTradeAction_Text(t *testing.T) {
	for a := ActionBuy1; a <= ActionStopLoss; a++ {
		text, err := a.MarshalText()
		require.NoError(t, err)

		var back TradeAction
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, a, back)
	}
	_, err := ParseTradeAction("HOLD")
	assert.Error(t, err)

	assert.Equal(t, "Buy", string(ActionBuy2.Side()))
	assert.Equal(t, "Sell", string(ActionTP1.Side()))
	assert.True(t, ActionStopLoss.IsFullExit())
	assert.False(t, ActionTP1.IsFullExit())
}
