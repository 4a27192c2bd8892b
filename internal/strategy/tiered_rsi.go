package strategy

// Entry sizing, as fractions of the current bank.
const (
	tier1Fraction          = 0.4
	tier1SecondWave        = 0.25 // tier 1 after TP1 already fired
	tier2Fraction          = 0.5
	tier3Fraction          = 1.0
	firstTakeProfitPortion = 0.8
)

// evaluation is the scratch space of one Decide call.
type evaluation struct {
	tick  Tick
	state PortfolioState

	// Captured once after entries and shared by every exit rule of the bar,
	// so TP2 and stop-loss see the basis from before a same-bar TP1.
	profitPercent float64
	recoveryUsed  float64
}

// rule is one guarded transition. It mutates ev.state only when it fires.
type rule struct {
	name  string
	apply func(cfg Config, ev *evaluation) (TradeEvent, bool)
}

// TieredRSIStrategy buys in up to three tiers as RSI falls, takes 80% off at
// the first target, closes at the second target and stops out below the
// loss threshold. Realized losses can be added to the next entry.
type TieredRSIStrategy struct {
	cfg   Config
	rules []rule
}

// NewTieredRSIStrategy creates the strategy with its fixed rule order.
func NewTieredRSIStrategy(cfg Config) *TieredRSIStrategy {
	return &TieredRSIStrategy{
		cfg: cfg,
		rules: []rule{
			{name: "entry", apply: enterTier},
			{name: "profit", apply: captureProfit},
			{name: "tp1", apply: takeFirstProfit},
			{name: "tp2", apply: takeSecondProfit},
			{name: "stoploss", apply: stopLoss},
		},
	}
}

// GetName returns the name of the strategy
func (s *TieredRSIStrategy) GetName() string {
	return "Tiered RSI"
}

// Config returns the strategy parameters
func (s *TieredRSIStrategy) Config() Config {
	return s.cfg
}

// Decide runs the rules against one bar. An undefined RSI satisfies no rule,
// but drawdown is still tracked.
func (s *TieredRSIStrategy) Decide(tick Tick, state PortfolioState) Decision {
	ev := &evaluation{tick: tick, state: state}
	var steps []Step

	if tick.RSI.Ready {
		for _, r := range s.rules {
			event, fired := r.apply(s.cfg, ev)
			if !fired {
				continue
			}
			steps = append(steps, Step{Event: event, State: ev.state})
		}
	}

	ev.state.MarkToMarket(tick.Price)
	return Decision{State: ev.state, Steps: steps}
}

func (ev *evaluation) event(action TradeAction, size, fee float64) TradeEvent {
	return TradeEvent{
		Timestamp:        ev.tick.Timestamp,
		Action:           action,
		Price:            ev.tick.Price,
		RSI:              ev.tick.RSI.Value,
		Size:             size,
		Bank:             ev.state.Bank,
		Holdings:         ev.state.Holdings,
		BuyPrice:         ev.state.BuyPrice,
		ProfitPercent:    ev.profitPercent,
		FeePaid:          fee,
		LossRecoveryUsed: ev.recoveryUsed,
		LastRealizedLoss: ev.state.LastRealizedLoss,
	}
}

// enterTier fires at most one tier. Entries are allowed when flat or after
// TP1 opened a second wave.
func enterTier(cfg Config, ev *evaluation) (TradeEvent, bool) {
	st := &ev.state
	if st.Holdings != 0 && !st.TP1Hit {
		return TradeEvent{}, false
	}

	recovery := 0.0
	if cfg.Martingale {
		recovery = abs(st.LastRealizedLoss)
	}
	ev.recoveryUsed = recovery

	rsi := ev.tick.RSI.Value
	var (
		action   TradeAction
		fraction float64
		flag     *bool
	)
	switch {
	case rsi < cfg.BuyRSI1 && !st.EnteredTier1:
		action, flag, fraction = ActionBuy1, &st.EnteredTier1, tier1Fraction
		if st.TP1Hit {
			fraction = tier1SecondWave
		}
	case rsi < cfg.BuyRSI2 && !st.EnteredTier2:
		action, flag, fraction = ActionBuy2, &st.EnteredTier2, tier2Fraction
	case rsi < cfg.BuyRSI3 && !st.EnteredTier3:
		action, flag, fraction = ActionBuy3, &st.EnteredTier3, tier3Fraction
	default:
		return TradeEvent{}, false
	}

	notional := st.Bank*fraction + recovery
	if notional > st.Bank {
		notional = st.Bank
	}
	price := ev.tick.Price
	qty := notional * (1 - cfg.FeeRate) / price

	st.Bank -= notional
	st.Holdings += qty
	st.BuyPrice = price
	*flag = true
	st.LastRealizedLoss = 0

	return ev.event(action, qty, notional*cfg.FeeRate), true
}

// captureProfit never fires; it fixes the profit basis for the exit rules.
func captureProfit(_ Config, ev *evaluation) (TradeEvent, bool) {
	st := ev.state
	if st.Holdings > 0 && st.BuyPrice > 0 {
		ev.profitPercent = (ev.tick.Price - st.BuyPrice) / st.BuyPrice * 100
	}
	return TradeEvent{}, false
}

// sell credits the bank with qty at the tick price net of fee.
func (ev *evaluation) sell(cfg Config, qty float64) (net, fee float64) {
	gross := qty * ev.tick.Price
	fee = gross * cfg.FeeRate
	net = gross - fee
	ev.state.Holdings -= qty
	ev.state.Bank += net
	return net, fee
}

func takeFirstProfit(cfg Config, ev *evaluation) (TradeEvent, bool) {
	st := &ev.state
	if st.Holdings <= 0 {
		return TradeEvent{}, false
	}
	if ev.profitPercent < cfg.FirstTPPerc && !(ev.tick.RSI.Value > cfg.RSIValue1) {
		return TradeEvent{}, false
	}

	qty := st.Holdings * firstTakeProfitPortion
	_, fee := ev.sell(cfg, qty)
	st.TP1Hit = true
	st.clearCycle()
	return ev.event(ActionTP1, qty, fee), true
}

func takeSecondProfit(cfg Config, ev *evaluation) (TradeEvent, bool) {
	st := &ev.state
	if st.Holdings <= 0 {
		return TradeEvent{}, false
	}
	if ev.profitPercent < cfg.SecTPPerc && !(ev.tick.RSI.Value > cfg.RSIValue2) {
		return TradeEvent{}, false
	}

	basis := st.BuyPrice
	qty := st.Holdings
	net, fee := ev.sell(cfg, qty)
	st.closePosition()
	if ev.profitPercent > 0 {
		st.Wins++
		st.LastRealizedLoss = 0
	} else {
		st.Losses++
		st.LastRealizedLoss = realizedLoss(basis, qty, net)
	}
	return ev.event(ActionTP2, qty, fee), true
}

// stopLoss is a no-op once the position is already closed, including by a
// TP2 earlier in the same bar.
func stopLoss(cfg Config, ev *evaluation) (TradeEvent, bool) {
	st := &ev.state
	if st.Holdings <= 0 || ev.profitPercent > cfg.SLPerc {
		return TradeEvent{}, false
	}

	basis := st.BuyPrice
	qty := st.Holdings
	net, fee := ev.sell(cfg, qty)
	st.closePosition()
	st.Losses++
	st.LastRealizedLoss = realizedLoss(basis, qty, net)
	return ev.event(ActionStopLoss, qty, fee), true
}

func realizedLoss(basis, qty, net float64) float64 {
	loss := basis*qty - net
	if loss < 0 {
		return 0
	}
	return loss
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
