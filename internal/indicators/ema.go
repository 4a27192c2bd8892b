package indicators

// EMA is an exponential smoother with Wilder's 1/N factor, the one RSI
// averages rely on.
type EMA struct {
	period      int
	alpha       float64
	lastValue   float64
	initialized bool
}

// NewWilderEMA creates an EMA with alpha = 1/period (center of mass period-1).
func NewWilderEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  1.0 / float64(period),
	}
}

// UpdateSingle folds one value into the average. The first value seeds it.
func (e *EMA) UpdateSingle(value float64) float64 {
	if !e.initialized {
		e.lastValue = value
		e.initialized = true
	} else {
		// EMA = (Value * Alpha) + (Previous EMA * (1 - Alpha))
		e.lastValue = (value * e.alpha) + (e.lastValue * (1 - e.alpha))
	}
	return e.lastValue
}

// Alpha returns the smoothing factor.
func (e *EMA) Alpha() float64 {
	return e.alpha
}

// ResetState resets the EMA state for a fresh calculation
func (e *EMA) ResetState() {
	e.lastValue = 0
	e.initialized = false
}
