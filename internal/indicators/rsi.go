package indicators

import (
	"errors"
	"fmt"
)

// RSI calculates the Relative Strength Index one price at a time.
//
// The first price contributes a zero gain and a zero loss, which seeds the
// EMA averages. A reading becomes available once period real price changes
// have been seen, so the first period outputs are always undefined. In EMA
// mode gains and losses are smoothed with alpha = 1/period; in SMA mode they
// are averaged over the trailing period changes.
type RSI struct {
	period int
	useEMA bool

	prevPrice float64
	seen      int // prices consumed so far

	gainEMA, lossEMA *EMA
	gainSMA, lossSMA *SMA

	last Value
}

// NewRSI creates a new RSI instance. Periods below 1 are treated as 1.
func NewRSI(period int, useEMA bool) *RSI {
	if period < 1 {
		period = 1
	}
	r := &RSI{period: period, useEMA: useEMA}
	if useEMA {
		r.gainEMA = NewWilderEMA(period)
		r.lossEMA = NewWilderEMA(period)
	} else {
		r.gainSMA = NewSMA(period)
		r.lossSMA = NewSMA(period)
	}
	return r
}

// Update consumes the next price and returns the reading for it.
func (r *RSI) Update(price float64) Value {
	var gain, loss float64
	if r.seen > 0 {
		delta := price - r.prevPrice
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
	}
	r.prevPrice = price
	r.seen++

	var avgGain, avgLoss float64
	if r.useEMA {
		avgGain = r.gainEMA.UpdateSingle(gain)
		avgLoss = r.lossEMA.UpdateSingle(loss)
	} else if r.seen > 1 {
		avgGain = r.gainSMA.UpdateSingle(gain)
		avgLoss = r.lossSMA.UpdateSingle(loss)
	}

	if r.seen <= r.period {
		r.last = Undefined
		return r.last
	}
	r.last = FromAverages(avgGain, avgLoss)
	return r.last
}

// FromAverages turns smoothed gain and loss into a reading. A zero loss with
// a positive gain saturates at 100; a window with no movement at all is
// undefined.
func FromAverages(avgGain, avgLoss float64) Value {
	if avgLoss == 0 {
		if avgGain > 0 {
			return Defined(100)
		}
		return Undefined
	}
	rs := avgGain / avgLoss
	return Defined(100 - (100 / (1 + rs)))
}

// Last returns the most recent reading.
func (r *RSI) Last() Value {
	return r.last
}

// ResetState clears all history.
func (r *RSI) ResetState() {
	r.prevPrice = 0
	r.seen = 0
	r.last = Undefined
	if r.useEMA {
		r.gainEMA.ResetState()
		r.lossEMA.ResetState()
	} else {
		r.gainSMA.ResetState()
		r.lossSMA.ResetState()
	}
}

// GetName returns the indicator name
func (r *RSI) GetName() string {
	mode := "SMA"
	if r.useEMA {
		mode = "EMA"
	}
	return fmt.Sprintf("RSI(%d,%s)", r.period, mode)
}

// GetRequiredPeriods returns the number of prices needed for the first reading.
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1
}

// Series computes the RSI for every position of prices.
func Series(prices []float64, period int, useEMA bool) []Value {
	r := NewRSI(period, useEMA)
	out := make([]Value, len(prices))
	for i, p := range prices {
		out[i] = r.Update(p)
	}
	return out
}

// ErrInsufficientData is returned by Latest when no reading is available.
var ErrInsufficientData = errors.New("insufficient data for RSI calculation")

// Latest returns the RSI of the last price in the window.
func Latest(prices []float64, period int, useEMA bool) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrInsufficientData
	}
	v := Series(prices, period, useEMA)[len(prices)-1]
	if !v.Ready {
		return 0, ErrInsufficientData
	}
	return v.Value, nil
}
