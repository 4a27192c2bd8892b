package types

import "time"

// Bar is the minimal price point the strategy consumes: a candle open time and its close.
type Bar struct {
	Timestamp time.Time
	Close     float64
}

// OHLCV is a full candle as returned by exchanges and CSV files.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Bar drops everything but the close.
func (c OHLCV) Bar() Bar {
	return Bar{Timestamp: c.Timestamp, Close: c.Close}
}

// BarsFromOHLCV converts a candle slice into bars, preserving order.
func BarsFromOHLCV(candles []OHLCV) []Bar {
	bars := make([]Bar, len(candles))
	for i, c := range candles {
		bars[i] = c.Bar()
	}
	return bars
}

// Closes extracts the close prices of a bar slice.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// OrderSide is the exchange-facing direction of a market order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// Order is the acknowledgement of a placed market order.
type Order struct {
	OrderID     string
	ClientID    string
	Symbol      string
	Side        OrderSide
	Quantity    float64
	Price       float64
	Status      string
	CreatedTime time.Time
}
