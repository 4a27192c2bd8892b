package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarsFromOHLCV(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []OHLCV{
		{Open: 1, High: 2, Low: 0.5, Close: 1.5, Timestamp: start},
		{Open: 1.5, High: 3, Low: 1, Close: 2.5, Timestamp: start.Add(5 * time.Minute)},
	}

	bars := BarsFromOHLCV(candles)

	assert.Len(t, bars, 2)
	assert.Equal(t, Bar{Timestamp: start, Close: 1.5}, bars[0])
	assert.Equal(t, []float64{1.5, 2.5}, Closes(bars))
}
