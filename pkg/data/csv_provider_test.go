package data

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

func sampleCandles() []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.OHLCV, 4)
	for i := range out {
		p := 10 + float64(i)*0.25
		out[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * 5 * time.Minute), Open: p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: 100}
	}
	return out
}

// TestCSVProvider_RoundTrip tests that written candles load back unchanged
func TestCSVProvider_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binance", "QNTUSDT", "5m", "candles.csv")
	require.NoError(t, WriteCSVFile(path, sampleCandles()))

	got, err := NewCSVProvider().LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCandles(), got)
	assert.NoError(t, ValidateData(got))
}

// TestCSVProvider_EpochMillis tests timestamps stored as milliseconds
func TestCSVProvider_EpochMillis(t *testing.T) {
	csvText := "timestamp,open,high,low,close,volume\n1704067200000,1,2,0.5,1.5,10\n"

	got, err := NewCSVProvider().Read(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, 1.5, got[0].Close)
}

// TestCSVProvider_Malformed tests that a bad row fails the load with its line
func TestCSVProvider_Malformed(t *testing.T) {
	csvText := "timestamp,open,high,low,close,volume\n2024-01-01 00:00:00,1,2,0.5,1.5,10\n2024-01-01 00:05:00,1,2,0.5,oops,10\n"

	_, err := NewCSVProvider().Read(strings.NewReader(csvText))
	require.Error(t, err)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryData))
	assert.Contains(t, err.Error(), "line 3")

	_, err = NewCSVProvider().Read(strings.NewReader(""))
	assert.Error(t, err)

	_, err = NewCSVProvider().LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleCandles()[:1]))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "timestamp,open,high,low,close,volume", lines[0])
	assert.Equal(t, "2024-03-01 00:00:00,10,11,9,10.5,100", lines[1])
}

func TestFilters(t *testing.T) {
	candles := sampleCandles()

	got := FilterByDateRange(candles, candles[1].Timestamp, candles[3].Timestamp)
	assert.Equal(t, candles[1:3], got)
	assert.Len(t, FilterByDateRange(candles, time.Time{}, time.Time{}), 4)

	shuffled := []types.OHLCV{candles[2], candles[0], candles[1], candles[2], candles[3]}
	shuffled[3].Volume = 999
	assert.Error(t, ValidateTimeSequence(shuffled))

	norm := Normalize(shuffled)
	require.Len(t, norm, 4)
	assert.NoError(t, ValidateTimeSequence(norm))
	assert.Equal(t, 999.0, norm[2].Volume)
}

func TestIntervalMinutes(t *testing.T) {
	tests := map[string]int{"5m": 5, "1h": 60, "4h": 240, "1d": 1440, "1w": 10080, "15": 15}
	for in, want := range tests {
		got, err := IntervalMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "m", "5x", "-5m", "0"} {
		_, err := IntervalMinutes(bad)
		assert.Error(t, err, bad)
	}

	d, err := ParseInterval("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)
}

func TestFindDataFile(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", FindDataFile(root, "binance", "qntusdt", "5m"))

	path := DefaultDataPath(root, "Binance", "qntusdt", "5m")
	assert.Equal(t, filepath.Join(root, "binance", "QNTUSDT", "5m", "candles.csv"), path)
	require.NoError(t, WriteCSVFile(path, sampleCandles()))
	assert.Equal(t, path, FindDataFile(root, "binance", "qntusdt", "5m"))
}
