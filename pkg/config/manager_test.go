package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

const fullJSON = `{
  "pair": "BTCUSDT",
  "timeframe": "15m",
  "initial_bank": 500,
  "rsi_periods": 12,
  "rsi_ema": false,
  "buy_rsi_1": 30,
  "buy_rsi_2": 28,
  "buy_rsi_3": 26,
  "first_tp_perc": 0.8,
  "sec_tp_perc": 2,
  "sl_perc": -2.5,
  "rsi_value_1": 45,
  "rsi_value_2": 60
}`

const fullYAML = `
pair: ETHUSDT
initial_bank: 2000
rsi_periods: 16
rsi_ema: true
buy_rsi_1: 29
buy_rsi_2: 27.5
buy_rsi_3: 26.5
first_tp_perc: 1
sec_tp_perc: 1.5
sl_perc: -1.5
rsi_value_1: 42.5
rsi_value_2: 55
martingale: false
fee_rate: 0.002
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadConfig_JSON tests a complete JSON file with defaults for optional keys
func TestLoadConfig_JSON(t *testing.T) {
	cfg, err := NewManager().LoadConfig(writeFile(t, "config.json", fullJSON))
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Pair)
	assert.Equal(t, "15m", cfg.Timeframe)
	assert.Equal(t, 500.0, cfg.InitialBank)
	assert.Equal(t, 12, cfg.RSIPeriods)
	assert.False(t, cfg.RSIEMA)
	assert.Equal(t, -2.5, cfg.SLPerc)
	assert.Equal(t, 60.0, cfg.Strategy().RSIValue2)
	// Optional keys fall back to the defaults
	assert.Equal(t, 0.0001, cfg.FeeRate)
	assert.True(t, cfg.Martingale)
	assert.Equal(t, "binance", cfg.Exchange)
}

// TestLoadConfig_YAML tests YAML decoding with integer and float numbers
func TestLoadConfig_YAML(t *testing.T) {
	cfg, err := NewManager().LoadConfig(writeFile(t, "config.yaml", fullYAML))
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Pair)
	assert.Equal(t, "5m", cfg.Timeframe)
	assert.Equal(t, 2000.0, cfg.InitialBank)
	assert.Equal(t, 16, cfg.RSIPeriods)
	assert.Equal(t, 27.5, cfg.BuyRSI2)
	assert.False(t, cfg.Martingale)
	assert.Equal(t, 0.002, cfg.FeeRate)
}

// TestLoadConfig_Errors tests that bad documents fail with the offending key
func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"missing key", `{"initial_bank": 1000}`, "rsi_periods"},
		{"string threshold", strings.Replace(fullJSON, `"buy_rsi_1": 30`, `"buy_rsi_1": "30"`, 1), "buy_rsi_1"},
		{"fractional period", strings.Replace(fullJSON, `"rsi_periods": 12`, `"rsi_periods": 12.5`, 1), "rsi_periods"},
		{"numeric bool", strings.Replace(fullJSON, `"rsi_ema": false`, `"rsi_ema": 1`, 1), "rsi_ema"},
		{"zero period", strings.Replace(fullJSON, `"rsi_periods": 12`, `"rsi_periods": 0`, 1), "rsi_periods"},
		{"negative bank", strings.Replace(fullJSON, `"initial_bank": 500`, `"initial_bank": -5`, 1), "initial_bank"},
		{"bad exchange", strings.Replace(fullJSON, `"pair": "BTCUSDT"`, `"pair": "BTCUSDT", "exchange": "kraken"`, 1), "exchange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager().LoadConfig(writeFile(t, "config.json", tt.content))
			require.Error(t, err)

			botErr, ok := boterrors.As(err)
			require.True(t, ok, "expected a BotError, got %v", err)
			assert.Equal(t, boterrors.ErrorCategoryConfiguration, botErr.Category)
			assert.Equal(t, tt.key, botErr.Context["key"])
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

// TestLoadOrDefault_MissingFile tests the fallback to defaults
func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, usedDefaults, err := NewManager().LoadOrDefault(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.True(t, usedDefaults)
	assert.Equal(t, DefaultAppConfig(), cfg)
	assert.Equal(t, 29.5, cfg.BuyRSI1)
	assert.Equal(t, -1.0, cfg.SLPerc)
}

// TestSaveConfig_RoundTrip tests that a saved config loads back unchanged
func TestSaveConfig_RoundTrip(t *testing.T) {
	m := NewManager()
	cfg := DefaultAppConfig()
	cfg.Pair = "SOLUSDT"
	cfg.Martingale = false

	for _, name := range []string{"out/best.json", "out/best.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, m.SaveConfig(cfg, path))

		loaded, err := m.LoadConfig(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

func TestLoadGrid(t *testing.T) {
	grid, err := LoadGrid("")
	require.NoError(t, err)
	assert.Equal(t, 7776, grid.Size())

	grid, err = LoadGrid(writeFile(t, "grid.yaml", "rsi_periods: [14]\nmartingale: [true]\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{14}, grid.RSIPeriods)
	assert.Equal(t, 7776/6, grid.Size())

	_, err = LoadGrid(writeFile(t, "grid.json", `{"sl_perc": []}`))
	require.Error(t, err)
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))
}

func TestPeriod(t *testing.T) {
	cfg := DefaultAppConfig()
	start, end, err := cfg.Period()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), end)

	cfg.EndingDate = "2023-06-01"
	_, _, err = cfg.Period()
	assert.Error(t, err)
}
