package config

// Package config loads the strategy and run settings shared by the CLIs.

import (
	"fmt"
	"strings"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// AppConfig is the full contents of a config file. Strategy parameters sit
// at the top level next to the run settings.
type AppConfig struct {
	Pair         string  `json:"pair" yaml:"pair" validate:"required"`
	Timeframe    string  `json:"timeframe" yaml:"timeframe" validate:"required"`
	StartingDate string  `json:"starting_date" yaml:"starting_date"`
	EndingDate   string  `json:"ending_date" yaml:"ending_date"`
	InitialBank  float64 `json:"initial_bank" yaml:"initial_bank" validate:"gt=0"`

	Exchange     string `json:"exchange" yaml:"exchange" validate:"oneof=binance bybit"`
	Category     string `json:"category" yaml:"category" validate:"oneof=spot linear"`
	QtyPrecision int    `json:"qty_precision" yaml:"qty_precision" validate:"gte=0,lte=12"`
	DataFile     string `json:"data_file,omitempty" yaml:"data_file,omitempty"`
	TradeLog     string `json:"trade_log,omitempty" yaml:"trade_log,omitempty"`

	strategy.Config `yaml:",inline"`
}

// DefaultAppConfig returns the settings used when no config file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Pair:         "QNTUSDT",
		Timeframe:    "5m",
		StartingDate: "1 January 2024",
		EndingDate:   "30 December 2024",
		InitialBank:  1000,
		Exchange:     "binance",
		Category:     "spot",
		QtyPrecision: 4,
		Config:       strategy.DefaultConfig(),
	}
}

// Strategy returns the strategy parameters.
func (c *AppConfig) Strategy() strategy.Config {
	return c.Config
}

var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate accepts the human date style of the default config as well as
// ISO dates. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Period parses the configured date range.
func (c *AppConfig) Period() (time.Time, time.Time, error) {
	start, err := ParseDate(c.StartingDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("starting_date: %w", err)
	}
	end, err := ParseDate(c.EndingDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("ending_date: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("ending_date %s is not after starting_date %s", c.EndingDate, c.StartingDate)
	}
	return start, end, nil
}
