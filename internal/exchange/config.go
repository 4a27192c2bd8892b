package exchange

import (
	"fmt"
	"strings"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

const (
	NameBinance = "binance"
	NameBybit   = "bybit"
	NamePaper   = "paper"
)

// ExchangeConfig selects the market data source and the order venue.
type ExchangeConfig struct {
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	QtyPrecision int32        `json:"qty_precision"`
	Bybit        *BybitConfig `json:"bybit,omitempty"`
}

// BybitConfig holds Bybit credentials and environment flags
type BybitConfig struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Testnet   bool   `json:"testnet"`
	Demo      bool   `json:"demo"` // Demo trading (paper account on Bybit)
}

// SupportedExchanges returns the names accepted by ExchangeConfig.Name
func SupportedExchanges() []string {
	return []string{NameBinance, NameBybit}
}

// Validate checks the config for order placement. Market data alone needs no credentials.
func (c ExchangeConfig) Validate(trading bool) error {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	switch name {
	case NameBinance, NameBybit:
	case "":
		return boterrors.NewConfigurationError("exchange", "validate", "exchange name is required")
	default:
		return boterrors.NewConfigurationError("exchange", "validate",
			fmt.Sprintf("exchange %q is not supported, use one of %v", c.Name, SupportedExchanges()))
	}

	if c.QtyPrecision < 0 {
		return boterrors.NewConfigurationError("exchange", "validate", "qty_precision must not be negative")
	}

	if !trading {
		return nil
	}
	if name != NameBybit {
		return boterrors.NewConfigurationError("exchange", "validate",
			fmt.Sprintf("live orders are only supported on %s", NameBybit))
	}
	if c.Bybit == nil || c.Bybit.APIKey == "" || c.Bybit.APISecret == "" {
		return boterrors.NewCredentialsError("exchange", "validate", "bybit api key and secret are required")
	}
	return nil
}
