package strategy

// Config holds the tiered RSI strategy parameters. The buy thresholds are
// expected to descend (tier 1 highest) and SLPerc to be negative, but only
// the field ranges below are enforced.
type Config struct {
	FeeRate    float64 `json:"fee_rate" yaml:"fee_rate" validate:"gte=0,lt=1"`
	RSIPeriods int     `json:"rsi_periods" yaml:"rsi_periods" validate:"gte=1"`
	RSIEMA     bool    `json:"rsi_ema" yaml:"rsi_ema"`

	BuyRSI1 float64 `json:"buy_rsi_1" yaml:"buy_rsi_1" validate:"gte=0,lte=100"`
	BuyRSI2 float64 `json:"buy_rsi_2" yaml:"buy_rsi_2" validate:"gte=0,lte=100"`
	BuyRSI3 float64 `json:"buy_rsi_3" yaml:"buy_rsi_3" validate:"gte=0,lte=100"`

	FirstTPPerc float64 `json:"first_tp_perc" yaml:"first_tp_perc"`
	SecTPPerc   float64 `json:"sec_tp_perc" yaml:"sec_tp_perc"`
	SLPerc      float64 `json:"sl_perc" yaml:"sl_perc"`
	RSIValue1   float64 `json:"rsi_value_1" yaml:"rsi_value_1"`
	RSIValue2   float64 `json:"rsi_value_2" yaml:"rsi_value_2"`

	Martingale bool `json:"martingale" yaml:"martingale"`

	// LogEveryStep keeps every fill of a bar in the trade log instead of
	// only the last one.
	LogEveryStep bool `json:"log_every_step" yaml:"log_every_step"`
}

// DefaultConfig returns the stock parameters.
func DefaultConfig() Config {
	return Config{
		FeeRate:     0.0001,
		RSIPeriods:  14,
		RSIEMA:      true,
		BuyRSI1:     29.5,
		BuyRSI2:     28.5,
		BuyRSI3:     27,
		FirstTPPerc: 1,
		SecTPPerc:   1.5,
		SLPerc:      -1,
		RSIValue1:   42.5,
		RSIValue2:   55,
		Martingale:  true,
	}
}
