package backtest

import (
	"fmt"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// ValidateBars rejects sequences the engine cannot fold: empty input,
// non-positive closes and timestamps that do not strictly increase.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return boterrors.NewValidationError("backtest", "validate", "no bars provided")
	}

	for i, bar := range bars {
		if !(bar.Close > 0) {
			return boterrors.NewValidationError("backtest", "validate",
				fmt.Sprintf("bar %d has non-positive close %v", i, bar.Close)).
				WithContext("index", i)
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return boterrors.NewValidationError("backtest", "validate",
				fmt.Sprintf("bar %d at %s is not after %s", i, bar.Timestamp, bars[i-1].Timestamp)).
				WithContext("index", i)
		}
	}
	return nil
}
