package validation

import (
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// Minimum fold sizes in bars
const (
	MinTrainBars = 50
	MinTestBars  = 10
)

// Fold is one train/test window pair
type Fold struct {
	Train      []types.Bar
	Test       []types.Bar
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// SplitByRatio puts the first ratio of bars in train and the rest in test.
// Out of range ratios return everything as train.
func SplitByRatio(bars []types.Bar, ratio float64) ([]types.Bar, []types.Bar) {
	if ratio <= 0 || ratio >= 1 {
		return bars, nil
	}
	n := int(float64(len(bars)) * ratio)
	if n < 1 || n >= len(bars) {
		return bars, nil
	}
	return bars[:n], bars[n:]
}

// CreateRollingFolds slides a train window followed by a test window over
// bars, advancing the start by roll each time. Folds smaller than
// MinTrainBars/MinTestBars end the walk.
func CreateRollingFolds(bars []types.Bar, train, test, roll time.Duration) []Fold {
	var folds []Fold
	if len(bars) < MinTrainBars+MinTestBars || train <= 0 || test <= 0 {
		return folds
	}

	start := 0
	for {
		trainEndTs := bars[start].Timestamp.Add(train)
		trainEnd := firstAtOrAfter(bars, start, trainEndTs)
		testEnd := firstAtOrAfter(bars, trainEnd, trainEndTs.Add(test))

		if trainEnd-start < MinTrainBars || testEnd-trainEnd < MinTestBars {
			break
		}

		folds = append(folds, Fold{
			Train:      bars[start:trainEnd],
			Test:       bars[trainEnd:testEnd],
			TrainStart: bars[start].Timestamp,
			TrainEnd:   bars[trainEnd-1].Timestamp,
			TestStart:  bars[trainEnd].Timestamp,
			TestEnd:    bars[testEnd-1].Timestamp,
		})

		next := firstAtOrAfter(bars, start, bars[start].Timestamp.Add(roll))
		if next <= start {
			next = start + 1
		}
		if next >= len(bars) {
			break
		}
		start = next
	}
	return folds
}

func firstAtOrAfter(bars []types.Bar, from int, ts time.Time) int {
	i := from
	for i < len(bars) && bars[i].Timestamp.Before(ts) {
		i++
	}
	return i
}
