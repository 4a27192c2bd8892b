package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// HistorySource downloads candles for a closed time range, oldest first.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error)
}

// Request describes the bars a backtest or sweep runs on.
type Request struct {
	Exchange string
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time

	// DataFile, when set, is the only source consulted.
	DataFile string
}

// Source names where a Load result came from
type Source string

const (
	SourceFile   Source = "file"
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// Result is the output of Loader.Load
type Result struct {
	Candles []types.OHLCV
	Source  Source
	Path    string
}

// Loader resolves a Request against an explicit file, the local data root
// and finally a remote source. Remote downloads are written to the data
// root so the next run reads them from disk.
type Loader struct {
	provider *CachedProvider
	remote   HistorySource
	dataRoot string
}

// NewLoader creates a loader. remote may be nil for offline use.
func NewLoader(dataRoot string, remote HistorySource) *Loader {
	return &Loader{
		provider: NewCachedProvider(NewCSVProvider()),
		remote:   remote,
		dataRoot: dataRoot,
	}
}

// Load returns the candles of req in [Start, End).
func (l *Loader) Load(ctx context.Context, req Request) (*Result, error) {
	if req.DataFile != "" {
		candles, err := l.loadFile(req.DataFile, req)
		if err != nil {
			return nil, err
		}
		return &Result{Candles: candles, Source: SourceFile, Path: req.DataFile}, nil
	}

	if path := FindDataFile(l.dataRoot, req.Exchange, req.Symbol, req.Interval); path != "" {
		candles, err := l.loadFile(path, req)
		if err != nil {
			return nil, err
		}
		if len(candles) > 0 {
			return &Result{Candles: candles, Source: SourceCache, Path: path}, nil
		}
	}

	if l.remote == nil {
		return nil, boterrors.NewDataError("data", "load",
			fmt.Errorf("no data for %s %s under %s and no remote source", req.Symbol, req.Interval, l.dataRoot))
	}

	candles, err := l.remote.FetchHistory(ctx, strings.ToUpper(req.Symbol), req.Interval, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s %s: %w", req.Symbol, req.Interval, err)
	}
	candles = FilterByDateRange(Normalize(candles), req.Start, req.End)
	if len(candles) == 0 {
		return nil, boterrors.NewDataError("data", "load",
			fmt.Errorf("remote returned no candles for %s %s", req.Symbol, req.Interval))
	}

	path := DefaultDataPath(l.dataRoot, req.Exchange, req.Symbol, req.Interval)
	if err := WriteCSVFile(path, candles); err != nil {
		return nil, err
	}
	l.provider.Forget(path)
	return &Result{Candles: candles, Source: SourceRemote, Path: path}, nil
}

func (l *Loader) loadFile(path string, req Request) ([]types.OHLCV, error) {
	candles, err := l.provider.LoadData(path)
	if err != nil {
		return nil, boterrors.NewDataError("data", "load", err).WithContext("file", path)
	}
	return FilterByDateRange(candles, req.Start, req.End), nil
}
