package reporting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

const timestampLayout = "2006-01-02 15:04:05"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func tradeRow(e strategy.TradeEvent) []string {
	return []string{
		e.Timestamp.UTC().Format(timestampLayout),
		e.Action.String(),
		formatFloat(e.Price),
		formatFloat(e.RSI),
		formatFloat(e.Size),
		formatFloat(e.Bank),
		formatFloat(e.Holdings),
		formatFloat(e.BuyPrice),
		formatFloat(e.ProfitPercent),
		formatFloat(e.FeePaid),
		formatFloat(e.LossRecoveryUsed),
		formatFloat(e.LastRealizedLoss),
	}
}

// WriteTrades writes the header and one row per trade event
func WriteTrades(w io.Writer, trades []strategy.TradeEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TradeLogHeader); err != nil {
		return err
	}
	for _, e := range trades {
		if err := cw.Write(tradeRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesCSV writes the trade log to path. A .xlsx path gets a
// single-sheet workbook instead.
func WriteTradesCSV(trades []strategy.TradeEvent, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteBacktestXLSX(&backtest.BacktestResults{Trades: trades}, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTrades(f, trades)
}

// TradeLogWriter appends trade rows to a CSV that survives restarts. The
// header is written only when the file is new or empty.
type TradeLogWriter struct {
	mu   sync.Mutex
	file *os.File
	csv  *csv.Writer
}

// OpenTradeLog opens path in append mode
func OpenTradeLog(path string) (*TradeLogWriter, error) {
	if err := EnsureDirectoryExists(path); err != nil {
		return nil, err
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	w := &TradeLogWriter{file: f, csv: csv.NewWriter(f)}
	if needHeader {
		if err := w.write(TradeLogHeader); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Append writes and flushes one trade event
func (w *TradeLogWriter) Append(e strategy.TradeEvent) error {
	return w.write(tradeRow(e))
}

func (w *TradeLogWriter) write(row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close closes the underlying file
func (w *TradeLogWriter) Close() error {
	return w.file.Close()
}

func optimizationRow(r backtest.OptimizationResult) []string {
	c := r.Config
	return []string{
		formatFloat(c.BuyRSI1),
		formatFloat(c.BuyRSI2),
		formatFloat(c.BuyRSI3),
		formatFloat(c.SLPerc),
		formatFloat(c.FirstTPPerc),
		formatFloat(c.SecTPPerc),
		strconv.Itoa(c.RSIPeriods),
		strconv.FormatBool(c.RSIEMA),
		strconv.FormatBool(c.Martingale),
		formatFloat(r.Summary.ROI),
		formatFloat(r.Summary.WinRate),
		formatFloat(r.Summary.ProfitLoss),
		formatFloat(r.Summary.MaxDrawdown),
	}
}

// WriteOptimization writes one row per evaluated combination
func WriteOptimization(w io.Writer, results []backtest.OptimizationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OptimizationHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(optimizationRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOptimizationCSV writes the sweep results to path
func WriteOptimizationCSV(results []backtest.OptimizationResult, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteOptimization(f, results)
}
