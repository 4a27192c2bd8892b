// Package reporting renders simulation and optimization results as CSV,
// Excel workbooks, console tables and JSON.
package reporting

import (
	"io"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// TradeLogHeader is the column order of every trade log CSV
var TradeLogHeader = []string{
	"timestamp", "action", "price", "RSI", "size", "bank", "holdings",
	"buy_price", "profit_percent", "fee_paid", "used_loss", "last_realized_loss",
}

// OptimizationHeader is the column order of the optimization results CSV
var OptimizationHeader = []string{
	"RSI1", "RSI2", "RSI3", "SL", "TP1", "TP2", "rsi_periods", "rsi_ema",
	"martingale", "ROI", "WinRate", "Profit", "Drawdown",
}

// ConsoleReporter prints results for humans
type ConsoleReporter interface {
	PrintSummary(w io.Writer, results *backtest.BacktestResults, symbol, interval string)
	PrintTopResults(w io.Writer, title string, results []backtest.OptimizationResult)
}

// FileReporter persists results
type FileReporter interface {
	WriteTradesCSV(trades []strategy.TradeEvent, path string) error
	WriteOptimizationCSV(results []backtest.OptimizationResult, path string) error
	WriteBacktestXLSX(results *backtest.BacktestResults, path string) error
	WriteOptimizationXLSX(report *backtest.OptimizationReport, path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle   int
	NumberStyle   int
	CurrencyStyle int
	EntryStyle    int
	ExitStyle     int
}
