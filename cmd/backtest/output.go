package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/rsi-tier-bot/cmd/common"
	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/orchestrator"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/reporting"
)

type outputPaths struct {
	trades string
	xlsx   string
}

// outputResults prints the summary table and writes the trade log and the
// optional workbook.
func outputResults(results *backtest.BacktestResults, symbol, interval string, paths outputPaths) error {
	if !common.DefaultLogger.SilentMode {
		reporting.PrintSummary(os.Stdout, results, symbol, interval)
	}

	if err := reporting.WriteTradesCSV(results.Trades, paths.trades); err != nil {
		return err
	}
	common.Success("Trade log written to %s (%d rows)", paths.trades, len(results.Trades))

	if paths.xlsx != "" {
		xlsx := common.ResolvePath(paths.xlsx, reporting.DefaultOutputDir(symbol, interval), ".xlsx")
		if err := reporting.WriteBacktestXLSX(results, xlsx); err != nil {
			return err
		}
		common.Success("Workbook written to %s", xlsx)
	}
	return nil
}

// printIntervalComparison renders one row per timeframe, best marked
func printIntervalComparison(w io.Writer, analysis *orchestrator.IntervalAnalysisResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("INTERVAL COMPARISON %s (%s)", analysis.Symbol, analysis.Exchange))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Interval", "Bars", "ROI %", "Win Rate %", "Profit", "Max DD %", "Trades", ""})

	for i := range analysis.Results {
		res := &analysis.Results[i]
		if res.Err != nil {
			t.AppendRow(table.Row{res.Interval, "-", "-", "-", "-", "-", "-", "❌ " + res.Err.Error()})
			continue
		}
		s := res.Results.Summary
		mark := ""
		if res == analysis.BestResult {
			mark = "🏆"
		}
		t.AppendRow(table.Row{
			res.Interval,
			res.Bars,
			fmt.Sprintf("%.2f", s.ROI*100),
			fmt.Sprintf("%.2f", s.WinRate*100),
			fmt.Sprintf("%.2f", s.ProfitLoss),
			fmt.Sprintf("%.2f", s.MaxDrawdown),
			len(res.Results.Trades),
			mark,
		})
	}
	t.Render()
}
