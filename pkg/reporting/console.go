package reporting

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/validation"
)

// DefaultConsoleReporter renders go-pretty tables
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// PrintSummary prints the aggregate of one simulation
func (r *DefaultConsoleReporter) PrintSummary(w io.Writer, results *backtest.BacktestResults, symbol, interval string) {
	s := results.Summary

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("BACKTEST RESULTS %s %s", symbol, interval))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"💰 Initial Bank", fmt.Sprintf("$%.2f", results.InitialBank)},
		{"💰 Final Value", fmt.Sprintf("$%.2f", s.FinalValue)},
		{"📈 Profit/Loss", fmt.Sprintf("$%.2f", s.ProfitLoss)},
		{"📈 ROI", fmt.Sprintf("%.2f%%", s.ROI*100)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"✅ Wins", s.Wins},
		{"❌ Losses", s.Losses},
		{"🎯 Win Rate", fmt.Sprintf("%.2f%%", s.WinRate*100)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📊 Bars", results.Bars},
		{"🔄 Trade Events", len(results.Trades)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 14, Align: text.AlignRight},
	})
	t.Render()
}

// PrintTopResults prints a ranked table of optimizer results
func (r *DefaultConsoleReporter) PrintTopResults(w io.Writer, title string, results []backtest.OptimizationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"#"}
	for _, h := range OptimizationHeader {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for i, res := range results {
		c := res.Config
		t.AppendRow(table.Row{
			i + 1,
			c.BuyRSI1, c.BuyRSI2, c.BuyRSI3, c.SLPerc, c.FirstTPPerc, c.SecTPPerc,
			c.RSIPeriods, strconv.FormatBool(c.RSIEMA), strconv.FormatBool(c.Martingale),
			fmt.Sprintf("%.4f", res.Summary.ROI),
			fmt.Sprintf("%.4f", res.Summary.WinRate),
			fmt.Sprintf("%.2f", res.Summary.ProfitLoss),
			fmt.Sprintf("%.2f", res.Summary.MaxDrawdown),
		})
	}
	t.Render()
}

// PrintWalkForward prints the per-fold train/test comparison and the verdict
func (r *DefaultConsoleReporter) PrintWalkForward(w io.Writer, summary *validation.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("WALK-FORWARD VALIDATION")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Fold", "Train", "Test", "RSI1/2/3", "Train ROI %", "Test ROI %", "Test DD %"})

	for _, res := range summary.Results {
		win := res.Window
		c := res.Config
		t.AppendRow(table.Row{
			res.Fold,
			fmt.Sprintf("%s → %s", win.TrainStart.Format("2006-01-02"), win.TrainEnd.Format("2006-01-02")),
			fmt.Sprintf("%s → %s", win.TestStart.Format("2006-01-02"), win.TestEnd.Format("2006-01-02")),
			fmt.Sprintf("%g/%g/%g", c.BuyRSI1, c.BuyRSI2, c.BuyRSI3),
			fmt.Sprintf("%.2f", res.Train.ROI*100),
			fmt.Sprintf("%.2f", res.Test.ROI*100),
			fmt.Sprintf("%.2f", res.Test.MaxDrawdown),
		})
	}

	t.AppendFooter(table.Row{"AVG", "", "", "",
		fmt.Sprintf("%.2f", summary.AverageTrainReturn),
		fmt.Sprintf("%.2f ± %.2f", summary.AverageTestReturn, summary.TestReturnStdDev),
		fmt.Sprintf("%.2f", summary.AverageTestDrawdown),
	})
	t.Render()

	verdict := "✅ ROBUST"
	if !summary.IsRobust {
		verdict = "⚠️  NOT ROBUST"
	}
	fmt.Fprintf(w, "Return degradation %.1f%%, overfitting risk %s: %s\n",
		summary.ReturnDegradation, summary.OverfittingRisk, verdict)
}

// PrintSummary is a convenience wrapper around the default reporter
func PrintSummary(w io.Writer, results *backtest.BacktestResults, symbol, interval string) {
	NewDefaultConsoleReporter().PrintSummary(w, results, symbol, interval)
}

// PrintTopResults is a convenience wrapper around the default reporter
func PrintTopResults(w io.Writer, title string, results []backtest.OptimizationResult) {
	NewDefaultConsoleReporter().PrintTopResults(w, title, results)
}

// PrintWalkForward is a convenience wrapper around the default reporter
func PrintWalkForward(w io.Writer, summary *validation.Summary) {
	NewDefaultConsoleReporter().PrintWalkForward(w, summary)
}
