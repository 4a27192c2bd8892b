package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
)

const (
	tradesSheet     = "Trades"
	summarySheet    = "Summary"
	resultsSheet    = "Results"
	topROISheet     = "Top ROI"
	topWinRateSheet = "Top WinRate"
)

// WriteBacktestXLSX writes a Trades sheet and a Summary sheet
func WriteBacktestXLSX(results *backtest.BacktestResults, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), tradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := writeHeader(fx, tradesSheet, TradeLogHeader, styles); err != nil {
		return err
	}
	for i, e := range results.Trades {
		row := []interface{}{
			e.Timestamp.UTC().Format(timestampLayout), e.Action.String(), e.Price, e.RSI, e.Size,
			e.Bank, e.Holdings, e.BuyPrice, e.ProfitPercent, e.FeePaid, e.LossRecoveryUsed, e.LastRealizedLoss,
		}
		if err := writeRow(fx, tradesSheet, i+2, row); err != nil {
			return err
		}
		style := styles.ExitStyle
		if e.Action.IsEntry() {
			style = styles.EntryStyle
		}
		if err := fx.SetCellStyle(tradesSheet, cell(2, i+2), cell(2, i+2), style); err != nil {
			return err
		}
	}
	if err := fx.SetColWidth(tradesSheet, "A", "L", 16); err != nil {
		return err
	}

	s := results.Summary
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Initial Bank", results.InitialBank},
		{"Final Value", s.FinalValue},
		{"Profit/Loss", s.ProfitLoss},
		{"ROI %", s.ROI * 100},
		{"Win Rate %", s.WinRate * 100},
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Max Drawdown %", s.MaxDrawdown},
		{"Bars", results.Bars},
		{"Trade Events", len(results.Trades)},
	}
	for i, row := range summaryRows {
		if err := writeRow(fx, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "B1", styles.HeaderStyle); err != nil {
		return err
	}
	if err := fx.SetCellStyle(summarySheet, "B2", "B4", styles.CurrencyStyle); err != nil {
		return err
	}
	if err := fx.SetColWidth(summarySheet, "A", "B", 20); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// WriteOptimizationXLSX writes every result plus the two top-N rankings
func WriteOptimizationXLSX(report *backtest.OptimizationReport, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), resultsSheet); err != nil {
		return err
	}
	styles, err := createExcelStyles(fx)
	if err != nil {
		return err
	}

	sheets := []struct {
		name    string
		results []backtest.OptimizationResult
	}{
		{resultsSheet, report.Results},
		{topROISheet, report.TopROI},
		{topWinRateSheet, report.TopWinRate},
	}
	for _, sheet := range sheets {
		if sheet.name != resultsSheet {
			if _, err := fx.NewSheet(sheet.name); err != nil {
				return err
			}
		}
		if err := writeOptimizationSheet(fx, sheet.name, sheet.results, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func writeOptimizationSheet(fx *excelize.File, sheet string, results []backtest.OptimizationResult, styles ExcelStyles) error {
	if err := writeHeader(fx, sheet, OptimizationHeader, styles); err != nil {
		return err
	}
	for i, r := range results {
		c := r.Config
		row := []interface{}{
			c.BuyRSI1, c.BuyRSI2, c.BuyRSI3, c.SLPerc, c.FirstTPPerc, c.SecTPPerc,
			c.RSIPeriods, c.RSIEMA, c.Martingale,
			r.Summary.ROI, r.Summary.WinRate, r.Summary.ProfitLoss, r.Summary.MaxDrawdown,
		}
		if err := writeRow(fx, sheet, i+2, row); err != nil {
			return err
		}
	}
	if len(results) > 0 {
		last := len(results) + 1
		if err := fx.SetCellStyle(sheet, cell(10, 2), cell(13, last), styles.NumberStyle); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "M", 12)
}

func writeHeader(fx *excelize.File, sheet string, header []string, styles ExcelStyles) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := writeRow(fx, sheet, 1, values); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, cell(1, 1), cell(len(header), 1), styles.HeaderStyle); err != nil {
		return err
	}
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(fx *excelize.File, sheet string, row int, values []interface{}) error {
	return fx.SetSheetRow(sheet, cell(1, row), &values)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("invalid cell %d,%d: %v", col, row, err))
	}
	return name
}

// createExcelStyles registers the header, number and action styles
func createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	numFmt := "0.0000"
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{NumFmt: 7})
	if err != nil {
		return styles, err
	}

	styles.EntryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "1B5E20"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E8F5E8"}, Pattern: 1},
	})
	if err != nil {
		return styles, err
	}

	styles.ExitStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "B71C1C"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEBEE"}, Pattern: 1},
	})
	return styles, err
}
