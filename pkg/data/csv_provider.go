package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// CSVProvider implements DataProvider for CSV files
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads candles from a CSV file with a header row. Any malformed
// row fails the whole load with its line number.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("could not open data file: %w", err)
	}
	defer file.Close()

	return p.Read(file)
}

// Read parses CSV content from r.
func (p *CSVProvider) Read(r io.Reader) ([]types.OHLCV, error) {
	format := p.format
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, boterrors.NewDataError("csv", "read", fmt.Errorf("empty file"))
		}
		return nil, boterrors.NewDataError("csv", "read", err)
	}

	var out []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, lineError(lineNum, err)
		}
		if len(record) < format.MinColumns {
			return nil, lineError(lineNum, fmt.Errorf("expected %d columns, got %d", format.MinColumns, len(record)))
		}

		ts, err := parseTimestamp(record[format.TimestampCol], format.DateFormat)
		if err != nil {
			return nil, lineError(lineNum, err)
		}

		var vals [5]float64
		cols := [5]int{format.OpenCol, format.HighCol, format.LowCol, format.CloseCol, format.VolumeCol}
		for i, col := range cols {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, lineError(lineNum, fmt.Errorf("column %d: %w", col, err))
			}
		}

		out = append(out, types.OHLCV{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}

	return out, nil
}

// parseTimestamp accepts the configured layout or epoch milliseconds.
func parseTimestamp(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return ts, nil
}

func lineError(line int, err error) error {
	return boterrors.NewDataError("csv", "read", fmt.Errorf("line %d: %w", line, err)).WithContext("line", line)
}

// ValidateData validates the integrity of loaded data
func ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, candle := range data {
		if candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: close must be positive", i)
		}
		if candle.High < candle.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, candle.High, candle.Low)
		}
	}

	return ValidateTimeSequence(data)
}

// WriteCSV writes candles in DefaultCSVFormat.
func WriteCSV(w io.Writer, candles []types.OHLCV) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range candles {
		row := []string{
			c.Timestamp.UTC().Format(DefaultCSVFormat.DateFormat),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes candles to path, creating parent directories.
func WriteCSVFile(path string, candles []types.OHLCV) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create data file: %w", err)
	}
	defer file.Close()
	return WriteCSV(file, candles)
}
