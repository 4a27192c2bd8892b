package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ParseInterval converts "5m", "1h", "1d", "1w" (or bare minutes) to a duration.
func ParseInterval(interval string) (time.Duration, error) {
	minutes, err := IntervalMinutes(interval)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// IntervalMinutes converts interval strings like "5m", "1h", "4h" to minutes
func IntervalMinutes(interval string) (int, error) {
	interval = strings.ToLower(strings.TrimSpace(interval))
	if n, err := strconv.Atoi(interval); err == nil && n > 0 {
		return n, nil
	}
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || num <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}

	switch interval[len(interval)-1:] {
	case "m":
		return num, nil
	case "h":
		return num * 60, nil
	case "d":
		return num * 24 * 60, nil
	case "w":
		return num * 7 * 24 * 60, nil
	default:
		return 0, fmt.Errorf("invalid interval unit in %q", interval)
	}
}

// DefaultDataPath is where the downloader stores candles:
// {dataRoot}/{exchange}/{symbol}/{interval}/candles.csv
func DefaultDataPath(dataRoot, exchange, symbol, interval string) string {
	return filepath.Join(dataRoot, strings.ToLower(exchange), strings.ToUpper(symbol), interval, "candles.csv")
}

// FindDataFile returns DefaultDataPath if the file exists, else "".
func FindDataFile(dataRoot, exchange, symbol, interval string) string {
	path := DefaultDataPath(dataRoot, exchange, symbol, interval)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}
	return nil
}
