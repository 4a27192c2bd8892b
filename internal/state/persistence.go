package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// StateVersion is bumped whenever SystemState changes incompatibly
const StateVersion = "1"

// SystemState is everything the live bot needs to resume after a restart.
type SystemState struct {
	Version      string    `json:"version"`
	Symbol       string    `json:"symbol"`
	Interval     string    `json:"interval"`
	LastUpdated  time.Time `json:"last_updated"`
	SessionStart time.Time `json:"session_start"`
	InitialBank  float64   `json:"initial_bank"`

	// LastCandle is the open time of the last candle a decision was made on
	LastCandle time.Time `json:"last_candle"`
	TradeCount int       `json:"trade_count"`

	Portfolio strategy.PortfolioState `json:"portfolio"`
}

// NewSystemState starts a fresh state with all cash
func NewSystemState(symbol, interval string, initialBank float64) *SystemState {
	now := time.Now().UTC()
	return &SystemState{
		Version:      StateVersion,
		Symbol:       symbol,
		Interval:     interval,
		SessionStart: now,
		LastUpdated:  now,
		InitialBank:  initialBank,
		Portfolio:    strategy.NewPortfolioState(initialBank),
	}
}

// StatePersistence saves and loads SystemState as state/<SYMBOL>.json.
type StatePersistence struct {
	stateDir string
	symbol   string
	mu       sync.Mutex
}

// NewStatePersistence creates a persistence handle for one symbol
func NewStatePersistence(stateDir, symbol string) *StatePersistence {
	return &StatePersistence{stateDir: stateDir, symbol: strings.ToUpper(symbol)}
}

// Path returns the state file location
func (sp *StatePersistence) Path() string {
	return filepath.Join(sp.stateDir, sp.symbol+".json")
}

func (sp *StatePersistence) backupPath() string {
	return filepath.Join(sp.stateDir, sp.symbol+"_backup.json")
}

// Load reads the saved state. found is false when no file exists yet.
func (sp *StatePersistence) Load() (state *SystemState, found bool, err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	data, err := os.ReadFile(sp.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, boterrors.NewDataError("state", "load", err)
	}

	var loaded SystemState
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, true, boterrors.NewDataError("state", "load", fmt.Errorf("failed to parse %s: %w", sp.Path(), err))
	}
	if err := sp.validateState(&loaded); err != nil {
		return nil, true, err
	}
	return &loaded, true, nil
}

// Save writes state atomically, keeping the previous file as a backup.
func (sp *StatePersistence) Save(state *SystemState) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if err := os.MkdirAll(sp.stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	snapshot := *state
	snapshot.Version = StateVersion
	snapshot.Symbol = sp.symbol
	snapshot.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	stateFile := sp.Path()
	if _, err := os.Stat(stateFile); err == nil {
		if err := copyFile(stateFile, sp.backupPath()); err != nil {
			return fmt.Errorf("failed to back up state: %w", err)
		}
	}

	tempFile := stateFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tempFile, stateFile); err != nil {
		return fmt.Errorf("failed to move state file: %w", err)
	}

	state.LastUpdated = snapshot.LastUpdated
	return nil
}

func (sp *StatePersistence) validateState(state *SystemState) error {
	if state.Version != StateVersion {
		return boterrors.NewValidationError("state", "load",
			fmt.Sprintf("unsupported state version %q", state.Version))
	}
	if !strings.EqualFold(state.Symbol, sp.symbol) {
		return boterrors.NewValidationError("state", "load",
			fmt.Sprintf("state symbol mismatch: expected %s, got %s", sp.symbol, state.Symbol))
	}
	p := state.Portfolio
	if p.Bank < 0 || p.Holdings < 0 {
		return boterrors.NewValidationError("state", "load", "negative bank or holdings")
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
