package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

// Manager loads, validates and saves config files. JSON and YAML are
// picked by file extension.
type Manager struct {
	validator *ConfigValidator
}

func NewManager() *Manager {
	return &Manager{validator: NewConfigValidator()}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func decode(path string, data []byte, out interface{}) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, out)
	}
	return json.Unmarshal(data, out)
}

// LoadConfig reads path, checks required keys, applies defaults to the
// optional ones and validates the result.
func (m *Manager) LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := decode(path, data, &raw); err != nil {
		return nil, boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "config", "parse").
			WithContext("file", path)
	}
	if err := m.validator.CheckRaw(raw); err != nil {
		return nil, err
	}

	cfg := DefaultAppConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "config", "parse").
			WithContext("file", path)
	}

	if err := m.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like LoadConfig but falls back to DefaultAppConfig
// when the file does not exist. The bool reports the fallback.
func (m *Manager) LoadOrDefault(path string) (*AppConfig, bool, error) {
	cfg, err := m.LoadConfig(path)
	if err == nil {
		return cfg, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultAppConfig(), true, nil
	}
	return nil, false, err
}

// ValidateConfig applies the struct rules to cfg.
func (m *Manager) ValidateConfig(cfg *AppConfig) error {
	return m.validator.Validate(cfg)
}

// SaveConfig writes cfg to path, creating parent directories.
func (m *Manager) SaveConfig(cfg *AppConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// LoadGrid reads an optimizer grid. Axes missing from the file keep their
// default values; an empty path returns the default grid.
func LoadGrid(path string) (backtest.Grid, error) {
	grid := backtest.DefaultGrid()
	if path == "" {
		return grid, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return backtest.Grid{}, fmt.Errorf("could not read grid file: %w", err)
	}
	if err := decode(path, data, &grid); err != nil {
		return backtest.Grid{}, boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "config", "grid").
			WithContext("file", path)
	}
	if err := grid.Validate(); err != nil {
		return backtest.Grid{}, err
	}
	return grid, nil
}
