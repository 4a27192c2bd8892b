package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment holds the settings that come from the process environment
// (optionally seeded from a .env file) rather than from the strategy file.
type Environment struct {
	Env      string
	LogLevel string

	Exchange struct {
		Name    string
		APIKey  string
		Secret  string
		Testnet bool
		Demo    bool
	}

	Monitoring struct {
		MetricsAddr string
	}

	// Telegram alerts are enabled when both are set
	Telegram struct {
		Token  string
		ChatID string
	}
}

// Credential variable names.
const (
	EnvAPIKey    = "BYBIT_API_KEY"
	EnvAPISecret = "BYBIT_API_SECRET"
)

func Load() *Environment {
	e := &Environment{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	e.Exchange.Name = getEnv("EXCHANGE_NAME", "bybit")
	e.Exchange.APIKey = getEnv(EnvAPIKey, "")
	e.Exchange.Secret = getEnv(EnvAPISecret, "")
	e.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", false)
	e.Exchange.Demo = getEnvBool("BYBIT_DEMO", false)
	e.Monitoring.MetricsAddr = getEnv("METRICS_ADDR", ":8080")
	e.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", "")
	e.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", "")
	return e
}

// MissingCredentials lists the credential variables that are not set.
func (e *Environment) MissingCredentials() []string {
	var missing []string
	if e.Exchange.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if e.Exchange.Secret == "" {
		missing = append(missing, EnvAPISecret)
	}
	return missing
}

// TelegramEnabled reports whether both Telegram settings are present.
func (e *Environment) TelegramEnabled() bool {
	return e.Telegram.Token != "" && e.Telegram.ChatID != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
