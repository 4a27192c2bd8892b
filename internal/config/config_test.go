package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "key")
	t.Setenv(EnvAPISecret, "")
	t.Setenv("BYBIT_TESTNET", "true")
	t.Setenv("BYBIT_DEMO", "not-a-bool")
	t.Setenv("METRICS_ADDR", "")

	e := Load()

	assert.Equal(t, "key", e.Exchange.APIKey)
	assert.True(t, e.Exchange.Testnet)
	assert.False(t, e.Exchange.Demo)
	assert.Equal(t, ":8080", e.Monitoring.MetricsAddr)
	assert.Equal(t, []string{EnvAPISecret}, e.MissingCredentials())
}

func TestEnvironment_TelegramEnabled(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	assert.False(t, Load().TelegramEnabled())

	t.Setenv("TELEGRAM_CHAT_ID", "42")
	assert.True(t, Load().TelegramEnabled())
}
