package config_test

import (
	"testing"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "bolt", cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 10, cfg.MaxToolIterations)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Empty(t, cfg.WebhookURL)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(lookup(map[string]string{
		"PORT":                "9090",
		"GEMINI_API_KEY":      "AIza-server",
		"STORE_DRIVER":        "sqlite",
		"STORE_PATH":          "/tmp/icp.sqlite",
		"TURN_TIMEOUT":        "45s",
		"MAX_TOOL_ITERATIONS": "5",
		"LOG_FORMAT":          "console",
		"WEBHOOK_URL":         "https://hooks.example.com/icp",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "AIza-server", cfg.GeminiAPIKey)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 45*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 5, cfg.MaxToolIterations)
	assert.Equal(t, "https://hooks.example.com/icp", cfg.WebhookURL)
}

func TestLoad_ReportsEveryInvalidValue(t *testing.T) {
	_, err := config.Load(lookup(map[string]string{
		"TURN_TIMEOUT":        "soon",
		"MAX_TOOL_ITERATIONS": "0",
		"STORE_DRIVER":        "redis",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TURN_TIMEOUT")
	assert.Contains(t, err.Error(), "MAX_TOOL_ITERATIONS")
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}
