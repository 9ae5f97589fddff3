package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DATABASE_URL", "LLM_MODE", "LLM_API_KEY", "HUGGINGFACEHUB_API_TOKEN", "MAX_STEPS", "LLM_TEMPERATURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.MaxSteps)
	assert.Equal(t, 0.2, cfg.LLMTemperature)
	assert.Equal(t, 1024, cfg.LLMMaxTokens)
	assert.Equal(t, 5, cfg.SearchMaxResults)
	assert.Equal(t, 15*time.Second, cfg.StreamHeartbeat)
	assert.Empty(t, cfg.LLMAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("RUN_TIMEOUT_MS", "1500")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "hf_token")

	cfg := Load()
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, 1500*time.Millisecond, cfg.RunTimeout)
	assert.Equal(t, 0.7, cfg.LLMTemperature)
	assert.Equal(t, "hf_token", cfg.LLMAPIKey)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg := Load()
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 0.2, cfg.LLMTemperature)
}
