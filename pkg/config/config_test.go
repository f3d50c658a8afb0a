package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_OpenAIConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("OPENAI_MODEL", "gpt-4o")
	os.Setenv("OPENAI_MAX_RETRIES", "5")
	os.Setenv("OPENAI_BASE_DELAY_MS", "250")
	defer func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("OPENAI_MODEL")
		os.Unsetenv("OPENAI_MAX_RETRIES")
		os.Unsetenv("OPENAI_BASE_DELAY_MS")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.OpenAI.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.OpenAI.BaseDelay)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("OPENAI_MODEL")
	os.Unsetenv("CACHE_TTL")
	os.Unsetenv("RATE_LIMIT_MAX")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 400, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 3600, cfg.Cache.DefaultTTL)
	assert.Equal(t, 7200, cfg.Cache.HighConfidenceTTL)
	assert.Equal(t, 1800, cfg.Cache.SearchResultsTTL)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	os.Unsetenv("ALLOWED_ORIGINS")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	os.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	cfg, err = Load()
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	os.Setenv("OPENAI_MAX_TOKENS", "not-a-number")
	defer os.Unsetenv("OPENAI_MAX_TOKENS")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 400, cfg.OpenAI.MaxTokens)
}
