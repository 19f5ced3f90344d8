package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DEBUG", "CORS_ORIGINS", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "ADVICE_TIMEOUT", "REVEAL_DELAY"} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 20*time.Second, cfg.AdviceTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.RevealDelay)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":8081")
	t.Setenv("DEBUG", "yes")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("API_KEY", "legacy")
	t.Setenv("REVEAL_DELAY", "0s")
	t.Setenv("ADVICE_TIMEOUT", "bogus")

	cfg := FromEnv()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "legacy", cfg.GeminiAPIKey)
	assert.Equal(t, time.Duration(0), cfg.RevealDelay)
	assert.Equal(t, 20*time.Second, cfg.AdviceTimeout)

	t.Setenv("GEMINI_API_KEY", "primary")
	assert.Equal(t, "primary", FromEnv().GeminiAPIKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("GEMINI_MODEL")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=gemini-from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GEMINI_MODEL") })

	cfg := Load(path)

	assert.Equal(t, "gemini-from-file", cfg.GeminiModel)
}
