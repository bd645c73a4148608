package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every bound variable so the host environment cannot leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, e := range envs {
			t.Setenv(e, "")
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.AI.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "anonymous", cfg.Server.DefaultUser)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.Server.RateLimit.TailorLimit)
	assert.Equal(t, time.Hour, cfg.Server.RateLimit.TailorWindow)
}

func TestLoad_RateLimitFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_TAILOR_LIMIT", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.Server.RateLimit.TailorLimit)
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	content := `
ai:
  mode: gemini
  gemini:
    api_key: file-key
    model: gemini-2.5-pro
database:
  url: postgres://localhost/tailor
server:
  port: 9090
logging:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "tailor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("REDIS_TTL", "5m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Mode)
	assert.Equal(t, "env-key", cfg.AI.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Gemini.Model)
	assert.Equal(t, "postgres://localhost/tailor", cfg.Database.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_AIProviderAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "Mock")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.AI.Mode)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load("/nonexistent/tailor.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ invalid json }`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown mode", map[string]string{"AI_MODE": "bard"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"bad port", map[string]string{"PORT": "70000"}},
		{"bad base url", map[string]string{"OPENAI_BASE_URL": "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.NotEmpty(t, cfgErr.Field)
		})
	}
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name     string
		ai       AIConfig
		wantMode llm.Mode
		wantKey  string
	}{
		{
			name:     "auto without keys falls back to mock",
			ai:       AIConfig{Mode: "auto"},
			wantMode: llm.ModeMock,
		},
		{
			name:     "empty mode behaves like auto",
			ai:       AIConfig{Gemini: ProviderConfig{APIKey: "g"}},
			wantMode: llm.Mode(llm.ProviderGemini),
			wantKey:  "g",
		},
		{
			name: "auto prefers openai",
			ai: AIConfig{
				Mode:      "auto",
				OpenAI:    ProviderConfig{APIKey: "o"},
				Anthropic: ProviderConfig{APIKey: "a"},
			},
			wantMode: llm.Mode(llm.ProviderOpenAI),
			wantKey:  "o",
		},
		{
			name:     "explicit mock ignores keys",
			ai:       AIConfig{Mode: "mock", OpenAI: ProviderConfig{APIKey: "o"}},
			wantMode: llm.ModeMock,
		},
		{
			name:     "explicit provider without key",
			ai:       AIConfig{Mode: "anthropic"},
			wantMode: llm.Mode(llm.ProviderAnthropic),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AI: tt.ai}

			mode, pc, err := cfg.ResolveProvider()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.wantKey, pc.APIKey)
			if p := mode.Provider(); p != "" {
				assert.Equal(t, p, pc.Provider)
			}
		})
	}
}

func TestResolveProvider_UnknownMode(t *testing.T) {
	cfg := &Config{AI: AIConfig{Mode: "bard"}}

	_, _, err := cfg.ResolveProvider()
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TAILOR_DOTENV_TEST=loaded\n"), 0o644))
	t.Setenv("TAILOR_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("TAILOR_DOTENV_TEST"))

	loaded, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)

	assert.Equal(t, path, loaded)
	assert.Equal(t, "loaded", os.Getenv("TAILOR_DOTENV_TEST"))

	loaded, err = LoadDotEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
