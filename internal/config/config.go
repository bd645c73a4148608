// Package config loads the tailor configuration from an optional config file,
// the environment and built-in defaults, in increasing order of precedence:
// defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	AI       AIConfig       `mapstructure:"ai"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AIConfig selects the generation backend.
type AIConfig struct {
	Mode      string         `mapstructure:"mode" validate:"omitempty,oneof=auto mock openai gemini anthropic"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
}

// ProviderConfig holds credentials for one provider.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// DatabaseConfig points at the Postgres store. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig points at the structure cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"min=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int             `mapstructure:"port" validate:"min=1,max=65535"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout" validate:"min=0"`
	DefaultUser    string          `mapstructure:"default_user" validate:"required"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds requests per client IP. Tailoring calls the
// provider several times per request and gets its own, stricter limit.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit" validate:"min=0"`
	DefaultWindow time.Duration `mapstructure:"default_window" validate:"min=0"`
	TailorLimit   int           `mapstructure:"tailor_limit" validate:"min=0"`
	TailorWindow  time.Duration `mapstructure:"tailor_window" validate:"min=0"`
	TailorBurst   int           `mapstructure:"tailor_burst" validate:"min=0"`
	Whitelist     []string      `mapstructure:"whitelist"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// envBindings maps config keys to the environment variables that set them.
// Earlier names win.
var envBindings = map[string][]string{
	"ai.mode":                        {"AI_MODE", "AI_PROVIDER"},
	"ai.openai.api_key":              {"OPENAI_API_KEY"},
	"ai.openai.model":                {"OPENAI_MODEL"},
	"ai.openai.base_url":             {"OPENAI_BASE_URL"},
	"ai.gemini.api_key":              {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"ai.gemini.model":                {"GEMINI_MODEL"},
	"ai.anthropic.api_key":           {"ANTHROPIC_API_KEY"},
	"ai.anthropic.model":             {"ANTHROPIC_MODEL"},
	"database.url":                   {"DATABASE_URL"},
	"redis.addr":                     {"REDIS_ADDR"},
	"redis.password":                 {"REDIS_PASSWORD"},
	"redis.ttl":                      {"REDIS_TTL"},
	"server.port":                    {"PORT"},
	"server.request_timeout":         {"REQUEST_TIMEOUT"},
	"server.default_user":            {"DEFAULT_USER_ID"},
	"server.rate_limit.enabled":      {"RATE_LIMIT_ENABLED"},
	"server.rate_limit.tailor_limit": {"RATE_LIMIT_TAILOR_LIMIT"},
	"logging.level":                  {"LOG_LEVEL"},
	"logging.format":                 {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.mode", string(llm.ModeAuto))
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 2*time.Minute)
	v.SetDefault("server.default_user", "anonymous")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.default_limit", 1000)
	v.SetDefault("server.rate_limit.default_window", time.Minute)
	v.SetDefault("server.rate_limit.tailor_limit", 10)
	v.SetDefault("server.rate_limit.tailor_window", time.Hour)
	v.SetDefault("server.rate_limit.tailor_burst", 2)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration. path may be empty, in which case only the
// environment and defaults are used. The file type follows its extension
// (yaml, yml, json, toml).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.AI.Mode = strings.ToLower(strings.TrimSpace(cfg.AI.Mode))
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Variables already set are not overridden. It reports which
// file was loaded, or "" when none exists.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("failed to load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &Error{Field: fe.Namespace(), Message: fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value())}
		}
		return &Error{Message: err.Error()}
	}
	return nil
}

// ResolveProvider decides which backend to use. An explicit provider is
// returned even when its key is missing; the generator then fails with a
// no-provider error on first use. Auto mode picks the first provider with a
// key, in the order openai, gemini, anthropic, and falls back to the mock.
func (c *Config) ResolveProvider() (llm.Mode, llm.Config, error) {
	mode, ok := llm.ParseMode(c.AI.Mode)
	if !ok {
		return "", llm.Config{}, &Error{Field: "Config.AI.Mode", Message: fmt.Sprintf("unknown mode %q", c.AI.Mode)}
	}

	switch mode {
	case llm.ModeMock:
		return mode, llm.Config{}, nil
	case llm.ModeAuto:
		for _, p := range []llm.Provider{llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderAnthropic} {
			if pc := c.provider(p); pc.APIKey != "" {
				return llm.Mode(p), pc, nil
			}
		}
		return llm.ModeMock, llm.Config{}, nil
	default:
		return mode, c.provider(mode.Provider()), nil
	}
}

func (c *Config) provider(p llm.Provider) llm.Config {
	var pc ProviderConfig
	switch p {
	case llm.ProviderOpenAI:
		pc = c.AI.OpenAI
	case llm.ProviderGemini:
		pc = c.AI.Gemini
	case llm.ProviderAnthropic:
		pc = c.AI.Anthropic
	}
	return llm.Config{Provider: p, APIKey: pc.APIKey, Model: pc.Model, BaseURL: pc.BaseURL}
}
