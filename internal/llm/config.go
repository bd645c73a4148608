// Package llm provides the structured-generation abstraction used by the
// tailoring pipeline and the text-generation backends behind it.
package llm

import "strings"

// Provider represents a text-generation provider.
type Provider string

// Provider constants define supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

// Mode selects how the generator is chosen.
type Mode string

// Mode constants.
const (
	// ModeAuto uses the first provider with a configured key, else the mock.
	ModeAuto Mode = "auto"
	// ModeMock always uses the deterministic heuristic generator.
	ModeMock Mode = "mock"
)

// ParseMode maps a configuration value onto a Mode. Provider names are valid
// modes. Unknown values yield ok=false.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, true
	case ModeAuto, ModeMock:
		return m, true
	case Mode(ProviderOpenAI), Mode(ProviderGemini), Mode(ProviderAnthropic):
		return m, true
	default:
		return "", false
	}
}

// Provider returns the provider a mode names, or "" for auto and mock.
func (m Mode) Provider() Provider {
	switch Provider(m) {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
		return Provider(m)
	}
	return ""
}

// DefaultModels is the model used per provider when none is configured.
var DefaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

// Config holds the backend selection for one provider.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint. Used by tests.
	BaseURL string
}

// GetModel returns the configured model or the provider default.
func (c Config) GetModel() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModels[c.Provider]
}
