// Package generator picks the structured generator for a process: the
// deterministic mock or a text-generation backend.
package generator

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/llm/mock"
	"go.uber.org/zap"
)

// CloseFunc releases backend resources. It is never nil.
type CloseFunc func() error

func noClose() error { return nil }

// CacheNamespace names the generator New builds for mode and cfg, so that
// structure-cache entries from one generator are never served by another.
func CacheNamespace(mode llm.Mode, cfg llm.Config) string {
	if mode == llm.ModeMock {
		return string(llm.ModeMock)
	}
	cfg.Provider = mode.Provider()
	if cfg.APIKey == "" {
		return string(cfg.Provider) + ":unconfigured"
	}
	return string(cfg.Provider) + ":" + cfg.GetModel()
}

// New returns the generator for mode. An explicit provider without an API
// key still yields a generator; its calls fail with a ProviderError of
// reason no-provider.
func New(ctx context.Context, mode llm.Mode, cfg llm.Config, logger *zap.Logger) (llm.Generator, CloseFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if mode == llm.ModeMock {
		logger.Info("using mock generator")
		return mock.New(), noClose, nil
	}
	if mode.Provider() == "" {
		return nil, nil, fmt.Errorf("mode %q does not name a provider", mode)
	}
	if cfg.APIKey == "" {
		logger.Warn("no API key configured for provider", zap.String("provider", string(mode)))
		return llm.NewJSONGenerator(nil, logger), noClose, nil
	}

	cfg.Provider = mode.Provider()
	log := logger.With(zap.String("provider", string(cfg.Provider)), zap.String("model", cfg.GetModel()))
	switch cfg.Provider {
	case llm.ProviderOpenAI:
		backend, err := llm.NewOpenAIBackend(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using text-generation backend")
		return llm.NewJSONGenerator(backend, logger), noClose, nil
	case llm.ProviderAnthropic:
		backend, err := llm.NewAnthropicBackend(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using text-generation backend")
		return llm.NewJSONGenerator(backend, logger), noClose, nil
	case llm.ProviderGemini:
		backend, err := llm.NewGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using text-generation backend")
		return llm.NewJSONGenerator(backend, logger), backend.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
