package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Backend is a text-generation service that answers a system and user
// prompt with free text.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// JSONGenerator turns a text Backend into a Generator: it extracts the JSON
// object from the response and validates it against the request schema.
type JSONGenerator struct {
	backend Backend
	logger  *zap.Logger
}

// NewJSONGenerator wraps backend. A nil logger disables logging.
func NewJSONGenerator(backend Backend, logger *zap.Logger) *JSONGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONGenerator{backend: backend, logger: logger}
}

// GenerateStructuredJSON implements Generator.
func (g *JSONGenerator) GenerateStructuredJSON(ctx context.Context, req Request, out any) error {
	if g.backend == nil {
		return &ProviderError{Reason: ReasonNoProvider, Task: req.Task, Message: "no text-generation backend configured"}
	}

	log := g.logger.With(zap.String("backend", g.backend.Name()), zap.String("task", string(req.Task)))
	start := time.Now()

	text, err := g.backend.Complete(ctx, req.System, req.User)
	if err != nil {
		log.Warn("backend call failed", zap.Error(err))
		return &ProviderError{Reason: ReasonBackendFailure, Task: req.Task, Cause: err}
	}
	log.Debug("backend call finished", zap.Duration("elapsed", time.Since(start)), zap.Int("chars", len(text)))

	raw, ok := ExtractFirstJSONObject(text)
	if !ok || !json.Valid([]byte(raw)) {
		log.Warn("response has no JSON object")
		return &ProviderError{Reason: ReasonUnparseableOutput, Task: req.Task, Message: "no JSON object in response"}
	}

	if err := DecodeStructured(req.Task, req.Schema, []byte(raw), out); err != nil {
		log.Warn("response failed schema validation", zap.Error(err))
		return err
	}
	return nil
}
