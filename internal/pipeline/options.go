package pipeline

import (
	"context"

	"github.com/jonathan/resume-tailor/internal/metrics"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// StructureCache stores structured resumes and jobs keyed by kind and an
// opaque id. The pipeline derives the id from the cache namespace, the
// document's filename or source URL, and its normalized text. Values are
// re-validated on read.
type StructureCache interface {
	Get(ctx context.Context, kind, id string) ([]byte, bool, error)
	Put(ctx context.Context, kind, id string, value []byte) error
}

// Cache kinds.
const (
	CacheKindResume = "resume"
	CacheKindJob    = "job"
)

// ProgressEvent reports a finished stage.
type ProgressEvent struct {
	RunID   string `json:"run_id"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called after every stage. It runs on the pipeline
// goroutine and should return quickly.
type ProgressCallback func(event ProgressEvent)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records stage timings, provider calls and guardrail drops.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = recorder
	}
}

// WithStructureCache reuses structured data across runs over the same text.
// namespace names the generator that produces the entries (mode, provider and
// model); entries written under one namespace are never read under another.
func WithStructureCache(cache StructureCache, namespace string) Option {
	return func(p *Pipeline) {
		p.cache = cache
		p.cacheNS = namespace
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressCallback) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithTracerProvider sets where run and stage spans go. The default is the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}
