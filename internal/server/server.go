// Package server provides the HTTP API for saving resumes and jobs and
// running tailoring over them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/metrics"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	SaveResume(ctx context.Context, userID, filename, originalText string, parsed json.RawMessage) (uuid.UUID, error)
	GetResume(ctx context.Context, userID string, id uuid.UUID) (*db.Resume, error)
	ListResumes(ctx context.Context, userID string) ([]db.Resume, error)
	SetResumeParsed(ctx context.Context, userID string, id uuid.UUID, parsed json.RawMessage) error
	SaveJob(ctx context.Context, userID, sourceURL, rawText string, structured json.RawMessage) (uuid.UUID, error)
	GetJob(ctx context.Context, userID string, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, userID string) ([]db.Job, error)
	SetJobStructured(ctx context.Context, userID string, id uuid.UUID, structured json.RawMessage) error
	CreateTailoringRun(ctx context.Context, userID string, resumeID, jobID uuid.UUID, result *types.TailoringResult) (uuid.UUID, error)
	GetTailoringRun(ctx context.Context, userID string, id uuid.UUID) (*db.TailoringRun, error)
	ListTailoringRuns(ctx context.Context, userID string) ([]db.TailoringRun, error)
}

var _ Store = (*db.DB)(nil)

// Deps are the collaborators of a Server.
type Deps struct {
	Store    Store
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	httpServer     *http.Server
	store          Store
	pipeline       *pipeline.Pipeline
	metrics        *metrics.Recorder
	logger         *zap.Logger
	limiter        *ratelimit.Limiter
	requestTimeout time.Duration
}

// New wires the routes and middleware. It does not start listening.
func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:          deps.Store,
		pipeline:       deps.Pipeline,
		metrics:        deps.Metrics,
		logger:         logger,
		limiter:        ratelimit.NewLimiter(limiterConfig(cfg.RateLimit)),
		requestTimeout: cfg.RequestTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /resumes", s.handleSaveResume)
	mux.HandleFunc("GET /resumes", s.handleListResumes)
	mux.HandleFunc("POST /jobs", s.handleSaveJob)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /tailor", s.handleTailor)
	mux.HandleFunc("POST /tailor/stream", s.handleTailorStream)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Owner(cfg.DefaultUser)(handler)
	handler = s.withCORS(handler)
	handler = s.withRateLimit(handler)
	handler = s.withLogging(handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// tailoring can take several provider round trips
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// limiterConfig maps the configuration section onto limiter settings.
func limiterConfig(c config.RateLimitConfig) ratelimit.Config {
	whitelist := make(map[string]bool, len(c.Whitelist))
	for _, ip := range c.Whitelist {
		whitelist[ip] = true
	}
	tailor := func(path string) ratelimit.EndpointConfig {
		return ratelimit.EndpointConfig{Path: path, Method: http.MethodPost, Limit: c.TailorLimit, Window: c.TailorWindow, Burst: c.TailorBurst}
	}
	return ratelimit.Config{
		Enabled:         c.Enabled,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       whitelist,
		Endpoints: []ratelimit.EndpointConfig{
			tailor("/tailor"),
			tailor("/tailor/stream"),
			{Path: "/resumes", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
			{Path: "/jobs", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		},
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.limiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources of a server that was never started.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.OwnerHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.limiter.Allow(clientIP(r), r.Method, r.URL.Path)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !info.Allowed {
			retry := int(info.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.logger.Info("rate limit exceeded", zap.String("client", clientIP(r)), zap.String("path", r.URL.Path))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter records the response status for logging. It passes Flush
// through so streaming handlers keep working.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// clientIP is the remote address without port. Forwarded headers are not
// trusted.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err onto a status and writes it. Internal details of 5xx
// errors are logged, not returned.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = http.StatusText(status)
	}
	s.errorResponse(w, status, msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
