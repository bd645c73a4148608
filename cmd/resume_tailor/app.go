package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/generator"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/metrics"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the process-wide collaborators built from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Recorder
	pipeline *pipeline.Pipeline

	store   *db.DB
	redis   *redis.Client
	closeFn generator.CloseFunc
}

type appOptions struct {
	verbose   bool
	needStore bool
	metrics   bool
}

func loadConfig(root *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return nil, err
	}
	if root.mode != "" {
		cfg.AI.Mode = root.mode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newApp resolves the provider once and wires logging, metrics, the
// optional Redis cache and the optional store into a pipeline.
func newApp(ctx context.Context, root *rootOptions, opts appOptions) (*app, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	if opts.metrics {
		a.metrics = metrics.New()
	}

	mode, llmCfg, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}
	gen, closeFn, err := generator.New(ctx, mode, llmCfg, logger)
	if err != nil {
		return nil, err
	}
	a.closeFn = closeFn

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithMetrics(a.metrics)}
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			logger.Warn("structure cache unavailable, continuing without it", zap.Error(err))
		} else {
			a.redis = client
			pipeOpts = append(pipeOpts, pipeline.WithStructureCache(cache.NewRedisCache(client, cfg.Redis.TTL), generator.CacheNamespace(mode, llmCfg)))
		}
	}
	a.pipeline = pipeline.New(gen, pipeOpts...)

	if opts.needStore {
		if err := a.openStore(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	store, err := db.Connect(ctx, a.cfg.Database.URL)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			a.logger.Warn("failed to close generator", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
