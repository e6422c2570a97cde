package main

import (
	"context"

	"github.com/bilgisen/weeklyissue/internal/ai"
	"github.com/bilgisen/weeklyissue/internal/cache"
	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/generator"
	"github.com/bilgisen/weeklyissue/internal/links"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/bilgisen/weeklyissue/internal/storage"
)

// buildDeps wires the generator collaborators from the configuration. The
// returned cleanup closes whatever was opened. fallback, if not nil, serves
// as the history when Redis is not configured or cannot be reached.
func buildDeps(ctx context.Context, cfg *config.Config, fallback cache.History) (generator.Deps, func(), error) {
	log := logger.Get()
	deps := generator.Deps{
		Storage: storage.NewStorage(cfg.PagePath, cfg.JSONPath),
	}
	cleanup := func() {}

	// Without a key the generator reports FatalConfig before any call
	if cfg.HasAPIKey() {
		switch cfg.AIBackend {
		case config.BackendSDK:
			client, err := ai.NewGenAIClient(ctx, cfg.AIApiKey, cfg.AIModel)
			if err != nil {
				return deps, cleanup, err
			}
			deps.Client = client
		default:
			deps.Client = ai.NewGeminiClient(cfg.AIApiKey, cfg.AIModel, cfg.AITimeout)
		}
	}

	if cfg.RedisURL != "" {
		history, err := cache.NewRedisHistory(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.HistoryTTL)
		if err != nil {
			log.Warn().Err(err).Bool("fallback", fallback != nil).Msg("History unavailable, continuing without Redis")
		} else {
			deps.History = history
			cleanup = func() {
				if err := history.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing Redis client")
				}
			}
		}
	}
	if deps.History == nil && fallback != nil {
		deps.History = fallback
	}

	if cfg.R2Bucket != "" {
		mirror, err := storage.NewR2Mirror(ctx, storage.R2Config{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			ObjectKey: cfg.R2ObjectKey,
		})
		if err != nil {
			cleanup()
			return deps, func() {}, err
		}
		deps.Mirror = mirror
	}

	if cfg.CheckImages {
		deps.Checker = links.NewChecker(links.DefaultOptions)
	}

	log.Debug().
		Str("backend", cfg.AIBackend).
		Bool("history", deps.History != nil).
		Bool("mirror", deps.Mirror != nil).
		Bool("check_images", deps.Checker != nil).
		Msg("Dependencies ready")
	return deps, cleanup, nil
}
