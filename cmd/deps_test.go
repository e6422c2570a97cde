package main

import (
	"context"
	"testing"
	"time"

	"github.com/bilgisen/weeklyissue/internal/cache"
	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDepsFallsBackWhenRedisUnavailable(t *testing.T) {
	cfg := &config.Config{
		RedisURL:   "http://not-redis.invalid",
		HistoryTTL: time.Hour,
		PagePath:   "index.html",
		JSONPath:   "news.json",
	}
	fallback := cache.NewMemoryHistory(time.Hour)

	deps, cleanup, err := buildDeps(context.Background(), cfg, fallback)
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, fallback, deps.History)
	assert.NotNil(t, deps.Storage)
	assert.Nil(t, deps.Client)
}

func TestBuildDepsWithoutHistory(t *testing.T) {
	cfg := &config.Config{RedisURL: "http://not-redis.invalid"}

	deps, cleanup, err := buildDeps(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, deps.History)
	assert.Nil(t, deps.Mirror)
	assert.Nil(t, deps.Checker)
}
