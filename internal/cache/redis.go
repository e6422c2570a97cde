package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/weeklyissue/internal/utils"
	"github.com/redis/go-redis/v9"
)

// RedisHistory keeps published links in Redis, one key per link hash
type RedisHistory struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisHistory(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisHistory, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisHistory(client, prefix, ttl), nil
}

func newRedisHistory(client *redis.Client, prefix string, ttl time.Duration) *RedisHistory {
	return &RedisHistory{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisHistory) Close() error {
	return r.client.Close()
}

func (r *RedisHistory) key(link string) string {
	return r.prefix + "published:" + utils.URLKey(link)
}

func (r *RedisHistory) IsPublished(ctx context.Context, link string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.key(link)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return exists > 0, nil
}

// MarkPublished records all links in one pipeline
func (r *RedisHistory) MarkPublished(ctx context.Context, links []string) error {
	if len(links) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, link := range links {
		pipe.Set(ctx, r.key(link), link, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline error: %w", err)
	}
	return nil
}

// Clear removes every published mark under the prefix
func (r *RedisHistory) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"published:*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
