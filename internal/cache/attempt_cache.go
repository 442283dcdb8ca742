package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/quizgrader/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AttemptCache stores read models of completed attempts. Completed attempts
// never change, so entries are only ever written once and expire by TTL.
type AttemptCache interface {
	// Get decodes the cached entry into dest and reports whether it existed.
	Get(ctx context.Context, attemptID uint, dest interface{}) (bool, error)
	Set(ctx context.Context, attemptID uint, value interface{}) error
}

func attemptKey(attemptID uint) string {
	return fmt.Sprintf("quizgrader:attempt:%d", attemptID)
}

type redisAttemptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptCache(client *redis.Client, ttl time.Duration) AttemptCache {
	return &redisAttemptCache{client: client, ttl: ttl}
}

func (c *redisAttemptCache) Get(ctx context.Context, attemptID uint, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, attemptKey(attemptID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error getting attempt %d from cache: %w", attemptID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("error decoding cached attempt %d: %w", attemptID, err)
	}
	return true, nil
}

func (c *redisAttemptCache) Set(ctx context.Context, attemptID uint, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding attempt %d for cache: %w", attemptID, err)
	}
	if err := c.client.Set(ctx, attemptKey(attemptID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("error saving attempt %d to cache: %w", attemptID, err)
	}
	return nil
}

type noopAttemptCache struct{}

func NewNoopAttemptCache() AttemptCache {
	return noopAttemptCache{}
}

func (noopAttemptCache) Get(context.Context, uint, interface{}) (bool, error) { return false, nil }

func (noopAttemptCache) Set(context.Context, uint, interface{}) error { return nil }

// NewRedisClient connects to Redis when caching is enabled. It returns a nil
// client when disabled.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// NewAttemptCache picks the Redis-backed cache when a client is available.
func NewAttemptCache(client *redis.Client, cfg *config.Config) AttemptCache {
	if client == nil {
		return NewNoopAttemptCache()
	}
	return NewRedisAttemptCache(client, cfg.Redis.AttemptTTL)
}
