package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kbo_pickem/server/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Key prefixes
const (
	PrefixLeaderboard = "kbo:leaderboard:"
	KeyTeams          = "kbo:teams"
	KeyUserScores     = "kbo:user_scores"
)

// LeaderboardKey is the cache key for one leaderboard window
func LeaderboardKey(from, to string) string {
	return PrefixLeaderboard + from + ":" + to
}

// Cache is the read-through store used by the services
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache is a JSON-valued cache backed by Redis
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Int("db", cfg.DB).
		Msg("Successfully connected to redis")

	return &RedisCache{client: client}, nil
}

// GetJSON decodes the cached value into dest. The bool is false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss(metricKey(key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	metrics.RecordCacheHit(metricKey(key))
	return true, nil
}

// SetJSON stores value encoded as JSON with the given TTL
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s*: %w", prefix, err)
	}

	return c.Delete(ctx, keys...)
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	log.Info().Msg("Redis connection closed")
	return c.client.Close()
}

// metricKey keeps label cardinality bounded by dropping per-window suffixes
func metricKey(key string) string {
	if len(key) > len(PrefixLeaderboard) && key[:len(PrefixLeaderboard)] == PrefixLeaderboard {
		return "leaderboard"
	}
	return key
}

// Noop is a Cache that stores nothing; used when Redis is unavailable
type Noop struct{}

// GetJSON always misses
func (Noop) GetJSON(context.Context, string, any) (bool, error) { return false, nil }

// SetJSON discards the value
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }

// Delete does nothing
func (Noop) Delete(context.Context, ...string) error { return nil }

// DeletePrefix does nothing
func (Noop) DeletePrefix(context.Context, string) error { return nil }
