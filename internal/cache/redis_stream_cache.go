package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
)

type RedisStreamCache struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamCache(cfg config.RedisConfig, prefix string) (*RedisStreamCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStreamCacheFromClient(client, prefix), nil
}

// NewRedisStreamCacheFromClient wraps an existing client, e.g. one shared with pub/sub.
func NewRedisStreamCacheFromClient(client *redis.Client, prefix string) *RedisStreamCache {
	return &RedisStreamCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisStreamCache) key(streamID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, streamID)
}

func (c *RedisStreamCache) Get(ctx context.Context, streamID string) (*domain.Stream, error) {
	data, err := c.client.Get(ctx, c.key(streamID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var stream domain.Stream
	if err := json.Unmarshal(data, &stream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &stream, nil
}

func (c *RedisStreamCache) Set(ctx context.Context, stream *domain.Stream, ttl time.Duration) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(stream.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisStreamCache) Delete(ctx context.Context, streamIDs ...string) error {
	if len(streamIDs) == 0 {
		return nil
	}

	keys := make([]string, len(streamIDs))
	for i, id := range streamIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisStreamCache) Close() error {
	return c.client.Close()
}
