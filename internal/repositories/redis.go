package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/reelx/internal/shared"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "reelx:"

// RedisStorage persists client state in Redis so several terminals can share one session.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg shared.StorageConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, cfg.RedisAddr, err)
	}
	return client, nil
}

// NewRedisStorage creates a Redis-backed storage. An empty prefix defaults to "reelx:".
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Get returns the value for key, or [shared.ErrKeyNotFound].
func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return val, nil
}

// Set stores value for key without expiry.
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Entries lists the keys under the prefix in key order. Redis keeps no write time, so UpdatedAt is zero.
func (r *RedisStorage) Entries(ctx context.Context) ([]Entry, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read keys: %w", err)
	}

	entries := make([]Entry, 0, len(keys))
	for i, k := range keys {
		v, ok := vals[i].(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: strings.TrimPrefix(k, r.prefix), Value: v})
	}
	return entries, nil
}

// Close releases the underlying client.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
