package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"plyst/config"
)

// Redis is a Store backed by a Redis instance.
type Redis struct {
	client *redis.Client
}

// ConnectRedis opens a Redis connection and verifies it with a ping.
func ConnectRedis(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Load fetches a raw value. A missing key is reported as ok=false, not an error.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load key %q: %w", key, err)
	}
	return val, true, nil
}

// Save stores a value without expiry.
func (r *Redis) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save key %q: %w", key, err)
	}
	return nil
}

// SaveTTL stores a value with an expiry.
func (r *Redis) SaveTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save key %q: %w", key, err)
	}
	return nil
}

// Check runs a basic set/get/del round trip.
func (r *Redis) Check(ctx context.Context) error {
	if err := r.client.Set(ctx, "store_check", "ok", 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set check key: %w", err)
	}

	val, err := r.client.Get(ctx, "store_check").Result()
	if err != nil {
		return fmt.Errorf("failed to get check key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}

	if _, err := r.client.Del(ctx, "store_check").Result(); err != nil {
		return fmt.Errorf("failed to delete check key: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
