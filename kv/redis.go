package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// namespace keeps session keys from colliding with anything else sharing the
// redis instance.
const namespace = "everbite:session:"

// Redis is a Store backed by a redis instance, used when sessions must
// survive process restarts.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to redisURL (redis://host:port/db) and verifies the
// connection with a ping before returning.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("kv: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("kv: redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, namespace+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv: get %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, namespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = namespace + k
	}
	if err := r.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
