// Package cache keeps short-lived dashboard aggregates in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandp/medstock/internal/metrics"
)

const kpiKey = "medstock:dashboard:kpis"

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return &Redis{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Get decodes the cached value into dest. A miss or any backend error returns false.
func (r *Redis) Get(ctx context.Context, dest any) bool {
	val, err := r.rdb.Get(ctx, kpiKey).Bytes()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (r *Redis) Set(ctx context.Context, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, kpiKey, data, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.rdb.Del(ctx, kpiKey).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
