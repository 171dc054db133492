package cache

// Package cache provides short-lived caching for dashboard aggregates.

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for the aggregate cache.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// DashboardKey builds the cache key for a dashboard overview date range.
func DashboardKey(start, end string) string {
	return fmt.Sprintf("dashboard:%s:%s", start, end)
}
