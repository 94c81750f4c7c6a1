package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects where the streak is kept.
type Config struct {
	Backend     string
	DBPath      string
	RedisURL    string
	RedisPrefix string
}

// StreakStore is a persisted streak counter that can be closed on shutdown.
type StreakStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, n int) error
	Close() error
}

// Open creates the configured streak store.
func Open(ctx context.Context, cfg Config) (StreakStore, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("database path is required for the sqlite streak store")
		}
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		return New(cfg.DBPath)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis URL is required for the redis streak store")
		}
		return NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case BackendMemory:
		return NewMemory(0), nil
	default:
		return nil, fmt.Errorf("unknown streak store %q (want sqlite, redis or memory)", cfg.Backend)
	}
}
