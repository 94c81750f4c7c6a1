package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the streak in Redis so several quizzer processes can share it.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedis connects to the Redis server at url and verifies the connection.
// The streak lives under prefix + StreakKey.
func NewRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected", "addr", opt.Addr, "db", opt.DB)
	return NewRedisFromClient(rdb, prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, key: prefix + StreakKey}
}

func (r *RedisStore) Load(ctx context.Context) (int, error) {
	v, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", r.key, err)
	}
	return parseStreak(v)
}

func (r *RedisStore) Save(ctx context.Context, n int) error {
	if err := r.rdb.Set(ctx, r.key, strconv.Itoa(n), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
