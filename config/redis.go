package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis creates a Redis client for the rate limiter.
// It returns (nil, nil) when Redis is disabled: no address configured or APPENV=test.
func ConnectRedis(cfg *Config) (*redis.Client, error) {
	if cfg == nil || cfg.AppEnv == "test" || cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	return rdb, nil
}
