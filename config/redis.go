package config

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when REDIS_ADDR is not configured.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
