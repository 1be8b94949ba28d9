package vmwiz

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRdbConfig redis options of the options cache
func NewRdbConfig(config RedisSettings) *redis.Options {
	return &redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		Username: config.Username,
		DB:       config.DB,

		PoolSize:     8,
		MinIdleConns: 1,

		DialTimeout:  config.Timeout,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
		PoolTimeout:  config.Timeout,
	}
}

// NewRdbClient connect and ping redis
func NewRdbClient(ctx context.Context, config RedisSettings) (*redis.Client, error) {
	rdb := redis.NewClient(NewRdbConfig(config))
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: ping redis %s: %s", ErrInvalidConfig, config.Addr, err.Error())
	}
	return rdb, nil
}

// NewOptionsCache the options cache described by settings, nil when disabled
func NewOptionsCache(ctx context.Context, settings CacheSettings) (OptionsCache, func() error, error) {
	noop := func() error { return nil }
	if settings.TTL <= 0 {
		return nil, noop, nil
	}
	if settings.Redis.Addr == "" {
		return NewMemoryOptionsCache(settings.TTL), noop, nil
	}
	rdb, err := NewRdbClient(ctx, settings.Redis)
	if err != nil {
		return nil, noop, err
	}
	return NewRdbOptionsCache(rdb, settings.TTL), rdb.Close, nil
}
