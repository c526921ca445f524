package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhive/task-api/internal/pkg/config"
)

const (
	clientName  = "task-api"
	dialTimeout = 5 * time.Second
	opTimeout   = 2 * time.Second
)

// clientOptions builds the go-redis options for this service. The read and
// write timeouts are short because the only caller is the login throttle,
// which sits on the login hot path and must never stall a request.
func clientOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	}
}

// Connect opens the Redis client backing the login throttle and validates
// connectivity with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
