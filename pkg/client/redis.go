package client

import (
	"context"
	"time"

	"carematch/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SetRedis connects to Redis. A failed ping is logged and the client left unset so the service
// falls back to per-process rate limiting.
func (c *Client) SetRedis(log *logger.Logger, addr string, connTimeout time.Duration) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: connTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory rate limiter", "addr", addr, "error", err)
		_ = rdb.Close()
		return
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rdb
}
