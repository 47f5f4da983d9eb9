package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client backing the cancellation event queue and the
// health probe. Nothing else in the system touches redis.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis. Short deadlines apply to the non-blocking
// commands (LPUSH, PING); the queue's BRPOP reads compute their own from
// the block duration.
func NewRedis(addr string, poolSize int) *Redis {
	if poolSize <= 0 {
		poolSize = 8
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: 1,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
