// Package throttle provides the gates that serialize verification resends
// per identity.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "throttle:"
	defaultTimeout = 5 * time.Second
)

// Connect opens a Redis client and checks it with a ping.
func Connect(ctx context.Context, addr string, timeout time.Duration) (*redis.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisGate holds a key with SET NX and a TTL, so the gate spans every
// server instance sharing the Redis.
type RedisGate struct {
	client redis.Cmdable
}

func NewRedisGate(client redis.Cmdable) *RedisGate {
	return &RedisGate{client: client}
}

// Acquire reports whether the caller now holds key for ttl.
func (g *RedisGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("throttle acquire: %w", err)
	}
	return ok, nil
}
