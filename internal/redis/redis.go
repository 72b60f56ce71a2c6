package redis

import (
	"context"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

var (
	client *redisv9.Client
	once   sync.Once
)

// NewClient creates a client for the given address without touching the network.
func NewClient(addr string) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr: addr,
	})
}

// GetClient returns the shared client for the configured redis.addr.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = NewClient(config.GetRedisAddr())
	})
	return client
}

// Ping checks that the server behind c is reachable.
func Ping(ctx context.Context, c *redisv9.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	if client != nil {
		_ = client.Close()
	}
	once = sync.Once{}
	client = nil
}
