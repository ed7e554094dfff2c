package cache

import (
	"context"
	"time"

	"travel-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a redis client from config. Returns nil when
// no address is configured or the server is unreachable; callers degrade to
// the database-backed implementation in that case.
func NewRedisClient(config utils.RedisConfig) *redis.Client {
	if config.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return client
}
