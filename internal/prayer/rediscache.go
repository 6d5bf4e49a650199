package prayer

import (
	"context"
	"time"

	"github.com/dhanfinix/sukund/internal/redis"
)

// RedisCache adapts the shared redis client to the repository's Cache.
type RedisCache struct{}

var _ Cache = RedisCache{}

func (RedisCache) Get(ctx context.Context, key string) (string, bool) {
	return redis.Get(ctx, key)
}

func (RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	redis.Set(ctx, key, value, ttl)
}

func (RedisCache) DeletePattern(ctx context.Context, pattern string) {
	redis.DeletePattern(ctx, pattern)
}
