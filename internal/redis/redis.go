package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func Init(address, username, password string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// Get returns the value for key and whether it was present. Transport
// errors are logged and reported as a miss so callers fall through to the
// upstream fetch.
func Get(ctx context.Context, key string) (string, bool) {
	value, err := Rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("redis get failed")
		return "", false
	}
	return value, true
}

func Set(ctx context.Context, key, value string, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to add key to redis")
	}
}

// DeletePattern removes every key matching pattern via SCAN.
func DeletePattern(ctx context.Context, pattern string) {
	iter := Rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := Rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Error().Err(err).Str("key", iter.Val()).Msg("failed to delete key from redis")
		}
	}
	if err := iter.Err(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("redis scan failed")
	}
}
