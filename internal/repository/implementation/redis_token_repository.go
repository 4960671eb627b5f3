package implementation

import (
	"context"
	"errors"
	"fmt"

	"orl-assistant/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const redisTokenPrefix = "orl:credential:"

type RedisTokenRepository struct {
	rdb *redis.Client
}

func NewRedisTokenRepository(rdb *redis.Client) contract.TokenRepository {
	return &RedisTokenRepository{rdb: rdb}
}

// NewRedisClientFromURL parses a redis:// URL, falling back to treating it as a plain address.
func NewRedisClientFromURL(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func (r *RedisTokenRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, redisTokenPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, value != "", nil
}

func (r *RedisTokenRepository) Set(ctx context.Context, key string, value string) error {
	if err := r.rdb.Set(ctx, redisTokenPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisTokenRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisTokenPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
