package memory

import (
	"context"

	"orl-assistant/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// TokenRepository keeps slots for the life of the process only. Used for headless runs
// and tests; slots never expire on their own.
type TokenRepository struct {
	cache *cache.Cache
}

func NewTokenRepository() contract.TokenRepository {
	return &TokenRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *TokenRepository) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := r.cache.Get(key); found {
		value, _ := x.(string)
		return value, value != "", nil
	}
	return "", false, nil
}

func (r *TokenRepository) Set(_ context.Context, key string, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (r *TokenRepository) Delete(_ context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
