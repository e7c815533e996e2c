package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/cartsync/pkg/redis"
)

type cartCache interface {
	CartKey(userID string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisRepository stores each cart as a JSON document with a sliding TTL.
type RedisRepository struct {
	cache cartCache
	ttl   time.Duration
}

func NewRedisRepository(cache cartCache, ttl time.Duration) *RedisRepository {
	return &RedisRepository{cache: cache, ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, userID string) ([]Line, error) {
	raw, err := r.cache.Get(ctx, r.cache.CartKey(userID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

func (r *RedisRepository) Save(ctx context.Context, userID string, lines []Line) error {
	key := r.cache.CartKey(userID)
	if len(lines) == 0 {
		return r.cache.Del(ctx, key)
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
