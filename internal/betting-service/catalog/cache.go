package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "betting:catalog"

// Cache guarda o catálogo serializado no Redis
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewCache(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func (c *Cache) Get(ctx context.Context) ([]Match, bool, error) {
	b, err := c.R.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []Match
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, matches []Match) error {
	b, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, cacheKey, b, c.TTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.R.Del(ctx, cacheKey).Err()
}
