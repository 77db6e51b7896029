package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 15 * time.Minute

// RedisCache is an ItemCache backed by Redis. Entries expire after the base TTL plus
// up to maxJitter so keys written together do not expire together.
type RedisCache struct {
	client    *redis.Client
	baseTTL   time.Duration
	maxJitter time.Duration
}

// NewRedisClient creates a Redis client from configuration and verifies it responds.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisCache creates an item cache on top of an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{
		client:    client,
		baseTTL:   ttl,
		maxJitter: ttl / 3,
	}
}

func (r *RedisCache) Get(ctx context.Context, slug string) (*model.Item, error) {
	data, err := r.client.Get(ctx, cacheKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item failed: %w", err)
	}

	return &item, nil
}

func (r *RedisCache) Set(ctx context.Context, item *model.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(item.Slug), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) ttl() time.Duration {
	if r.maxJitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + time.Duration(rand.Int63n(int64(r.maxJitter)))
}

func cacheKey(slug string) string {
	return fmt.Sprintf("item:%s", slug)
}
