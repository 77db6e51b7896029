package cache

import (
	"context"
	"errors"

	"storefront/internal/model"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// ItemCache caches catalogue items by slug.
type ItemCache interface {
	Get(ctx context.Context, slug string) (*model.Item, error)
	Set(ctx context.Context, item *model.Item) error
}

// NopCache never stores anything. Every Get is a miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*model.Item, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, *model.Item) error { return nil }
