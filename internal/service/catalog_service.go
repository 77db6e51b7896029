package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// catalogService implements CatalogService with a read-through item cache.
type catalogService struct {
	itemRepo repository.ItemRepository
	cache    cache.ItemCache
	sfg      singleflight.Group
	logger   zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(itemRepo repository.ItemRepository, itemCache cache.ItemCache, logger zerolog.Logger) CatalogService {
	if itemCache == nil {
		itemCache = cache.NopCache{}
	}
	return &catalogService{
		itemRepo: itemRepo,
		cache:    itemCache,
		logger:   logger.With().Str("service", "catalog").Logger(),
	}
}

// ListItems retrieves catalogue items with pagination.
func (s *catalogService) ListItems(ctx context.Context, limit, offset int) ([]model.Item, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.itemRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list items")
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	s.logger.Debug().
		Int("count", len(items)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved items")

	return items, nil
}

// GetItem retrieves a single item by slug. Concurrent misses for one slug share a database read.
// The shared read outlives any single caller; each caller still stops waiting when its own
// context ends.
func (s *catalogService) GetItem(ctx context.Context, slug string) (*model.Item, error) {
	if slug == "" {
		return nil, model.ErrItemNotFound
	}

	shared := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(slug, func() (interface{}, error) {
		item, err := s.cache.Get(shared, slug)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("slug", slug).Msg("item cache read failed")
		}

		item, err = s.itemRepo.GetBySlug(shared, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to get item: %w", err)
		}
		if item == nil {
			return nil, model.ErrItemNotFound
		}

		if err := s.cache.Set(shared, item); err != nil {
			s.logger.Warn().Err(err).Str("slug", slug).Msg("item cache write failed")
		}
		return item, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		if !errors.Is(res.Err, model.ErrItemNotFound) {
			s.logger.Error().Err(res.Err).Str("slug", slug).Msg("failed to get item")
		}
		return nil, res.Err
	}

	// Callers may modify the item; each gets its own copy.
	item := *res.Val.(*model.Item)
	return &item, nil
}
