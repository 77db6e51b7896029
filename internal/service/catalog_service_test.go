package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListItems(t *testing.T) {
	ctx := context.Background()
	items := []model.Item{*testItem("hoodie", "20", ""), *testItem("pants", "15", "12")}

	tests := []struct {
		name           string
		limit, offset  int
		expectedLimit  int
		expectedOffset int
	}{
		{name: "explicit page", limit: 20, offset: 5, expectedLimit: 20, expectedOffset: 5},
		{name: "default limit", limit: 0, offset: 0, expectedLimit: 10, expectedOffset: 0},
		{name: "limit capped", limit: 500, offset: 0, expectedLimit: 100, expectedOffset: 0},
		{name: "negative offset", limit: 10, offset: -3, expectedLimit: 10, expectedOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockItemRepository)
			repo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return(items, nil)

			svc := NewCatalogService(repo, nil, zerolog.Nop())
			got, err := svc.ListItems(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, got, 2)
			repo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_ListItems_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockItemRepository)
	repo.On("GetAll", ctx, 10, 0).Return(nil, errors.New("connection refused"))

	svc := NewCatalogService(repo, nil, zerolog.Nop())
	_, err := svc.ListItems(ctx, 10, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get items")
}

func TestCatalogService_GetItem_CacheHit(t *testing.T) {
	ctx := context.Background()
	item := testItem("hoodie", "20", "")

	repo := new(MockItemRepository)
	itemCache := new(MockItemCache)
	itemCache.On("Get", mock.Anything, "hoodie").Return(item, nil)

	svc := NewCatalogService(repo, itemCache, zerolog.Nop())
	got, err := svc.GetItem(ctx, "hoodie")

	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	repo.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
}

func TestCatalogService_GetItem_CacheMissFillsCache(t *testing.T) {
	ctx := context.Background()
	item := testItem("hoodie", "20", "")

	repo := new(MockItemRepository)
	repo.On("GetBySlug", mock.Anything, "hoodie").Return(item, nil)
	itemCache := new(MockItemCache)
	itemCache.On("Get", mock.Anything, "hoodie").Return(nil, cache.ErrCacheMiss)
	itemCache.On("Set", mock.Anything, item).Return(nil)

	svc := NewCatalogService(repo, itemCache, zerolog.Nop())
	got, err := svc.GetItem(ctx, "hoodie")

	require.NoError(t, err)
	assert.Equal(t, item.Slug, got.Slug)
	repo.AssertExpectations(t)
	itemCache.AssertExpectations(t)
}

func TestCatalogService_GetItem_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	item := testItem("hoodie", "20", "")

	repo := new(MockItemRepository)
	repo.On("GetBySlug", mock.Anything, "hoodie").Return(item, nil)
	itemCache := new(MockItemCache)
	itemCache.On("Get", mock.Anything, "hoodie").Return(nil, errors.New("redis down"))
	itemCache.On("Set", mock.Anything, item).Return(errors.New("redis down"))

	svc := NewCatalogService(repo, itemCache, zerolog.Nop())
	got, err := svc.GetItem(ctx, "hoodie")

	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestCatalogService_GetItem_NotFound(t *testing.T) {
	ctx := context.Background()

	repo := new(MockItemRepository)
	repo.On("GetBySlug", mock.Anything, "missing").Return(nil, nil)

	svc := NewCatalogService(repo, nil, zerolog.Nop())

	_, err := svc.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrItemNotFound)

	_, err = svc.GetItem(ctx, "")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	repo.AssertNumberOfCalls(t, "GetBySlug", 1)
}

func TestCatalogService_GetItem_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	item := testItem("hoodie", "20", "")

	itemCache := new(MockItemCache)
	itemCache.On("Get", mock.Anything, "hoodie").Return(item, nil)

	svc := NewCatalogService(new(MockItemRepository), itemCache, zerolog.Nop())

	first, err := svc.GetItem(ctx, "hoodie")
	require.NoError(t, err)
	first.Title = "changed"

	second, err := svc.GetItem(ctx, "hoodie")
	require.NoError(t, err)
	assert.Equal(t, "hoodie", second.Title)
}

func TestCatalogService_GetItem_Concurrent(t *testing.T) {
	ctx := context.Background()
	item := testItem("hoodie", "20", "")

	repo := new(MockItemRepository)
	repo.On("GetBySlug", mock.Anything, "hoodie").Return(item, nil)

	svc := NewCatalogService(repo, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetItem(ctx, "hoodie")
			assert.NoError(t, err)
			if got != nil {
				assert.Equal(t, item.ID, got.ID)
			}
		}()
	}
	wg.Wait()

	calls := 0
	for _, c := range repo.Calls {
		if c.Method == "GetBySlug" {
			calls++
		}
	}
	assert.GreaterOrEqual(t, calls, 1)
	assert.LessOrEqual(t, calls, 20)
}

func TestCatalogService_GetItem_CancelledCallerDoesNotFailOthers(t *testing.T) {
	item := testItem("hoodie", "20", "")
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var readErr error

	repo := new(MockItemRepository)
	repo.On("GetBySlug", mock.Anything, "hoodie").Run(func(args mock.Arguments) {
		once.Do(func() { close(started) })
		<-release
		readErr = args.Get(0).(context.Context).Err()
	}).Return(item, nil)

	svc := NewCatalogService(repo, nil, zerolog.Nop())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetItem(firstCtx, "hoodie")
		firstErr <- err
	}()
	<-started

	type result struct {
		item *model.Item
		err  error
	}
	second := make(chan result, 1)
	go func() {
		got, err := svc.GetItem(context.Background(), "hoodie")
		second <- result{got, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, item.ID, res.item.ID)
	assert.NoError(t, readErr)
}
