package coupon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ImportResult summarises a coupon import.
type ImportResult struct {
	Files   int
	Coupons int
}

// Importer loads coupon catalogue files and stores their coupons.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads every file concurrently and upserts the union of their coupons in one batch.
// When a code appears in several files the amount from the file listed last wins.
// Nothing is stored if any file fails to load.
func (im *Importer) Import(ctx context.Context, filePaths []string) (ImportResult, error) {
	if len(filePaths) == 0 {
		return ImportResult{}, errors.New("no coupon files to import")
	}

	im.logger.Info().
		Int("file_count", len(filePaths)).
		Msg("importing coupon files")

	type loadResult struct {
		index int
		set   CouponSet
		err   error
	}

	resultChan := make(chan loadResult, len(filePaths))
	var wg sync.WaitGroup

	for i, filePath := range filePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{
				index: index,
				set:   set,
				err:   err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(filePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := NewMapCouponSet(1024)
	for i, result := range results {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", filePaths[i]).
				Msg("failed to load coupon file")
			return ImportResult{}, fmt.Errorf("failed to load coupon file %s: %w", filePaths[i], result.err)
		}
		merged.Merge(result.set)
	}

	stored, err := im.store.Upsert(ctx, merged.Coupons())
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to store coupons: %w", err)
	}

	im.logger.Info().
		Int("file_count", len(filePaths)).
		Int("coupons", stored).
		Msg("coupon import finished")

	return ImportResult{Files: len(filePaths), Coupons: stored}, nil
}
