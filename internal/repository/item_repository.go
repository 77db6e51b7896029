package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const itemColumns = `id, title, slug, description, category, price, discount_price, image, created_at`

// itemRepository implements the ItemRepository interface using PostgreSQL.
type itemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewItemRepository creates a new PostgreSQL-backed item repository.
func NewItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) ItemRepository {
	return &itemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "item").Logger(),
	}
}

// GetAll retrieves catalogue items with pagination support.
func (r *itemRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY title, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query items")
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan item row")
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating item rows")
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// GetBySlug retrieves a single item by its slug.
func (r *itemRepository) GetBySlug(ctx context.Context, slug string) (*model.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE slug = $1
	`

	var it model.Item
	err := scanItem(r.pool.QueryRow(ctx, query, slug), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("slug", slug).Msg("item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query item")
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	return &it, nil
}

func scanItem(row pgx.Row, it *model.Item) error {
	err := row.Scan(
		&it.ID,
		&it.Title,
		&it.Slug,
		&it.Description,
		&it.Category,
		&it.Price,
		&it.DiscountPrice,
		&it.Image,
		&it.CreatedAt,
	)
	if err != nil {
		return err
	}
	if !it.Category.Valid() {
		return fmt.Errorf("item %q has unknown category %q", it.Slug, it.Category)
	}
	return nil
}
