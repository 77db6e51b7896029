package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// lineItemRepository implements the LineItemRepository interface using PostgreSQL.
type lineItemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLineItemRepository creates a new PostgreSQL-backed line item repository.
func NewLineItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) LineItemRepository {
	return &lineItemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "line_item").Logger(),
	}
}

// FindInOrderForUpdate locks and returns the unordered line item for an item in an order.
func (r *lineItemRepository) FindInOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*model.LineItem, error) {
	query := lineItemSelect + `
		WHERE li.order_id = $1 AND li.item_id = $2 AND NOT li.ordered
		FOR UPDATE OF li
	`

	var li model.LineItem
	err := scanLineItem(tx.QueryRow(ctx, query, orderID, itemID), &li)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("item_id", itemID.String()).
			Msg("failed to query line item")
		return nil, fmt.Errorf("failed to query line item: %w", err)
	}

	return &li, nil
}

// Create inserts a new line item.
func (r *lineItemRepository) Create(ctx context.Context, tx pgx.Tx, li *model.LineItem) error {
	query := `
		INSERT INTO line_items (id, user_id, item_id, order_id, quantity, ordered)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query, li.ID, li.UserID, li.Item.ID, li.OrderID, li.Quantity, li.Ordered)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("line_item_id", li.ID.String()).
			Str("item_id", li.Item.ID.String()).
			Msg("failed to create line item")
		return fmt.Errorf("failed to create line item: %w", err)
	}

	r.logger.Debug().
		Str("line_item_id", li.ID.String()).
		Str("slug", li.Item.Slug).
		Msg("line item created successfully")

	return nil
}

// UpdateQuantity sets the quantity of a line item.
func (r *lineItemRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	tag, err := tx.Exec(ctx, `UPDATE line_items SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("line_item_id", id.String()).Msg("failed to update line item quantity")
		return fmt.Errorf("failed to update line item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotInCart
	}
	return nil
}

// Delete removes a line item.
func (r *lineItemRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM line_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("line_item_id", id.String()).Msg("failed to delete line item")
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotInCart
	}
	return nil
}

// MarkOrdered flags every line item of an order as ordered.
func (r *lineItemRepository) MarkOrdered(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `UPDATE line_items SET ordered = TRUE WHERE order_id = $1 AND NOT ordered`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to mark line items ordered")
		return 0, fmt.Errorf("failed to mark line items ordered: %w", err)
	}
	return tag.RowsAffected(), nil
}
