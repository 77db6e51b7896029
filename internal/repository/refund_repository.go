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

// refundRepository implements the RefundRepository interface using PostgreSQL.
type refundRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRefundRepository creates a new PostgreSQL-backed refund repository.
func NewRefundRepository(pool *pgxpool.Pool, logger zerolog.Logger) RefundRepository {
	return &refundRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "refund").Logger(),
	}
}

// Create inserts a new refund request.
func (r *refundRepository) Create(ctx context.Context, tx pgx.Tx, refund *model.Refund) error {
	query := `
		INSERT INTO refunds (id, order_id, reason, email, accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		refund.ID,
		refund.OrderID,
		refund.Reason,
		refund.Email,
		refund.Accepted,
		refund.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", refund.OrderID.String()).
			Msg("failed to create refund")
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}

// FindPendingForUpdate locks and returns the newest unaccepted refund of an order.
func (r *refundRepository) FindPendingForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Refund, error) {
	query := `
		SELECT id, order_id, reason, email, accepted, created_at
		FROM refunds
		WHERE order_id = $1 AND NOT accepted
		ORDER BY created_at DESC, id
		LIMIT 1
		FOR UPDATE
	`

	var rf model.Refund
	err := tx.QueryRow(ctx, query, orderID).Scan(
		&rf.ID,
		&rf.OrderID,
		&rf.Reason,
		&rf.Email,
		&rf.Accepted,
		&rf.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query pending refund")
		return nil, fmt.Errorf("failed to query pending refund: %w", err)
	}

	return &rf, nil
}

// Accept marks a refund as accepted.
func (r *refundRepository) Accept(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE refunds SET accepted = TRUE WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("refund_id", id.String()).Msg("failed to accept refund")
		return fmt.Errorf("failed to accept refund: %w", err)
	}
	return nil
}
