package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// Create records a successful charge.
func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, amount, stripe_charge_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query, p.ID, p.UserID, p.Amount, p.StripeChargeID, p.Timestamp)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", p.UserID).
			Str("charge_id", p.StripeChargeID).
			Msg("failed to record payment")
		return fmt.Errorf("failed to record payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", p.ID.String()).
		Str("amount", p.Amount.StringFixed(2)).
		Msg("payment recorded successfully")

	return nil
}
