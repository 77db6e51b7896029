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

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its exact code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.pool.QueryRow(ctx, `SELECT id, code, amount FROM coupons WHERE code = $1`, code).
		Scan(&c.ID, &c.Code, &c.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// Upsert inserts coupons in a single batch, updating the amount of codes that already exist.
func (r *couponRepository) Upsert(ctx context.Context, coupons []model.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO coupons (id, code, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET amount = EXCLUDED.amount
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, c := range coupons {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(query, id, c.Code, c.Amount)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(coupons); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			r.logger.Error().
				Err(err).
				Str("code", coupons[i].Code).
				Msg("failed to upsert coupon")
			return 0, fmt.Errorf("failed to upsert coupon %q: %w", coupons[i].Code, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit coupon import")
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().Int("count", len(coupons)).Msg("coupons upserted successfully")

	return len(coupons), nil
}
