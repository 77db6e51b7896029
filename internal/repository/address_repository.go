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

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// Create inserts a new address.
func (r *addressRepository) Create(ctx context.Context, tx pgx.Tx, addr *model.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, street_address, apartment_address, country, zip, address_type, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		addr.ID,
		addr.UserID,
		addr.StreetAddress,
		addr.ApartmentAddress,
		addr.Country,
		addr.Zip,
		addr.Type,
		addr.Default,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", addr.UserID).
			Str("address_type", string(addr.Type)).
			Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// FindDefault returns the user's default address of the given type.
func (r *addressRepository) FindDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) (*model.Address, error) {
	query := `
		SELECT id, user_id, street_address, apartment_address, country, zip, address_type, is_default
		FROM addresses
		WHERE user_id = $1 AND address_type = $2 AND is_default
	`

	var a model.Address
	err := tx.QueryRow(ctx, query, userID, addrType).Scan(
		&a.ID,
		&a.UserID,
		&a.StreetAddress,
		&a.ApartmentAddress,
		&a.Country,
		&a.Zip,
		&a.Type,
		&a.Default,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query default address")
		return nil, fmt.Errorf("failed to query default address: %w", err)
	}

	return &a, nil
}

// ClearDefault unsets the default flag on the user's addresses of the given type.
func (r *addressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) error {
	query := `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND address_type = $2 AND is_default`

	if _, err := tx.Exec(ctx, query, userID, addrType); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear default address")
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}
