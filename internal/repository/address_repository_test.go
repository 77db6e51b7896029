package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRepository_Defaults(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	orders := NewOrderRepository(pool, zerolog.Nop())
	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := orders.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	none, err := repo.FindDefault(ctx, tx, "alice", model.AddressTypeBilling)
	require.NoError(t, err)
	assert.Nil(t, none)

	first := &model.Address{
		ID: uuid.New(), UserID: "alice", StreetAddress: "1 Main St", Country: "US", Zip: "10001",
		Type: model.AddressTypeBilling, Default: true,
	}
	require.NoError(t, repo.Create(ctx, tx, first))

	shipping := &model.Address{
		ID: uuid.New(), UserID: "alice", StreetAddress: "9 Dock Rd", Country: "US", Zip: "10002",
		Type: model.AddressTypeShipping, Default: true,
	}
	require.NoError(t, repo.Create(ctx, tx, shipping))

	got, err := repo.FindDefault(ctx, tx, "alice", model.AddressTypeBilling)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, repo.ClearDefault(ctx, tx, "alice", model.AddressTypeBilling))
	second := &model.Address{
		ID: uuid.New(), UserID: "alice", StreetAddress: "2 Side St", Country: "US", Zip: "10003",
		Type: model.AddressTypeBilling, Default: true,
	}
	require.NoError(t, repo.Create(ctx, tx, second))

	got, err = repo.FindDefault(ctx, tx, "alice", model.AddressTypeBilling)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)

	// Clearing billing defaults leaves the shipping default alone.
	got, err = repo.FindDefault(ctx, tx, "alice", model.AddressTypeShipping)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shipping.ID, got.ID)
}
