package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the schema migrations.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedItems inserts catalogue items for testing.
func seedItems(t *testing.T, pool *pgxpool.Pool, items []model.Item) {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO items (id, title, slug, description, category, price, discount_price, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, it := range items {
		_, err := pool.Exec(ctx, query, it.ID, it.Title, it.Slug, it.Description, it.Category,
			it.Price, it.DiscountPrice, it.Image, it.CreatedAt)
		require.NoError(t, err)
	}
}

func testItem(slug string, price string, discount string) model.Item {
	it := model.Item{
		ID:          uuid.New(),
		Title:       "Item " + slug,
		Slug:        slug,
		Description: "test item",
		Category:    model.CategoryHoodie,
		Price:       decimal.RequireFromString(price),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	if discount != "" {
		it.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	return it
}
