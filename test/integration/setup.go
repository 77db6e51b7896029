package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAPIKey is the API key the test server accepts.
const TestAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a migrated PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedItems inserts the test catalogue: a discounted hoodie and full-price track pants.
func SeedItems(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	items := []struct {
		slug, title string
		category    model.Category
		price       string
		discount    *string
	}{
		{"grey-hoodie", "Grey Hoodie", model.CategoryHoodie, "20.00", strPtr("15.00")},
		{"track-pants", "Track Pants", model.CategoryTrackPants, "10.00", nil},
		{"free-socks", "Free Socks", model.CategorySportSuit, "5.00", strPtr("0")},
	}

	for _, it := range items {
		discount := decimal.NullDecimal{}
		if it.discount != nil {
			discount = decimal.NewNullDecimal(decimal.RequireFromString(*it.discount))
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO items (id, title, slug, description, category, price, discount_price)
			 VALUES ($1, $2, $3, '', $4, $5, $6)`,
			uuid.New(), it.title, it.slug, it.category, decimal.RequireFromString(it.price), discount,
		)
		if err != nil {
			t.Fatalf("failed to seed item %s: %v", it.slug, err)
		}
	}
}

// SeedCoupons imports a coupon catalogue file through the coupon importer.
func SeedCoupons(t *testing.T, pool *pgxpool.Pool, path string) {
	t.Helper()

	logger := zerolog.Nop()
	importer := coupon.NewImporter(coupon.NewFileLoader(logger), repository.NewCouponRepository(pool, logger), logger)
	if _, err := importer.Import(context.Background(), []string{path}); err != nil {
		t.Fatalf("failed to import coupons: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"refunds", "line_items", "orders", "payments", "addresses", "coupons", "items"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// FakeStripe is an in-memory PaymentIntents endpoint. Tokens containing "decline" fail.
// Like Stripe, it replays the first response sent for an idempotency key and rejects the key
// when it comes back with different parameters.
type FakeStripe struct {
	Server  *httptest.Server
	Charges atomic.Int32

	mu      sync.Mutex
	replies map[string]stripeReply
}

type stripeReply struct {
	params string
	status int
	body   string
}

// NewFakeStripe starts the fake endpoint and stops it when the test ends.
func NewFakeStripe(t *testing.T) *FakeStripe {
	t.Helper()

	f := &FakeStripe{replies: make(map[string]stripeReply)}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		reply := f.reply(r.Header.Get("Idempotency-Key"), r.PostForm.Get("payment_method"),
			r.PostForm.Get("amount"), r.PostForm.Get("currency"))
		w.WriteHeader(reply.status)
		_, _ = w.Write([]byte(reply.body))
	}))
	t.Cleanup(f.Server.Close)

	return f
}

func (f *FakeStripe) reply(key, method, amount, currency string) stripeReply {
	f.mu.Lock()
	defer f.mu.Unlock()

	params := method + "|" + amount + "|" + currency
	if saved, ok := f.replies[key]; ok && key != "" {
		if saved.params != params {
			return stripeReply{
				status: http.StatusBadRequest,
				body:   `{"error":{"type":"idempotency_error","message":"Keys for idempotent requests can only be used with the same parameters they were first used with."}}`,
			}
		}
		return saved
	}

	reply := stripeReply{params: params}
	if strings.Contains(method, "decline") {
		reply.status = http.StatusPaymentRequired
		reply.body = `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`
	} else {
		n := f.Charges.Add(1)
		reply.status = http.StatusOK
		reply.body = fmt.Sprintf(`{"id":"pi_test_%d","object":"payment_intent","status":"succeeded","amount":%s,"currency":%q}`,
			n, amount, currency)
	}
	if key != "" {
		f.replies[key] = reply
	}
	return reply
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	events chan events.Event
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{events: make(chan events.Event, 64)}
}

func (p *RecordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events <- e
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Types drains the events published so far and returns their types in order.
func (p *RecordingPublisher) Types() []events.Type {
	var out []events.Type
	for {
		select {
		case e := <-p.events:
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

// SetupTestServer wires the full application against the test database, a miniredis cache
// and the fake Stripe endpoint.
func SetupTestServer(t *testing.T, testDB *TestDB, stripe *FakeStripe, publisher events.Publisher) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	orderRepo := repository.NewOrderRepository(pool, logger)
	lineItemRepo := repository.NewLineItemRepository(pool, logger)

	catalog := service.NewCatalogService(
		repository.NewItemRepository(pool, logger),
		cache.NewRedisCache(client, time.Minute),
		logger,
	)
	cart := service.NewCartService(
		catalog,
		orderRepo,
		lineItemRepo,
		coupon.NewResolver(repository.NewCouponRepository(pool, logger), logger),
		logger,
	)
	orders := service.NewOrderService(
		service.Repositories{
			Orders:    orderRepo,
			LineItems: lineItemRepo,
			Addresses: repository.NewAddressRepository(pool, logger),
			Payments:  repository.NewPaymentRepository(pool, logger),
			Refunds:   repository.NewRefundRepository(pool, logger),
		},
		payment.NewStripeCharger(config.StripeConfig{
			SecretKey:  "sk_test_integration",
			Currency:   "usd",
			BackendURL: stripe.Server.URL,
		}, logger),
		publisher,
		logger,
	)

	return router.New(router.Handlers{
		Items:  handler.NewItemHandler(catalog, logger),
		Cart:   handler.NewCartHandler(cart, logger),
		Orders: handler.NewOrderHandler(orders, logger),
	}, TestAPIKey, logger)
}

func strPtr(s string) *string { return &s }
