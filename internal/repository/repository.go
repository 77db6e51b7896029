package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ItemRepository defines the interface for catalogue item data access operations.
type ItemRepository interface {
	// GetAll retrieves catalogue items with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Item, error)

	// GetBySlug retrieves a single item by its slug. Returns nil when no item matches.
	GetBySlug(ctx context.Context, slug string) (*model.Item, error)
}

// OrderRepository defines the interface for order data access operations.
// Orders are returned with their line items and coupon loaded.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// FindActiveForUpdate locks and returns the user's unordered order, or nil if there is none.
	FindActiveForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Order, error)

	// FindActive returns the user's unordered order without locking it, or nil if there is none.
	FindActive(ctx context.Context, userID string) (*model.Order, error)

	// EnsureActive returns the user's unordered order, creating it first if necessary.
	// The returned order row is locked for the rest of the transaction.
	EnsureActive(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*model.Order, error)

	// GetByIDForUpdate locks and returns an order by its ID, or nil if it does not exist.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order by its ID, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListPlacedByUser retrieves every order the user has placed, newest first.
	ListPlacedByUser(ctx context.Context, userID string) ([]model.Order, error)

	// Update persists the order's flags, references and dates.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// LineItemRepository defines the interface for line item data access operations.
type LineItemRepository interface {
	// FindInOrderForUpdate locks and returns the unordered line item for an item in an order.
	// Returns nil when the order does not hold the item.
	FindInOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*model.LineItem, error)

	// Create inserts a new line item.
	Create(ctx context.Context, tx pgx.Tx, li *model.LineItem) error

	// UpdateQuantity sets the quantity of a line item.
	UpdateQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error

	// Delete removes a line item.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// MarkOrdered flags every line item of an order as ordered and returns how many changed.
	MarkOrdered(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its exact code. Returns nil when no coupon matches.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Upsert inserts coupons, updating the amount of codes that already exist.
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// AddressRepository defines the interface for address data access operations.
type AddressRepository interface {
	// Create inserts a new address.
	Create(ctx context.Context, tx pgx.Tx, addr *model.Address) error

	// FindDefault returns the user's default address of the given type, or nil.
	FindDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) (*model.Address, error)

	// ClearDefault unsets the default flag on the user's addresses of the given type.
	ClearDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) error
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// Create records a successful charge.
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error
}

// RefundRepository defines the interface for refund data access operations.
type RefundRepository interface {
	// Create inserts a new refund request.
	Create(ctx context.Context, tx pgx.Tx, refund *model.Refund) error

	// FindPendingForUpdate locks and returns the newest unaccepted refund of an order, or nil.
	FindPendingForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Refund, error)

	// Accept marks a refund as accepted.
	Accept(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}
