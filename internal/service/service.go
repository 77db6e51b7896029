package service

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CatalogService defines read operations on the item catalogue.
type CatalogService interface {
	// ListItems retrieves catalogue items with pagination.
	ListItems(ctx context.Context, limit, offset int) ([]model.Item, error)

	// GetItem retrieves a single item by slug.
	GetItem(ctx context.Context, slug string) (*model.Item, error)
}

// CartService defines operations on a user's active order.
type CartService interface {
	// AddToCart adds one unit of an item, creating the active order and line item as needed.
	AddToCart(ctx context.Context, userID, slug string) (*model.LineItem, error)

	// RemoveFromCart takes one unit of an item out of the cart, deleting the line item at zero.
	RemoveFromCart(ctx context.Context, userID, slug string) error

	// RemoveSingleItem decrements the item's quantity by exactly one.
	RemoveSingleItem(ctx context.Context, userID, slug string) error

	// GetCart summarises the active order. A user without one gets an empty cart.
	GetCart(ctx context.Context, userID string) (*model.OrderResponse, error)

	// ApplyCoupon attaches a coupon to the active order.
	ApplyCoupon(ctx context.Context, userID, code string) (*model.OrderResponse, error)
}

// OrderService defines the order lifecycle operations.
// A non-empty userID restricts the operation to that user's orders.
type OrderService interface {
	// Checkout charges the active order and places it.
	Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// MarkBeingDelivered moves an ordered order into delivery.
	MarkBeingDelivered(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error)

	// MarkReceived records that an order was delivered.
	MarkReceived(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error)

	// RequestRefund records a refund request for a placed order.
	RequestRefund(ctx context.Context, userID string, orderID uuid.UUID, req *model.RefundRequest) (*model.OrderResponse, error)

	// GrantRefund accepts the pending refund. Granting twice has no further effect.
	GrantRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error)

	// DenyRefund rejects the pending refund and returns the order to its previous state.
	DenyRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error)

	// GetOrder retrieves an order with its line items and totals.
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*model.OrderResponse, error)

	// GetTotal computes the amount due for an order.
	GetTotal(ctx context.Context, userID string, orderID uuid.UUID) (decimal.Decimal, error)

	// ListOrders retrieves every order the user has placed.
	ListOrders(ctx context.Context, userID string) ([]model.OrderResponse, error)
}

// CouponResolver turns a customer-entered code into a stored coupon.
type CouponResolver interface {
	Resolve(ctx context.Context, code string) (*model.Coupon, error)
}

// rollback aborts the transaction unless it was already committed.
func rollback(ctx context.Context, tx pgx.Tx, logger zerolog.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// warnNegativeTotal logs orders whose coupon exceeds their subtotal.
func warnNegativeTotal(logger zerolog.Logger, order *model.Order) {
	if order != nil && order.Total().IsNegative() {
		logger.Warn().
			Str("order_id", order.ID.String()).
			Str("subtotal", order.Subtotal().String()).
			Str("total", order.Total().String()).
			Msg("coupon exceeds order subtotal")
	}
}
