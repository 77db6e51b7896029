package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderSelect = `
	SELECT o.id, o.user_id, o.shipping_address_id, o.billing_address_id, o.payment_id,
		o.ordered, o.being_delivered, o.received, o.refund_requested, o.refund_granted,
		o.start_date, o.ordered_date, o.updated_at,
		c.id, c.code, o.coupon_amount
	FROM orders o
	LEFT JOIN coupons c ON c.id = o.coupon_id
`

const lineItemSelect = `
	SELECT li.id, li.user_id, li.order_id, li.quantity, li.ordered,
		i.id, i.title, i.slug, i.description, i.category, i.price, i.discount_price, i.image, i.created_at
	FROM line_items li
	JOIN items i ON i.id = li.item_id
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// FindActiveForUpdate locks and returns the user's unordered order.
func (r *orderRepository) FindActiveForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Order, error) {
	order, err := r.loadOne(ctx, tx, orderSelect+`WHERE o.user_id = $1 AND NOT o.ordered FOR UPDATE OF o`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query active order")
		return nil, fmt.Errorf("failed to query active order: %w", err)
	}
	return order, nil
}

// FindActive returns the user's unordered order without locking it.
func (r *orderRepository) FindActive(ctx context.Context, userID string) (*model.Order, error) {
	order, err := r.loadOne(ctx, r.pool, orderSelect+`WHERE o.user_id = $1 AND NOT o.ordered`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query active order")
		return nil, fmt.Errorf("failed to query active order: %w", err)
	}
	return order, nil
}

// EnsureActive returns the user's unordered order, creating it first if necessary.
func (r *orderRepository) EnsureActive(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*model.Order, error) {
	// The partial unique index makes concurrent creators collapse onto a single row.
	query := `
		INSERT INTO orders (id, user_id, start_date, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) WHERE NOT ordered DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, uuid.New(), userID, now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create active order")
		return nil, fmt.Errorf("failed to create active order: %w", err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Debug().Str("user_id", userID).Msg("active order created")
	}

	order, err := r.FindActiveForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("active order for user %q vanished after insert", userID)
	}
	return order, nil
}

// GetByIDForUpdate locks and returns an order by its ID.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	order, err := r.loadOne(ctx, tx, orderSelect+`WHERE o.id = $1 FOR UPDATE OF o`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return order, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := r.loadOne(ctx, r.pool, orderSelect+`WHERE o.id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if order == nil {
		r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
	}
	return order, nil
}

// ListPlacedByUser retrieves every order the user has placed, newest first.
func (r *orderRepository) ListPlacedByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, orderSelect+`WHERE o.user_id = $1 AND o.ordered ORDER BY o.ordered_date DESC, o.id`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
	}

	items, err := loadLineItems(ctx, r.pool, `WHERE li.order_id = ANY($1::uuid[])`, ids)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query line items")
		return nil, err
	}
	for _, li := range items {
		i := index[*li.OrderID]
		orders[i].LineItems = append(orders[i].LineItems, li)
	}

	return orders, nil
}

// Update persists the order's flags, references and dates. The coupon amount is stored
// with the order so re-imported coupons do not change its total.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders SET
			coupon_id = $2,
			shipping_address_id = $3,
			billing_address_id = $4,
			payment_id = $5,
			ordered = $6,
			being_delivered = $7,
			received = $8,
			refund_requested = $9,
			refund_granted = $10,
			ordered_date = $11,
			updated_at = $12,
			coupon_amount = $13
		WHERE id = $1
	`

	var (
		couponID     *uuid.UUID
		couponAmount decimal.NullDecimal
	)
	if order.Coupon != nil {
		couponID = &order.Coupon.ID
		couponAmount = decimal.NewNullDecimal(order.Coupon.Amount)
	}

	tag, err := tx.Exec(ctx, query,
		order.ID,
		couponID,
		order.ShippingAddressID,
		order.BillingAddressID,
		order.PaymentID,
		order.Ordered,
		order.BeingDelivered,
		order.Received,
		order.RefundRequested,
		order.RefundGranted,
		order.OrderedDate,
		order.UpdatedAt,
		couponAmount,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("status", order.Status().String()).
		Msg("order updated successfully")

	return nil
}

// loadOne reads a single order row and its line items. Returns nil when no row matches.
func (r *orderRepository) loadOne(ctx context.Context, q querier, query string, args ...any) (*model.Order, error) {
	var order model.Order
	if err := scanOrder(q.QueryRow(ctx, query, args...), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := loadLineItems(ctx, q, `WHERE li.order_id = $1`, order.ID)
	if err != nil {
		return nil, err
	}
	order.LineItems = items

	return &order, nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	var (
		couponID     *uuid.UUID
		couponCode   *string
		couponAmount decimal.NullDecimal
	)

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ShippingAddressID,
		&o.BillingAddressID,
		&o.PaymentID,
		&o.Ordered,
		&o.BeingDelivered,
		&o.Received,
		&o.RefundRequested,
		&o.RefundGranted,
		&o.StartDate,
		&o.OrderedDate,
		&o.UpdatedAt,
		&couponID,
		&couponCode,
		&couponAmount,
	)
	if err != nil {
		return err
	}

	if couponID != nil && couponCode != nil {
		o.Coupon = &model.Coupon{ID: *couponID, Code: *couponCode, Amount: couponAmount.Decimal}
	}
	return nil
}

func loadLineItems(ctx context.Context, q querier, where string, args ...any) ([]model.LineItem, error) {
	rows, err := q.Query(ctx, lineItemSelect+where+` ORDER BY li.created_at, li.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var li model.LineItem
		if err := scanLineItem(rows, &li); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

func scanLineItem(row pgx.Row, li *model.LineItem) error {
	return row.Scan(
		&li.ID,
		&li.UserID,
		&li.OrderID,
		&li.Quantity,
		&li.Ordered,
		&li.Item.ID,
		&li.Item.Title,
		&li.Item.Slug,
		&li.Item.Description,
		&li.Item.Category,
		&li.Item.Price,
		&li.Item.DiscountPrice,
		&li.Item.Image,
		&li.Item.CreatedAt,
	)
}
