package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repositories groups the stores the order lifecycle writes to.
type Repositories struct {
	Orders    repository.OrderRepository
	LineItems repository.LineItemRepository
	Addresses repository.AddressRepository
	Payments  repository.PaymentRepository
	Refunds   repository.RefundRepository
}

// orderService implements OrderService.
type orderService struct {
	repos     Repositories
	charger   payment.Charger
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	repos Repositories,
	charger payment.Charger,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{
		repos:     repos,
		charger:   charger,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Checkout charges the user's active order and places it.
func (s *orderService) Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.ErrCheckoutIncomplete
	}

	tx, err := s.repos.Orders.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	order, err := s.repos.Orders.FindActiveForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	if order == nil || len(order.LineItems) == 0 {
		return nil, model.ErrEmptyCart
	}

	now := time.Now().UTC()

	billing, err := s.resolveAddress(ctx, tx, userID, model.AddressTypeBilling, req.BillingAddress, req.UseDefaultBilling)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, model.ErrBillingRequired
	}

	shipping, err := s.resolveAddress(ctx, tx, userID, model.AddressTypeShipping, req.ShippingAddress, req.UseDefaultShipping)
	if err != nil {
		return nil, err
	}
	var shippingID *uuid.UUID
	if shipping != nil {
		shippingID = &shipping.ID
	}

	if strings.TrimSpace(req.PaymentToken) == "" {
		return nil, model.ErrPaymentRequired
	}

	total := order.Total()
	if !total.IsPositive() {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("total", total.String()).
			Msg("refusing to charge a non-positive total")
		return nil, model.ErrNothingToCharge
	}

	charge, err := s.charger.Charge(ctx, payment.ChargeRequest{
		Amount:         total,
		Token:          req.PaymentToken,
		Description:    "Order " + order.ID.String(),
		IdempotencyKey: checkoutIdempotencyKey(order.ID, req.PaymentToken, total),
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  userID,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("charge failed")
		return nil, fmt.Errorf("%w: %v", model.ErrPaymentFailed, err)
	}

	pay := &model.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		Amount:         total,
		StripeChargeID: charge.ChargeID,
		Timestamp:      now,
	}
	if err := s.repos.Payments.Create(ctx, tx, pay); err != nil {
		s.logChargeOrphaned(order, charge.ChargeID, err)
		return nil, fmt.Errorf("failed to check out: %w", err)
	}

	if _, err := s.repos.LineItems.MarkOrdered(ctx, tx, order.ID); err != nil {
		s.logChargeOrphaned(order, charge.ChargeID, err)
		return nil, fmt.Errorf("failed to check out: %w", err)
	}

	if err := order.Place(billing.ID, shippingID, pay.ID, now); err != nil {
		return nil, err
	}

	if err := s.repos.Orders.Update(ctx, tx, order); err != nil {
		s.logChargeOrphaned(order, charge.ChargeID, err)
		return nil, fmt.Errorf("failed to check out: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logChargeOrphaned(order, charge.ChargeID, err)
		return nil, fmt.Errorf("failed to check out: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_id", order.ID.String()).
		Str("payment_id", pay.ID.String()).
		Str("total", total.StringFixed(2)).
		Int("line_items", len(order.LineItems)).
		Msg("order placed")

	s.publish(ctx, events.TypeOrderPlaced, order)

	return model.NewOrderResponse(order), nil
}

// resolveAddress picks the explicit address if one was given, otherwise the user's default when asked.
// It returns nil when neither applies.
func (s *orderService) resolveAddress(
	ctx context.Context,
	tx pgx.Tx,
	userID string,
	addrType model.AddressType,
	input *model.AddressInput,
	useDefault bool,
) (*model.Address, error) {
	if input != nil {
		addr := &model.Address{
			ID:               uuid.New(),
			UserID:           userID,
			StreetAddress:    strings.TrimSpace(input.StreetAddress),
			ApartmentAddress: strings.TrimSpace(input.ApartmentAddress),
			Country:          strings.TrimSpace(input.Country),
			Zip:              strings.TrimSpace(input.Zip),
			Type:             addrType,
			Default:          input.SetDefault,
		}
		if addr.StreetAddress == "" || addr.Country == "" || addr.Zip == "" {
			return nil, model.ErrInvalidAddress
		}

		if addr.Default {
			if err := s.repos.Addresses.ClearDefault(ctx, tx, userID, addrType); err != nil {
				return nil, fmt.Errorf("failed to check out: %w", err)
			}
		}
		if err := s.repos.Addresses.Create(ctx, tx, addr); err != nil {
			return nil, fmt.Errorf("failed to check out: %w", err)
		}
		return addr, nil
	}

	if !useDefault {
		return nil, nil
	}

	addr, err := s.repos.Addresses.FindDefault(ctx, tx, userID, addrType)
	if err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	if addr == nil {
		s.logger.Debug().
			Str("user_id", userID).
			Str("address_type", string(addrType)).
			Msg("no default address on file")
	}
	return addr, nil
}

// logChargeOrphaned records a charge that went through for an order that was not saved.
// The charge has to be reconciled by hand.
func (s *orderService) logChargeOrphaned(order *model.Order, chargeID string, err error) {
	s.logger.Error().
		Err(err).
		Str("order_id", order.ID.String()).
		Str("charge_id", chargeID).
		Msg("charge succeeded but the order was not placed")
}

// MarkBeingDelivered moves an ordered order into delivery.
func (s *orderService) MarkBeingDelivered(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return s.mutate(ctx, "", orderID, func(_ pgx.Tx, o *model.Order, now time.Time) (events.Type, error) {
		return events.TypeOrderBeingDelivered, o.MarkBeingDelivered(now)
	})
}

// MarkReceived records that an order was delivered.
func (s *orderService) MarkReceived(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return s.mutate(ctx, "", orderID, func(_ pgx.Tx, o *model.Order, now time.Time) (events.Type, error) {
		return events.TypeOrderReceived, o.MarkReceived(now)
	})
}

// RequestRefund records a refund request for a placed order.
func (s *orderService) RequestRefund(ctx context.Context, userID string, orderID uuid.UUID, req *model.RefundRequest) (*model.OrderResponse, error) {
	reason, email, err := validateRefundRequest(req)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, orderID, func(tx pgx.Tx, o *model.Order, now time.Time) (events.Type, error) {
		if err := o.RequestRefund(now); err != nil {
			return "", err
		}
		refund := &model.Refund{
			ID:        uuid.New(),
			OrderID:   o.ID,
			Reason:    reason,
			Email:     email,
			CreatedAt: now,
		}
		if err := s.repos.Refunds.Create(ctx, tx, refund); err != nil {
			return "", err
		}
		return events.TypeRefundRequested, nil
	})
}

// GrantRefund accepts the pending refund. A granted refund is left as it is.
// The original payment is not reversed here.
func (s *orderService) GrantRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return s.mutate(ctx, "", orderID, func(tx pgx.Tx, o *model.Order, now time.Time) (events.Type, error) {
		changed, err := o.GrantRefund(now)
		if err != nil || !changed {
			return "", err
		}

		pending, err := s.repos.Refunds.FindPendingForUpdate(ctx, tx, o.ID)
		if err != nil {
			return "", err
		}
		if pending == nil {
			s.logger.Warn().Str("order_id", o.ID.String()).Msg("refund requested without a refund record")
			return "", model.ErrInvalidTransition
		}
		if err := s.repos.Refunds.Accept(ctx, tx, pending.ID); err != nil {
			return "", err
		}
		return events.TypeRefundGranted, nil
	})
}

// DenyRefund rejects the pending refund. The refund record stays unaccepted.
func (s *orderService) DenyRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return s.mutate(ctx, "", orderID, func(_ pgx.Tx, o *model.Order, now time.Time) (events.Type, error) {
		return events.TypeRefundDenied, o.DenyRefund(now)
	})
}

// transition applies a state change to a locked order. An empty event type means
// nothing changed and nothing is written.
type transition func(tx pgx.Tx, order *model.Order, now time.Time) (events.Type, error)

func (s *orderService) mutate(ctx context.Context, userID string, orderID uuid.UUID, apply transition) (*model.OrderResponse, error) {
	tx, err := s.repos.Orders.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	order, err := s.repos.Orders.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil || (userID != "" && order.UserID != userID) {
		return nil, model.ErrOrderNotFound
	}

	from := order.Status()
	eventType, err := apply(tx, order, time.Now().UTC())
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", from.String()).
			Msg("order transition rejected")
		return nil, err
	}
	if eventType == "" {
		return model.NewOrderResponse(order), nil
	}

	if err := s.repos.Orders.Update(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", from.String()).
		Str("to", order.Status().String()).
		Msg("order status changed")

	s.publish(ctx, eventType, order)

	return model.NewOrderResponse(order), nil
}

// GetOrder retrieves an order with its line items and totals.
func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return model.NewOrderResponse(order), nil
}

// GetTotal computes the amount due for an order.
func (s *orderService) GetTotal(ctx context.Context, userID string, orderID uuid.UUID) (decimal.Decimal, error) {
	order, err := s.load(ctx, userID, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	warnNegativeTotal(s.logger, order)
	return order.Total(), nil
}

// ListOrders retrieves every order the user has placed, newest first.
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]model.OrderResponse, error) {
	orders, err := s.repos.Orders.ListPlacedByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]model.OrderResponse, len(orders))
	for i := range orders {
		out[i] = *model.NewOrderResponse(&orders[i])
	}
	return out, nil
}

func (s *orderService) load(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (userID != "" && order.UserID != userID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// publish emits a lifecycle event. The state change is already committed, so failures are only logged.
func (s *orderService) publish(ctx context.Context, t events.Type, order *model.Order) {
	if err := s.publisher.Publish(ctx, events.NewEvent(t, order, time.Now().UTC())); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(t)).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}

// validateRefundRequest requires a reason and a plain email address.
func validateRefundRequest(req *model.RefundRequest) (string, string, error) {
	if req == nil {
		return "", "", model.ErrInvalidRefund
	}

	reason := strings.TrimSpace(req.Reason)
	email := strings.TrimSpace(req.Email)
	if reason == "" || email == "" {
		return "", "", model.ErrInvalidRefund
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", model.ErrInvalidRefund
	}

	return reason, email, nil
}

// checkoutIdempotencyKey identifies one charge attempt. Retrying with the same token and amount
// reuses the key; a new card or a changed cart gets a fresh one.
func checkoutIdempotencyKey(orderID uuid.UUID, token string, amount decimal.Decimal) string {
	attempt := uuid.NewSHA1(orderID, []byte(strings.TrimSpace(token)+"|"+amount.StringFixed(2)))
	return "checkout-" + attempt.String()
}
