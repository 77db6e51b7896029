package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	catalog      CatalogService
	orderRepo    repository.OrderRepository
	lineItemRepo repository.LineItemRepository
	coupons      CouponResolver
	logger       zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	catalog CatalogService,
	orderRepo repository.OrderRepository,
	lineItemRepo repository.LineItemRepository,
	coupons CouponResolver,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		catalog:      catalog,
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		coupons:      coupons,
		logger:       logger.With().Str("service", "cart").Logger(),
	}
}

// AddToCart adds one unit of an item to the user's active order.
func (s *cartService) AddToCart(ctx context.Context, userID, slug string) (*model.LineItem, error) {
	item, err := s.catalog.GetItem(ctx, slug)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	now := time.Now().UTC()
	order, err := s.orderRepo.EnsureActive(ctx, tx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	li, err := s.lineItemRepo.FindInOrderForUpdate(ctx, tx, order.ID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	if li != nil {
		li.Quantity++
		if err := s.lineItemRepo.UpdateQuantity(ctx, tx, li.ID, li.Quantity); err != nil {
			return nil, fmt.Errorf("failed to add to cart: %w", err)
		}
	} else {
		li = &model.LineItem{
			ID:       uuid.New(),
			UserID:   userID,
			OrderID:  &order.ID,
			Item:     *item,
			Quantity: 1,
		}
		if err := s.lineItemRepo.Create(ctx, tx, li); err != nil {
			return nil, fmt.Errorf("failed to add to cart: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_id", order.ID.String()).
		Str("slug", slug).
		Int("quantity", li.Quantity).
		Msg("item added to cart")

	return li, nil
}

// RemoveFromCart takes one unit of an item out of the cart.
func (s *cartService) RemoveFromCart(ctx context.Context, userID, slug string) error {
	return s.decrement(ctx, userID, slug)
}

// RemoveSingleItem decrements the item's quantity by exactly one.
func (s *cartService) RemoveSingleItem(ctx context.Context, userID, slug string) error {
	return s.decrement(ctx, userID, slug)
}

// decrement lowers a line item's quantity by one and deletes it when nothing is left.
func (s *cartService) decrement(ctx context.Context, userID, slug string) error {
	item, err := s.catalog.GetItem(ctx, slug)
	if err != nil {
		return err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	order, err := s.orderRepo.FindActiveForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	if order == nil {
		return model.ErrNotInCart
	}

	li, err := s.lineItemRepo.FindInOrderForUpdate(ctx, tx, order.ID, item.ID)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	if li == nil {
		return model.ErrNotInCart
	}

	remaining := li.Quantity - 1
	if remaining > 0 {
		err = s.lineItemRepo.UpdateQuantity(ctx, tx, li.ID, remaining)
	} else {
		err = s.lineItemRepo.Delete(ctx, tx, li.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to remove from cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_id", order.ID.String()).
		Str("slug", slug).
		Int("quantity", remaining).
		Msg("item removed from cart")

	return nil
}

// GetCart summarises the user's active order.
func (s *cartService) GetCart(ctx context.Context, userID string) (*model.OrderResponse, error) {
	order, err := s.orderRepo.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	warnNegativeTotal(s.logger, order)
	return model.NewOrderResponse(order), nil
}

// ApplyCoupon attaches a coupon to the user's active order.
func (s *cartService) ApplyCoupon(ctx context.Context, userID, code string) (*model.OrderResponse, error) {
	coupon, err := s.coupons.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	order, err := s.orderRepo.FindActiveForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if err := order.ApplyCoupon(coupon, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_id", order.ID.String()).
		Str("coupon", coupon.Code).
		Msg("coupon applied")

	warnNegativeTotal(s.logger, order)
	return model.NewOrderResponse(order), nil
}
