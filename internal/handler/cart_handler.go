package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles requests against the caller's active order.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items/{slug} requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	li, err := h.service.AddToCart(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, li)
}

// RemoveItem handles DELETE /api/cart/items/{slug} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveFromCart)
}

// RemoveSingleItem handles DELETE /api/cart/items/{slug}/single requests.
func (h *CartHandler) RemoveSingleItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveSingleItem)
}

func (h *CartHandler) remove(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID, slug string) error,
) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	if err := op(r.Context(), user, chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// ApplyCoupon handles POST /api/cart/coupon requests.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CouponRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.service.ApplyCoupon(r.Context(), user, req.Code)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
