package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderHandler handles checkout and order lifecycle HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// TotalResponse is the amount due for an order.
type TotalResponse struct {
	OrderID uuid.UUID       `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

// Checkout handles POST /api/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Checkout(r.Context(), user, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Total handles GET /api/orders/{id}/total requests.
func (h *OrderHandler) Total(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	total, err := h.service.GetTotal(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TotalResponse{OrderID: id, Total: total})
}

// RequestRefund handles POST /api/orders/{id}/refund requests.
func (h *OrderHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.RefundRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.RequestRefund(r.Context(), user, id, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// MarkBeingDelivered handles POST /api/orders/{id}/deliver requests.
func (h *OrderHandler) MarkBeingDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkBeingDelivered)
}

// MarkReceived handles POST /api/orders/{id}/receive requests.
func (h *OrderHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkReceived)
}

// GrantRefund handles POST /api/orders/{id}/refund/grant requests.
func (h *OrderHandler) GrantRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.GrantRefund)
}

// DenyRefund handles POST /api/orders/{id}/refund/deny requests.
func (h *OrderHandler) DenyRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.DenyRefund)
}

// transition runs an operator state change on the order named in the path.
func (h *OrderHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error),
) {
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := op(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
