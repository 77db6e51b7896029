package events

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an order lifecycle event.
type Type string

const (
	TypeOrderPlaced         Type = "order.placed"
	TypeOrderBeingDelivered Type = "order.being_delivered"
	TypeOrderReceived       Type = "order.received"
	TypeRefundRequested     Type = "refund.requested"
	TypeRefundGranted       Type = "refund.granted"
	TypeRefundDenied        Type = "refund.denied"
)

// Event is published after an order changes state.
type Event struct {
	Type       Type              `json:"type"`
	OrderID    uuid.UUID         `json:"orderId"`
	UserID     string            `json:"userId"`
	Status     model.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// NewEvent builds an event describing the order's current state.
func NewEvent(t Type, order *model.Order, now time.Time) Event {
	return Event{
		Type:       t,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status(),
		Total:      order.Total(),
		OccurredAt: now,
	}
}

// Publisher delivers lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
