package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state derived from an order's flags.
type OrderStatus string

const (
	OrderStatusCart            OrderStatus = "cart"
	OrderStatusOrdered         OrderStatus = "ordered"
	OrderStatusBeingDelivered  OrderStatus = "being_delivered"
	OrderStatusReceived        OrderStatus = "received"
	OrderStatusRefundRequested OrderStatus = "refund_requested"
	OrderStatusRefundGranted   OrderStatus = "refund_granted"
)

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusRefundGranted
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Order is the aggregate root: the user's cart while unordered, a placed order afterwards.
type Order struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id"`
	LineItems         []LineItem `json:"lineItems"`
	Coupon            *Coupon    `json:"coupon,omitempty"`
	ShippingAddressID *uuid.UUID `json:"shippingAddressId,omitempty" db:"shipping_address_id"`
	BillingAddressID  *uuid.UUID `json:"billingAddressId,omitempty" db:"billing_address_id"`
	PaymentID         *uuid.UUID `json:"paymentId,omitempty" db:"payment_id"`
	Ordered           bool       `json:"ordered" db:"ordered"`
	BeingDelivered    bool       `json:"beingDelivered" db:"being_delivered"`
	Received          bool       `json:"received" db:"received"`
	RefundRequested   bool       `json:"refundRequested" db:"refund_requested"`
	RefundGranted     bool       `json:"refundGranted" db:"refund_granted"`
	StartDate         time.Time  `json:"startDate" db:"start_date"`
	OrderedDate       *time.Time `json:"orderedDate,omitempty" db:"ordered_date"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewOrder creates an empty active order for a user.
func NewOrder(userID string, now time.Time) *Order {
	return &Order{
		ID:        uuid.New(),
		UserID:    userID,
		StartDate: now,
		UpdatedAt: now,
	}
}

// Status derives the lifecycle state. Refund states take precedence over delivery states.
func (o *Order) Status() OrderStatus {
	switch {
	case o.RefundGranted:
		return OrderStatusRefundGranted
	case o.RefundRequested:
		return OrderStatusRefundRequested
	case o.Received:
		return OrderStatusReceived
	case o.BeingDelivered:
		return OrderStatusBeingDelivered
	case o.Ordered:
		return OrderStatusOrdered
	default:
		return OrderStatusCart
	}
}

// Subtotal sums the final price of every line item.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.LineItems {
		total = total.Add(o.LineItems[i].FinalPrice())
	}
	return total
}

// Total is the subtotal minus the coupon amount, applied once.
// The result is not clamped and goes negative when the coupon exceeds the subtotal.
func (o *Order) Total() decimal.Decimal {
	total := o.Subtotal()
	if o.Coupon != nil {
		total = total.Sub(o.Coupon.Amount)
	}
	return total
}

// ApplyCoupon attaches a coupon to an unordered order.
func (o *Order) ApplyCoupon(c *Coupon, now time.Time) error {
	if o.Ordered {
		return ErrInvalidTransition
	}
	if o.Coupon != nil {
		return ErrCouponApplied
	}
	o.Coupon = c
	o.UpdatedAt = now
	return nil
}

// Place moves a cart to the ordered state. The billing address and payment must already exist.
func (o *Order) Place(billingID uuid.UUID, shippingID *uuid.UUID, paymentID uuid.UUID, now time.Time) error {
	if o.Ordered {
		return ErrInvalidTransition
	}
	if len(o.LineItems) == 0 {
		return ErrEmptyCart
	}
	for i := range o.LineItems {
		o.LineItems[i].Ordered = true
	}
	o.BillingAddressID = &billingID
	o.ShippingAddressID = shippingID
	o.PaymentID = &paymentID
	o.Ordered = true
	o.OrderedDate = &now
	o.UpdatedAt = now
	return nil
}

// MarkBeingDelivered moves an ordered order into delivery.
func (o *Order) MarkBeingDelivered(now time.Time) error {
	if o.Status() != OrderStatusOrdered {
		return ErrInvalidTransition
	}
	o.BeingDelivered = true
	o.UpdatedAt = now
	return nil
}

// MarkReceived records delivery. Only one of being_delivered and received stays set.
func (o *Order) MarkReceived(now time.Time) error {
	if o.Status() != OrderStatusBeingDelivered {
		return ErrInvalidTransition
	}
	o.BeingDelivered = false
	o.Received = true
	o.UpdatedAt = now
	return nil
}

// RequestRefund flags a placed order for refund.
func (o *Order) RequestRefund(now time.Time) error {
	switch o.Status() {
	case OrderStatusOrdered, OrderStatusBeingDelivered, OrderStatusReceived:
	default:
		return ErrInvalidTransition
	}
	o.RefundRequested = true
	o.UpdatedAt = now
	return nil
}

// GrantRefund accepts a requested refund. Granting an already granted refund changes nothing
// and reports false.
func (o *Order) GrantRefund(now time.Time) (bool, error) {
	if o.RefundGranted {
		return false, nil
	}
	if !o.RefundRequested {
		return false, ErrInvalidTransition
	}
	o.RefundGranted = true
	o.UpdatedAt = now
	return true, nil
}

// DenyRefund withdraws a pending refund request, returning the order to its previous state.
func (o *Order) DenyRefund(now time.Time) error {
	if o.Status() != OrderStatusRefundRequested {
		return ErrInvalidTransition
	}
	o.RefundRequested = false
	o.UpdatedAt = now
	return nil
}
