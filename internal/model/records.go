package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a flat discount subtracted once from an order total.
type Coupon struct {
	ID     uuid.UUID       `json:"id" db:"id"`
	Code   string          `json:"code" db:"code"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
}

// AddressType tags an address as billing or shipping.
type AddressType string

const (
	AddressTypeBilling  AddressType = "B"
	AddressTypeShipping AddressType = "S"
)

// Address is a postal address owned by a user.
type Address struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	UserID           string      `json:"-" db:"user_id"`
	StreetAddress    string      `json:"streetAddress" db:"street_address"`
	ApartmentAddress string      `json:"apartmentAddress" db:"apartment_address"`
	Country          string      `json:"country" db:"country"`
	Zip              string      `json:"zip" db:"zip"`
	Type             AddressType `json:"addressType" db:"address_type"`
	Default          bool        `json:"default" db:"is_default"`
}

// Payment records a successful charge. Payments are never modified after creation.
type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         string          `json:"-" db:"user_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	StripeChargeID string          `json:"stripeChargeId" db:"stripe_charge_id"`
	Timestamp      time.Time       `json:"timestamp" db:"created_at"`
}

// Refund is a customer's request to be refunded for an order.
type Refund struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"orderId" db:"order_id"`
	Reason    string    `json:"reason" db:"reason"`
	Email     string    `json:"email" db:"email"`
	Accepted  bool      `json:"accepted" db:"accepted"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
