package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressInput is a postal address supplied at checkout.
type AddressInput struct {
	StreetAddress    string `json:"streetAddress"`
	ApartmentAddress string `json:"apartmentAddress"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
	SetDefault       bool   `json:"setDefault"`
}

// CheckoutRequest represents the request payload for finalising the active cart.
// An explicit address wins over the UseDefault flag.
type CheckoutRequest struct {
	BillingAddress     *AddressInput `json:"billingAddress,omitempty"`
	UseDefaultBilling  bool          `json:"useDefaultBilling"`
	ShippingAddress    *AddressInput `json:"shippingAddress,omitempty"`
	UseDefaultShipping bool          `json:"useDefaultShipping"`
	PaymentToken       string        `json:"paymentToken"`
}

// CouponRequest represents the request payload for applying a coupon.
type CouponRequest struct {
	Code string `json:"code"`
}

// RefundRequest represents the request payload for requesting a refund.
type RefundRequest struct {
	Reason string `json:"reason"`
	Email  string `json:"email"`
}

// LineItemResponse is a line item with its computed prices.
type LineItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Item           Item            `json:"item"`
	Quantity       int             `json:"quantity"`
	TotalItemPrice decimal.Decimal `json:"totalItemPrice"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	AmountSaved    decimal.Decimal `json:"amountSaved"`
}

// OrderResponse represents the response payload for a cart or an order.
type OrderResponse struct {
	ID          uuid.UUID          `json:"id"`
	Status      OrderStatus        `json:"status"`
	Items       []LineItemResponse `json:"items"`
	Coupon      *Coupon            `json:"coupon,omitempty"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	Total       decimal.Decimal    `json:"total"`
	StartDate   *time.Time         `json:"startDate,omitempty"`
	OrderedDate *time.Time         `json:"orderedDate,omitempty"`
}

// NewOrderResponse builds the response for an order. A nil order yields an empty cart.
func NewOrderResponse(o *Order) *OrderResponse {
	if o == nil {
		return &OrderResponse{
			Status:   OrderStatusCart,
			Items:    []LineItemResponse{},
			Subtotal: decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	items := make([]LineItemResponse, len(o.LineItems))
	for i := range o.LineItems {
		li := &o.LineItems[i]
		items[i] = LineItemResponse{
			ID:             li.ID,
			Item:           li.Item,
			Quantity:       li.Quantity,
			TotalItemPrice: li.TotalItemPrice(),
			FinalPrice:     li.FinalPrice(),
			AmountSaved:    li.AmountSaved(),
		}
	}

	startDate := o.StartDate
	return &OrderResponse{
		ID:          o.ID,
		Status:      o.Status(),
		Items:       items,
		Coupon:      o.Coupon,
		Subtotal:    o.Subtotal(),
		Total:       o.Total(),
		StartDate:   &startDate,
		OrderedDate: o.OrderedDate,
	}
}
