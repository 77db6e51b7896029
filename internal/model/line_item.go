package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a quantity of one catalogue item held by one user.
// OrderID points at the single order that currently owns the line item.
type LineItem struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	UserID   string     `json:"-" db:"user_id"`
	OrderID  *uuid.UUID `json:"-" db:"order_id"`
	Item     Item       `json:"item"`
	Quantity int        `json:"quantity" db:"quantity"`
	Ordered  bool       `json:"ordered" db:"ordered"`
}

// TotalItemPrice is quantity × item price.
func (li *LineItem) TotalItemPrice() decimal.Decimal {
	return li.Item.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// TotalDiscountItemPrice is quantity × item discount price.
// It returns ErrMissingDiscount when the item has no discount price.
func (li *LineItem) TotalDiscountItemPrice() (decimal.Decimal, error) {
	if !li.Item.HasDiscount() {
		return decimal.Zero, ErrMissingDiscount
	}
	return li.Item.DiscountPrice.Decimal.Mul(decimal.NewFromInt(int64(li.Quantity))), nil
}

// AmountSaved is the difference between the full and discounted line price.
func (li *LineItem) AmountSaved() decimal.Decimal {
	discounted, err := li.TotalDiscountItemPrice()
	if err != nil {
		return decimal.Zero
	}
	return li.TotalItemPrice().Sub(discounted)
}

// FinalPrice is the discounted line price when a discount exists, otherwise the full line price.
func (li *LineItem) FinalPrice() decimal.Decimal {
	if discounted, err := li.TotalDiscountItemPrice(); err == nil {
		return discounted
	}
	return li.TotalItemPrice()
}
