package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies a catalogue item.
type Category string

const (
	CategoryTrackPants Category = "TP"
	CategoryHoodie     Category = "H"
	CategorySweatshirt Category = "SH"
	CategorySportSuit  Category = "SS"
)

var categoryLabels = map[Category]string{
	CategoryTrackPants: "Track Pants",
	CategoryHoodie:     "Hoodie",
	CategorySweatshirt: "Sweatshirt",
	CategorySportSuit:  "Sport suit",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable category name.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Item represents a clothing item in the catalogue.
type Item struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	Title         string              `json:"title" db:"title"`
	Slug          string              `json:"slug" db:"slug"`
	Description   string              `json:"description" db:"description"`
	Category      Category            `json:"category" db:"category"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice" db:"discount_price"`
	Image         string              `json:"image,omitempty" db:"image"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
}

// HasDiscount reports whether a discount price is set. A zero discount price counts as set.
func (i *Item) HasDiscount() bool {
	return i.DiscountPrice.Valid
}

// MarshalJSON adds the category's display name next to its code.
func (i Item) MarshalJSON() ([]byte, error) {
	type item Item
	return json.Marshal(struct {
		item
		CategoryLabel string `json:"categoryLabel"`
	}{item(i), i.Category.Label()})
}
