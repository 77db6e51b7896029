package coupon

import (
	"context"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// CouponSet is an in-memory coupon catalogue keyed by code.
type CouponSet interface {
	// Lookup returns the amount of a coupon code.
	Lookup(code string) (decimal.Decimal, bool)

	// Size returns the number of coupons in the set.
	Size() int

	// Coupons returns every coupon in the set ordered by code.
	Coupons() []model.Coupon
}

// Loader defines the interface for loading coupon catalogue files.
type Loader interface {
	// Load reads a gzipped coupon file and returns a CouponSet.
	Load(ctx context.Context, filePath string) (CouponSet, error)
}

// Store persists imported coupons.
type Store interface {
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// Finder looks up a stored coupon by its exact code. It returns nil when no coupon matches.
type Finder interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}
