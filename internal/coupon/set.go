package coupon

import (
	"sort"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// MapCouponSet implements CouponSet using a map for O(1) lookups.
type MapCouponSet struct {
	coupons map[string]decimal.Decimal
}

// NewMapCouponSet creates a new map-based coupon set.
func NewMapCouponSet(capacity int) *MapCouponSet {
	return &MapCouponSet{
		coupons: make(map[string]decimal.Decimal, capacity),
	}
}

// Lookup returns the amount of a coupon code.
func (s *MapCouponSet) Lookup(code string) (decimal.Decimal, bool) {
	amount, exists := s.coupons[code]
	return amount, exists
}

// Size returns the number of coupons in the set.
func (s *MapCouponSet) Size() int {
	return len(s.coupons)
}

// Coupons returns every coupon in the set ordered by code.
func (s *MapCouponSet) Coupons() []model.Coupon {
	out := make([]model.Coupon, 0, len(s.coupons))
	for code, amount := range s.coupons {
		out = append(out, model.Coupon{Code: code, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Add adds a coupon, replacing the amount of an existing code.
func (s *MapCouponSet) Add(code string, amount decimal.Decimal) {
	s.coupons[code] = amount
}

// Merge copies every coupon of other into s. Codes already in s take the amount from other.
func (s *MapCouponSet) Merge(other CouponSet) {
	for _, c := range other.Coupons() {
		s.coupons[c.Code] = c.Amount
	}
}
