package coupon

import (
	"context"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Resolver turns a customer-entered code into a stored coupon.
type Resolver struct {
	finder Finder
	logger zerolog.Logger
}

// NewResolver creates a new coupon resolver.
func NewResolver(finder Finder, logger zerolog.Logger) *Resolver {
	return &Resolver{
		finder: finder,
		logger: logger.With().Str("component", "coupon-resolver").Logger(),
	}
}

// Resolve trims the code and looks it up. Codes are case sensitive.
// Unknown or blank codes yield model.ErrInvalidCoupon.
func (r *Resolver) Resolve(ctx context.Context, code string) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.ErrInvalidCoupon
	}

	c, err := r.finder.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		r.logger.Debug().Str("code", code).Msg("unknown coupon code")
		return nil, model.ErrInvalidCoupon
	}

	return c, nil
}
