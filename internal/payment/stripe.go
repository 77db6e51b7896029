package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// Currencies Stripe expresses in whole units rather than cents.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true,
	"mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true,
	"xof": true, "xpf": true,
}

// StripeCharger charges payment tokens by creating and confirming a Stripe PaymentIntent.
type StripeCharger struct {
	client   paymentintent.Client
	currency string
	logger   zerolog.Logger
}

// NewStripeCharger creates a charger from configuration. A BackendURL in the configuration
// points the client at a different API endpoint, such as stripe-mock.
func NewStripeCharger(cfg config.StripeConfig, logger zerolog.Logger) *StripeCharger {
	var backend stripe.Backend
	if cfg.BackendURL != "" {
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.BackendURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
	} else {
		backend = stripe.GetBackend(stripe.APIBackend)
	}

	return &StripeCharger{
		client:   paymentintent.Client{B: backend, Key: cfg.SecretKey},
		currency: strings.ToLower(cfg.Currency),
		logger:   logger.With().Str("component", "stripe").Logger(),
	}
}

// Charge creates a confirmed PaymentIntent for the request. Only a succeeded intent counts as paid.
func (c *StripeCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Token == "" {
		return nil, errors.New("payment token is required")
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = c.currency
	}

	amount, err := MinorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(req.Token),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			c.logger.Warn().
				Str("code", string(stripeErr.Code)).
				Str("decline_code", string(stripeErr.DeclineCode)).
				Int("http_status", stripeErr.HTTPStatusCode).
				Msg("charge rejected by stripe")
			return nil, fmt.Errorf("charge rejected: %s", stripeErr.Msg)
		}
		c.logger.Error().Err(err).Msg("stripe request failed")
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		c.logger.Warn().
			Str("payment_intent", pi.ID).
			Str("status", string(pi.Status)).
			Msg("payment intent did not succeed")
		return nil, fmt.Errorf("payment intent %s ended in status %q", pi.ID, pi.Status)
	}

	c.logger.Info().
		Str("payment_intent", pi.ID).
		Int64("amount", amount).
		Str("currency", currency).
		Msg("charge succeeded")

	return &ChargeResult{ChargeID: pi.ID}, nil
}

// MinorUnits converts an amount to the integer unit Stripe expects for the currency.
func MinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("charge amount must be positive, got %s", amount.String())
	}
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return amount.Round(0).IntPart(), nil
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
