package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeRequest describes a single charge against a customer's payment token.
type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Token          string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// ChargeResult identifies a successful charge at the payment provider.
type ChargeResult struct {
	ChargeID string
}

// Charger charges a payment token. Any returned error means no money was taken.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
