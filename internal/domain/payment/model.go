package payment

import (
	"time"

	"github.com/fincoach/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Record represents a payment as reported by the upstream payments backend.
// Records are read-only on this side: they are polled during reconciliation
// and never mutated locally.
type Record struct {
	// ID is the unique identifier for the payment
	ID string `json:"id"`

	// Status is the lifecycle status of the payment
	Status types.PaymentStatus `json:"status"`

	// Amount is the payment value in the given currency
	Amount decimal.Decimal `json:"amount"`

	// Currency is a three-letter ISO code
	Currency string `json:"currency"`

	// PlanID is the plan this payment pays for
	PlanID string `json:"plan_id"`

	// CreatedAt is when the payment was created upstream
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the payment last changed upstream
	UpdatedAt time.Time `json:"updated_at"`

	// FailureReason explains why the payment failed, when it did
	FailureReason *string `json:"failure_reason,omitempty"`
}

// Method is an available payment method for a given country
type Method struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Country     string `json:"country"`
}
