package dto

import (
	"time"

	"github.com/fincoach/billing/internal/domain/payment"
	"github.com/fincoach/billing/internal/types"
	"github.com/fincoach/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// PaymentResponse is the REST shape of a payment record
type PaymentResponse struct {
	ID            string              `json:"id"`
	Status        types.PaymentStatus `json:"status"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	PlanID        string              `json:"plan_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	FailureReason *string             `json:"failure_reason,omitempty"`
}

// PaymentHistoryResponse lists past payments
type PaymentHistoryResponse struct {
	Payments []*PaymentResponse `json:"payments"`
}

// PaymentMethodsResponse lists the payment methods for a country
type PaymentMethodsResponse struct {
	Methods []payment.Method `json:"methods"`
}

// UpgradeResponse reports the outcome of starting an upgrade
type UpgradeResponse struct {
	PaymentID   string `json:"payment_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Completed   bool   `json:"completed"`
}

// ValidateDiscountRequest checks a discount code against a plan
type ValidateDiscountRequest struct {
	Code   string `json:"code" validate:"required"`
	PlanID string `json:"plan_id" validate:"required"`
}

func (r *ValidateDiscountRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ValidateDiscountResponse reports the outcome of a discount validation
type ValidateDiscountResponse struct {
	Valid           bool            `json:"valid"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Message         string          `json:"message,omitempty"`
}

// CallbackResponse reports the outcome of a payment-return reconciliation
type CallbackResponse struct {
	ReconcileID string               `json:"reconcile_id"`
	State       types.ReconcileState `json:"state"`
	PaymentID   string               `json:"payment_id,omitempty"`
	Message     string               `json:"message,omitempty"`
	Payment     *PaymentResponse     `json:"payment,omitempty"`
}

// NewPaymentResponse converts a payment record
func NewPaymentResponse(rec *payment.Record) *PaymentResponse {
	if rec == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            rec.ID,
		Status:        rec.Status,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		PlanID:        rec.PlanID,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		FailureReason: rec.FailureReason,
	}
}
