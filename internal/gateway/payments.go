package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/fincoach/billing/internal/domain/payment"
	"github.com/fincoach/billing/internal/types"
	"github.com/shopspring/decimal"
)

// InitiateRequest carries the inputs for starting a payment flow
type InitiateRequest struct {
	PlanID        string `json:"planId"`
	CurrentPlanID string `json:"currentPlanId,omitempty"`
	DiscountCode  string `json:"discountCode,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Country       string `json:"country,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// InitiateResult is the outcome of InitiatePayment. Success=false with a
// populated Error covers both backend-reported and network failures.
type InitiateResult struct {
	Success     bool   `json:"success"`
	PaymentID   string `json:"paymentId,omitempty"`
	PaymentURL  string `json:"paymentUrl,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EffectiveRedirectURL returns the URL the user must be sent to, preferring
// the explicit redirect URL over the hosted payment page URL. Empty means the
// plan change completed without a processor round trip.
func (r *InitiateResult) EffectiveRedirectURL() string {
	if r.RedirectURL != "" {
		return r.RedirectURL
	}
	return r.PaymentURL
}

// OperationResult is the generic outcome shape for cancel-style operations
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DiscountResult is the outcome of validating a discount code
type DiscountResult struct {
	Valid           bool            `json:"valid"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Message         string          `json:"message,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// recordEnvelope is the upstream wire shape of a payment record
type recordEnvelope struct {
	ID            string              `json:"id"`
	Status        types.PaymentStatus `json:"status"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	PlanID        string              `json:"planId"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	FailureReason *string             `json:"failureReason,omitempty"`
}

func (e *recordEnvelope) toDomain() *payment.Record {
	return &payment.Record{
		ID:            e.ID,
		Status:        e.Status,
		Amount:        e.Amount,
		Currency:      e.Currency,
		PlanID:        e.PlanID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		FailureReason: e.FailureReason,
	}
}

func (c *client) InitiatePayment(ctx context.Context, req *InitiateRequest) *InitiateResult {
	var result InitiateResult
	err := c.send(ctx, http.MethodPost, c.url("/payments/initiate"), req, &result)
	if err != nil {
		c.logger.Errorw("payment initiation failed", "plan_id", req.PlanID, "error", err)
		return &InitiateResult{
			Success: false,
			Error:   "the payment could not be initiated",
		}
	}
	return &result
}

func (c *client) CheckPaymentStatus(ctx context.Context, paymentID string) *payment.Record {
	var envelope recordEnvelope
	err := c.send(ctx, http.MethodGet, c.url("/payments/%s/status", paymentID), nil, &envelope)
	if err != nil {
		c.logger.Warnw("payment status lookup failed", "payment_id", paymentID, "error", err)
		return nil
	}

	// Reject unrecognized status values at the boundary instead of letting
	// them leak into the reconciliation state machine.
	if err := envelope.Status.Validate(); err != nil {
		c.logger.Warnw("payment status lookup returned unknown status",
			"payment_id", paymentID, "status", envelope.Status)
		return nil
	}

	return envelope.toDomain()
}

func (c *client) CancelPayment(ctx context.Context, paymentID string) *OperationResult {
	var result OperationResult
	err := c.send(ctx, http.MethodPost, c.url("/payments/%s/cancel", paymentID), nil, &result)
	if err != nil {
		c.logger.Errorw("payment cancellation failed", "payment_id", paymentID, "error", err)
		return &OperationResult{Success: false, Error: "the payment could not be cancelled"}
	}
	return &result
}

func (c *client) GetPaymentHistory(ctx context.Context, limit int) []*payment.Record {
	var envelope struct {
		Payments []recordEnvelope `json:"payments"`
	}
	err := c.send(ctx, http.MethodGet, c.url("/payments/history?limit=%d", limit), nil, &envelope)
	if err != nil {
		c.logger.Warnw("payment history lookup failed", "error", err)
		return nil
	}

	records := make([]*payment.Record, 0, len(envelope.Payments))
	for i := range envelope.Payments {
		records = append(records, envelope.Payments[i].toDomain())
	}
	return records
}

func (c *client) GetAvailablePaymentMethods(ctx context.Context, country string) []payment.Method {
	var envelope struct {
		Methods []payment.Method `json:"methods"`
	}
	err := c.send(ctx, http.MethodGet, c.url("/payments/methods/%s", country), nil, &envelope)
	if err != nil {
		c.logger.Warnw("payment methods lookup failed", "country", country, "error", err)
		return nil
	}
	return envelope.Methods
}

func (c *client) ApplyDiscountCode(ctx context.Context, code, planID string) *DiscountResult {
	body := map[string]string{
		"code":   code,
		"planId": planID,
	}
	var result DiscountResult
	err := c.send(ctx, http.MethodPost, c.url("/payments/validate-discount"), body, &result)
	if err != nil {
		c.logger.Warnw("discount validation failed", "code", code, "error", err)
		return &DiscountResult{Valid: false, Error: "the discount code could not be validated"}
	}
	return &result
}
