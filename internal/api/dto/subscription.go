package dto

import (
	"time"

	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/domain/subscription"
	"github.com/fincoach/billing/internal/types"
	"github.com/fincoach/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// UpgradeSubscriptionRequest starts a plan change
type UpgradeSubscriptionRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func (r *UpgradeSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CancelSubscriptionRequest posts a cancellation with optional survey fields
type CancelSubscriptionRequest struct {
	Reason   string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Feedback string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ApplyDiscountRequest applies a discount code to the subscription
type ApplyDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

func (r *ApplyDiscountRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PlanResponse is the REST shape of a catalog plan
type PlanResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Features    []string        `json:"features"`
	Limitations []string        `json:"limitations,omitempty"`
}

// SubscriptionResponse is the REST shape of the current subscription plus its
// derived billing fields
type SubscriptionResponse struct {
	ID              string                   `json:"id,omitempty"`
	PlanID          string                   `json:"plan_id,omitempty"`
	Status          types.SubscriptionStatus `json:"status,omitempty"`
	StartDate       *time.Time               `json:"start_date,omitempty"`
	EndDate         *time.Time               `json:"end_date,omitempty"`
	AutoRenew       bool                     `json:"auto_renew,omitempty"`
	Plan            *PlanResponse            `json:"plan"`
	DaysUntilExpiry *int                     `json:"days_until_expiry,omitempty"`
	ExpiringSoon    bool                     `json:"expiring_soon"`
	Upgrades        []*PlanResponse          `json:"available_upgrades"`
}

// NewPlanResponse converts a catalog plan
func NewPlanResponse(p *plan.Plan) *PlanResponse {
	if p == nil {
		return nil
	}
	return &PlanResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Currency:    p.Currency,
		Features:    p.Features,
		Limitations: p.Limitations,
	}
}

// NewSubscriptionResponse assembles the subscription view. A nil subscription
// yields the free-plan view.
func NewSubscriptionResponse(sub *subscription.Subscription, currentPlan *plan.Plan, upgrades []*plan.Plan, daysUntilExpiry *int, expiringSoon bool) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		Plan:            NewPlanResponse(currentPlan),
		DaysUntilExpiry: daysUntilExpiry,
		ExpiringSoon:    expiringSoon,
		Upgrades:        make([]*PlanResponse, 0, len(upgrades)),
	}
	for _, u := range upgrades {
		resp.Upgrades = append(resp.Upgrades, NewPlanResponse(u))
	}

	if sub != nil {
		resp.ID = sub.ID
		resp.PlanID = sub.PlanID
		resp.Status = sub.Status
		start := sub.StartDate
		resp.StartDate = &start
		resp.EndDate = sub.EndDate
		resp.AutoRenew = sub.AutoRenew
	}
	return resp
}
