package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/domain/subscription"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/types"
	"github.com/shopspring/decimal"
)

// subscriptionEnvelope is the upstream wire shape of a subscription
type subscriptionEnvelope struct {
	Subscription *struct {
		ID        string                   `json:"id"`
		PlanID    string                   `json:"planId"`
		Status    types.SubscriptionStatus `json:"status"`
		StartDate time.Time                `json:"startDate"`
		EndDate   *time.Time               `json:"endDate,omitempty"`
		AutoRenew bool                     `json:"autoRenew"`
		Plan      *struct {
			ID          string          `json:"id"`
			Name        string          `json:"name"`
			Price       decimal.Decimal `json:"price"`
			Currency    string          `json:"currency"`
			Features    []string        `json:"features"`
			Limitations []string        `json:"limitations,omitempty"`
		} `json:"plan,omitempty"`
	} `json:"subscription"`
}

func (e *subscriptionEnvelope) toDomain() *subscription.Subscription {
	if e.Subscription == nil {
		return nil
	}

	sub := &subscription.Subscription{
		ID:        e.Subscription.ID,
		PlanID:    e.Subscription.PlanID,
		Status:    e.Subscription.Status,
		StartDate: e.Subscription.StartDate,
		EndDate:   e.Subscription.EndDate,
		AutoRenew: e.Subscription.AutoRenew,
	}
	if p := e.Subscription.Plan; p != nil {
		sub.Plan = &plan.Plan{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Currency:    p.Currency,
			Features:    p.Features,
			Limitations: p.Limitations,
		}
	}
	return sub
}

func (c *client) GetCurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	var envelope subscriptionEnvelope
	err := c.send(ctx, http.MethodGet, c.url("/subscriptions/current"), nil, &envelope)
	if err != nil {
		// 404 is the documented empty state, not a failure
		if isNotFound(err) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Your subscription could not be loaded").
			Mark(ierr.ErrUpstream)
	}
	return envelope.toDomain(), nil
}

func (c *client) CancelSubscription(ctx context.Context, subscriptionID, reason, feedback string) error {
	body := map[string]string{
		"subscriptionId": subscriptionID,
	}
	if reason != "" {
		body["reason"] = reason
	}
	if feedback != "" {
		body["feedback"] = feedback
	}

	if err := c.send(ctx, http.MethodPost, c.url("/subscriptions/cancel"), body, nil); err != nil {
		return ierr.WithError(err).
			WithHint("Your subscription could not be cancelled").
			Mark(ierr.ErrUpstream)
	}
	return nil
}

func (c *client) ReactivateSubscription(ctx context.Context, subscriptionID string) error {
	body := map[string]string{
		"subscriptionId": subscriptionID,
	}

	if err := c.send(ctx, http.MethodPost, c.url("/subscriptions/reactivate"), body, nil); err != nil {
		return ierr.WithError(err).
			WithHint("Your subscription could not be reactivated").
			Mark(ierr.ErrUpstream)
	}
	return nil
}

func (c *client) ApplyDiscount(ctx context.Context, code, subscriptionID string) error {
	body := map[string]string{
		"code": code,
	}
	if subscriptionID != "" {
		body["subscriptionId"] = subscriptionID
	}

	if err := c.send(ctx, http.MethodPost, c.url("/subscriptions/apply-discount"), body, nil); err != nil {
		return ierr.WithError(err).
			WithHint("The discount could not be applied").
			Mark(ierr.ErrUpstream)
	}
	return nil
}
