package subscription

import (
	"math"
	"time"

	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/types"
)

// Subscription is the client-side copy of the user's current plan enrollment.
// It is a cache of upstream state, replaced wholesale after every mutating
// operation, never patched locally.
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `json:"id"`

	// PlanID is the identifier for the plan, resolved against the static catalog
	PlanID string `json:"plan_id"`

	// Status is the status of the subscription
	Status types.SubscriptionStatus `json:"status"`

	// StartDate is the start date of the subscription
	StartDate time.Time `json:"start_date"`

	// EndDate is the end date of the subscription, if any
	EndDate *time.Time `json:"end_date,omitempty"`

	// AutoRenew indicates whether the subscription renews automatically
	AutoRenew bool `json:"auto_renew"`

	// Plan is the embedded plan snapshot returned by the backend
	Plan *plan.Plan `json:"plan,omitempty"`
}

// DaysUntilExpiry returns the ceiling of the calendar-day difference between
// the end date and now, floored at 0. Returns nil when no end date is set.
func (s *Subscription) DaysUntilExpiry(now time.Time) *int {
	if s.EndDate == nil {
		return nil
	}

	diff := s.EndDate.Sub(now)
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// IsExpiringSoon returns true iff the subscription expires within the given
// number of days but has not yet expired
func (s *Subscription) IsExpiringSoon(now time.Time, days int) bool {
	d := s.DaysUntilExpiry(now)
	if d == nil {
		return false
	}
	return *d > 0 && *d <= days
}

// IsActive returns true when the subscription status is active
func (s *Subscription) IsActive() bool {
	return s.Status == types.SubscriptionStatusActive
}
