package service

import (
	"context"
	"sync"
	"time"

	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/domain/subscription"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/gateway"
)

// UpgradeResult is the outcome of starting a plan upgrade. When RedirectURL is
// set the flow continues at the external processor and local state is NOT
// refreshed until the user returns; when it is empty the change completed
// immediately and state has already been reloaded.
type UpgradeResult struct {
	PaymentID   string `json:"payment_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Completed   bool   `json:"completed"`
}

// SubscriptionService holds the single authoritative in-memory copy of the
// user's subscription and the mutating billing flows around it.
//
// Mutating operations share one contract: on failure they emit a user-facing
// error notification and return the error; on success they reload from the
// backend instead of patching local state.
type SubscriptionService interface {
	// Load fetches the current subscription. An upstream "not found" resets
	// the local copy to nil silently; any other failure is recorded and
	// returned.
	Load(ctx context.Context) error

	// Current returns the cached subscription, nil when there is none
	Current() *subscription.Subscription

	// CurrentPlan returns the subscription's plan snapshot, falling back to
	// the catalog's free entry when there is no subscription
	CurrentPlan() *plan.Plan

	// AvailableUpgrades returns the catalog entries after the current plan
	AvailableUpgrades() []*plan.Plan

	// DaysUntilExpiry returns the days until the subscription ends, nil when
	// there is no subscription or no end date
	DaysUntilExpiry() *int

	// IsExpiringSoon returns true iff 0 < DaysUntilExpiry <= days
	IsExpiringSoon(days int) bool

	Upgrade(ctx context.Context, planID string) (*UpgradeResult, error)
	Cancel(ctx context.Context, reason, feedback string) error
	Reactivate(ctx context.Context) error
	ApplyDiscount(ctx context.Context, code string) error
}

type subscriptionService struct {
	ServiceParams

	mu  sync.RWMutex
	sub *subscription.Subscription

	nowFn func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		nowFn:         time.Now,
	}
}

func (s *subscriptionService) Load(ctx context.Context) error {
	sub, err := s.Gateway.GetCurrentSubscription(ctx)
	if err != nil {
		s.Logger.Errorw("failed to load subscription", "error", err)
		s.Sentry.CaptureException(err)
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	if sub == nil {
		s.Logger.Debugw("no current subscription")
	} else {
		s.Logger.Debugw("subscription loaded", "subscription_id", sub.ID, "plan_id", sub.PlanID)
	}
	return nil
}

func (s *subscriptionService) Current() *subscription.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sub
}

func (s *subscriptionService) CurrentPlan() *plan.Plan {
	sub := s.Current()
	if sub == nil {
		return s.Catalog.Free()
	}
	if sub.Plan != nil {
		return sub.Plan
	}
	if p := s.Catalog.Get(sub.PlanID); p != nil {
		return p
	}
	return s.Catalog.Free()
}

func (s *subscriptionService) AvailableUpgrades() []*plan.Plan {
	return s.Catalog.UpgradesAfter(s.CurrentPlan().ID)
}

func (s *subscriptionService) DaysUntilExpiry() *int {
	sub := s.Current()
	if sub == nil {
		return nil
	}
	return sub.DaysUntilExpiry(s.nowFn())
}

func (s *subscriptionService) IsExpiringSoon(days int) bool {
	sub := s.Current()
	if sub == nil {
		return false
	}
	return sub.IsExpiringSoon(s.nowFn(), days)
}

func (s *subscriptionService) Upgrade(ctx context.Context, planID string) (*UpgradeResult, error) {
	target := s.Catalog.Get(planID)
	if target == nil {
		return nil, ierr.NewError("unknown plan").
			WithHint("The selected plan does not exist").
			WithReportableDetails(map[string]any{"plan_id": planID}).
			Mark(ierr.ErrValidation)
	}

	current := s.CurrentPlan()
	result := s.Gateway.InitiatePayment(ctx, &gateway.InitiateRequest{
		PlanID:        planID,
		CurrentPlanID: current.ID,
	})
	if !result.Success {
		err := ierr.NewError("payment initiation rejected").
			WithHint(errorOr(result.Error, "The upgrade could not be started")).
			Mark(ierr.ErrUpstream)
		s.notifyError(ctx, errorOr(result.Error, "No se pudo iniciar el pago"))
		return nil, err
	}

	if redirect := result.EffectiveRedirectURL(); redirect != "" {
		// The flow continues at the external processor; the marker has to be
		// written before the caller navigates away.
		validated, err := s.Gateway.BeginRedirect(ctx, redirect, result.PaymentID)
		if err != nil {
			s.notifyError(ctx, "No se pudo redirigir al procesador de pagos")
			return nil, err
		}
		return &UpgradeResult{
			PaymentID:   result.PaymentID,
			RedirectURL: validated,
		}, nil
	}

	// No processor round trip needed (free or no-cost change): the flow is
	// complete, reload the authoritative state now.
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.notifySuccess(ctx, target.Name)
	return &UpgradeResult{PaymentID: result.PaymentID, Completed: true}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, reason, feedback string) error {
	sub := s.Current()
	if sub == nil {
		return ierr.NewError("no active subscription to cancel").
			WithHint("No hay suscripción activa para cancelar").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.Gateway.CancelSubscription(ctx, sub.ID, reason, feedback); err != nil {
		s.notifyError(ctx, "No se pudo cancelar la suscripción")
		return err
	}
	return s.Load(ctx)
}

func (s *subscriptionService) Reactivate(ctx context.Context) error {
	sub := s.Current()
	if sub == nil {
		return ierr.NewError("no subscription to reactivate").
			WithHint("No hay suscripción para reactivar").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.Gateway.ReactivateSubscription(ctx, sub.ID); err != nil {
		s.notifyError(ctx, "No se pudo reactivar la suscripción")
		return err
	}
	return s.Load(ctx)
}

func (s *subscriptionService) ApplyDiscount(ctx context.Context, code string) error {
	// An empty subscription id means "apply at next checkout"
	var subID string
	if sub := s.Current(); sub != nil {
		subID = sub.ID
	}

	if err := s.Gateway.ApplyDiscount(ctx, code, subID); err != nil {
		s.notifyError(ctx, "No se pudo aplicar el descuento")
		return err
	}
	return s.Load(ctx)
}

func (s *subscriptionService) notifyError(ctx context.Context, message string) {
	s.Notifier.Notify(ctx, errorNotification(message))
}

func (s *subscriptionService) notifySuccess(ctx context.Context, planName string) {
	s.Notifier.Notify(ctx, successNotification("upgrade", planName))
}

func errorOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
