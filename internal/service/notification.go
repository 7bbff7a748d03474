package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/notify"
	"github.com/fincoach/billing/internal/types"
)

// upgradePromptKey records when the free-tier upgrade prompt was last shown
const upgradePromptKey = cache.PrefixUpgradePrompt + "last_shown"

// BillingNotificationService derives user-facing notifications from the
// subscription state and exposes imperative success/error calls for the
// reconciler and the upgrade flow.
type BillingNotificationService interface {
	// CheckExpiry emits the expiry warning, urgent and expired notifications
	// that apply to the current subscription state
	CheckExpiry(ctx context.Context)

	// MaybePromptUpgrade emits the upgrade prompt for free-tier users, at
	// most once per configured interval
	MaybePromptUpgrade(ctx context.Context)

	// RunSweep executes one notification pass. Meant to be driven by a ticker.
	RunSweep(ctx context.Context)

	NotifySuccess(ctx context.Context, kind, planName string)
	NotifyError(ctx context.Context, message string)
	Dismiss(ctx context.Context, id string)
}

type billingNotificationService struct {
	ServiceParams
	subscriptions SubscriptionService

	nowFn func() time.Time
}

// NewBillingNotificationService creates a new BillingNotificationService
func NewBillingNotificationService(params ServiceParams, subscriptions SubscriptionService) BillingNotificationService {
	return &billingNotificationService{
		ServiceParams: params,
		subscriptions: subscriptions,
		nowFn:         time.Now,
	}
}

func (s *billingNotificationService) CheckExpiry(ctx context.Context) {
	d := s.subscriptions.DaysUntilExpiry()
	if d == nil {
		return
	}

	cfg := s.Config.Billing
	switch {
	case *d == 0:
		s.Notifier.Notify(ctx, notify.New(
			types.NotificationKindExpired,
			types.NotificationSeverityError,
			"Tu suscripción expiró",
			"Renueva tu plan para seguir usando todas las funciones.",
		))
	case *d <= cfg.ExpiryUrgentDays:
		// Re-fires on every sweep inside the urgent window; the stable
		// notification id collapses repeats at the sink.
		s.Notifier.Notify(ctx, notify.New(
			types.NotificationKindExpiryUrgent,
			types.NotificationSeverityError,
			"Tu suscripción expira muy pronto",
			fmt.Sprintf("Tu plan expira en %d día(s). Renueva ahora para no perder acceso.", *d),
		))
	case *d == cfg.ExpiryWarningDays:
		s.Notifier.Notify(ctx, notify.New(
			types.NotificationKindExpiryWarning,
			types.NotificationSeverityWarning,
			"Tu suscripción expira pronto",
			fmt.Sprintf("Tu plan expira en %d días.", *d),
		))
	}
}

func (s *billingNotificationService) MaybePromptUpgrade(ctx context.Context) {
	current := s.subscriptions.CurrentPlan()
	if current == nil || current.ID != plan.PlanIDFree {
		return
	}

	now := s.nowFn()
	if v, found := s.Cache.Get(ctx, upgradePromptKey); found {
		if last, ok := v.(time.Time); ok {
			if now.Sub(last) < s.Config.Billing.UpgradePromptInterval {
				return
			}
		}
	}

	s.Notifier.Notify(ctx, notify.New(
		types.NotificationKindUpgradePrompt,
		types.NotificationSeverityInfo,
		"Lleva tus finanzas al siguiente nivel",
		"Desbloquea metas de ahorro y análisis de gastos con Premium.",
	))
	s.Cache.Set(ctx, upgradePromptKey, now, s.Config.Billing.UpgradePromptInterval)
}

func (s *billingNotificationService) RunSweep(ctx context.Context) {
	s.CheckExpiry(ctx)
	s.MaybePromptUpgrade(ctx)
}

func (s *billingNotificationService) NotifySuccess(ctx context.Context, kind, planName string) {
	s.Notifier.Notify(ctx, successNotification(kind, planName))
}

func (s *billingNotificationService) NotifyError(ctx context.Context, message string) {
	s.Notifier.Notify(ctx, errorNotification(message))
}

func (s *billingNotificationService) Dismiss(ctx context.Context, id string) {
	s.Notifier.Dismiss(ctx, id)
}

func successNotification(kind, planName string) notify.Notification {
	title := "¡Pago exitoso!"
	message := fmt.Sprintf("Tu plan %s ya está activo.", planName)
	if kind == "reactivation" {
		title = "Suscripción reactivada"
		message = fmt.Sprintf("Tu plan %s fue reactivado.", planName)
	}
	return notify.New(
		types.NotificationKindPaymentSuccess,
		types.NotificationSeveritySuccess,
		title,
		message,
	)
}

func errorNotification(message string) notify.Notification {
	return notify.New(
		types.NotificationKindPaymentFailure,
		types.NotificationSeverityError,
		"Algo salió mal",
		message,
	)
}
