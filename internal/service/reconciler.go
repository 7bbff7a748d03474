package service

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/fincoach/billing/internal/domain/payment"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/types"
)

// CallbackParams are the query parameters the external payment processor
// appends when redirecting the user back to the application
type CallbackParams struct {
	Status     string `form:"status"`
	ExternalID string `form:"external_id"`
	PaymentID  string `form:"payment_id"`
	Reason     string `form:"reason"`
	Message    string `form:"message"`
}

// Identifier returns the payment identifier to reconcile against, preferring
// the internal payment id over the processor's external id
func (p *CallbackParams) Identifier() string {
	if p.PaymentID != "" {
		return p.PaymentID
	}
	return p.ExternalID
}

// IsEmpty is true when the callback carries nothing that identifies a payment
func (p *CallbackParams) IsEmpty() bool {
	return p.Status == "" && p.PaymentID == "" && p.ExternalID == ""
}

// ReconcileResult is the terminal outcome of one reconciliation pass. ID
// identifies the pass itself, for correlating logs with what the user saw.
type ReconcileResult struct {
	ID        string               `json:"id"`
	State     types.ReconcileState `json:"state"`
	PaymentID string               `json:"payment_id,omitempty"`
	Message   string               `json:"message,omitempty"`
	Record    *payment.Record      `json:"payment,omitempty"`
}

// ReconcilerService resolves a payment-processor return into a terminal state
// and brings the local subscription copy back in sync with the backend.
//
// One state machine serves both return routes; passes are serialized so two
// overlapping returns cannot race on the shared subscription state.
type ReconcilerService interface {
	Reconcile(ctx context.Context, params *CallbackParams) *ReconcileResult
}

type reconciler struct {
	ServiceParams
	subscriptions SubscriptionService

	mu sync.Mutex
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(params ServiceParams, subscriptions SubscriptionService) ReconcilerService {
	return &reconciler{
		ServiceParams: params,
		subscriptions: subscriptions,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, params *CallbackParams) *ReconcileResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := r.reconcile(ctx, params)
	result.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECONCILE)

	r.Logger.Debugw("reconciliation pass finished",
		"reconcile_id", result.ID,
		"state", result.State,
		"payment_id", result.PaymentID,
	)
	return result
}

func (r *reconciler) reconcile(ctx context.Context, params *CallbackParams) *ReconcileResult {
	paymentID := params.Identifier()

	// No explicit status and no identifier: fall back to the persisted
	// pending marker from before the redirect.
	if params.IsEmpty() {
		check := r.Gateway.CheckReturnFromPayment(ctx)
		if !check.WasPaymentInProgress {
			return &ReconcileResult{State: types.ReconcileStateNotPaymentReturn}
		}
		if !check.ShouldCheckStatus || check.PaymentID == "" {
			r.Logger.Warnw("pending payment marker too old to reconcile",
				"payment_id", check.PaymentID)
			return &ReconcileResult{
				State:     types.ReconcileStateTimedOut,
				PaymentID: check.PaymentID,
				Message:   "El pago tardó demasiado. Verifica tu suscripción manualmente.",
			}
		}
		paymentID = check.PaymentID
	}

	switch params.Status {
	case "success":
		return r.finishSuccess(ctx, paymentID)
	case "failed":
		return r.finishFailure(ctx, types.ReconcileStateFailed, paymentID,
			messageOr(params.Message, params.Reason, "El pago no pudo completarse."))
	case "cancelled":
		return r.finishFailure(ctx, types.ReconcileStateCancelled, paymentID,
			messageOr(params.Message, params.Reason, "El pago fue cancelado."))
	default:
		return r.poll(ctx, paymentID)
	}
}

// poll repeatedly checks the payment status until the backend reports a
// terminal state or the attempt budget runs out
func (r *reconciler) poll(ctx context.Context, paymentID string) *ReconcileResult {
	if paymentID == "" {
		return r.finishFailure(ctx, types.ReconcileStateFailed, "",
			"No se pudo identificar el pago.")
	}

	cfg := r.Config.Billing
	attempts := cfg.PollMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var record *payment.Record
	errStillPending := ierr.NewError("payment still pending").Mark(ierr.ErrTimeout)

	operation := func() error {
		rec := r.Gateway.CheckPaymentStatus(ctx, paymentID)
		if rec == nil {
			// Unknown is retryable: the lookup itself may have failed
			return errStillPending
		}
		if !rec.Status.IsTerminal() {
			return errStillPending
		}
		record = rec
		return nil
	}

	// WithMaxRetries counts retries after the initial attempt, so the budget
	// is attempts minus one.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(cfg.PollInterval),
			uint64(attempts-1),
		),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		r.Logger.Warnw("payment status polling exhausted",
			"payment_id", paymentID,
			"max_attempts", cfg.PollMaxAttempts,
		)
		r.Sentry.CaptureException(err)
		r.Markers.Clear(ctx)
		return &ReconcileResult{
			State:     types.ReconcileStateTimedOut,
			PaymentID: paymentID,
			Message:   "El pago sigue en proceso. Verifica tu suscripción más tarde.",
		}
	}

	switch {
	case record.Status.IsSuccess():
		result := r.finishSuccess(ctx, paymentID)
		result.Record = record
		return result
	case record.Status == types.PaymentStatusCancelled:
		return r.finishFailure(ctx, types.ReconcileStateCancelled, paymentID,
			failureMessage(record, "El pago fue cancelado."))
	default:
		return r.finishFailure(ctx, types.ReconcileStateFailed, paymentID,
			failureMessage(record, "El pago no pudo completarse."))
	}
}

func (r *reconciler) finishSuccess(ctx context.Context, paymentID string) *ReconcileResult {
	result := &ReconcileResult{
		State:     types.ReconcileStateSucceeded,
		PaymentID: paymentID,
	}

	// Enrich with payment detail when the backend can provide it; a nil
	// record does not change the outcome.
	if paymentID != "" {
		result.Record = r.Gateway.CheckPaymentStatus(ctx, paymentID)
	}

	// Always pull the authoritative post-payment subscription. A load error
	// is logged but does not demote the success: the payment went through.
	if err := r.subscriptions.Load(ctx); err != nil {
		r.Logger.Errorw("post-payment subscription reload failed", "error", err)
	}

	r.Markers.Clear(ctx)

	planName := r.subscriptions.CurrentPlan().Name
	r.Notifier.Notify(ctx, successNotification("upgrade", planName))
	return result
}

func (r *reconciler) finishFailure(ctx context.Context, state types.ReconcileState, paymentID, message string) *ReconcileResult {
	r.Markers.Clear(ctx)
	r.Notifier.Notify(ctx, errorNotification(message))
	return &ReconcileResult{
		State:     state,
		PaymentID: paymentID,
		Message:   message,
	}
}

func failureMessage(record *payment.Record, fallback string) string {
	if record != nil && record.FailureReason != nil && *record.FailureReason != "" {
		return *record.FailureReason
	}
	return fallback
}

func messageOr(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
