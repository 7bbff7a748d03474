package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/marker"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/testutil"
	"github.com/fincoach/billing/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReconcilerServiceSuite struct {
	testutil.BaseServiceTestSuite
	subscriptions service.SubscriptionService
	reconciler    service.ReconcilerService
}

func TestReconcilerServiceSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceSuite))
}

func (s *ReconcilerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.GetServiceParams()
	s.subscriptions = service.NewSubscriptionService(params)
	s.reconciler = service.NewReconcilerService(params, s.subscriptions)
}

func (s *ReconcilerServiceSuite) registerActiveSubscription() {
	s.GetBackend().RegisterJSONResponse("/subscriptions/current", `{
		"subscription": {
			"id": "subs_1",
			"planId": "premium",
			"status": "active",
			"startDate": "2025-05-01T00:00:00Z",
			"autoRenew": true
		}
	}`)
}

func (s *ReconcilerServiceSuite) registerPaymentStatus(status string) {
	s.GetBackend().RegisterJSONResponse("/payments/pay_123/status", `{
		"id": "pay_123",
		"status": "`+status+`",
		"planId": "premium"
	}`)
}

func (s *ReconcilerServiceSuite) TestExplicitSuccess() {
	s.registerActiveSubscription()
	s.registerPaymentStatus("completed")
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{
		Status:    "success",
		PaymentID: "pay_123",
	})

	s.Equal(types.ReconcileStateSucceeded, result.State)
	s.Equal("pay_123", result.PaymentID)

	// Every pass gets its own id for log correlation
	s.NotEmpty(result.ID)
	s.True(strings.HasPrefix(result.ID, "recon_"))

	// The authoritative state was reloaded exactly once
	s.Equal(1, s.GetBackend().Calls("/subscriptions/current"))
	s.NotNil(s.subscriptions.Current())

	// Marker is gone and the user was told about the success
	check := s.GetMarkers().Consume(s.GetContext())
	s.False(check.WasPaymentInProgress)

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindPaymentSuccess, last.Kind)
	s.Contains(last.Message, "Premium")
}

func (s *ReconcilerServiceSuite) TestExplicitFailure() {
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{
		Status:    "failed",
		PaymentID: "pay_123",
		Message:   "card declined",
	})

	s.Equal(types.ReconcileStateFailed, result.State)
	s.Equal("card declined", result.Message)

	// A declared failure is terminal: no status polling
	s.Equal(0, s.GetBackend().Calls("/payments/pay_123/status"))

	check := s.GetMarkers().Consume(s.GetContext())
	s.False(check.WasPaymentInProgress)

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindPaymentFailure, last.Kind)
	s.Equal("card declined", last.Message)
}

func (s *ReconcilerServiceSuite) TestExplicitCancellation() {
	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{
		Status:    "cancelled",
		PaymentID: "pay_123",
	})

	s.Equal(types.ReconcileStateCancelled, result.State)
	s.Equal("El pago fue cancelado.", result.Message)
}

func (s *ReconcilerServiceSuite) TestNotAPaymentReturn() {
	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateNotPaymentReturn, result.State)

	// An ordinary page load touches neither the backend nor the user
	s.Equal(0, s.GetBackend().TotalCalls())
	s.Empty(s.GetNotifier().Delivered())
}

func (s *ReconcilerServiceSuite) TestMarkerDrivenPollingToSuccess() {
	s.registerActiveSubscription()
	s.GetBackend().RegisterSequence("/payments/pay_123/status",
		testutil.MockResponse{StatusCode: 200, Body: []byte(`{"id": "pay_123", "status": "pending", "planId": "premium"}`)},
		testutil.MockResponse{StatusCode: 200, Body: []byte(`{"id": "pay_123", "status": "processing", "planId": "premium"}`)},
		testutil.MockResponse{StatusCode: 200, Body: []byte(`{"id": "pay_123", "status": "completed", "planId": "premium"}`)},
	)
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateSucceeded, result.State)
	s.Equal("pay_123", result.PaymentID)
	s.Require().NotNil(result.Record)
	s.Equal(types.PaymentStatusCompleted, result.Record.Status)

	// Non-terminal answers kept the poll going
	s.GreaterOrEqual(s.GetBackend().Calls("/payments/pay_123/status"), 3)
	s.NotNil(s.subscriptions.Current())
}

func (s *ReconcilerServiceSuite) TestMarkerDrivenPollingToFailure() {
	failureReason := `{"id": "pay_123", "status": "failed", "planId": "premium", "failureReason": "fondos insuficientes"}`
	s.GetBackend().RegisterJSONResponse("/payments/pay_123/status", failureReason)
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateFailed, result.State)
	s.Equal("fondos insuficientes", result.Message)
}

func (s *ReconcilerServiceSuite) TestPollingExhaustionTimesOut() {
	s.registerPaymentStatus("pending")
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateTimedOut, result.State)
	s.Equal("pay_123", result.PaymentID)
	s.NotEmpty(result.Message)

	// The attempt budget bounds the poll
	s.Equal(s.GetConfig().Billing.PollMaxAttempts, s.GetBackend().Calls("/payments/pay_123/status"))

	check := s.GetMarkers().Consume(s.GetContext())
	s.False(check.WasPaymentInProgress)
}

func (s *ReconcilerServiceSuite) TestStaleMarkerTimesOutWithoutPolling() {
	stale := s.GetConfig().Billing.MarkerMaxAge + time.Minute
	s.GetCache().Set(s.GetContext(), cache.PrefixPendingPayment+"current", &marker.Record{
		PaymentID: "pay_123",
		CreatedAt: time.Now().UTC().Add(-stale),
		Version:   1,
	}, time.Hour)

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateTimedOut, result.State)
	s.Equal(0, s.GetBackend().Calls("/payments/pay_123/status"))
}

func (s *ReconcilerServiceSuite) TestLookupFailuresCountAgainstBudget() {
	// Nothing registered: every status check 404s, which reads as "unknown"
	s.GetMarkers().Put(s.GetContext(), "pay_123")

	result := s.reconciler.Reconcile(s.GetContext(), &service.CallbackParams{})

	s.Equal(types.ReconcileStateTimedOut, result.State)
}
