package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/testutil"
	"github.com/fincoach/billing/internal/types"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	subscriptions service.SubscriptionService
	service       service.BillingNotificationService
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.GetServiceParams()
	s.subscriptions = service.NewSubscriptionService(params)
	s.service = service.NewBillingNotificationService(params, s.subscriptions)
}

func (s *NotificationServiceSuite) loadSubscriptionEnding(endDate time.Time) {
	s.GetBackend().RegisterJSONResponse("/subscriptions/current", fmt.Sprintf(`{
		"subscription": {
			"id": "subs_1",
			"planId": "premium",
			"status": "active",
			"startDate": "2025-05-01T00:00:00Z",
			"endDate": %q,
			"autoRenew": false
		}
	}`, endDate.UTC().Format(time.RFC3339)))
	s.Require().NoError(s.subscriptions.Load(s.GetContext()))
}

func (s *NotificationServiceSuite) TestCheckExpiryWithoutSubscription() {
	s.service.CheckExpiry(s.GetContext())
	s.Empty(s.GetNotifier().Delivered())
}

func (s *NotificationServiceSuite) TestCheckExpiryExpired() {
	s.loadSubscriptionEnding(time.Now().UTC().Add(-time.Hour))

	s.service.CheckExpiry(s.GetContext())

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindExpired, last.Kind)
	s.Equal(types.NotificationSeverityError, last.Severity)
}

func (s *NotificationServiceSuite) TestCheckExpiryUrgent() {
	// 60h out: three days when rounded up, inside the urgent window
	s.loadSubscriptionEnding(time.Now().UTC().Add(60 * time.Hour))

	s.service.CheckExpiry(s.GetContext())

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindExpiryUrgent, last.Kind)
}

func (s *NotificationServiceSuite) TestCheckExpiryUrgentRefires() {
	s.loadSubscriptionEnding(time.Now().UTC().Add(60 * time.Hour))

	s.service.CheckExpiry(s.GetContext())
	s.service.CheckExpiry(s.GetContext())

	// Same stable id on both emissions: the sink collapses the repeat
	delivered := s.GetNotifier().Delivered()
	s.Require().Len(delivered, 2)
	s.Equal(delivered[0].ID, delivered[1].ID)
}

func (s *NotificationServiceSuite) TestCheckExpiryWarning() {
	// 166h out rounds up to exactly the 7-day warning threshold
	s.loadSubscriptionEnding(time.Now().UTC().Add(166 * time.Hour))

	s.service.CheckExpiry(s.GetContext())

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindExpiryWarning, last.Kind)
	s.Equal(types.NotificationSeverityWarning, last.Severity)
}

func (s *NotificationServiceSuite) TestCheckExpiryQuietBetweenThresholds() {
	// Five days out: past the warning day, not yet urgent
	s.loadSubscriptionEnding(time.Now().UTC().Add(118 * time.Hour))

	s.service.CheckExpiry(s.GetContext())

	s.Empty(s.GetNotifier().Delivered())
}

func (s *NotificationServiceSuite) TestUpgradePromptForFreeTier() {
	s.service.MaybePromptUpgrade(s.GetContext())

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal(types.NotificationKindUpgradePrompt, last.Kind)
}

func (s *NotificationServiceSuite) TestUpgradePromptIsThrottled() {
	s.service.MaybePromptUpgrade(s.GetContext())
	s.service.MaybePromptUpgrade(s.GetContext())

	s.Len(s.GetNotifier().Delivered(), 1)
}

func (s *NotificationServiceSuite) TestUpgradePromptSkippedForPaidPlans() {
	s.loadSubscriptionEnding(time.Now().UTC().Add(30 * 24 * time.Hour))

	s.service.MaybePromptUpgrade(s.GetContext())

	s.Empty(s.GetNotifier().Delivered())
}

func (s *NotificationServiceSuite) TestNotifySuccessReactivation() {
	s.service.NotifySuccess(s.GetContext(), "reactivation", "Premium")

	last, ok := s.GetNotifier().Last()
	s.Require().True(ok)
	s.Equal("Suscripción reactivada", last.Title)
	s.Contains(last.Message, "Premium")
}

func (s *NotificationServiceSuite) TestDismiss() {
	s.service.Dismiss(s.GetContext(), string(types.NotificationKindUpgradePrompt))

	s.Equal([]string{string(types.NotificationKindUpgradePrompt)}, s.GetNotifier().Dismissed())
}
