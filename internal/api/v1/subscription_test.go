package v1_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	v1 "github.com/fincoach/billing/internal/api/v1"
	"github.com/fincoach/billing/internal/rest/middleware"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type SubscriptionHandlerSuite struct {
	testutil.BaseServiceTestSuite
	subscriptions service.SubscriptionService
	router        *gin.Engine
}

func TestSubscriptionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionHandlerSuite))
}

func (s *SubscriptionHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.subscriptions = service.NewSubscriptionService(s.GetServiceParams())
	handler := v1.NewSubscriptionHandler(s.subscriptions, s.GetConfig(), s.GetLogger())

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler(s.GetLogger()))
	s.router.POST("/v1/subscriptions/upgrade", handler.Upgrade)
	s.router.POST("/v1/subscriptions/cancel", handler.Cancel)
	s.router.POST("/v1/subscriptions/apply-discount", handler.ApplyDiscount)
}

func (s *SubscriptionHandlerSuite) loadSubscription() {
	s.GetBackend().RegisterJSONResponse("/subscriptions/current", `{
		"subscription": {
			"id": "subs_1",
			"planId": "premium",
			"status": "active",
			"startDate": "2025-05-01T00:00:00Z",
			"autoRenew": true
		}
	}`)
	s.Require().NoError(s.subscriptions.Load(s.GetContext()))
}

// A cancellation without survey data arrives as a bare POST; the handler must
// not reject the absent body.
func (s *SubscriptionHandlerSuite) TestCancelWithEmptyBody() {
	s.loadSubscription()
	s.GetBackend().RegisterJSONResponse("/subscriptions/cancel", `{"success": true}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/cancel", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.GetBackend().Calls("/subscriptions/cancel"))
}

func (s *SubscriptionHandlerSuite) TestCancelWithSurveyBody() {
	s.loadSubscription()
	s.GetBackend().RegisterJSONResponse("/subscriptions/cancel", `{"success": true}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/cancel",
		strings.NewReader(`{"reason": "too expensive", "feedback": "great product though"}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(s.GetBackend().LastBody("/subscriptions/cancel")), "too expensive")
}

func (s *SubscriptionHandlerSuite) TestUpgradeRejectsMissingPlan() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/upgrade",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(0, s.GetBackend().TotalCalls())
}

func (s *SubscriptionHandlerSuite) TestApplyDiscountRejectsMissingCode() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/apply-discount",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(0, s.GetBackend().TotalCalls())
}
