package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fincoach/billing/internal/api/dto"
	v1 "github.com/fincoach/billing/internal/api/v1"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/testutil"
	"github.com/fincoach/billing/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type CallbackHandlerSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestCallbackHandlerSuite(t *testing.T) {
	suite.Run(t, new(CallbackHandlerSuite))
}

func (s *CallbackHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := s.GetServiceParams()
	subscriptions := service.NewSubscriptionService(params)
	reconciler := service.NewReconcilerService(params, subscriptions)
	handler := v1.NewCallbackHandler(reconciler, s.GetConfig(), s.GetLogger())

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.GET("/v1/billing/callback", handler.HandleReturn)
}

func (s *CallbackHandlerSuite) TestSuccessfulReturn() {
	s.GetBackend().RegisterJSONResponse("/subscriptions/current", `{
		"subscription": {
			"id": "subs_1",
			"planId": "premium",
			"status": "active",
			"startDate": "2025-05-01T00:00:00Z",
			"autoRenew": true
		}
	}`)
	s.GetBackend().RegisterJSONResponse("/payments/pay_123/status", `{
		"id": "pay_123",
		"status": "completed",
		"planId": "premium"
	}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/billing/callback?status=success&payment_id=pay_123", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var resp dto.CallbackResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.ReconcileStateSucceeded, resp.State)
	s.Equal("pay_123", resp.PaymentID)
	s.NotEmpty(resp.ReconcileID)
	s.Require().NotNil(resp.Payment)
	s.Equal(types.PaymentStatusCompleted, resp.Payment.Status)
}

func (s *CallbackHandlerSuite) TestFailedReturn() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/billing/callback?status=failed&payment_id=pay_123&message=card+declined", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var resp dto.CallbackResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.ReconcileStateFailed, resp.State)
	s.Equal("card declined", resp.Message)
}

func (s *CallbackHandlerSuite) TestPlainVisitRedirectsToDashboard() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/billing/callback", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusFound, w.Code)
	s.Equal(s.GetConfig().Billing.DashboardURL, w.Header().Get("Location"))
}
