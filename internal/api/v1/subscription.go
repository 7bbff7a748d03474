package v1

import (
	goerrors "errors"
	"io"
	"net/http"

	"github.com/fincoach/billing/internal/api/dto"
	"github.com/fincoach/billing/internal/config"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	cfg     *config.Configuration
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, cfg *config.Configuration, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, cfg: cfg, log: log}
}

// GetCurrent returns the current subscription with its derived billing fields.
// The state is reloaded from the backend on every read; the in-memory copy is
// a cache, not a source of truth.
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Load(ctx); err != nil {
		c.Error(err)
		return
	}

	resp := dto.NewSubscriptionResponse(
		h.service.Current(),
		h.service.CurrentPlan(),
		h.service.AvailableUpgrades(),
		h.service.DaysUntilExpiry(),
		h.service.IsExpiringSoon(h.cfg.Billing.ExpiryWarningDays),
	)
	c.JSON(http.StatusOK, resp)
}

// Upgrade starts a plan change. When the response carries a redirect URL the
// client must send the user to the external processor to finish the flow.
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var req dto.UpgradeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind upgrade request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.Upgrade(c.Request.Context(), req.PlanID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.UpgradeResponse{
		PaymentID:   result.PaymentID,
		RedirectURL: result.RedirectURL,
		Completed:   result.Completed,
	})
}

// Cancel posts a cancellation for the current subscription
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req dto.CancelSubscriptionRequest
	// Both fields are optional survey data, so an absent body is fine
	if err := c.ShouldBindJSON(&req); err != nil && !goerrors.Is(err, io.EOF) {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), req.Reason, req.Feedback); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reactivate re-enables a cancelled subscription
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	if err := h.service.Reactivate(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ApplyDiscount applies a discount code to the current subscription, or
// stores it for the next checkout when there is none
func (h *SubscriptionHandler) ApplyDiscount(c *gin.Context) {
	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	if err := h.service.ApplyDiscount(c.Request.Context(), req.Code); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
