package v1

import (
	"net/http"

	"github.com/fincoach/billing/internal/api/dto"
	"github.com/fincoach/billing/internal/config"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// CallbackHandler is the entry point the external payment processor redirects
// back to. Both return routes resolve into the same reconciler.
type CallbackHandler struct {
	reconciler service.ReconcilerService
	cfg        *config.Configuration
	log        *logger.Logger
}

func NewCallbackHandler(reconciler service.ReconcilerService, cfg *config.Configuration, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler, cfg: cfg, log: log}
}

// HandleReturn reconciles a payment-processor return. A request carrying no
// payment information at all is redirected to the dashboard.
func (h *CallbackHandler) HandleReturn(c *gin.Context) {
	var params service.CallbackParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid callback parameters").
			Mark(ierr.ErrValidation))
		return
	}

	result := h.reconciler.Reconcile(c.Request.Context(), &params)

	if result.State == types.ReconcileStateNotPaymentReturn {
		c.Redirect(http.StatusFound, h.cfg.Billing.DashboardURL)
		return
	}

	h.log.Infow("payment return reconciled",
		"reconcile_id", result.ID,
		"state", result.State,
		"payment_id", result.PaymentID,
	)

	c.JSON(http.StatusOK, &dto.CallbackResponse{
		ReconcileID: result.ID,
		State:       result.State,
		PaymentID:   result.PaymentID,
		Message:     result.Message,
		Payment:     dto.NewPaymentResponse(result.Record),
	})
}
