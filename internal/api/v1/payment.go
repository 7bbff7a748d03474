package v1

import (
	"net/http"
	"strconv"

	"github.com/fincoach/billing/internal/api/dto"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/gateway"
	"github.com/fincoach/billing/internal/logger"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 10

type PaymentHandler struct {
	gateway gateway.Client
	log     *logger.Logger
}

func NewPaymentHandler(gw gateway.Client, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{gateway: gw, log: log}
}

// GetStatus returns the backend's view of a payment. A failed lookup is
// reported as 404 rather than an error: callers poll this endpoint and treat
// "unknown" as retry-later.
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	record := h.gateway.CheckPaymentStatus(c.Request.Context(), id)
	if record == nil {
		c.Error(ierr.NewError("payment not found").
			WithHint("The payment status is not available yet").
			Mark(ierr.ErrNotFound))
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentResponse(record))
}

// Cancel asks the backend to cancel an in-flight payment
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	result := h.gateway.CancelPayment(c.Request.Context(), id)
	if !result.Success {
		c.Error(ierr.NewError("payment cancellation rejected").
			WithHint(result.Error).
			Mark(ierr.ErrUpstream))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// History lists the user's past payments, newest first
func (h *PaymentHandler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(ierr.NewError("invalid limit").
				WithHint("Limit must be a positive integer").
				Mark(ierr.ErrValidation))
			return
		}
		limit = parsed
	}

	records := h.gateway.GetPaymentHistory(c.Request.Context(), limit)
	resp := &dto.PaymentHistoryResponse{
		Payments: make([]*dto.PaymentResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Payments = append(resp.Payments, dto.NewPaymentResponse(rec))
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateDiscount checks a discount code against a plan before checkout
func (h *PaymentHandler) ValidateDiscount(c *gin.Context) {
	var req dto.ValidateDiscountRequest
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

	result := h.gateway.ApplyDiscountCode(c.Request.Context(), req.Code, req.PlanID)
	c.JSON(http.StatusOK, &dto.ValidateDiscountResponse{
		Valid:           result.Valid,
		DiscountPercent: result.DiscountPercent,
		Message:         result.Message,
	})
}

// Methods lists the payment methods available in a country
func (h *PaymentHandler) Methods(c *gin.Context) {
	country := c.Param("country")
	if country == "" {
		c.Error(ierr.NewError("country is required").
			WithHint("Country code is required").
			Mark(ierr.ErrValidation))
		return
	}

	methods := h.gateway.GetAvailablePaymentMethods(c.Request.Context(), country)
	c.JSON(http.StatusOK, &dto.PaymentMethodsResponse{Methods: methods})
}
