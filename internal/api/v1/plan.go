package v1

import (
	"net/http"

	"github.com/fincoach/billing/internal/api/dto"
	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/logger"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	catalog *plan.Catalog
	log     *logger.Logger
}

func NewPlanHandler(catalog *plan.Catalog, log *logger.Logger) *PlanHandler {
	return &PlanHandler{catalog: catalog, log: log}
}

// ListPlans returns the static plan catalog in upgrade order
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans := h.catalog.Plans()
	resp := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, dto.NewPlanResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"plans": resp})
}
