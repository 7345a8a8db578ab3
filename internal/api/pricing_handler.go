package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// PricingHandler exposes pricing plans: public reads, admin writes.
type PricingHandler struct {
	plans  core.PlanService
	logger *zap.Logger
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(plans core.PlanService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{plans: plans, logger: logger}
}

// List handles GET /api/pricing and GET /api/stripe/plans.
func (h *PricingHandler) List(c *gin.Context) {
	filter := db.PlanFilter{
		IsActive: parseBoolQuery(c, "isActive"),
		Interval: c.Query("interval"),
	}
	// The public surface defaults to active plans only.
	if filter.IsActive == nil {
		active := true
		filter.IsActive = &active
	}

	plans, err := h.plans.List(c.Request.Context(), filter)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Get handles GET /api/pricing/:id.
func (h *PricingHandler) Get(c *gin.Context) {
	plan, err := h.plans.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Create handles POST /api/pricing.
func (h *PricingHandler) Create(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// Update handles PUT /api/pricing/:id.
func (h *PricingHandler) Update(c *gin.Context) {
	var req models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	plan, err := h.plans.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /api/pricing/:id. 409 while active subscriptions
// reference the plan.
func (h *PricingHandler) Delete(c *gin.Context) {
	if err := h.plans.Delete(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Pricing plan deleted"})
}

// Activate handles POST /api/pricing/:id/activate.
func (h *PricingHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles POST /api/pricing/:id/deactivate.
func (h *PricingHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *PricingHandler) setActive(c *gin.Context, active bool) {
	plan, err := h.plans.SetActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
