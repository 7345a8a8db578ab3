package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/middleware"
	"streamhub-backend-go/internal/models"
)

// SeriesHandler is the admin series management surface.
type SeriesHandler struct {
	catalog core.CatalogService
	logger  *zap.Logger
}

// NewSeriesHandler creates a new SeriesHandler.
func NewSeriesHandler(catalog core.CatalogService, logger *zap.Logger) *SeriesHandler {
	return &SeriesHandler{catalog: catalog, logger: logger}
}

// Create handles POST /api/series.
func (h *SeriesHandler) Create(c *gin.Context) {
	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	createdBy := c.GetString(middleware.ContextUserID)
	series, err := h.catalog.CreateSeries(c.Request.Context(), createdBy, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, series)
}

// List handles GET /api/series.
func (h *SeriesHandler) List(c *gin.Context) {
	filter := db.SeriesFilter{
		IsActive: parseBoolQuery(c, "isActive"),
		Search:   c.Query("search"),
	}
	result, err := h.catalog.ListSeries(c.Request.Context(), filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/series/:id.
func (h *SeriesHandler) Get(c *gin.Context) {
	series, err := h.catalog.GetSeries(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Update handles PUT /api/series/:id.
func (h *SeriesHandler) Update(c *gin.Context) {
	var req models.UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	series, err := h.catalog.UpdateSeries(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Delete handles DELETE /api/series/:id. Refused while episodes exist.
func (h *SeriesHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteSeries(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Series deleted"})
}
