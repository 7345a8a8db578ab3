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

// VideoHandler is the admin video management surface.
type VideoHandler struct {
	catalog core.CatalogService
	logger  *zap.Logger
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(catalog core.CatalogService, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{catalog: catalog, logger: logger}
}

// UploadURL handles POST /api/video/upload-url.
func (h *VideoHandler) UploadURL(c *gin.Context) {
	var req models.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	target, err := h.catalog.PresignUpload(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// Create handles POST /api/video.
func (h *VideoHandler) Create(c *gin.Context) {
	var req models.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	uploadedBy := c.GetString(middleware.ContextUserID)
	video, err := h.catalog.CreateVideo(c.Request.Context(), uploadedBy, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// List handles GET /api/video.
func (h *VideoHandler) List(c *gin.Context) {
	filter := db.VideoFilter{
		SeriesID:    c.Query("series"),
		IsPublished: parseBoolQuery(c, "isPublished"),
		Search:      c.Query("search"),
	}
	result, err := h.catalog.ListVideos(c.Request.Context(), filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/video/:id.
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.catalog.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// Update handles PUT /api/video/:id.
func (h *VideoHandler) Update(c *gin.Context) {
	var req models.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	video, err := h.catalog.UpdateVideo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// Delete handles DELETE /api/video/:id.
func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Video deleted"})
}

// IncrementViews handles POST /api/video/:id/views.
func (h *VideoHandler) IncrementViews(c *gin.Context) {
	video, err := h.catalog.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": video.Views})
}
