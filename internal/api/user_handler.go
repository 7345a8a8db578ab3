package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/middleware"
	"streamhub-backend-go/internal/models"
)

// UserHandler is the member-facing catalog surface: browsing, streaming and
// viewing progress.
type UserHandler struct {
	viewer core.ViewerService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(viewer core.ViewerService, logger *zap.Logger) *UserHandler {
	return &UserHandler{viewer: viewer, logger: logger}
}

// ListVideos handles GET /api/user/videos.
func (h *UserHandler) ListVideos(c *gin.Context) {
	filter := db.VideoFilter{
		SeriesID: c.Query("series"),
		Search:   c.Query("search"),
	}
	result, err := h.viewer.BrowseVideos(c.Request.Context(), filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVideo handles GET /api/user/videos/:id.
func (h *UserHandler) GetVideo(c *gin.Context) {
	video, err := h.viewer.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// ListSeries handles GET /api/user/series.
func (h *UserHandler) ListSeries(c *gin.Context) {
	filter := db.SeriesFilter{Search: c.Query("search")}
	result, err := h.viewer.BrowseSeries(c.Request.Context(), filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSeries handles GET /api/user/series/:id.
func (h *UserHandler) GetSeries(c *gin.Context) {
	series, episodes, err := h.viewer.GetSeries(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series, "videos": episodes})
}

// Stream handles GET /api/user/videos/:id/stream. Runs behind the
// subscription gate.
func (h *UserHandler) Stream(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	target, err := h.viewer.StreamURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// ReportProgress handles POST /api/user/videos/:id/progress.
func (h *UserHandler) ReportProgress(c *gin.Context) {
	var req models.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	progress, err := h.viewer.ReportProgress(c.Request.Context(), userID, c.Param("id"), *req.Progress)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ContinueWatching handles GET /api/user/continue-watching.
func (h *UserHandler) ContinueWatching(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	userID := c.GetString(middleware.ContextUserID)
	records, err := h.viewer.ContinueWatching(c.Request.Context(), userID, limit)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": records})
}

// ProgressSummary handles GET /api/user/progress/summary.
func (h *UserHandler) ProgressSummary(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	summary, err := h.viewer.ProgressSummary(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
