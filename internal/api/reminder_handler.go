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

// ReminderHandler manages release reminders for the authenticated user.
type ReminderHandler struct {
	reminders core.ReminderService
	logger    *zap.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminders core.ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, logger: logger}
}

// Create handles POST /api/reminder.
func (h *ReminderHandler) Create(c *gin.Context) {
	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	reminder, err := h.reminders.Create(c.Request.Context(), userID, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// List handles GET /api/reminder.
func (h *ReminderHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	filter := db.ReminderFilter{IsNotified: parseBoolQuery(c, "isNotified")}

	reminders, total, err := h.reminders.List(c.Request.Context(), userID, filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "total": total})
}

// ListPending handles GET /api/reminder/pending.
func (h *ReminderHandler) ListPending(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	notified := false
	filter := db.ReminderFilter{IsNotified: &notified}

	reminders, total, err := h.reminders.List(c.Request.Context(), userID, filter, parsePage(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "total": total})
}

// Update handles PUT /api/reminder/:id.
func (h *ReminderHandler) Update(c *gin.Context) {
	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	reminder, err := h.reminders.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// Delete handles DELETE /api/reminder/:id.
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if err := h.reminders.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Reminder deleted"})
}

// CheckNotifications handles POST /api/reminder/check-notifications: a
// synchronous sweep that marks due reminders notified and reports them.
func (h *ReminderHandler) CheckNotifications(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	due, err := h.reminders.SweepDue(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notified": due, "count": len(due)})
}
