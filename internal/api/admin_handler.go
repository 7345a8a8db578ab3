package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/models"
)

// AdminHandler handles the admin account surface: login, account creation,
// user listing and platform stats.
type AdminHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService core.AuthService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{authService: authService, logger: logger}
}

// Login handles POST /api/admin/login. Non-admin accounts get 403.
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req, models.RoleAdmin)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newAuthResponse(user, pair))
}

// CreateAdmin handles POST /api/admin/create.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.authService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user.Public())
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.authService.Stats(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := parsePage(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), page)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "total": total})
}
