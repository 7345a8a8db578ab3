package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is a simple acknowledgment payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse carries the account plus a fresh token pair.
type AuthResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

func newAuthResponse(user *models.User, pair *core.TokenPair) AuthResponse {
	return AuthResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

// Pagination defaults for list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePage reads ?page= and ?limit= query params into a db.Page.
func parsePage(c *gin.Context) db.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return db.Page{Limit: limit, Offset: (page - 1) * limit}
}

// parseBoolQuery reads an optional boolean query param, nil when absent or
// malformed.
func parseBoolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}
