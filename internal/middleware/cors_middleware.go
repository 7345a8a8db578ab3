package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"streamhub-backend-go/internal/config"
)

// CORSMiddleware allows the configured client origin. When no CLIENT_URL is
// set, localhost development origins are allowed instead.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if appConfig != nil && appConfig.ClientURL != "" {
		origins = []string{appConfig.ClientURL}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
