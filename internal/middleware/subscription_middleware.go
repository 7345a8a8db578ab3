package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/db"
)

// ContextSubscription holds the caller's subscription record once the access
// gate has passed.
const ContextSubscription = "subscription"

// SubscriptionGate guards streaming endpoints: access requires a subscription
// record whose IsActiveAt predicate holds right now. The gate fails closed;
// a storage error denies rather than allows.
type SubscriptionGate struct {
	subRepo db.SubscriptionRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewSubscriptionGate creates a new SubscriptionGate instance.
func NewSubscriptionGate(subRepo db.SubscriptionRepository, logger *zap.Logger) *SubscriptionGate {
	return &SubscriptionGate{
		subRepo: subRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// RequireSubscription must run after RequireAuth.
func (g *SubscriptionGate) RequireSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		sub, err := g.subRepo.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Active subscription required"})
				return
			}
			g.logger.Error("subscription lookup failed, denying access",
				zap.String("userId", userID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Active subscription required"})
			return
		}

		if !sub.IsActiveAt(g.now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "Active subscription required",
				Details: "Subscription is " + string(sub.Status),
			})
			return
		}

		c.Set(ContextSubscription, sub)
		c.Next()
	}
}
