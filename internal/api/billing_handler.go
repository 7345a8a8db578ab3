package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/middleware"
	"streamhub-backend-go/internal/models"
	"streamhub-backend-go/internal/payments"
)

// BillingHandler owns checkout, subscription management and the Stripe
// webhook endpoint.
type BillingHandler struct {
	subscriptions core.SubscriptionService
	processor     core.PaymentProcessor
	webhookSecret string
	logger        *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(
	subscriptions core.SubscriptionService,
	processor core.PaymentProcessor,
	webhookSecret string,
	logger *zap.Logger,
) *BillingHandler {
	return &BillingHandler{
		subscriptions: subscriptions,
		processor:     processor,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateCheckoutSession handles POST /api/subscription/checkout.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	session, err := h.subscriptions.CreateCheckoutSession(c.Request.Context(), userID, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSubscription handles GET /api/subscription.
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	sub, err := h.subscriptions.GetForUser(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// CancelSubscription handles POST /api/subscription/cancel.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	var req models.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	sub, err := h.subscriptions.Cancel(c.Request.Context(), userID, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ReactivateSubscription handles POST /api/subscription/reactivate.
func (h *BillingHandler) ReactivateSubscription(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	sub, err := h.subscriptions.Reactivate(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Webhook handles POST /api/stripe/webhook. The signature is verified against
// the raw body before anything is parsed; a bad signature changes no state.
// Unrecognized event types are acknowledged and ignored so Stripe does not
// retry them forever.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook signature"})
		return
	}

	if err := h.dispatchEvent(c, event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("eventType", string(event.Type)),
			zap.String("eventId", event.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) dispatchEvent(c *gin.Context, event stripe.Event) error {
	ctx := c.Request.Context()

	switch event.Type {
	case "checkout.session.completed":
		completion, err := payments.ParseCheckoutCompleted(event.Data.Raw)
		if err != nil {
			return err
		}
		if completion.StripeSubscriptionID == "" {
			h.logger.Warn("checkout completed without subscription, ignoring",
				zap.String("eventId", event.ID))
			return nil
		}
		snap, err := h.processor.GetSubscription(ctx, completion.StripeSubscriptionID)
		if err != nil {
			return fmt.Errorf("retrieve subscription after checkout: %w", err)
		}
		return h.subscriptions.HandleCheckoutCompleted(ctx,
			completion.UserID, completion.PlanID, completion.CustomerID, *snap)

	case "invoice.payment_succeeded":
		subID, err := payments.SubscriptionIDFromInvoice(event.Data.Raw)
		if err != nil {
			return err
		}
		if subID == "" {
			return nil
		}
		return h.subscriptions.HandlePaymentSucceeded(ctx, subID)

	case "invoice.payment_failed":
		subID, err := payments.SubscriptionIDFromInvoice(event.Data.Raw)
		if err != nil {
			return err
		}
		if subID == "" {
			return nil
		}
		return h.subscriptions.HandlePaymentFailed(ctx, subID)

	case "customer.subscription.updated":
		snap, err := payments.ParseSubscriptionEvent(event.Data.Raw)
		if err != nil {
			return err
		}
		return h.subscriptions.HandleSubscriptionUpdated(ctx, *snap)

	case "customer.subscription.deleted":
		snap, err := payments.ParseSubscriptionEvent(event.Data.Raw)
		if err != nil {
			return err
		}
		return h.subscriptions.HandleSubscriptionDeleted(ctx, snap.StripeSubscriptionID)

	default:
		h.logger.Debug("ignoring webhook event",
			zap.String("eventType", string(event.Type)))
		return nil
	}
}
