package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// subscriptionService reconciles the local subscription cache against the
// payment processor. The processor is the source of truth: every write here
// copies processor state verbatim, and webhook-driven updates overwrite the
// whole mirrored block. Events arriving out of order or twice converge to the
// same record.
type subscriptionService struct {
	subRepo   db.SubscriptionRepository
	userRepo  db.UserRepository
	planRepo  db.PlanRepository
	processor PaymentProcessor
	logger    *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance.
func NewSubscriptionService(
	subRepo db.SubscriptionRepository,
	userRepo db.UserRepository,
	planRepo db.PlanRepository,
	processor PaymentProcessor,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		subRepo:   subRepo,
		userRepo:  userRepo,
		planRepo:  planRepo,
		processor: processor,
		logger:    logger,
	}
}

func (s *subscriptionService) CreateCheckoutSession(ctx context.Context, userID string, req models.CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	plan, err := s.planRepo.GetByStripePriceID(ctx, req.PriceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no plan for price %q", ErrNotFound, req.PriceID)
		}
		return nil, fmt.Errorf("failed to look up plan: %w", err)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%w: plan %q is not active", ErrNotFound, plan.ID)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.StripeCustomerID == "" {
		name := user.FirstName + " " + user.LastName
		customerID, err := s.processor.CreateCustomer(ctx, user.Email, name, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: create customer: %v", ErrProcessor, err)
		}
		user.StripeCustomerID = customerID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to persist customer id: %w", err)
		}
	}

	session, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: user.StripeCustomerID,
		PriceID:    req.PriceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		UserID:     user.ID,
		PlanID:     plan.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrProcessor, err)
	}
	s.logger.Info("checkout session created",
		zap.String("userId", userID),
		zap.String("planId", plan.ID),
		zap.String("sessionId", session.SessionID))
	return session, nil
}

// GetForUser is a read-through refresh: the record is re-fetched from the
// processor and overwritten locally before being returned, so stale webhook
// gaps heal on read. A processor failure falls back to the cached record.
func (s *subscriptionService) GetForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no subscription for user %q", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if snap, err := s.processor.GetSubscription(ctx, sub.StripeSubscriptionID); err != nil {
		s.logger.Warn("processor refresh failed, serving cached record",
			zap.String("stripeSubscriptionId", sub.StripeSubscriptionID),
			zap.Error(err))
	} else {
		s.applySnapshot(ctx, sub, *snap)
	}

	s.joinPlan(ctx, sub)
	return sub, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string, req models.CancelSubscriptionRequest) (*models.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no subscription for user %q", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if req.Immediate {
		if _, err := s.processor.CancelSubscription(ctx, sub.StripeSubscriptionID, true); err != nil {
			return nil, fmt.Errorf("%w: cancel subscription: %v", ErrProcessor, err)
		}
		if err := s.removeRecord(ctx, sub); err != nil {
			return nil, err
		}
		s.logger.Info("subscription canceled immediately",
			zap.String("userId", userID),
			zap.String("reason", req.Reason))
		sub.Status = models.SubscriptionStatusCanceled
		return sub, nil
	}

	snap, err := s.processor.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule cancellation: %v", ErrProcessor, err)
	}
	s.applySnapshot(ctx, sub, *snap)
	s.logger.Info("subscription scheduled for cancellation",
		zap.String("userId", userID),
		zap.Time("periodEnd", sub.CurrentPeriodEnd),
		zap.String("reason", req.Reason))
	s.joinPlan(ctx, sub)
	return sub, nil
}

func (s *subscriptionService) Reactivate(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no subscription for user %q", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.CancelAtPeriodEnd {
		return nil, fmt.Errorf("%w: subscription is not scheduled for cancellation", ErrConflict)
	}

	snap, err := s.processor.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, false)
	if err != nil {
		return nil, fmt.Errorf("%w: reactivate subscription: %v", ErrProcessor, err)
	}
	s.applySnapshot(ctx, sub, *snap)
	s.logger.Info("subscription reactivated", zap.String("userId", userID))
	s.joinPlan(ctx, sub)
	return sub, nil
}

// HandleCheckoutCompleted creates the local record from the processor's view
// of the new subscription. Missing metadata or an unknown plan is logged and
// dropped so the webhook can still be acknowledged.
func (s *subscriptionService) HandleCheckoutCompleted(ctx context.Context, userID, planID, customerID string, snap models.SubscriptionSnapshot) error {
	if userID == "" || planID == "" {
		s.logger.Warn("checkout completed without metadata, ignoring",
			zap.String("stripeSubscriptionId", snap.StripeSubscriptionID))
		return nil
	}
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("checkout completed for unknown plan, ignoring",
				zap.String("planId", planID),
				zap.String("stripeSubscriptionId", snap.StripeSubscriptionID))
			return nil
		}
		return fmt.Errorf("failed to look up plan: %w", err)
	}

	// One record per user: an earlier subscription is superseded, not kept.
	if existing, err := s.subRepo.GetByUserID(ctx, userID); err == nil {
		if err := s.subRepo.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to remove superseded subscription: %w", err)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to check existing subscription: %w", err)
	}

	sub := &models.Subscription{
		UserID:               userID,
		PricingPlanID:        planID,
		StripeSubscriptionID: snap.StripeSubscriptionID,
		StripeCustomerID:     customerID,
	}
	sub.ApplySnapshot(snap)
	if _, err := s.subRepo.Create(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription record: %w", err)
	}

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		user.SubscriptionID = sub.ID
		if user.StripeCustomerID == "" {
			user.StripeCustomerID = customerID
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to set subscription back-reference: %w", err)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to load user for back-reference: %w", err)
	}

	s.logger.Info("subscription created from checkout",
		zap.String("userId", userID),
		zap.String("planId", planID),
		zap.String("stripeSubscriptionId", snap.StripeSubscriptionID),
		zap.String("status", string(sub.Status)))
	return nil
}

func (s *subscriptionService) HandlePaymentSucceeded(ctx context.Context, stripeSubID string) error {
	return s.setStatus(ctx, stripeSubID, models.SubscriptionStatusActive)
}

func (s *subscriptionService) HandlePaymentFailed(ctx context.Context, stripeSubID string) error {
	return s.setStatus(ctx, stripeSubID, models.SubscriptionStatusPastDue)
}

// HandleSubscriptionUpdated overwrites the mirrored block wholesale. Applying
// the same snapshot twice is a no-op, which makes redelivery safe.
func (s *subscriptionService) HandleSubscriptionUpdated(ctx context.Context, snap models.SubscriptionSnapshot) error {
	sub, ok, err := s.findByExternalID(ctx, snap.StripeSubscriptionID)
	if err != nil || !ok {
		return err
	}
	s.logTransition(sub.Status, snap.Status, snap.StripeSubscriptionID)
	sub.ApplySnapshot(snap)
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to apply subscription update: %w", err)
	}
	return nil
}

func (s *subscriptionService) HandleSubscriptionDeleted(ctx context.Context, stripeSubID string) error {
	sub, ok, err := s.findByExternalID(ctx, stripeSubID)
	if err != nil || !ok {
		return err
	}
	if err := s.removeRecord(ctx, sub); err != nil {
		return err
	}
	s.logger.Info("subscription deleted by processor",
		zap.String("stripeSubscriptionId", stripeSubID),
		zap.String("userId", sub.UserID))
	return nil
}

func (s *subscriptionService) setStatus(ctx context.Context, stripeSubID string, status models.SubscriptionStatus) error {
	sub, ok, err := s.findByExternalID(ctx, stripeSubID)
	if err != nil || !ok {
		return err
	}
	s.logTransition(sub.Status, status, stripeSubID)
	sub.Status = status
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}

// findByExternalID resolves a processor subscription id to the local record.
// Unknown ids are a logged no-op (ok=false, err=nil): webhooks may reference
// subscriptions created before this backend existed.
func (s *subscriptionService) findByExternalID(ctx context.Context, stripeSubID string) (*models.Subscription, bool, error) {
	sub, err := s.subRepo.GetByStripeSubscriptionID(ctx, stripeSubID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("event for unknown subscription, ignoring",
				zap.String("stripeSubscriptionId", stripeSubID))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up subscription: %w", err)
	}
	return sub, true, nil
}

// removeRecord deletes the subscription document and clears the user's
// back-reference.
func (s *subscriptionService) removeRecord(ctx context.Context, sub *models.Subscription) error {
	if err := s.subRepo.Delete(ctx, sub.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to delete subscription record: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user for back-reference clear: %w", err)
	}
	if user.SubscriptionID != "" {
		user.SubscriptionID = ""
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to clear subscription back-reference: %w", err)
		}
	}
	return nil
}

func (s *subscriptionService) applySnapshot(ctx context.Context, sub *models.Subscription, snap models.SubscriptionSnapshot) {
	s.logTransition(sub.Status, snap.Status, snap.StripeSubscriptionID)
	sub.ApplySnapshot(snap)
	if err := s.subRepo.Update(ctx, sub); err != nil {
		s.logger.Error("failed to persist refreshed subscription",
			zap.String("subscriptionId", sub.ID),
			zap.Error(err))
	}
}

func (s *subscriptionService) joinPlan(ctx context.Context, sub *models.Subscription) {
	if sub.PricingPlanID == "" {
		return
	}
	plan, err := s.planRepo.GetByID(ctx, sub.PricingPlanID)
	if err != nil {
		s.logger.Warn("failed to join pricing plan",
			zap.String("planId", sub.PricingPlanID),
			zap.Error(err))
		return
	}
	sub.Plan = plan
}

// logTransition flags status jumps outside the expected lifecycle. State is
// still applied verbatim either way.
func (s *subscriptionService) logTransition(from, to models.SubscriptionStatus, stripeSubID string) {
	if !models.CanTransition(from, to) {
		s.logger.Warn("unexpected subscription status transition",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("stripeSubscriptionId", stripeSubID))
	}
}
