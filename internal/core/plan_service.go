package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// planService manages pricing plans. Each plan is mirrored to the processor
// as a product with one recurring price; prices are immutable there, so price
// or interval edits change only the local document while name and description
// are synced through.
type planService struct {
	planRepo  db.PlanRepository
	subRepo   db.SubscriptionRepository
	processor PaymentProcessor
	logger    *zap.Logger
}

// NewPlanService creates a new PlanService instance.
func NewPlanService(
	planRepo db.PlanRepository,
	subRepo db.SubscriptionRepository,
	processor PaymentProcessor,
	logger *zap.Logger,
) PlanService {
	return &planService{
		planRepo:  planRepo,
		subRepo:   subRepo,
		processor: processor,
		logger:    logger,
	}
}

func (s *planService) Create(ctx context.Context, req models.CreatePlanRequest) (*models.PricingPlan, error) {
	plan := &models.PricingPlan{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Currency:          strings.ToUpper(req.Currency),
		Interval:          req.Interval,
		Features:          req.Features,
		MaxVideoQuality:   req.MaxVideoQuality,
		ConcurrentStreams: req.ConcurrentStreams,
		IsActive:          true,
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if plan.MaxVideoQuality == "" {
		plan.MaxVideoQuality = "1080p"
	}
	if plan.ConcurrentStreams == 0 {
		plan.ConcurrentStreams = 1
	}

	priceID, err := s.processor.CreateProductWithPrice(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: provision product: %v", ErrProcessor, err)
	}
	plan.StripePriceID = priceID

	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	s.logger.Info("pricing plan created",
		zap.String("planId", plan.ID),
		zap.String("stripePriceId", priceID))
	return plan, nil
}

func (s *planService) GetByID(ctx context.Context, planID string) (*models.PricingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: plan %q", ErrNotFound, planID)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (s *planService) List(ctx context.Context, filter db.PlanFilter) ([]*models.PricingPlan, error) {
	plans, err := s.planRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (s *planService) Update(ctx context.Context, planID string, req models.UpdatePlanRequest) (*models.PricingPlan, error) {
	plan, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		plan.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Interval != nil {
		plan.Interval = *req.Interval
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.MaxVideoQuality != nil {
		plan.MaxVideoQuality = *req.MaxVideoQuality
	}
	if req.ConcurrentStreams != nil {
		plan.ConcurrentStreams = *req.ConcurrentStreams
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	// Best effort: existing subscribers keep their price either way.
	if req.Name != nil || req.Description != nil {
		if err := s.processor.SyncProduct(ctx, plan.StripePriceID, plan.Name, plan.Description); err != nil {
			s.logger.Warn("failed to sync product metadata",
				zap.String("planId", plan.ID),
				zap.Error(err))
		}
	}
	return plan, nil
}

// Delete removes a plan. Refused while any active or trialing subscription
// still references it; deactivation is the retirement path in that case.
func (s *planService) Delete(ctx context.Context, planID string) error {
	plan, err := s.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	inUse, err := s.subRepo.CountByPlanAndStatus(ctx, planID, []models.SubscriptionStatus{
		models.SubscriptionStatusActive,
		models.SubscriptionStatusTrialing,
	})
	if err != nil {
		return fmt.Errorf("failed to count plan subscriptions: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: plan %q has %d active subscriptions", ErrConflict, planID, inUse)
	}

	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if err := s.processor.SetPriceActive(ctx, plan.StripePriceID, false); err != nil {
		s.logger.Warn("failed to archive processor price",
			zap.String("stripePriceId", plan.StripePriceID),
			zap.Error(err))
	}
	s.logger.Info("pricing plan deleted", zap.String("planId", planID))
	return nil
}

func (s *planService) SetActive(ctx context.Context, planID string, active bool) (*models.PricingPlan, error) {
	plan, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsActive == active {
		return plan, nil
	}
	plan.IsActive = active
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	if err := s.processor.SetPriceActive(ctx, plan.StripePriceID, active); err != nil {
		s.logger.Warn("failed to toggle processor price",
			zap.String("stripePriceId", plan.StripePriceID),
			zap.Bool("active", active),
			zap.Error(err))
	}
	return plan, nil
}
