package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamhub-backend-go/internal/models"
)

const plansCollection = "pricing_plans"

// firestorePlanRepository implements PlanRepository on Firestore.
type firestorePlanRepository struct {
	client *firestore.Client
}

// NewFirestorePlanRepository creates a Firestore-backed pricing plan
// repository.
func NewFirestorePlanRepository(client *firestore.Client) PlanRepository {
	return &firestorePlanRepository{client: client}
}

func (r *firestorePlanRepository) Create(ctx context.Context, plan *models.PricingPlan) (string, error) {
	if plan.Name == "" {
		return "", errors.New("plan name cannot be empty")
	}
	ref, _, err := r.client.Collection(plansCollection).Add(ctx, plan)
	if err != nil {
		return "", fmt.Errorf("failed to create pricing plan: %w", err)
	}
	plan.ID = ref.ID
	return ref.ID, nil
}

func (r *firestorePlanRepository) GetByID(ctx context.Context, planID string) (*models.PricingPlan, error) {
	if planID == "" {
		return nil, errors.New("planID cannot be empty")
	}
	docSnap, err := r.client.Collection(plansCollection).Doc(planID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("pricing plan %q: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pricing plan %q: %w", planID, err)
	}

	var plan models.PricingPlan
	if err := docSnap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode pricing plan %q: %w", planID, err)
	}
	plan.ID = docSnap.Ref.ID
	return &plan, nil
}

func (r *firestorePlanRepository) GetByStripePriceID(ctx context.Context, stripePriceID string) (*models.PricingPlan, error) {
	if stripePriceID == "" {
		return nil, errors.New("stripePriceID cannot be empty")
	}
	iter := r.client.Collection(plansCollection).Where("stripePriceId", "==", stripePriceID).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("pricing plan with price %q: %w", stripePriceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing plan by price: %w", err)
	}

	var plan models.PricingPlan
	if err := docSnap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode pricing plan: %w", err)
	}
	plan.ID = docSnap.Ref.ID
	return &plan, nil
}

func (r *firestorePlanRepository) Update(ctx context.Context, plan *models.PricingPlan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty for Update")
	}
	plan.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(plansCollection).Doc(plan.ID).Set(ctx, plan); err != nil {
		return fmt.Errorf("failed to update pricing plan %q: %w", plan.ID, err)
	}
	return nil
}

func (r *firestorePlanRepository) Delete(ctx context.Context, planID string) error {
	if planID == "" {
		return errors.New("plan ID cannot be empty for Delete")
	}
	if _, err := r.client.Collection(plansCollection).Doc(planID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("pricing plan %q: %w", planID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete pricing plan %q: %w", planID, err)
	}
	return nil
}

func (r *firestorePlanRepository) List(ctx context.Context, filter PlanFilter) ([]*models.PricingPlan, error) {
	query := r.client.Collection(plansCollection).Query
	if filter.IsActive != nil {
		query = query.Where("isActive", "==", *filter.IsActive)
	}
	if filter.Interval != "" {
		query = query.Where("interval", "==", filter.Interval)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var plans []*models.PricingPlan
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list pricing plans: %w", err)
		}
		var plan models.PricingPlan
		if err := docSnap.DataTo(&plan); err != nil {
			return nil, fmt.Errorf("failed to decode pricing plan: %w", err)
		}
		plan.ID = docSnap.Ref.ID
		plans = append(plans, &plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Price < plans[j].Price
	})
	return plans, nil
}
