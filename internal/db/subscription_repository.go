package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamhub-backend-go/internal/models"
)

const subscriptionsCollection = "subscriptions"

// firestoreSubscriptionRepository implements SubscriptionRepository on
// Firestore. Documents use auto-generated ids; uniqueness per user is an
// application invariant enforced by the reconciler's upsert-by-user flow.
type firestoreSubscriptionRepository struct {
	client *firestore.Client
}

// NewFirestoreSubscriptionRepository creates a Firestore-backed subscription
// repository.
func NewFirestoreSubscriptionRepository(client *firestore.Client) SubscriptionRepository {
	return &firestoreSubscriptionRepository{client: client}
}

func (r *firestoreSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("subscription user cannot be empty")
	}
	ref, _, err := r.client.Collection(subscriptionsCollection).Add(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	return r.getByField(ctx, "user", userID)
}

func (r *firestoreSubscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*models.Subscription, error) {
	return r.getByField(ctx, "stripeSubscriptionId", stripeSubID)
}

func (r *firestoreSubscriptionRepository) getByField(ctx context.Context, field, value string) (*models.Subscription, error) {
	if value == "" {
		return nil, fmt.Errorf("%s cannot be empty", field)
	}
	iter := r.client.Collection(subscriptionsCollection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("subscription with %s %q: %w", field, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription by %s: %w", field, err)
	}

	var sub models.Subscription
	if err := docSnap.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	sub.ID = docSnap.Ref.ID
	return &sub, nil
}

func (r *firestoreSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		return errors.New("subscription ID cannot be empty for Update")
	}
	sub.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(subscriptionsCollection).Doc(sub.ID).Set(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription %q: %w", sub.ID, err)
	}
	return nil
}

func (r *firestoreSubscriptionRepository) Delete(ctx context.Context, subID string) error {
	if subID == "" {
		return errors.New("subscription ID cannot be empty for Delete")
	}
	if _, err := r.client.Collection(subscriptionsCollection).Doc(subID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("subscription %q: %w", subID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete subscription %q: %w", subID, err)
	}
	return nil
}

// DeleteByUserID removes every subscription document for the user in one
// atomic batch.
func (r *firestoreSubscriptionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for DeleteByUserID")
	}
	iter := r.client.Collection(subscriptionsCollection).Where("user", "==", userID).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list subscriptions for user %q: %w", userID, err)
		}
		if _, err := bw.Delete(docSnap.Ref); err != nil {
			return fmt.Errorf("failed to queue subscription delete: %w", err)
		}
	}
	bw.End()
	return nil
}

func (r *firestoreSubscriptionRepository) CountByPlanAndStatus(ctx context.Context, planID string, statuses []models.SubscriptionStatus) (int, error) {
	query := r.client.Collection(subscriptionsCollection).Where("pricingPlan", "==", planID)
	return r.countByStatus(ctx, query, statuses)
}

func (r *firestoreSubscriptionRepository) CountByStatus(ctx context.Context, statuses []models.SubscriptionStatus) (int, error) {
	return r.countByStatus(ctx, r.client.Collection(subscriptionsCollection).Query, statuses)
}

func (r *firestoreSubscriptionRepository) countByStatus(ctx context.Context, query firestore.Query, statuses []models.SubscriptionStatus) (int, error) {
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status", "in", values)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count subscriptions: %w", err)
		}
		count++
	}
	return count, nil
}
