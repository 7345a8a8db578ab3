package db

import (
	"context"
	"errors"
	"time"

	"streamhub-backend-go/internal/models"
)

// ErrNotFound is returned by repositories when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Page carries limit/offset pagination parameters.
type Page struct {
	Limit  int
	Offset int
}

// UserRepository defines user document storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// VideoFilter narrows video queries. Nil pointers mean "no constraint".
type VideoFilter struct {
	SeriesID      string
	IsPublished   *bool
	AvailableOnly bool
	Search        string
}

// VideoRepository defines video document storage operations.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) (string, error)
	GetByID(ctx context.Context, videoID string) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, videoID string) error
	List(ctx context.Context, filter VideoFilter, page Page) ([]*models.Video, error)
	Count(ctx context.Context, filter VideoFilter) (int, error)
	IncrementViews(ctx context.Context, videoID string) (*models.Video, error)
}

// SeriesFilter narrows series queries.
type SeriesFilter struct {
	IsActive *bool
	Search   string
}

// SeriesRepository defines series document storage operations.
type SeriesRepository interface {
	Create(ctx context.Context, series *models.Series) (string, error)
	GetByID(ctx context.Context, seriesID string) (*models.Series, error)
	Update(ctx context.Context, series *models.Series) error
	Delete(ctx context.Context, seriesID string) error
	List(ctx context.Context, filter SeriesFilter, page Page) ([]*models.Series, error)
	Count(ctx context.Context, filter SeriesFilter) (int, error)
}

// PlanFilter narrows pricing plan queries.
type PlanFilter struct {
	IsActive *bool
	Interval string
}

// PlanRepository defines pricing plan document storage operations.
type PlanRepository interface {
	Create(ctx context.Context, plan *models.PricingPlan) (string, error)
	GetByID(ctx context.Context, planID string) (*models.PricingPlan, error)
	GetByStripePriceID(ctx context.Context, stripePriceID string) (*models.PricingPlan, error)
	Update(ctx context.Context, plan *models.PricingPlan) error
	Delete(ctx context.Context, planID string) error
	List(ctx context.Context, filter PlanFilter) ([]*models.PricingPlan, error)
}

// SubscriptionRepository defines subscription document storage operations.
// Lookups by user and by external id are unique: at most one document per user
// exists at any time.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) (string, error)
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, subID string) error
	DeleteByUserID(ctx context.Context, userID string) error
	CountByPlanAndStatus(ctx context.Context, planID string, statuses []models.SubscriptionStatus) (int, error)
	CountByStatus(ctx context.Context, statuses []models.SubscriptionStatus) (int, error)
}

// ReminderFilter narrows reminder queries.
type ReminderFilter struct {
	UserID     string
	IsNotified *bool
}

// ReminderRepository defines reminder document storage operations.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) (string, error)
	GetByID(ctx context.Context, reminderID string) (*models.Reminder, error)
	GetByUserAndVideo(ctx context.Context, userID, videoID string) (*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, reminderID string) error
	List(ctx context.Context, filter ReminderFilter, page Page) ([]*models.Reminder, error)
	Count(ctx context.Context, filter ReminderFilter) (int, error)
	ListDue(ctx context.Context, userID string, before time.Time) ([]*models.Reminder, error)
}

// ProgressRepository defines viewing progress storage operations.
type ProgressRepository interface {
	GetByUserAndVideo(ctx context.Context, userID, videoID string) (*models.VideoProgress, error)
	Create(ctx context.Context, progress *models.VideoProgress) (string, error)
	Update(ctx context.Context, progress *models.VideoProgress) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.VideoProgress, error)
	DeleteByUserID(ctx context.Context, userID string) error
	SummaryByUser(ctx context.Context, userID string) (*models.ProgressSummary, error)
}
