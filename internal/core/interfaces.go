package core

import (
	"context"
	"errors"
	"time"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// Sentinel errors returned by the services. Handlers map these to HTTP codes;
// anything unwrapped is a 500.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrProcessor          = errors.New("payment processor error")
)

// TokenPair is an access/refresh token couple issued on login, registration
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService handles accounts and token issuance.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, *TokenPair, error)
	// Login authenticates a user. requiredRole, when non-empty, restricts the
	// surface (the admin login endpoint passes "admin").
	Login(ctx context.Context, req models.LoginRequest, requiredRole string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	ListUsers(ctx context.Context, page db.Page) ([]*models.User, int, error)
	Stats(ctx context.Context) (*AdminStats, error)
}

// AdminStats aggregates platform totals for the admin dashboard.
type AdminStats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalAdmins         int `json:"totalAdmins"`
	TotalVideos         int `json:"totalVideos"`
	TotalSeries         int `json:"totalSeries"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
}

// CheckoutSession is the result of starting a processor checkout flow.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SubscriptionService reconciles local subscription records against the
// payment processor. The Handle* methods are invoked from the webhook handler
// and never fail on unknown external ids: those are logged no-ops, so that
// replayed or out-of-order deliveries stay harmless.
type SubscriptionService interface {
	CreateCheckoutSession(ctx context.Context, userID string, req models.CreateCheckoutSessionRequest) (*CheckoutSession, error)
	// GetForUser refreshes the record from the processor before returning it,
	// with the pricing plan joined.
	GetForUser(ctx context.Context, userID string) (*models.Subscription, error)
	Cancel(ctx context.Context, userID string, req models.CancelSubscriptionRequest) (*models.Subscription, error)
	Reactivate(ctx context.Context, userID string) (*models.Subscription, error)

	HandleCheckoutCompleted(ctx context.Context, userID, planID, customerID string, snap models.SubscriptionSnapshot) error
	HandlePaymentSucceeded(ctx context.Context, stripeSubID string) error
	HandlePaymentFailed(ctx context.Context, stripeSubID string) error
	HandleSubscriptionUpdated(ctx context.Context, snap models.SubscriptionSnapshot) error
	HandleSubscriptionDeleted(ctx context.Context, stripeSubID string) error
}

// PlanService manages pricing plans and their processor mirrors.
type PlanService interface {
	Create(ctx context.Context, req models.CreatePlanRequest) (*models.PricingPlan, error)
	GetByID(ctx context.Context, planID string) (*models.PricingPlan, error)
	List(ctx context.Context, filter db.PlanFilter) ([]*models.PricingPlan, error)
	Update(ctx context.Context, planID string, req models.UpdatePlanRequest) (*models.PricingPlan, error)
	// Delete refuses with ErrConflict while active or trialing subscriptions
	// reference the plan.
	Delete(ctx context.Context, planID string) error
	SetActive(ctx context.Context, planID string, active bool) (*models.PricingPlan, error)
}

// VideoListResult is one page of videos plus the unpaginated total.
type VideoListResult struct {
	Videos []*models.Video `json:"videos"`
	Total  int             `json:"total"`
}

// SeriesListResult is one page of series plus the unpaginated total.
type SeriesListResult struct {
	Series []*models.Series `json:"series"`
	Total  int              `json:"total"`
}

// UploadTarget is a presigned S3 PUT destination.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// CatalogService is the admin-facing video and series management surface.
type CatalogService interface {
	PresignUpload(ctx context.Context, req models.UploadURLRequest) (*UploadTarget, error)

	CreateVideo(ctx context.Context, uploadedBy string, req models.CreateVideoRequest) (*models.Video, error)
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)
	UpdateVideo(ctx context.Context, videoID string, req models.UpdateVideoRequest) (*models.Video, error)
	// DeleteVideo removes the document and best-effort deletes the S3 object.
	DeleteVideo(ctx context.Context, videoID string) error
	ListVideos(ctx context.Context, filter db.VideoFilter, page db.Page) (*VideoListResult, error)
	IncrementViews(ctx context.Context, videoID string) (*models.Video, error)

	CreateSeries(ctx context.Context, createdBy string, req models.CreateSeriesRequest) (*models.Series, error)
	GetSeries(ctx context.Context, seriesID string) (*models.Series, error)
	UpdateSeries(ctx context.Context, seriesID string, req models.UpdateSeriesRequest) (*models.Series, error)
	// DeleteSeries refuses with ErrConflict while videos reference the series.
	DeleteSeries(ctx context.Context, seriesID string) error
	ListSeries(ctx context.Context, filter db.SeriesFilter, page db.Page) (*SeriesListResult, error)
}

// StreamTarget is a signed playback URL for one video.
type StreamTarget struct {
	URL       string        `json:"url"`
	ExpiresAt int64         `json:"expiresAt"`
	Video     *models.Video `json:"video"`
}

// ViewerService is the member-facing catalog: available-only browsing, signed
// playback URLs and viewing progress.
type ViewerService interface {
	BrowseVideos(ctx context.Context, filter db.VideoFilter, page db.Page) (*VideoListResult, error)
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)
	BrowseSeries(ctx context.Context, filter db.SeriesFilter, page db.Page) (*SeriesListResult, error)
	GetSeries(ctx context.Context, seriesID string) (*models.Series, []*models.Video, error)
	StreamURL(ctx context.Context, userID, videoID string) (*StreamTarget, error)
	ReportProgress(ctx context.Context, userID, videoID string, percent float64) (*models.VideoProgress, error)
	ContinueWatching(ctx context.Context, userID string, limit int) ([]*models.VideoProgress, error)
	ProgressSummary(ctx context.Context, userID string) (*models.ProgressSummary, error)
}

// ReminderService manages release reminders.
type ReminderService interface {
	Create(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error)
	List(ctx context.Context, userID string, filter db.ReminderFilter, page db.Page) ([]*models.Reminder, int, error)
	Update(ctx context.Context, userID, reminderID string, req models.UpdateReminderRequest) (*models.Reminder, error)
	Delete(ctx context.Context, userID, reminderID string) error
	// SweepDue marks the user's due reminders notified and returns them. Runs
	// synchronously on request; there is no background scheduler.
	SweepDue(ctx context.Context, userID string) ([]*models.Reminder, error)
}

// CheckoutParams carries everything the processor needs to open a checkout
// session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	UserID     string
	PlanID     string
}

// PaymentProcessor abstracts the Stripe API surface the services touch. The
// adapter lives in internal/payments; tests substitute an in-memory fake.
type PaymentProcessor interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, stripeSubID string) (*models.SubscriptionSnapshot, error)
	CancelSubscription(ctx context.Context, stripeSubID string, immediate bool) (*models.SubscriptionSnapshot, error)
	SetCancelAtPeriodEnd(ctx context.Context, stripeSubID string, cancel bool) (*models.SubscriptionSnapshot, error)
	// CreateProductWithPrice provisions a product and a recurring price for a
	// plan, returning the price id. Prices are immutable at the processor;
	// later edits only sync product name and description.
	CreateProductWithPrice(ctx context.Context, plan *models.PricingPlan) (string, error)
	SyncProduct(ctx context.Context, stripePriceID, name, description string) error
	SetPriceActive(ctx context.Context, stripePriceID string, active bool) error
}

// MediaStore issues presigned upload URLs and deletes stored objects.
type MediaStore interface {
	PresignUpload(ctx context.Context, fileName, contentType string) (*UploadTarget, error)
	DeleteObject(ctx context.Context, key string) error
}

// MediaSigner produces time-limited playback URLs for the CDN.
type MediaSigner interface {
	SignedStreamURL(path string, expiresAt time.Time) (string, error)
}
