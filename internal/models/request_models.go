package models

import "time"

// Request DTOs bound from JSON bodies. Validation tags are enforced by gin's
// binding layer; unknown fields are rejected at the handler boundary.

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UploadURLRequest asks for a presigned S3 upload URL.
type UploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"omitempty,oneof=video/mp4 video/quicktime video/x-msvideo"`
}

// CreateVideoRequest registers an uploaded video in the catalog.
type CreateVideoRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description" binding:"required"`
	Thumbnail     string     `json:"thumbnail" binding:"required"`
	Duration      float64    `json:"duration" binding:"required,gt=0"`
	S3Key         string     `json:"s3Key" binding:"required"`
	HLSURL        string     `json:"hlsUrl" binding:"required"`
	SeriesID      string     `json:"series"`
	EpisodeNumber int        `json:"episodeNumber" binding:"omitempty,min=0"`
	Season        int        `json:"season" binding:"omitempty,min=0"`
	PublishAt     *time.Time `json:"publishAt"`
	Tags          []string   `json:"tags"`
}

// UpdateVideoRequest patches catalog metadata. Pointer fields distinguish
// "absent" from zero values.
type UpdateVideoRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Thumbnail     *string    `json:"thumbnail"`
	Duration      *float64   `json:"duration" binding:"omitempty,gt=0"`
	SeriesID      *string    `json:"series"`
	EpisodeNumber *int       `json:"episodeNumber" binding:"omitempty,min=0"`
	Season        *int       `json:"season" binding:"omitempty,min=0"`
	PublishAt     *time.Time `json:"publishAt"`
	IsPublished   *bool      `json:"isPublished"`
	IsActive      *bool      `json:"isActive"`
	Tags          []string   `json:"tags"`
}

// CreateSeriesRequest creates a new series.
type CreateSeriesRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Thumbnail   string `json:"thumbnail" binding:"required"`
}

// UpdateSeriesRequest patches a series.
type UpdateSeriesRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	IsActive    *bool   `json:"isActive"`
}

// CreatePlanRequest creates a pricing plan and its Stripe product/price.
type CreatePlanRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description" binding:"required"`
	Price             float64  `json:"price" binding:"required,gt=0"`
	Currency          string   `json:"currency" binding:"omitempty,oneof=USD EUR GBP"`
	Interval          string   `json:"interval" binding:"required,oneof=month year"`
	Features          []string `json:"features"`
	MaxVideoQuality   string   `json:"maxVideoQuality" binding:"omitempty,oneof=720p 1080p 4k"`
	ConcurrentStreams int      `json:"concurrentStreams" binding:"omitempty,min=1,max=10"`
}

// UpdatePlanRequest patches a pricing plan.
type UpdatePlanRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Price             *float64 `json:"price" binding:"omitempty,gt=0"`
	Currency          *string  `json:"currency" binding:"omitempty,oneof=USD EUR GBP"`
	Interval          *string  `json:"interval" binding:"omitempty,oneof=month year"`
	Features          []string `json:"features"`
	IsActive          *bool    `json:"isActive"`
	MaxVideoQuality   *string  `json:"maxVideoQuality" binding:"omitempty,oneof=720p 1080p 4k"`
	ConcurrentStreams *int     `json:"concurrentStreams" binding:"omitempty,min=1,max=10"`
}

// CreateCheckoutSessionRequest starts a Stripe Checkout flow.
type CreateCheckoutSessionRequest struct {
	PriceID    string `json:"priceId" binding:"required"`
	SuccessURL string `json:"successUrl" binding:"required,url"`
	CancelURL  string `json:"cancelUrl" binding:"required,url"`
}

// CancelSubscriptionRequest cancels the caller's subscription, immediately or
// at period end.
type CancelSubscriptionRequest struct {
	Immediate bool   `json:"immediate"`
	Reason    string `json:"reason"`
}

// CreateReminderRequest schedules a release reminder.
type CreateReminderRequest struct {
	VideoID          string    `json:"videoId" binding:"required"`
	ReminderDate     time.Time `json:"reminderDate" binding:"required"`
	NotificationType string    `json:"notificationType" binding:"omitempty,oneof=email push both"`
}

// UpdateReminderRequest reschedules a reminder that has not fired yet.
type UpdateReminderRequest struct {
	ReminderDate     *time.Time `json:"reminderDate"`
	NotificationType *string    `json:"notificationType" binding:"omitempty,oneof=email push both"`
}

// ProgressRequest reports a watch position as a percentage.
type ProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}
