package models

import "time"

// Billing intervals supported for pricing plans.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// PricingPlan is a purchasable subscription tier. Deactivation is the normal
// retirement path; hard deletion is refused while active subscriptions
// reference the plan.
type PricingPlan struct {
	ID                string    `json:"id" firestore:"-"`
	Name              string    `json:"name" firestore:"name"`
	Description       string    `json:"description" firestore:"description"`
	Price             float64   `json:"price" firestore:"price"`
	Currency          string    `json:"currency" firestore:"currency"`
	Interval          string    `json:"interval" firestore:"interval"`
	StripePriceID     string    `json:"stripePriceId" firestore:"stripePriceId"`
	Features          []string  `json:"features" firestore:"features"`
	MaxVideoQuality   string    `json:"maxVideoQuality" firestore:"maxVideoQuality"`
	ConcurrentStreams int       `json:"concurrentStreams" firestore:"concurrentStreams"`
	IsActive          bool      `json:"isActive" firestore:"isActive"`
	CreatedAt         time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt         time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
