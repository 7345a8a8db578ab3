package models

import "time"

// SubscriptionStatus mirrors the status reported by Stripe. The backend never
// invents states of its own; every value stored here was copied from a
// processor subscription object.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription tracks one user's relationship to one pricing plan. At most one
// document exists per user; the record is a cache of Stripe's view, overwritten
// wholesale on every processor update.
type Subscription struct {
	ID                   string             `json:"id" firestore:"-"`
	UserID               string             `json:"user" firestore:"user"`
	PricingPlanID        string             `json:"pricingPlan" firestore:"pricingPlan"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId" firestore:"stripeSubscriptionId"`
	StripeCustomerID     string             `json:"stripeCustomerId" firestore:"stripeCustomerId"`
	Status               SubscriptionStatus `json:"status" firestore:"status"`
	CurrentPeriodStart   time.Time          `json:"currentPeriodStart" firestore:"currentPeriodStart"`
	CurrentPeriodEnd     time.Time          `json:"currentPeriodEnd" firestore:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool               `json:"cancelAtPeriodEnd" firestore:"cancelAtPeriodEnd"`
	TrialStart           *time.Time         `json:"trialStart,omitempty" firestore:"trialStart"`
	TrialEnd             *time.Time         `json:"trialEnd,omitempty" firestore:"trialEnd"`
	CreatedAt            time.Time          `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt            time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`

	// Plan is populated by an explicit join in the service layer, never by the
	// repository itself.
	Plan *PricingPlan `json:"plan,omitempty" firestore:"-"`
}

// SubscriptionSnapshot is the processor's view of a subscription, decoded from
// a webhook event or an API retrieve. Applying a snapshot is a full replace of
// the mirrored fields, not a merge.
type SubscriptionSnapshot struct {
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               SubscriptionStatus
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
	TrialStart           *time.Time
	TrialEnd             *time.Time
}

// ApplySnapshot overwrites the processor-mirrored fields from snap. Identity
// fields (user, plan, ids) are untouched. Applying the same snapshot twice
// leaves the record identical, which is what makes webhook redelivery safe.
func (s *Subscription) ApplySnapshot(snap SubscriptionSnapshot) {
	s.Status = snap.Status
	s.CurrentPeriodStart = snap.CurrentPeriodStart
	s.CurrentPeriodEnd = snap.CurrentPeriodEnd
	s.CancelAtPeriodEnd = snap.CancelAtPeriodEnd
	s.TrialStart = snap.TrialStart
	s.TrialEnd = snap.TrialEnd
}

// IsActiveAt reports whether the subscription grants access at the given
// instant. A subscription scheduled for cancellation is treated as inactive
// immediately, before its period ends. This predicate, not the raw status
// field, is what the access gate consults.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	if s.Status != SubscriptionStatusActive && s.Status != SubscriptionStatusTrialing {
		return false
	}
	if s.CancelAtPeriodEnd {
		return false
	}
	return now.Before(s.CurrentPeriodEnd)
}

// StatusTransition is one edge of the subscription lifecycle.
type StatusTransition struct {
	From SubscriptionStatus
	To   SubscriptionStatus
}

// validStatusTransitions lists the status moves Stripe is expected to report.
// The reconciler applies processor state verbatim either way; the table exists
// so anomalous jumps can be flagged in logs.
var validStatusTransitions = map[StatusTransition]bool{
	{SubscriptionStatusTrialing, SubscriptionStatusActive}:   true, // trial converted
	{SubscriptionStatusTrialing, SubscriptionStatusPastDue}:  true, // first charge failed
	{SubscriptionStatusTrialing, SubscriptionStatusCanceled}: true, // canceled during trial
	{SubscriptionStatusActive, SubscriptionStatusPastDue}:    true, // renewal failed
	{SubscriptionStatusActive, SubscriptionStatusCanceled}:   true, // canceled
	{SubscriptionStatusPastDue, SubscriptionStatusActive}:    true, // payment recovered
	{SubscriptionStatusPastDue, SubscriptionStatusCanceled}:  true, // dunning exhausted
}

// CanTransition reports whether moving from one status to another is an
// expected lifecycle step. Same-status moves are always allowed so that
// redelivered events stay unremarkable.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	return validStatusTransitions[StatusTransition{from, to}]
}
