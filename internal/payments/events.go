package payments

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"

	"streamhub-backend-go/internal/models"
)

// CheckoutCompletion is the slice of a checkout.session.completed event the
// reconciler needs.
type CheckoutCompletion struct {
	UserID               string
	PlanID               string
	CustomerID           string
	StripeSubscriptionID string
}

// ParseCheckoutCompleted decodes a checkout.session.completed payload.
func ParseCheckoutCompleted(raw json.RawMessage) (*CheckoutCompletion, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out := &CheckoutCompletion{
		UserID: sess.Metadata[MetadataUserID],
		PlanID: sess.Metadata[MetadataPlanID],
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.StripeSubscriptionID = sess.Subscription.ID
	}
	return out, nil
}

// ParseSubscriptionEvent decodes a customer.subscription.* payload into a
// snapshot.
func ParseSubscriptionEvent(raw json.RawMessage) (*models.SubscriptionSnapshot, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	snap := SnapshotFromSubscription(&sub)
	return &snap, nil
}

// invoicePayload reads the subscription reference from an invoice event. The
// field moved under parent.subscription_details in recent API versions, so
// both locations are consulted.
type invoicePayload struct {
	Subscription string `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// SubscriptionIDFromInvoice extracts the subscription id from an
// invoice.payment_succeeded / invoice.payment_failed payload. Empty when the
// invoice is not tied to a subscription.
func SubscriptionIDFromInvoice(raw json.RawMessage) (string, error) {
	var inv invoicePayload
	if err := json.Unmarshal(raw, &inv); err != nil {
		return "", fmt.Errorf("decode invoice: %w", err)
	}
	if inv.Subscription != "" {
		return inv.Subscription, nil
	}
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
		return inv.Parent.SubscriptionDetails.Subscription, nil
	}
	return "", nil
}
