package payments

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/subscription"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/models"
)

// Metadata keys attached to checkout sessions so webhook events can be tied
// back to local records.
const (
	MetadataUserID = "userId"
	MetadataPlanID = "pricingPlanId"
)

// StripeProcessor implements core.PaymentProcessor against the Stripe API.
type StripeProcessor struct {
	logger *zap.Logger
}

// NewStripeProcessor sets the global Stripe key and returns the adapter.
func NewStripeProcessor(secretKey string, logger *zap.Logger) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{logger: logger}
}

var _ core.PaymentProcessor = (*StripeProcessor)(nil)

func (p *StripeProcessor) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, userID)

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create: %w", err)
	}
	p.logger.Debug("stripe customer created",
		zap.String("customerId", cust.ID),
		zap.String("userId", userID))
	return cust.ID, nil
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, checkout core.CheckoutParams) (*core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(checkout.CustomerID),
		SuccessURL: stripe.String(checkout.SuccessURL),
		CancelURL:  stripe.String(checkout.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(checkout.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				MetadataUserID: checkout.UserID,
				MetadataPlanID: checkout.PlanID,
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, checkout.UserID)
	params.AddMetadata(MetadataPlanID, checkout.PlanID)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session create: %w", err)
	}
	return &core.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProcessor) GetSubscription(ctx context.Context, stripeSubID string) (*models.SubscriptionSnapshot, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(stripeSubID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription get: %w", err)
	}
	snap := SnapshotFromSubscription(sub)
	return &snap, nil
}

func (p *StripeProcessor) CancelSubscription(ctx context.Context, stripeSubID string, immediate bool) (*models.SubscriptionSnapshot, error) {
	if immediate {
		params := &stripe.SubscriptionCancelParams{}
		params.Context = ctx
		sub, err := subscription.Cancel(stripeSubID, params)
		if err != nil {
			return nil, fmt.Errorf("stripe subscription cancel: %w", err)
		}
		snap := SnapshotFromSubscription(sub)
		return &snap, nil
	}
	return p.SetCancelAtPeriodEnd(ctx, stripeSubID, true)
}

func (p *StripeProcessor) SetCancelAtPeriodEnd(ctx context.Context, stripeSubID string, cancel bool) (*models.SubscriptionSnapshot, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx
	sub, err := subscription.Update(stripeSubID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription update: %w", err)
	}
	snap := SnapshotFromSubscription(sub)
	return &snap, nil
}

// CreateProductWithPrice provisions a product plus one recurring price and
// returns the price id. Stripe prices are immutable; a plan price change
// would need a fresh price object, which is deliberately not done here.
func (p *StripeProcessor) CreateProductWithPrice(ctx context.Context, plan *models.PricingPlan) (string, error) {
	productParams := &stripe.ProductParams{
		Name:        stripe.String(plan.Name),
		Description: stripe.String(plan.Description),
	}
	productParams.Context = ctx
	prod, err := product.New(productParams)
	if err != nil {
		return "", fmt.Errorf("stripe product create: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(int64(math.Round(plan.Price * 100))),
		Currency:   stripe.String(strings.ToLower(plan.Currency)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(plan.Interval),
		},
	}
	priceParams.Context = ctx
	pr, err := price.New(priceParams)
	if err != nil {
		return "", fmt.Errorf("stripe price create: %w", err)
	}

	p.logger.Info("stripe product provisioned",
		zap.String("productId", prod.ID),
		zap.String("priceId", pr.ID),
		zap.String("plan", plan.Name))
	return pr.ID, nil
}

// SyncProduct pushes name/description changes to the product behind a price.
func (p *StripeProcessor) SyncProduct(ctx context.Context, stripePriceID, name, description string) error {
	getParams := &stripe.PriceParams{}
	getParams.Context = ctx
	pr, err := price.Get(stripePriceID, getParams)
	if err != nil {
		return fmt.Errorf("stripe price get: %w", err)
	}
	if pr.Product == nil {
		return fmt.Errorf("stripe price %q has no product", stripePriceID)
	}

	updateParams := &stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	}
	updateParams.Context = ctx
	if _, err := product.Update(pr.Product.ID, updateParams); err != nil {
		return fmt.Errorf("stripe product update: %w", err)
	}
	return nil
}

func (p *StripeProcessor) SetPriceActive(ctx context.Context, stripePriceID string, active bool) error {
	params := &stripe.PriceParams{
		Active: stripe.Bool(active),
	}
	params.Context = ctx
	if _, err := price.Update(stripePriceID, params); err != nil {
		return fmt.Errorf("stripe price update: %w", err)
	}
	return nil
}

// SnapshotFromSubscription converts a Stripe subscription object into the
// plain snapshot the services consume. Billing periods live on the first
// subscription item.
func SnapshotFromSubscription(sub *stripe.Subscription) models.SubscriptionSnapshot {
	snap := models.SubscriptionSnapshot{
		StripeSubscriptionID: sub.ID,
		Status:               models.SubscriptionStatus(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		snap.StripeCustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		snap.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		snap.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	if sub.TrialStart > 0 {
		t := time.Unix(sub.TrialStart, 0).UTC()
		snap.TrialStart = &t
	}
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		snap.TrialEnd = &t
	}
	return snap
}
