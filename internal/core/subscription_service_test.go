package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

type subscriptionFixture struct {
	service   SubscriptionService
	users     *fakeUserRepo
	subs      *fakeSubRepo
	plans     *fakePlanRepo
	processor *fakeProcessor
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	users := newFakeUserRepo()
	subs := newFakeSubRepo()
	plans := newFakePlanRepo()
	processor := newFakeProcessor()
	service := NewSubscriptionService(subs, users, plans, processor, zap.NewNop())
	return &subscriptionFixture{
		service:   service,
		users:     users,
		subs:      subs,
		plans:     plans,
		processor: processor,
	}
}

func (f *subscriptionFixture) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{Email: "member@example.com", Role: models.RoleUser}
	_, err := f.users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (f *subscriptionFixture) seedPlan(t *testing.T) *models.PricingPlan {
	t.Helper()
	plan := &models.PricingPlan{
		Name:          "Premium",
		Price:         14.99,
		Currency:      "USD",
		Interval:      models.IntervalMonth,
		StripePriceID: "price_premium",
		IsActive:      true,
	}
	_, err := f.plans.Create(context.Background(), plan)
	require.NoError(t, err)
	return plan
}

func trialSnapshot(subID string, now time.Time) models.SubscriptionSnapshot {
	trialEnd := now.Add(7 * 24 * time.Hour)
	return models.SubscriptionSnapshot{
		StripeSubscriptionID: subID,
		StripeCustomerID:     "cus_1",
		Status:               models.SubscriptionStatusTrialing,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     trialEnd,
		TrialStart:           &now,
		TrialEnd:             &trialEnd,
	}
}

func TestHandleCheckoutCompletedCreatesRecord(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()

	snap := trialSnapshot("sub_ext1", now)
	err := f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", snap)
	require.NoError(t, err)

	sub, err := f.subs.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)
	assert.Equal(t, "sub_ext1", sub.StripeSubscriptionID)
	assert.Equal(t, plan.ID, sub.PricingPlanID)

	// The 7-day trial window: access one day in, none a day after it ends.
	assert.True(t, sub.IsActiveAt(now.Add(24*time.Hour)))
	assert.False(t, sub.IsActiveAt(now.Add(8*24*time.Hour)))

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, stored.SubscriptionID, "back-reference set")
}

func TestHandleCheckoutCompletedMissingMetadataIsNoOp(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	err := f.service.HandleCheckoutCompleted(ctx, "", "", "cus_1", trialSnapshot("sub_x", time.Now()))
	require.NoError(t, err)
	assert.Empty(t, f.subs.subs)
}

func TestHandleCheckoutCompletedUnknownPlanIsNoOp(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)

	err := f.service.HandleCheckoutCompleted(ctx, user.ID, "missing-plan", "cus_1", trialSnapshot("sub_x", time.Now()))
	require.NoError(t, err)
	assert.Empty(t, f.subs.subs)
}

func TestHandleCheckoutCompletedSupersedesExisting(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()

	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_old", now)))
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_new", now)))

	assert.Len(t, f.subs.subs, 1, "one record per user")
	sub, err := f.subs.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "sub_new", sub.StripeSubscriptionID)
}

func TestPaymentEventsSetStatus(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", time.Now().UTC())))

	require.NoError(t, f.service.HandlePaymentFailed(ctx, "sub_ext1"))
	sub, _ := f.subs.GetByUserID(ctx, user.ID)
	assert.Equal(t, models.SubscriptionStatusPastDue, sub.Status)

	require.NoError(t, f.service.HandlePaymentSucceeded(ctx, "sub_ext1"))
	sub, _ = f.subs.GetByUserID(ctx, user.ID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestPaymentEventsUnknownIDIsNoOp(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.service.HandlePaymentSucceeded(ctx, "sub_unknown"))
	assert.NoError(t, f.service.HandlePaymentFailed(ctx, "sub_unknown"))
	assert.NoError(t, f.service.HandleSubscriptionDeleted(ctx, "sub_unknown"))
	assert.NoError(t, f.service.HandleSubscriptionUpdated(ctx, models.SubscriptionSnapshot{
		StripeSubscriptionID: "sub_unknown",
		Status:               models.SubscriptionStatusActive,
	}))
}

func TestHandleSubscriptionUpdatedIsIdempotent(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", now)))

	update := models.SubscriptionSnapshot{
		StripeSubscriptionID: "sub_ext1",
		StripeCustomerID:     "cus_1",
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, f.service.HandleSubscriptionUpdated(ctx, update))
	first, _ := f.subs.GetByUserID(ctx, user.ID)

	require.NoError(t, f.service.HandleSubscriptionUpdated(ctx, update))
	second, _ := f.subs.GetByUserID(ctx, user.ID)

	assert.Equal(t, first, second)
	assert.Equal(t, models.SubscriptionStatusActive, second.Status)
	assert.Nil(t, second.TrialStart, "trial window cleared by overwrite")
}

func TestHandleSubscriptionDeletedClearsBackReference(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", time.Now().UTC())))

	require.NoError(t, f.service.HandleSubscriptionDeleted(ctx, "sub_ext1"))

	_, err := f.subs.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	stored, _ := f.users.GetByID(ctx, user.ID)
	assert.Empty(t, stored.SubscriptionID)
}

func TestCancelImmediateDeletesRecord(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", now)))
	f.processor.snapshots["sub_ext1"] = trialSnapshot("sub_ext1", now)

	_, err := f.service.Cancel(ctx, user.ID, models.CancelSubscriptionRequest{Immediate: true, Reason: "too expensive"})
	require.NoError(t, err)

	assert.Contains(t, f.processor.canceled, "sub_ext1")
	_, err = f.subs.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCancelAtPeriodEndThenReactivate(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()

	snap := models.SubscriptionSnapshot{
		StripeSubscriptionID: "sub_ext1",
		StripeCustomerID:     "cus_1",
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", snap))
	f.processor.snapshots["sub_ext1"] = snap

	canceled, err := f.service.Cancel(ctx, user.ID, models.CancelSubscriptionRequest{})
	require.NoError(t, err)
	assert.True(t, canceled.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionStatusActive, canceled.Status, "status untouched")
	assert.False(t, canceled.IsActiveAt(now), "scheduled cancellation denies access")

	reactivated, err := f.service.Reactivate(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, reactivated.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionStatusActive, reactivated.Status)
	assert.True(t, reactivated.IsActiveAt(now))
}

func TestReactivateWithoutScheduledCancellation(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", time.Now().UTC())))

	_, err := f.service.Reactivate(ctx, user.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetForUserRefreshesFromProcessor(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	now := time.Now().UTC()
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", now)))

	// The processor has since converted the trial.
	f.processor.snapshots["sub_ext1"] = models.SubscriptionSnapshot{
		StripeSubscriptionID: "sub_ext1",
		StripeCustomerID:     "cus_1",
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     now.Add(30 * 24 * time.Hour),
	}

	sub, err := f.service.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.Plan)
	assert.Equal(t, plan.ID, sub.Plan.ID)
}

func TestGetForUserServesCacheOnProcessorFailure(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	require.NoError(t, f.service.HandleCheckoutCompleted(ctx, user.ID, plan.ID, "cus_1", trialSnapshot("sub_ext1", time.Now().UTC())))

	f.processor.failNextCall = true
	sub, err := f.service.GetForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)
}

func TestGetForUserNoSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := f.seedUser(t)

	_, err := f.service.GetForUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCheckoutSessionPersistsCustomer(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)

	session, err := f.service.CreateCheckoutSession(ctx, user.ID, models.CreateCheckoutSessionRequest{
		PriceID:    plan.StripePriceID,
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)

	stored, _ := f.users.GetByID(ctx, user.ID)
	assert.NotEmpty(t, stored.StripeCustomerID)

	require.Len(t, f.processor.checkoutCalls, 1)
	call := f.processor.checkoutCalls[0]
	assert.Equal(t, user.ID, call.UserID)
	assert.Equal(t, plan.ID, call.PlanID)

	// Second checkout reuses the stored customer.
	_, err = f.service.CreateCheckoutSession(ctx, user.ID, models.CreateCheckoutSessionRequest{
		PriceID:    plan.StripePriceID,
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.processor.customers)
}

func TestCreateCheckoutSessionInactivePlan(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := f.seedUser(t)
	plan := f.seedPlan(t)
	plan.IsActive = false
	require.NoError(t, f.plans.Update(ctx, plan))

	_, err := f.service.CreateCheckoutSession(ctx, user.ID, models.CreateCheckoutSessionRequest{
		PriceID:    plan.StripePriceID,
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
