package core

import (
	"context"
	"fmt"
	"time"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

// In-memory fakes for the repository and processor interfaces. Maps keyed by
// document id; ids are assigned sequentially.

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (string, error) {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	for _, user := range r.users {
		if user.StripeCustomerID == customerID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role string) ([]*models.User, error) {
	var out []*models.User
	for _, user := range r.users {
		if role == "" || user.Role == role {
			clone := *user
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeSubRepo struct {
	subs   map[string]*models.Subscription
	nextID int
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: map[string]*models.Subscription{}}
}

func (r *fakeSubRepo) Create(_ context.Context, sub *models.Subscription) (string, error) {
	r.nextID++
	sub.ID = fmt.Sprintf("sub-%d", r.nextID)
	clone := *sub
	r.subs[sub.ID] = &clone
	return sub.ID, nil
}

func (r *fakeSubRepo) GetByUserID(_ context.Context, userID string) (*models.Subscription, error) {
	for _, sub := range r.subs {
		if sub.UserID == userID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeSubRepo) GetByStripeSubscriptionID(_ context.Context, stripeSubID string) (*models.Subscription, error) {
	for _, sub := range r.subs {
		if sub.StripeSubscriptionID == stripeSubID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeSubRepo) Update(_ context.Context, sub *models.Subscription) error {
	if _, ok := r.subs[sub.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *sub
	r.subs[sub.ID] = &clone
	return nil
}

func (r *fakeSubRepo) Delete(_ context.Context, subID string) error {
	if _, ok := r.subs[subID]; !ok {
		return db.ErrNotFound
	}
	delete(r.subs, subID)
	return nil
}

func (r *fakeSubRepo) DeleteByUserID(_ context.Context, userID string) error {
	for id, sub := range r.subs {
		if sub.UserID == userID {
			delete(r.subs, id)
		}
	}
	return nil
}

func (r *fakeSubRepo) CountByPlanAndStatus(_ context.Context, planID string, statuses []models.SubscriptionStatus) (int, error) {
	count := 0
	for _, sub := range r.subs {
		if sub.PricingPlanID != planID {
			continue
		}
		if matchesStatus(sub.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubRepo) CountByStatus(_ context.Context, statuses []models.SubscriptionStatus) (int, error) {
	count := 0
	for _, sub := range r.subs {
		if matchesStatus(sub.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func matchesStatus(status models.SubscriptionStatus, statuses []models.SubscriptionStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakePlanRepo struct {
	plans  map[string]*models.PricingPlan
	nextID int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[string]*models.PricingPlan{}}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *models.PricingPlan) (string, error) {
	r.nextID++
	plan.ID = fmt.Sprintf("plan-%d", r.nextID)
	clone := *plan
	r.plans[plan.ID] = &clone
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, planID string) (*models.PricingPlan, error) {
	plan, ok := r.plans[planID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *plan
	return &clone, nil
}

func (r *fakePlanRepo) GetByStripePriceID(_ context.Context, stripePriceID string) (*models.PricingPlan, error) {
	for _, plan := range r.plans {
		if plan.StripePriceID == stripePriceID {
			clone := *plan
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakePlanRepo) Update(_ context.Context, plan *models.PricingPlan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *plan
	r.plans[plan.ID] = &clone
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, planID string) error {
	if _, ok := r.plans[planID]; !ok {
		return db.ErrNotFound
	}
	delete(r.plans, planID)
	return nil
}

func (r *fakePlanRepo) List(_ context.Context, filter db.PlanFilter) ([]*models.PricingPlan, error) {
	var out []*models.PricingPlan
	for _, plan := range r.plans {
		if filter.IsActive != nil && plan.IsActive != *filter.IsActive {
			continue
		}
		if filter.Interval != "" && plan.Interval != filter.Interval {
			continue
		}
		clone := *plan
		out = append(out, &clone)
	}
	return out, nil
}

type fakeVideoRepo struct {
	videos map[string]*models.Video
	nextID int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]*models.Video{}}
}

func (r *fakeVideoRepo) Create(_ context.Context, video *models.Video) (string, error) {
	r.nextID++
	video.ID = fmt.Sprintf("video-%d", r.nextID)
	clone := *video
	r.videos[video.ID] = &clone
	return video.ID, nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, videoID string) (*models.Video, error) {
	video, ok := r.videos[videoID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *video
	return &clone, nil
}

func (r *fakeVideoRepo) Update(_ context.Context, video *models.Video) error {
	if _, ok := r.videos[video.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *video
	r.videos[video.ID] = &clone
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, videoID string) error {
	if _, ok := r.videos[videoID]; !ok {
		return db.ErrNotFound
	}
	delete(r.videos, videoID)
	return nil
}

func (r *fakeVideoRepo) List(_ context.Context, filter db.VideoFilter, page db.Page) ([]*models.Video, error) {
	matched := r.filtered(filter)
	if page.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[page.Offset:]
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (r *fakeVideoRepo) Count(_ context.Context, filter db.VideoFilter) (int, error) {
	return len(r.filtered(filter)), nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, videoID string) (*models.Video, error) {
	video, ok := r.videos[videoID]
	if !ok {
		return nil, db.ErrNotFound
	}
	video.Views++
	clone := *video
	return &clone, nil
}

func (r *fakeVideoRepo) filtered(filter db.VideoFilter) []*models.Video {
	now := time.Now()
	var out []*models.Video
	for _, video := range r.videos {
		if filter.SeriesID != "" && video.SeriesID != filter.SeriesID {
			continue
		}
		if filter.IsPublished != nil && video.IsPublished != *filter.IsPublished {
			continue
		}
		if filter.AvailableOnly && !video.IsAvailable(now) {
			continue
		}
		clone := *video
		out = append(out, &clone)
	}
	return out
}

type fakeSeriesRepo struct {
	series map[string]*models.Series
	nextID int
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{series: map[string]*models.Series{}}
}

func (r *fakeSeriesRepo) Create(_ context.Context, series *models.Series) (string, error) {
	r.nextID++
	series.ID = fmt.Sprintf("series-%d", r.nextID)
	clone := *series
	r.series[series.ID] = &clone
	return series.ID, nil
}

func (r *fakeSeriesRepo) GetByID(_ context.Context, seriesID string) (*models.Series, error) {
	series, ok := r.series[seriesID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *series
	return &clone, nil
}

func (r *fakeSeriesRepo) Update(_ context.Context, series *models.Series) error {
	if _, ok := r.series[series.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *series
	r.series[series.ID] = &clone
	return nil
}

func (r *fakeSeriesRepo) Delete(_ context.Context, seriesID string) error {
	if _, ok := r.series[seriesID]; !ok {
		return db.ErrNotFound
	}
	delete(r.series, seriesID)
	return nil
}

func (r *fakeSeriesRepo) List(_ context.Context, filter db.SeriesFilter, page db.Page) ([]*models.Series, error) {
	var out []*models.Series
	for _, series := range r.series {
		if filter.IsActive != nil && series.IsActive != *filter.IsActive {
			continue
		}
		clone := *series
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeSeriesRepo) Count(ctx context.Context, filter db.SeriesFilter) (int, error) {
	list, _ := r.List(ctx, filter, db.Page{})
	return len(list), nil
}

type fakeProgressRepo struct {
	records map[string]*models.VideoProgress
	nextID  int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[string]*models.VideoProgress{}}
}

func (r *fakeProgressRepo) GetByUserAndVideo(_ context.Context, userID, videoID string) (*models.VideoProgress, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.VideoID == videoID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeProgressRepo) Create(_ context.Context, progress *models.VideoProgress) (string, error) {
	r.nextID++
	progress.ID = fmt.Sprintf("progress-%d", r.nextID)
	clone := *progress
	r.records[progress.ID] = &clone
	return progress.ID, nil
}

func (r *fakeProgressRepo) Update(_ context.Context, progress *models.VideoProgress) error {
	if _, ok := r.records[progress.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *progress
	r.records[progress.ID] = &clone
	return nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.VideoProgress, error) {
	var out []*models.VideoProgress
	for _, rec := range r.records {
		if rec.UserID == userID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteByUserID(_ context.Context, userID string) error {
	for id, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *fakeProgressRepo) SummaryByUser(ctx context.Context, userID string) (*models.ProgressSummary, error) {
	records, _ := r.ListByUser(ctx, userID, 0)
	summary := &models.ProgressSummary{Total: len(records)}
	for _, rec := range records {
		if rec.Completed {
			summary.Completed++
		} else {
			summary.InProgress++
		}
	}
	return summary, nil
}

type fakeReminderRepo struct {
	reminders map[string]*models.Reminder
	nextID    int
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: map[string]*models.Reminder{}}
}

func (r *fakeReminderRepo) Create(_ context.Context, reminder *models.Reminder) (string, error) {
	r.nextID++
	reminder.ID = fmt.Sprintf("reminder-%d", r.nextID)
	clone := *reminder
	r.reminders[reminder.ID] = &clone
	return reminder.ID, nil
}

func (r *fakeReminderRepo) GetByID(_ context.Context, reminderID string) (*models.Reminder, error) {
	reminder, ok := r.reminders[reminderID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *reminder
	return &clone, nil
}

func (r *fakeReminderRepo) GetByUserAndVideo(_ context.Context, userID, videoID string) (*models.Reminder, error) {
	for _, reminder := range r.reminders {
		if reminder.UserID == userID && reminder.VideoID == videoID {
			clone := *reminder
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeReminderRepo) Update(_ context.Context, reminder *models.Reminder) error {
	if _, ok := r.reminders[reminder.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *reminder
	r.reminders[reminder.ID] = &clone
	return nil
}

func (r *fakeReminderRepo) Delete(_ context.Context, reminderID string) error {
	if _, ok := r.reminders[reminderID]; !ok {
		return db.ErrNotFound
	}
	delete(r.reminders, reminderID)
	return nil
}

func (r *fakeReminderRepo) List(_ context.Context, filter db.ReminderFilter, page db.Page) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, reminder := range r.reminders {
		if filter.UserID != "" && reminder.UserID != filter.UserID {
			continue
		}
		if filter.IsNotified != nil && reminder.IsNotified != *filter.IsNotified {
			continue
		}
		clone := *reminder
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeReminderRepo) Count(ctx context.Context, filter db.ReminderFilter) (int, error) {
	list, _ := r.List(ctx, filter, db.Page{})
	return len(list), nil
}

func (r *fakeReminderRepo) ListDue(_ context.Context, userID string, before time.Time) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, reminder := range r.reminders {
		if reminder.UserID == userID && !reminder.IsNotified && !reminder.ReminderDate.After(before) {
			clone := *reminder
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeProcessor records calls and serves canned snapshots keyed by external
// subscription id.
type fakeProcessor struct {
	snapshots     map[string]models.SubscriptionSnapshot
	customers     int
	canceled      []string
	cancelAtEnd   map[string]bool
	priceActive   map[string]bool
	failNextCall  bool
	checkoutCalls []CheckoutParams
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		snapshots:   map[string]models.SubscriptionSnapshot{},
		cancelAtEnd: map[string]bool{},
		priceActive: map[string]bool{},
	}
}

func (p *fakeProcessor) CreateCustomer(context.Context, string, string, string) (string, error) {
	if p.failNextCall {
		return "", fmt.Errorf("processor unavailable")
	}
	p.customers++
	return fmt.Sprintf("cus_%d", p.customers), nil
}

func (p *fakeProcessor) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if p.failNextCall {
		return nil, fmt.Errorf("processor unavailable")
	}
	p.checkoutCalls = append(p.checkoutCalls, params)
	return &CheckoutSession{SessionID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (p *fakeProcessor) GetSubscription(_ context.Context, stripeSubID string) (*models.SubscriptionSnapshot, error) {
	if p.failNextCall {
		return nil, fmt.Errorf("processor unavailable")
	}
	snap, ok := p.snapshots[stripeSubID]
	if !ok {
		return nil, fmt.Errorf("no such subscription %q", stripeSubID)
	}
	return &snap, nil
}

func (p *fakeProcessor) CancelSubscription(_ context.Context, stripeSubID string, immediate bool) (*models.SubscriptionSnapshot, error) {
	if p.failNextCall {
		return nil, fmt.Errorf("processor unavailable")
	}
	p.canceled = append(p.canceled, stripeSubID)
	snap := p.snapshots[stripeSubID]
	snap.Status = models.SubscriptionStatusCanceled
	p.snapshots[stripeSubID] = snap
	return &snap, nil
}

func (p *fakeProcessor) SetCancelAtPeriodEnd(_ context.Context, stripeSubID string, cancel bool) (*models.SubscriptionSnapshot, error) {
	if p.failNextCall {
		return nil, fmt.Errorf("processor unavailable")
	}
	p.cancelAtEnd[stripeSubID] = cancel
	snap := p.snapshots[stripeSubID]
	snap.CancelAtPeriodEnd = cancel
	p.snapshots[stripeSubID] = snap
	return &snap, nil
}

func (p *fakeProcessor) CreateProductWithPrice(_ context.Context, plan *models.PricingPlan) (string, error) {
	if p.failNextCall {
		return "", fmt.Errorf("processor unavailable")
	}
	priceID := fmt.Sprintf("price_%s", plan.Name)
	p.priceActive[priceID] = true
	return priceID, nil
}

func (p *fakeProcessor) SyncProduct(context.Context, string, string, string) error {
	return nil
}

func (p *fakeProcessor) SetPriceActive(_ context.Context, stripePriceID string, active bool) error {
	p.priceActive[stripePriceID] = active
	return nil
}

type fakeMediaStore struct {
	deleted []string
}

func (m *fakeMediaStore) PresignUpload(_ context.Context, fileName, contentType string) (*UploadTarget, error) {
	return &UploadTarget{
		UploadURL: "https://bucket.example/upload/" + fileName,
		Key:       "videos/test-" + fileName,
		ExpiresIn: 3600,
	}, nil
}

func (m *fakeMediaStore) DeleteObject(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) SignedStreamURL(path string, expiresAt time.Time) (string, error) {
	return path + "?sig=test", nil
}
