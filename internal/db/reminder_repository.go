package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamhub-backend-go/internal/models"
)

const remindersCollection = "reminders"

// firestoreReminderRepository implements ReminderRepository on Firestore.
type firestoreReminderRepository struct {
	client *firestore.Client
}

// NewFirestoreReminderRepository creates a Firestore-backed reminder
// repository.
func NewFirestoreReminderRepository(client *firestore.Client) ReminderRepository {
	return &firestoreReminderRepository{client: client}
}

func (r *firestoreReminderRepository) Create(ctx context.Context, reminder *models.Reminder) (string, error) {
	if reminder.UserID == "" || reminder.VideoID == "" {
		return "", errors.New("reminder user and video cannot be empty")
	}
	ref, _, err := r.client.Collection(remindersCollection).Add(ctx, reminder)
	if err != nil {
		return "", fmt.Errorf("failed to create reminder: %w", err)
	}
	reminder.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreReminderRepository) GetByID(ctx context.Context, reminderID string) (*models.Reminder, error) {
	if reminderID == "" {
		return nil, errors.New("reminderID cannot be empty")
	}
	docSnap, err := r.client.Collection(remindersCollection).Doc(reminderID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("reminder %q: %w", reminderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder %q: %w", reminderID, err)
	}

	var reminder models.Reminder
	if err := docSnap.DataTo(&reminder); err != nil {
		return nil, fmt.Errorf("failed to decode reminder %q: %w", reminderID, err)
	}
	reminder.ID = docSnap.Ref.ID
	return &reminder, nil
}

func (r *firestoreReminderRepository) GetByUserAndVideo(ctx context.Context, userID, videoID string) (*models.Reminder, error) {
	if userID == "" || videoID == "" {
		return nil, errors.New("userID and videoID cannot be empty")
	}
	iter := r.client.Collection(remindersCollection).
		Where("user", "==", userID).
		Where("video", "==", videoID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("reminder for user %q video %q: %w", userID, videoID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder: %w", err)
	}

	var reminder models.Reminder
	if err := docSnap.DataTo(&reminder); err != nil {
		return nil, fmt.Errorf("failed to decode reminder: %w", err)
	}
	reminder.ID = docSnap.Ref.ID
	return &reminder, nil
}

func (r *firestoreReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		return errors.New("reminder ID cannot be empty for Update")
	}
	reminder.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(remindersCollection).Doc(reminder.ID).Set(ctx, reminder); err != nil {
		return fmt.Errorf("failed to update reminder %q: %w", reminder.ID, err)
	}
	return nil
}

func (r *firestoreReminderRepository) Delete(ctx context.Context, reminderID string) error {
	if reminderID == "" {
		return errors.New("reminder ID cannot be empty for Delete")
	}
	if _, err := r.client.Collection(remindersCollection).Doc(reminderID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("reminder %q: %w", reminderID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete reminder %q: %w", reminderID, err)
	}
	return nil
}

func (r *firestoreReminderRepository) List(ctx context.Context, filter ReminderFilter, page Page) ([]*models.Reminder, error) {
	reminders, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].ReminderDate.Before(reminders[j].ReminderDate)
	})
	return paginate(reminders, page), nil
}

func (r *firestoreReminderRepository) Count(ctx context.Context, filter ReminderFilter) (int, error) {
	reminders, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(reminders), nil
}

// ListDue returns the user's un-notified reminders whose date has passed.
func (r *firestoreReminderRepository) ListDue(ctx context.Context, userID string, before time.Time) ([]*models.Reminder, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	iter := r.client.Collection(remindersCollection).
		Where("user", "==", userID).
		Where("isNotified", "==", false).
		Where("reminderDate", "<=", before).
		Documents(ctx)
	defer iter.Stop()

	return collectReminders(iter)
}

func (r *firestoreReminderRepository) queryFiltered(ctx context.Context, filter ReminderFilter) ([]*models.Reminder, error) {
	query := r.client.Collection(remindersCollection).Query
	if filter.UserID != "" {
		query = query.Where("user", "==", filter.UserID)
	}
	if filter.IsNotified != nil {
		query = query.Where("isNotified", "==", *filter.IsNotified)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	return collectReminders(iter)
}

func collectReminders(iter *firestore.DocumentIterator) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list reminders: %w", err)
		}
		var reminder models.Reminder
		if err := docSnap.DataTo(&reminder); err != nil {
			return nil, fmt.Errorf("failed to decode reminder: %w", err)
		}
		reminder.ID = docSnap.Ref.ID
		reminders = append(reminders, &reminder)
	}
	return reminders, nil
}
