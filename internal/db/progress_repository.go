package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"streamhub-backend-go/internal/models"
)

const progressCollection = "video_progress"

// firestoreProgressRepository implements ProgressRepository on Firestore.
type firestoreProgressRepository struct {
	client *firestore.Client
}

// NewFirestoreProgressRepository creates a Firestore-backed viewing progress
// repository.
func NewFirestoreProgressRepository(client *firestore.Client) ProgressRepository {
	return &firestoreProgressRepository{client: client}
}

func (r *firestoreProgressRepository) GetByUserAndVideo(ctx context.Context, userID, videoID string) (*models.VideoProgress, error) {
	if userID == "" || videoID == "" {
		return nil, errors.New("userID and videoID cannot be empty")
	}
	iter := r.client.Collection(progressCollection).
		Where("user", "==", userID).
		Where("video", "==", videoID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("progress for user %q video %q: %w", userID, videoID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}

	var progress models.VideoProgress
	if err := docSnap.DataTo(&progress); err != nil {
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}
	progress.ID = docSnap.Ref.ID
	return &progress, nil
}

func (r *firestoreProgressRepository) Create(ctx context.Context, progress *models.VideoProgress) (string, error) {
	if progress.UserID == "" || progress.VideoID == "" {
		return "", errors.New("progress user and video cannot be empty")
	}
	ref, _, err := r.client.Collection(progressCollection).Add(ctx, progress)
	if err != nil {
		return "", fmt.Errorf("failed to create progress: %w", err)
	}
	progress.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreProgressRepository) Update(ctx context.Context, progress *models.VideoProgress) error {
	if progress.ID == "" {
		return errors.New("progress ID cannot be empty for Update")
	}
	progress.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(progressCollection).Doc(progress.ID).Set(ctx, progress); err != nil {
		return fmt.Errorf("failed to update progress %q: %w", progress.ID, err)
	}
	return nil
}

func (r *firestoreProgressRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.VideoProgress, error) {
	records, err := r.listByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastWatchedAt.After(records[j].LastWatchedAt)
	})
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (r *firestoreProgressRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for DeleteByUserID")
	}
	iter := r.client.Collection(progressCollection).Where("user", "==", userID).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list progress for user %q: %w", userID, err)
		}
		if _, err := bw.Delete(docSnap.Ref); err != nil {
			return fmt.Errorf("failed to queue progress delete: %w", err)
		}
	}
	bw.End()
	return nil
}

func (r *firestoreProgressRepository) SummaryByUser(ctx context.Context, userID string) (*models.ProgressSummary, error) {
	records, err := r.listByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
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

func (r *firestoreProgressRepository) listByUser(ctx context.Context, userID string) ([]*models.VideoProgress, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	iter := r.client.Collection(progressCollection).Where("user", "==", userID).Documents(ctx)
	defer iter.Stop()

	var records []*models.VideoProgress
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list progress: %w", err)
		}
		var progress models.VideoProgress
		if err := docSnap.DataTo(&progress); err != nil {
			return nil, fmt.Errorf("failed to decode progress: %w", err)
		}
		progress.ID = docSnap.Ref.ID
		records = append(records, &progress)
	}
	return records, nil
}
