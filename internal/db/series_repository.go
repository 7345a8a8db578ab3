package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamhub-backend-go/internal/models"
)

const seriesCollection = "series"

// firestoreSeriesRepository implements SeriesRepository on Firestore.
type firestoreSeriesRepository struct {
	client *firestore.Client
}

// NewFirestoreSeriesRepository creates a Firestore-backed series repository.
func NewFirestoreSeriesRepository(client *firestore.Client) SeriesRepository {
	return &firestoreSeriesRepository{client: client}
}

func (r *firestoreSeriesRepository) Create(ctx context.Context, series *models.Series) (string, error) {
	if series.Title == "" {
		return "", errors.New("series title cannot be empty")
	}
	ref, _, err := r.client.Collection(seriesCollection).Add(ctx, series)
	if err != nil {
		return "", fmt.Errorf("failed to create series: %w", err)
	}
	series.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreSeriesRepository) GetByID(ctx context.Context, seriesID string) (*models.Series, error) {
	if seriesID == "" {
		return nil, errors.New("seriesID cannot be empty")
	}
	docSnap, err := r.client.Collection(seriesCollection).Doc(seriesID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("series %q: %w", seriesID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get series %q: %w", seriesID, err)
	}

	var series models.Series
	if err := docSnap.DataTo(&series); err != nil {
		return nil, fmt.Errorf("failed to decode series %q: %w", seriesID, err)
	}
	series.ID = docSnap.Ref.ID
	return &series, nil
}

func (r *firestoreSeriesRepository) Update(ctx context.Context, series *models.Series) error {
	if series.ID == "" {
		return errors.New("series ID cannot be empty for Update")
	}
	series.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(seriesCollection).Doc(series.ID).Set(ctx, series); err != nil {
		return fmt.Errorf("failed to update series %q: %w", series.ID, err)
	}
	return nil
}

func (r *firestoreSeriesRepository) Delete(ctx context.Context, seriesID string) error {
	if seriesID == "" {
		return errors.New("series ID cannot be empty for Delete")
	}
	if _, err := r.client.Collection(seriesCollection).Doc(seriesID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("series %q: %w", seriesID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete series %q: %w", seriesID, err)
	}
	return nil
}

func (r *firestoreSeriesRepository) List(ctx context.Context, filter SeriesFilter, page Page) ([]*models.Series, error) {
	list, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, page), nil
}

func (r *firestoreSeriesRepository) Count(ctx context.Context, filter SeriesFilter) (int, error) {
	list, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *firestoreSeriesRepository) queryFiltered(ctx context.Context, filter SeriesFilter) ([]*models.Series, error) {
	query := r.client.Collection(seriesCollection).Query
	if filter.IsActive != nil {
		query = query.Where("isActive", "==", *filter.IsActive)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var list []*models.Series
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list series: %w", err)
		}
		var series models.Series
		if err := docSnap.DataTo(&series); err != nil {
			return nil, fmt.Errorf("failed to decode series: %w", err)
		}
		series.ID = docSnap.Ref.ID

		if search != "" &&
			!strings.Contains(strings.ToLower(series.Title), search) &&
			!strings.Contains(strings.ToLower(series.Description), search) {
			continue
		}
		list = append(list, &series)
	}
	return list, nil
}
