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

const videosCollection = "videos"

// firestoreVideoRepository implements VideoRepository on Firestore.
//
// Firestore has no substring search and limits combined inequality filters,
// so availability windows, text search and season/episode ordering are applied
// client-side after a coarse server query.
type firestoreVideoRepository struct {
	client *firestore.Client
}

// NewFirestoreVideoRepository creates a Firestore-backed video repository.
func NewFirestoreVideoRepository(client *firestore.Client) VideoRepository {
	return &firestoreVideoRepository{client: client}
}

func (r *firestoreVideoRepository) Create(ctx context.Context, video *models.Video) (string, error) {
	if video.Title == "" {
		return "", errors.New("video title cannot be empty")
	}
	ref, _, err := r.client.Collection(videosCollection).Add(ctx, video)
	if err != nil {
		return "", fmt.Errorf("failed to create video: %w", err)
	}
	video.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreVideoRepository) GetByID(ctx context.Context, videoID string) (*models.Video, error) {
	if videoID == "" {
		return nil, errors.New("videoID cannot be empty")
	}
	docSnap, err := r.client.Collection(videosCollection).Doc(videoID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("video %q: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video %q: %w", videoID, err)
	}

	var video models.Video
	if err := docSnap.DataTo(&video); err != nil {
		return nil, fmt.Errorf("failed to decode video %q: %w", videoID, err)
	}
	video.ID = docSnap.Ref.ID
	return &video, nil
}

func (r *firestoreVideoRepository) Update(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		return errors.New("video ID cannot be empty for Update")
	}
	video.UpdatedAt = time.Time{}
	if _, err := r.client.Collection(videosCollection).Doc(video.ID).Set(ctx, video); err != nil {
		return fmt.Errorf("failed to update video %q: %w", video.ID, err)
	}
	return nil
}

func (r *firestoreVideoRepository) Delete(ctx context.Context, videoID string) error {
	if videoID == "" {
		return errors.New("video ID cannot be empty for Delete")
	}
	if _, err := r.client.Collection(videosCollection).Doc(videoID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("video %q: %w", videoID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete video %q: %w", videoID, err)
	}
	return nil
}

func (r *firestoreVideoRepository) List(ctx context.Context, filter VideoFilter, page Page) ([]*models.Video, error) {
	videos, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}

	if filter.SeriesID != "" {
		sort.Slice(videos, func(i, j int) bool {
			if videos[i].Season != videos[j].Season {
				return videos[i].Season < videos[j].Season
			}
			return videos[i].EpisodeNumber < videos[j].EpisodeNumber
		})
	} else {
		sort.Slice(videos, func(i, j int) bool {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		})
	}

	return paginate(videos, page), nil
}

func (r *firestoreVideoRepository) Count(ctx context.Context, filter VideoFilter) (int, error) {
	videos, err := r.queryFiltered(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(videos), nil
}

// IncrementViews bumps the view counter atomically and returns the fresh
// document.
func (r *firestoreVideoRepository) IncrementViews(ctx context.Context, videoID string) (*models.Video, error) {
	if videoID == "" {
		return nil, errors.New("videoID cannot be empty")
	}
	docRef := r.client.Collection(videosCollection).Doc(videoID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("video %q: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to increment views for video %q: %w", videoID, err)
	}
	return r.GetByID(ctx, videoID)
}

func (r *firestoreVideoRepository) queryFiltered(ctx context.Context, filter VideoFilter) ([]*models.Video, error) {
	query := r.client.Collection(videosCollection).Query
	if filter.SeriesID != "" {
		query = query.Where("series", "==", filter.SeriesID)
	}
	if filter.IsPublished != nil {
		query = query.Where("isPublished", "==", *filter.IsPublished)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	now := time.Now()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var videos []*models.Video
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list videos: %w", err)
		}
		var video models.Video
		if err := docSnap.DataTo(&video); err != nil {
			return nil, fmt.Errorf("failed to decode video: %w", err)
		}
		video.ID = docSnap.Ref.ID

		if filter.AvailableOnly && !video.IsAvailable(now) {
			continue
		}
		if search != "" && !matchesVideoSearch(&video, search) {
			continue
		}
		videos = append(videos, &video)
	}
	return videos, nil
}

func matchesVideoSearch(video *models.Video, search string) bool {
	if strings.Contains(strings.ToLower(video.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(video.Description), search) {
		return true
	}
	for _, tag := range video.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
