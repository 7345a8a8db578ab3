package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

const streamURLTTL = time.Hour

// viewerService is the member-facing catalog. Only available videos
// (published, active, release date passed) are ever returned, and responses
// go through MemberView so storage keys and uploader identities stay private.
type viewerService struct {
	videoRepo    db.VideoRepository
	seriesRepo   db.SeriesRepository
	progressRepo db.ProgressRepository
	signer       MediaSigner
	logger       *zap.Logger
	now          func() time.Time
}

// NewViewerService creates a new ViewerService instance.
func NewViewerService(
	videoRepo db.VideoRepository,
	seriesRepo db.SeriesRepository,
	progressRepo db.ProgressRepository,
	signer MediaSigner,
	logger *zap.Logger,
) ViewerService {
	return &viewerService{
		videoRepo:    videoRepo,
		seriesRepo:   seriesRepo,
		progressRepo: progressRepo,
		signer:       signer,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *viewerService) BrowseVideos(ctx context.Context, filter db.VideoFilter, page db.Page) (*VideoListResult, error) {
	filter.AvailableOnly = true
	videos, err := s.videoRepo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to browse videos: %w", err)
	}
	total, err := s.videoRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}

	out := make([]*models.Video, 0, len(videos))
	for _, v := range videos {
		member := v.MemberView()
		s.joinSeries(ctx, &member)
		out = append(out, &member)
	}
	return &VideoListResult{Videos: out, Total: total}, nil
}

func (s *viewerService) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := s.availableVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	member := video.MemberView()
	s.joinSeries(ctx, &member)
	return &member, nil
}

func (s *viewerService) BrowseSeries(ctx context.Context, filter db.SeriesFilter, page db.Page) (*SeriesListResult, error) {
	active := true
	filter.IsActive = &active
	list, err := s.seriesRepo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to browse series: %w", err)
	}
	total, err := s.seriesRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count series: %w", err)
	}
	for _, series := range list {
		if count, err := s.videoRepo.Count(ctx, db.VideoFilter{SeriesID: series.ID, AvailableOnly: true}); err == nil {
			series.VideoCount = count
		}
		series.CreatedBy = ""
	}
	return &SeriesListResult{Series: list, Total: total}, nil
}

// GetSeries returns one active series with its available episodes in
// season/episode order.
func (s *viewerService) GetSeries(ctx context.Context, seriesID string) (*models.Series, []*models.Video, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: series %q", ErrNotFound, seriesID)
		}
		return nil, nil, fmt.Errorf("failed to get series: %w", err)
	}
	if !series.IsActive {
		return nil, nil, fmt.Errorf("%w: series %q", ErrNotFound, seriesID)
	}
	series.CreatedBy = ""

	episodes, err := s.videoRepo.List(ctx, db.VideoFilter{SeriesID: seriesID, AvailableOnly: true}, db.Page{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	series.VideoCount = len(episodes)

	out := make([]*models.Video, 0, len(episodes))
	for _, v := range episodes {
		member := v.MemberView()
		out = append(out, &member)
	}
	return series, out, nil
}

// StreamURL signs a time-limited playback URL and bumps the view counter.
func (s *viewerService) StreamURL(ctx context.Context, userID, videoID string) (*StreamTarget, error) {
	video, err := s.availableVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.HLSURL == "" {
		return nil, fmt.Errorf("%w: video %q has no stream", ErrNotFound, videoID)
	}

	expiresAt := s.now().Add(streamURLTTL)
	signed, err := s.signer.SignedStreamURL(video.HLSURL, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign stream URL: %w", err)
	}

	if _, err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
		s.logger.Warn("failed to increment views",
			zap.String("videoId", videoID),
			zap.Error(err))
	}
	s.logger.Info("stream URL issued",
		zap.String("userId", userID),
		zap.String("videoId", videoID))

	member := video.MemberView()
	return &StreamTarget{
		URL:       signed,
		ExpiresAt: expiresAt.Unix(),
		Video:     &member,
	}, nil
}

// ReportProgress upserts the (user, video) progress document. Values outside
// 0..100 are rejected. The record always mirrors the latest report, so a
// rewatch below the threshold clears the completed flag.
func (s *viewerService) ReportProgress(ctx context.Context, userID, videoID string, percent float64) (*models.VideoProgress, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
	}
	if _, err := s.availableVideo(ctx, videoID); err != nil {
		return nil, err
	}

	completed := percent >= models.CompletedThreshold
	progress, err := s.progressRepo.GetByUserAndVideo(ctx, userID, videoID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to load progress: %w", err)
		}
		progress = &models.VideoProgress{
			UserID:        userID,
			VideoID:       videoID,
			Progress:      percent,
			Completed:     completed,
			LastWatchedAt: s.now(),
		}
		if _, err := s.progressRepo.Create(ctx, progress); err != nil {
			return nil, fmt.Errorf("failed to create progress: %w", err)
		}
		return progress, nil
	}

	progress.Progress = percent
	progress.Completed = completed
	progress.LastWatchedAt = s.now()
	if err := s.progressRepo.Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return progress, nil
}

func (s *viewerService) ContinueWatching(ctx context.Context, userID string, limit int) ([]*models.VideoProgress, error) {
	records, err := s.progressRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

func (s *viewerService) ProgressSummary(ctx context.Context, userID string) (*models.ProgressSummary, error) {
	summary, err := s.progressRepo.SummaryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize progress: %w", err)
	}
	return summary, nil
}

// availableVideo loads a video and hides it behind NotFound unless the
// availability predicate holds. Members cannot distinguish unreleased from
// nonexistent.
func (s *viewerService) availableVideo(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if !video.IsAvailable(s.now()) {
		return nil, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
	}
	return video, nil
}

func (s *viewerService) joinSeries(ctx context.Context, video *models.Video) {
	if video.SeriesID == "" {
		return
	}
	if series, err := s.seriesRepo.GetByID(ctx, video.SeriesID); err == nil {
		series.CreatedBy = ""
		video.Series = series
	}
}
