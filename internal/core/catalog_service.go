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

// catalogService is the admin surface over videos and series.
type catalogService struct {
	videoRepo  db.VideoRepository
	seriesRepo db.SeriesRepository
	userRepo   db.UserRepository
	media      MediaStore
	logger     *zap.Logger
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(
	videoRepo db.VideoRepository,
	seriesRepo db.SeriesRepository,
	userRepo db.UserRepository,
	media MediaStore,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		videoRepo:  videoRepo,
		seriesRepo: seriesRepo,
		userRepo:   userRepo,
		media:      media,
		logger:     logger,
	}
}

func (s *catalogService) PresignUpload(ctx context.Context, req models.UploadURLRequest) (*UploadTarget, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	target, err := s.media.PresignUpload(ctx, req.FileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	return target, nil
}

func (s *catalogService) CreateVideo(ctx context.Context, uploadedBy string, req models.CreateVideoRequest) (*models.Video, error) {
	if req.SeriesID != "" {
		if _, err := s.seriesRepo.GetByID(ctx, req.SeriesID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: series %q", ErrNotFound, req.SeriesID)
			}
			return nil, fmt.Errorf("failed to verify series: %w", err)
		}
	}

	publishAt := time.Now()
	if req.PublishAt != nil {
		publishAt = *req.PublishAt
	}
	video := &models.Video{
		Title:         req.Title,
		Description:   req.Description,
		Thumbnail:     req.Thumbnail,
		Duration:      req.Duration,
		S3Key:         req.S3Key,
		HLSURL:        req.HLSURL,
		SeriesID:      req.SeriesID,
		EpisodeNumber: req.EpisodeNumber,
		Season:        req.Season,
		PublishAt:     publishAt,
		IsPublished:   req.PublishAt == nil || !req.PublishAt.After(time.Now()),
		IsActive:      true,
		Tags:          req.Tags,
		UploadedBy:    uploadedBy,
	}
	if _, err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	s.logger.Info("video created",
		zap.String("videoId", video.ID),
		zap.String("title", video.Title),
		zap.String("uploadedBy", uploadedBy))
	return video, nil
}

func (s *catalogService) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	s.joinVideo(ctx, video)
	return video, nil
}

func (s *catalogService) UpdateVideo(ctx context.Context, videoID string, req models.UpdateVideoRequest) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.Thumbnail != nil {
		video.Thumbnail = *req.Thumbnail
	}
	if req.Duration != nil {
		video.Duration = *req.Duration
	}
	if req.SeriesID != nil {
		if *req.SeriesID != "" {
			if _, err := s.seriesRepo.GetByID(ctx, *req.SeriesID); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return nil, fmt.Errorf("%w: series %q", ErrNotFound, *req.SeriesID)
				}
				return nil, fmt.Errorf("failed to verify series: %w", err)
			}
		}
		video.SeriesID = *req.SeriesID
	}
	if req.EpisodeNumber != nil {
		video.EpisodeNumber = *req.EpisodeNumber
	}
	if req.Season != nil {
		video.Season = *req.Season
	}
	if req.PublishAt != nil {
		video.PublishAt = *req.PublishAt
	}
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}
	if req.IsActive != nil {
		video.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		video.Tags = req.Tags
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	s.joinVideo(ctx, video)
	return video, nil
}

// DeleteVideo removes the document and best-effort deletes the stored object.
// A failed object delete is logged, not surfaced: the catalog entry is gone
// either way.
func (s *catalogService) DeleteVideo(ctx context.Context, videoID string) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: video %q", ErrNotFound, videoID)
		}
		return fmt.Errorf("failed to get video: %w", err)
	}

	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if video.S3Key != "" {
		if err := s.media.DeleteObject(ctx, video.S3Key); err != nil {
			s.logger.Warn("failed to delete stored object",
				zap.String("videoId", videoID),
				zap.String("s3Key", video.S3Key),
				zap.Error(err))
		}
	}
	s.logger.Info("video deleted", zap.String("videoId", videoID))
	return nil
}

func (s *catalogService) ListVideos(ctx context.Context, filter db.VideoFilter, page db.Page) (*VideoListResult, error) {
	videos, err := s.videoRepo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	total, err := s.videoRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	for _, v := range videos {
		s.joinVideo(ctx, v)
	}
	return &VideoListResult{Videos: videos, Total: total}, nil
}

func (s *catalogService) IncrementViews(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := s.videoRepo.IncrementViews(ctx, videoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
		}
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	return video, nil
}

func (s *catalogService) CreateSeries(ctx context.Context, createdBy string, req models.CreateSeriesRequest) (*models.Series, error) {
	series := &models.Series{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		IsActive:    true,
		CreatedBy:   createdBy,
	}
	if _, err := s.seriesRepo.Create(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	s.logger.Info("series created",
		zap.String("seriesId", series.ID),
		zap.String("title", series.Title))
	return series, nil
}

func (s *catalogService) GetSeries(ctx context.Context, seriesID string) (*models.Series, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: series %q", ErrNotFound, seriesID)
		}
		return nil, fmt.Errorf("failed to get series: %w", err)
	}
	s.joinSeries(ctx, series)
	return series, nil
}

func (s *catalogService) UpdateSeries(ctx context.Context, seriesID string, req models.UpdateSeriesRequest) (*models.Series, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: series %q", ErrNotFound, seriesID)
		}
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	if req.Title != nil {
		series.Title = *req.Title
	}
	if req.Description != nil {
		series.Description = *req.Description
	}
	if req.Thumbnail != nil {
		series.Thumbnail = *req.Thumbnail
	}
	if req.IsActive != nil {
		series.IsActive = *req.IsActive
	}

	if err := s.seriesRepo.Update(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}
	s.joinSeries(ctx, series)
	return series, nil
}

// DeleteSeries refuses while videos still reference the series; episodes must
// be moved or deleted first.
func (s *catalogService) DeleteSeries(ctx context.Context, seriesID string) error {
	if _, err := s.seriesRepo.GetByID(ctx, seriesID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: series %q", ErrNotFound, seriesID)
		}
		return fmt.Errorf("failed to get series: %w", err)
	}

	count, err := s.videoRepo.Count(ctx, db.VideoFilter{SeriesID: seriesID})
	if err != nil {
		return fmt.Errorf("failed to count series videos: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: series %q has %d videos", ErrConflict, seriesID, count)
	}

	if err := s.seriesRepo.Delete(ctx, seriesID); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	s.logger.Info("series deleted", zap.String("seriesId", seriesID))
	return nil
}

func (s *catalogService) ListSeries(ctx context.Context, filter db.SeriesFilter, page db.Page) (*SeriesListResult, error) {
	list, err := s.seriesRepo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	total, err := s.seriesRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count series: %w", err)
	}
	for _, series := range list {
		s.joinSeries(ctx, series)
	}
	return &SeriesListResult{Series: list, Total: total}, nil
}

func (s *catalogService) joinVideo(ctx context.Context, video *models.Video) {
	if video.SeriesID != "" {
		if series, err := s.seriesRepo.GetByID(ctx, video.SeriesID); err == nil {
			video.Series = series
		}
	}
	if video.UploadedBy != "" {
		if user, err := s.userRepo.GetByID(ctx, video.UploadedBy); err == nil {
			pub := user.Public()
			video.Uploader = &pub
		}
	}
}

func (s *catalogService) joinSeries(ctx context.Context, series *models.Series) {
	if count, err := s.videoRepo.Count(ctx, db.VideoFilter{SeriesID: series.ID}); err == nil {
		series.VideoCount = count
	}
	if series.CreatedBy != "" {
		if user, err := s.userRepo.GetByID(ctx, series.CreatedBy); err == nil {
			pub := user.Public()
			series.Creator = &pub
		}
	}
}
