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

type viewerFixture struct {
	service  ViewerService
	videos   *fakeVideoRepo
	series   *fakeSeriesRepo
	progress *fakeProgressRepo
}

func newViewerFixture() *viewerFixture {
	videos := newFakeVideoRepo()
	series := newFakeSeriesRepo()
	progress := newFakeProgressRepo()
	service := NewViewerService(videos, series, progress, fakeSigner{}, zap.NewNop())
	return &viewerFixture{service: service, videos: videos, series: series, progress: progress}
}

func (f *viewerFixture) seedVideo(t *testing.T, mutate func(*models.Video)) *models.Video {
	t.Helper()
	video := &models.Video{
		Title:       "Pilot",
		Description: "First episode",
		Duration:    1800,
		S3Key:       "videos/abc-pilot.mp4",
		HLSURL:      "hls/pilot/master.m3u8",
		PublishAt:   time.Now().Add(-24 * time.Hour),
		IsPublished: true,
		IsActive:    true,
		UploadedBy:  "admin-1",
	}
	if mutate != nil {
		mutate(video)
	}
	_, err := f.videos.Create(context.Background(), video)
	require.NoError(t, err)
	return video
}

func TestGetVideoStripsAdminFields(t *testing.T) {
	f := newViewerFixture()
	video := f.seedVideo(t, nil)

	got, err := f.service.GetVideo(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Empty(t, got.S3Key)
	assert.Empty(t, got.UploadedBy)
	assert.Equal(t, "Pilot", got.Title)
}

func TestGetVideoHidesUnavailable(t *testing.T) {
	f := newViewerFixture()
	ctx := context.Background()

	unreleased := f.seedVideo(t, func(v *models.Video) {
		v.PublishAt = time.Now().Add(24 * time.Hour)
	})
	unpublished := f.seedVideo(t, func(v *models.Video) {
		v.IsPublished = false
	})
	inactive := f.seedVideo(t, func(v *models.Video) {
		v.IsActive = false
	})

	for _, id := range []string{unreleased.ID, unpublished.ID, inactive.ID, "missing"} {
		_, err := f.service.GetVideo(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestStreamURLSignsAndCountsView(t *testing.T) {
	f := newViewerFixture()
	ctx := context.Background()
	video := f.seedVideo(t, nil)

	target, err := f.service.StreamURL(ctx, "user-1", video.ID)
	require.NoError(t, err)
	assert.Contains(t, target.URL, "sig=test")
	assert.Empty(t, target.Video.S3Key)

	stored, _ := f.videos.GetByID(ctx, video.ID)
	assert.Equal(t, int64(1), stored.Views)
}

func TestStreamURLUnavailableVideo(t *testing.T) {
	f := newViewerFixture()
	video := f.seedVideo(t, func(v *models.Video) {
		v.PublishAt = time.Now().Add(time.Hour)
	})

	_, err := f.service.StreamURL(context.Background(), "user-1", video.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportProgressCompletedBoundary(t *testing.T) {
	f := newViewerFixture()
	ctx := context.Background()
	video := f.seedVideo(t, nil)

	tests := []struct {
		percent   float64
		completed bool
	}{
		{89.9, false},
		{90, true},
		{100, true},
		{0, false},
	}
	for _, tt := range tests {
		progress, err := f.service.ReportProgress(ctx, "user-1", video.ID, tt.percent)
		require.NoError(t, err)
		assert.Equal(t, tt.completed, progress.Completed, "at %.1f%%", tt.percent)
		assert.Equal(t, tt.percent, progress.Progress)
	}

	// All reports landed on one record.
	records, err := f.progress.ListByUser(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReportProgressRejectsOutOfRange(t *testing.T) {
	f := newViewerFixture()
	video := f.seedVideo(t, nil)

	for _, percent := range []float64{-1, 100.1, 500} {
		_, err := f.service.ReportProgress(context.Background(), "user-1", video.ID, percent)
		assert.ErrorIs(t, err, ErrValidation, "at %.1f%%", percent)
	}
}

func TestBrowseVideosFiltersUnavailable(t *testing.T) {
	f := newViewerFixture()
	f.seedVideo(t, nil)
	f.seedVideo(t, func(v *models.Video) {
		v.Title = "Coming Soon"
		v.PublishAt = time.Now().Add(48 * time.Hour)
	})

	result, err := f.service.BrowseVideos(context.Background(), db.VideoFilter{}, db.Page{})
	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "Pilot", result.Videos[0].Title)
}

func TestProgressSummaryCounts(t *testing.T) {
	f := newViewerFixture()
	ctx := context.Background()
	done := f.seedVideo(t, nil)
	half := f.seedVideo(t, func(v *models.Video) { v.Title = "Second" })

	_, err := f.service.ReportProgress(ctx, "user-1", done.ID, 95)
	require.NoError(t, err)
	_, err = f.service.ReportProgress(ctx, "user-1", half.ID, 40)
	require.NoError(t, err)

	summary, err := f.service.ProgressSummary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.InProgress)
}
