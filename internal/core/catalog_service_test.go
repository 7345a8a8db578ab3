package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/models"
)

type catalogFixture struct {
	service CatalogService
	videos  *fakeVideoRepo
	series  *fakeSeriesRepo
	users   *fakeUserRepo
	media   *fakeMediaStore
}

func newCatalogFixture() *catalogFixture {
	videos := newFakeVideoRepo()
	series := newFakeSeriesRepo()
	users := newFakeUserRepo()
	media := &fakeMediaStore{}
	service := NewCatalogService(videos, series, users, media, zap.NewNop())
	return &catalogFixture{service: service, videos: videos, series: series, users: users, media: media}
}

func TestCreateVideoDefaults(t *testing.T) {
	f := newCatalogFixture()

	video, err := f.service.CreateVideo(context.Background(), "admin-1", models.CreateVideoRequest{
		Title:    "Pilot",
		Duration: 1800,
		S3Key:    "videos/abc-pilot.mp4",
	})
	require.NoError(t, err)
	assert.True(t, video.IsActive)
	assert.True(t, video.IsPublished, "immediate publish when no date is given")
	assert.WithinDuration(t, time.Now(), video.PublishAt, time.Minute)
	assert.Equal(t, "admin-1", video.UploadedBy)
}

func TestCreateVideoScheduledRelease(t *testing.T) {
	f := newCatalogFixture()

	publishAt := time.Now().Add(48 * time.Hour)
	video, err := f.service.CreateVideo(context.Background(), "admin-1", models.CreateVideoRequest{
		Title:     "Finale",
		PublishAt: &publishAt,
	})
	require.NoError(t, err)
	assert.False(t, video.IsPublished, "future date stays unpublished")
	assert.Equal(t, publishAt, video.PublishAt)
}

func TestCreateVideoUnknownSeries(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.service.CreateVideo(context.Background(), "admin-1", models.CreateVideoRequest{
		Title:    "Orphan",
		SeriesID: "missing",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteVideoRemovesStoredObject(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	video, err := f.service.CreateVideo(ctx, "admin-1", models.CreateVideoRequest{
		Title: "Pilot",
		S3Key: "videos/abc-pilot.mp4",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteVideo(ctx, video.ID))
	assert.Equal(t, []string{"videos/abc-pilot.mp4"}, f.media.deleted)

	_, err = f.service.GetVideo(ctx, video.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSeriesRefusedWithEpisodes(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	series, err := f.service.CreateSeries(ctx, "admin-1", models.CreateSeriesRequest{Title: "Show"})
	require.NoError(t, err)
	video, err := f.service.CreateVideo(ctx, "admin-1", models.CreateVideoRequest{
		Title:    "Episode 1",
		SeriesID: series.ID,
	})
	require.NoError(t, err)

	err = f.service.DeleteSeries(ctx, series.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.service.DeleteVideo(ctx, video.ID))
	assert.NoError(t, f.service.DeleteSeries(ctx, series.ID))
}

func TestUpdateVideoReassignsSeries(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	series, err := f.service.CreateSeries(ctx, "admin-1", models.CreateSeriesRequest{Title: "Show"})
	require.NoError(t, err)
	video, err := f.service.CreateVideo(ctx, "admin-1", models.CreateVideoRequest{Title: "Standalone"})
	require.NoError(t, err)

	missing := "missing"
	_, err = f.service.UpdateVideo(ctx, video.ID, models.UpdateVideoRequest{SeriesID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.service.UpdateVideo(ctx, video.ID, models.UpdateVideoRequest{SeriesID: &series.ID})
	require.NoError(t, err)
	assert.Equal(t, series.ID, updated.SeriesID)
	require.NotNil(t, updated.Series)
	assert.Equal(t, "Show", updated.Series.Title)

	// Clearing the series is allowed.
	none := ""
	updated, err = f.service.UpdateVideo(ctx, video.ID, models.UpdateVideoRequest{SeriesID: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.SeriesID)
}

func TestGetSeriesJoinsVideoCount(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.users.Create(ctx, &models.User{
		Email:     "root@example.com",
		FirstName: "Grace",
		Role:      models.RoleAdmin,
	})
	require.NoError(t, err)

	series, err := f.service.CreateSeries(ctx, "user-1", models.CreateSeriesRequest{Title: "Show"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.service.CreateVideo(ctx, "user-1", models.CreateVideoRequest{
			Title:    "Episode",
			SeriesID: series.ID,
		})
		require.NoError(t, err)
	}

	got, err := f.service.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.VideoCount)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "Grace", got.Creator.FirstName)
}

func TestPresignUploadDefaultsContentType(t *testing.T) {
	f := newCatalogFixture()

	target, err := f.service.PresignUpload(context.Background(), models.UploadURLRequest{
		FileName: "pilot.mp4",
	})
	require.NoError(t, err)
	assert.Contains(t, target.UploadURL, "pilot.mp4")
	assert.NotEmpty(t, target.Key)
}
