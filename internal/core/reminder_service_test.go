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

type reminderFixture struct {
	service   ReminderService
	reminders *fakeReminderRepo
	videos    *fakeVideoRepo
}

func newReminderFixture() *reminderFixture {
	reminders := newFakeReminderRepo()
	videos := newFakeVideoRepo()
	service := NewReminderService(reminders, videos, zap.NewNop())
	return &reminderFixture{service: service, reminders: reminders, videos: videos}
}

func (f *reminderFixture) seedUnreleasedVideo(t *testing.T) *models.Video {
	t.Helper()
	video := &models.Video{
		Title:       "Season Finale",
		PublishAt:   time.Now().Add(72 * time.Hour),
		IsPublished: true,
		IsActive:    true,
	}
	_, err := f.videos.Create(context.Background(), video)
	require.NoError(t, err)
	return video
}

func TestReminderCreate(t *testing.T) {
	f := newReminderFixture()
	video := f.seedUnreleasedVideo(t)

	reminder, err := f.service.Create(context.Background(), "user-1", models.CreateReminderRequest{
		VideoID:      video.ID,
		ReminderDate: video.PublishAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationEmail, reminder.NotificationType, "default channel")
	assert.False(t, reminder.IsNotified)
}

func TestReminderCreateRefusedForAvailableVideo(t *testing.T) {
	f := newReminderFixture()
	video := &models.Video{
		Title:       "Already Out",
		PublishAt:   time.Now().Add(-time.Hour),
		IsPublished: true,
		IsActive:    true,
	}
	_, err := f.videos.Create(context.Background(), video)
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), "user-1", models.CreateReminderRequest{
		VideoID:      video.ID,
		ReminderDate: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReminderCreateDuplicateConflict(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	video := f.seedUnreleasedVideo(t)
	req := models.CreateReminderRequest{VideoID: video.ID, ReminderDate: video.PublishAt}

	_, err := f.service.Create(ctx, "user-1", req)
	require.NoError(t, err)
	_, err = f.service.Create(ctx, "user-1", req)
	assert.ErrorIs(t, err, ErrConflict)

	// A different user may still set their own.
	_, err = f.service.Create(ctx, "user-2", req)
	assert.NoError(t, err)
}

func TestReminderSweepMarksNotified(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	video := f.seedUnreleasedVideo(t)

	due, err := f.reminders.Create(ctx, &models.Reminder{
		UserID:           "user-1",
		VideoID:          video.ID,
		ReminderDate:     time.Now().Add(-time.Hour),
		NotificationType: models.NotificationEmail,
	})
	require.NoError(t, err)
	_, err = f.reminders.Create(ctx, &models.Reminder{
		UserID:           "user-1",
		VideoID:          "other-video",
		ReminderDate:     time.Now().Add(time.Hour),
		NotificationType: models.NotificationEmail,
	})
	require.NoError(t, err)

	swept, err := f.service.SweepDue(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, due, swept[0].ID)
	assert.True(t, swept[0].IsNotified)

	// A second sweep finds nothing.
	swept, err = f.service.SweepDue(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, swept)
}

func TestReminderUpdateFrozenOnceNotified(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	video := f.seedUnreleasedVideo(t)

	id, err := f.reminders.Create(ctx, &models.Reminder{
		UserID:       "user-1",
		VideoID:      video.ID,
		ReminderDate: time.Now().Add(-time.Hour),
		IsNotified:   true,
	})
	require.NoError(t, err)

	newDate := time.Now().Add(48 * time.Hour)
	_, err = f.service.Update(ctx, "user-1", id, models.UpdateReminderRequest{ReminderDate: &newDate})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReminderForeignAccessIsNotFound(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	video := f.seedUnreleasedVideo(t)

	id, err := f.reminders.Create(ctx, &models.Reminder{
		UserID:       "user-1",
		VideoID:      video.ID,
		ReminderDate: video.PublishAt,
	})
	require.NoError(t, err)

	err = f.service.Delete(ctx, "user-2", id)
	assert.ErrorIs(t, err, ErrNotFound)

	newDate := time.Now().Add(time.Hour)
	_, err = f.service.Update(ctx, "user-2", id, models.UpdateReminderRequest{ReminderDate: &newDate})
	assert.ErrorIs(t, err, ErrNotFound)
}
