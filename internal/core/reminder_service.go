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

// reminderService manages release reminders. Delivery is a synchronous sweep
// invoked over the API; there is no background scheduler, so "notified" means
// the reminder was reported due on a sweep, nothing more.
type reminderService struct {
	reminderRepo db.ReminderRepository
	videoRepo    db.VideoRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderService creates a new ReminderService instance.
func NewReminderService(
	reminderRepo db.ReminderRepository,
	videoRepo db.VideoRepository,
	logger *zap.Logger,
) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		videoRepo:    videoRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create schedules a reminder for an unreleased video. Refused when the video
// is already watchable or the user already has a reminder for it.
func (s *reminderService) Create(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error) {
	video, err := s.videoRepo.GetByID(ctx, req.VideoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: video %q", ErrNotFound, req.VideoID)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if video.IsAvailable(s.now()) {
		return nil, fmt.Errorf("%w: video %q is already available", ErrValidation, req.VideoID)
	}

	if _, err := s.reminderRepo.GetByUserAndVideo(ctx, userID, req.VideoID); err == nil {
		return nil, fmt.Errorf("%w: reminder for video %q already exists", ErrConflict, req.VideoID)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing reminder: %w", err)
	}

	notificationType := req.NotificationType
	if notificationType == "" {
		notificationType = models.NotificationEmail
	}
	reminder := &models.Reminder{
		UserID:           userID,
		VideoID:          req.VideoID,
		ReminderDate:     req.ReminderDate,
		NotificationType: notificationType,
	}
	if _, err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	s.logger.Info("reminder created",
		zap.String("userId", userID),
		zap.String("videoId", req.VideoID),
		zap.Time("reminderDate", req.ReminderDate))
	s.joinVideo(ctx, reminder)
	return reminder, nil
}

func (s *reminderService) List(ctx context.Context, userID string, filter db.ReminderFilter, page db.Page) ([]*models.Reminder, int, error) {
	filter.UserID = userID
	reminders, err := s.reminderRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}
	total, err := s.reminderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}
	for _, r := range reminders {
		s.joinVideo(ctx, r)
	}
	return reminders, total, nil
}

// Update reschedules a reminder that has not fired yet. Once notified the
// record is frozen.
func (s *reminderService) Update(ctx context.Context, userID, reminderID string, req models.UpdateReminderRequest) (*models.Reminder, error) {
	reminder, err := s.owned(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.IsNotified {
		return nil, fmt.Errorf("%w: reminder %q has already been sent", ErrConflict, reminderID)
	}

	if req.ReminderDate != nil {
		reminder.ReminderDate = *req.ReminderDate
	}
	if req.NotificationType != nil {
		reminder.NotificationType = *req.NotificationType
	}
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	s.joinVideo(ctx, reminder)
	return reminder, nil
}

func (s *reminderService) Delete(ctx context.Context, userID, reminderID string) error {
	if _, err := s.owned(ctx, userID, reminderID); err != nil {
		return err
	}
	if err := s.reminderRepo.Delete(ctx, reminderID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// SweepDue marks the user's due reminders as notified and returns them.
func (s *reminderService) SweepDue(ctx context.Context, userID string) ([]*models.Reminder, error) {
	due, err := s.reminderRepo.ListDue(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, reminder := range due {
		reminder.IsNotified = true
		if err := s.reminderRepo.Update(ctx, reminder); err != nil {
			return nil, fmt.Errorf("failed to mark reminder notified: %w", err)
		}
		s.joinVideo(ctx, reminder)
	}
	if len(due) > 0 {
		s.logger.Info("reminders swept",
			zap.String("userId", userID),
			zap.Int("count", len(due)))
	}
	return due, nil
}

// owned loads a reminder and verifies it belongs to the caller. Foreign
// reminders surface as NotFound, not Forbidden.
func (s *reminderService) owned(ctx context.Context, userID, reminderID string) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, reminderID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: reminder %q", ErrNotFound, reminderID)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	if reminder.UserID != userID {
		return nil, fmt.Errorf("%w: reminder %q", ErrNotFound, reminderID)
	}
	return reminder, nil
}

func (s *reminderService) joinVideo(ctx context.Context, reminder *models.Reminder) {
	video, err := s.videoRepo.GetByID(ctx, reminder.VideoID)
	if err != nil {
		return
	}
	member := video.MemberView()
	reminder.Video = &member
}
