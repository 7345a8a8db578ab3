package models

import "time"

// Notification channels for release reminders.
const (
	NotificationEmail = "email"
	NotificationPush  = "push"
	NotificationBoth  = "both"
)

// Reminder asks the system to notify a user when an unreleased video becomes
// available. Once notified, the reminder is frozen.
type Reminder struct {
	ID               string    `json:"id" firestore:"-"`
	UserID           string    `json:"user" firestore:"user"`
	VideoID          string    `json:"video" firestore:"video"`
	ReminderDate     time.Time `json:"reminderDate" firestore:"reminderDate"`
	NotificationType string    `json:"notificationType" firestore:"notificationType"`
	IsNotified       bool      `json:"isNotified" firestore:"isNotified"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`

	Video *Video      `json:"videoDetail,omitempty" firestore:"-"`
	User  *PublicUser `json:"userDetail,omitempty" firestore:"-"`
}
