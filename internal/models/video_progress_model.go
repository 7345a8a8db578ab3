package models

import "time"

// CompletedThreshold is the watch percentage at which a video counts as done.
const CompletedThreshold = 90

// VideoProgress records how far a user has watched one video. One document per
// (user, video) pair, upserted on every report.
type VideoProgress struct {
	ID            string    `json:"id" firestore:"-"`
	UserID        string    `json:"user" firestore:"user"`
	VideoID       string    `json:"video" firestore:"video"`
	Progress      float64   `json:"progress" firestore:"progress"`
	Completed     bool      `json:"completed" firestore:"completed"`
	LastWatchedAt time.Time `json:"lastWatchedAt" firestore:"lastWatchedAt"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ProgressSummary aggregates a user's viewing history.
type ProgressSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
}
