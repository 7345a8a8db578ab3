package models

import "time"

// Series groups videos into seasons/episodes.
type Series struct {
	ID          string    `json:"id" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Thumbnail   string    `json:"thumbnail" firestore:"thumbnail"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	CreatedBy   string    `json:"createdBy,omitempty" firestore:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`

	Creator *PublicUser `json:"creator,omitempty" firestore:"-"`

	// VideoCount is computed per request, not stored.
	VideoCount int `json:"videoCount,omitempty" firestore:"-"`
}
