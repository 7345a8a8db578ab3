package models

import "time"

// Video is one catalog entry. The S3 key and uploader are stripped before the
// record is returned on the member surface.
type Video struct {
	ID            string    `json:"id" firestore:"-"`
	Title         string    `json:"title" firestore:"title"`
	Description   string    `json:"description" firestore:"description"`
	Thumbnail     string    `json:"thumbnail" firestore:"thumbnail"`
	Duration      float64   `json:"duration" firestore:"duration"`
	S3Key         string    `json:"s3Key,omitempty" firestore:"s3Key"`
	HLSURL        string    `json:"hlsUrl,omitempty" firestore:"hlsUrl"`
	SeriesID      string    `json:"series,omitempty" firestore:"series"`
	EpisodeNumber int       `json:"episodeNumber,omitempty" firestore:"episodeNumber"`
	Season        int       `json:"season,omitempty" firestore:"season"`
	PublishAt     time.Time `json:"publishAt" firestore:"publishAt"`
	IsPublished   bool      `json:"isPublished" firestore:"isPublished"`
	IsActive      bool      `json:"isActive" firestore:"isActive"`
	Tags          []string  `json:"tags,omitempty" firestore:"tags"`
	Views         int64     `json:"views" firestore:"views"`
	UploadedBy    string    `json:"uploadedBy,omitempty" firestore:"uploadedBy"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`

	// Joined by the service layer when requested.
	Series   *Series     `json:"seriesDetail,omitempty" firestore:"-"`
	Uploader *PublicUser `json:"uploader,omitempty" firestore:"-"`
}

// IsAvailable reports whether members may see the video at the given instant.
func (v *Video) IsAvailable(now time.Time) bool {
	return v.IsPublished && v.IsActive && !v.PublishAt.After(now)
}

// MemberView strips admin-only fields for member-facing responses.
func (v *Video) MemberView() Video {
	out := *v
	out.S3Key = ""
	out.UploadedBy = ""
	out.Uploader = nil
	return out
}
