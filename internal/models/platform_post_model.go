package models

import "time"

// PlatformPost is the per-platform publication record for a Post.
// One row per (post, platform) pair, written by the publishing pipeline.
type PlatformPost struct {
	ID             int64      `db:"id" json:"id"`
	PostID         int64      `db:"post_id" json:"post_id"`
	Platform       string     `db:"platform" json:"platform"`
	PlatformPostID string     `db:"platform_post_id" json:"platform_post_id,omitempty"`
	Status         string     `db:"status" json:"status"` // pending, published, failed
	ErrorMessage   string     `db:"error_message" json:"error_message,omitempty"`
	Views          int64      `db:"views" json:"views"`
	Likes          int64      `db:"likes" json:"likes"`
	Comments       int64      `db:"comments" json:"comments"`
	Shares         int64      `db:"shares" json:"shares"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

const (
	PlatformPostStatusPending   = "pending"
	PlatformPostStatusPublished = "published"
	PlatformPostStatusFailed    = "failed"
)

const (
	PlatformYoutube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformTiktok    = "tiktok"
)
