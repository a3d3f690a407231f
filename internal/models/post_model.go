package models

import "time"

type Post struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Tags         []string   `db:"tags" json:"tags"`
	MediaIDs     []int64    `db:"media_ids" json:"media_ids"`
	Platforms    []string   `db:"platforms" json:"platforms"`
	Status       string     `db:"status" json:"status"` // draft, scheduled, processing, published, failed
	ScheduledFor *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	FileType    string    `db:"file_type" json:"file_type"` // image, video
	FileSize    int64     `db:"file_size" json:"file_size"`
	FileURL     string    `db:"file_url" json:"file_url"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusProcessing = "processing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)
