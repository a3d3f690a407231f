package service

import (
	"context"
	"time"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

// PublishOutcome is what a platform publisher reports back to the
// queue processor. Status is pending when the platform itself defers
// visibility (scheduled release) or when the integration is simulated.
type PublishOutcome struct {
	PlatformPostID string
	Status         string
}

// PlatformPublisher publishes a post to one platform. Simulated
// implementations return a canned outcome without touching any
// external API; the processor skips account and media resolution for
// them, so swapping a stub for a real integration needs no pipeline
// changes.
type PlatformPublisher interface {
	Publish(ctx context.Context, acc *models.ConnectedAccount, post *models.Post, media []byte, scheduledFor *time.Time) (*PublishOutcome, error)
	Simulated() bool
}

// MediaResolver maps a stored media asset to retrievable bytes.
type MediaResolver interface {
	Resolve(ctx context.Context, asset *models.MediaAsset) ([]byte, error)
}
