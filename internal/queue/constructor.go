package queue

import (
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

const TaskTypeSchedulePost = "schedule:post"

// defaultBatchSize caps how many due posts a single sweep drains.
const defaultBatchSize = 10

type SchedulePostPayload struct {
	PostID int64 `json:"post_id"`
}

// Processor drives due posts through their platform publishers. It is
// invoked from two directions: per-post asynq tasks enqueued at compose
// time, and batch sweeps from the cron loop or the trigger endpoint.
type Processor struct {
	pr         repository.PostRepository
	pp         repository.PlatformPostRepository
	sa         repository.ConnectedAccountRepository
	ma         repository.MediaAssetRepository
	media      service.MediaResolver
	publishers map[string]service.PlatformPublisher
	batchSize  int
}

func NewProcessor(
	pr repository.PostRepository,
	pp repository.PlatformPostRepository,
	sa repository.ConnectedAccountRepository,
	ma repository.MediaAssetRepository,
	media service.MediaResolver,
	publishers map[string]service.PlatformPublisher) *Processor {
	return &Processor{
		pr:         pr,
		pp:         pp,
		sa:         sa,
		ma:         ma,
		media:      media,
		publishers: publishers,
		batchSize:  defaultBatchSize,
	}
}
