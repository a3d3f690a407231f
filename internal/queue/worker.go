package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

type RunResult struct {
	PostID  int64  `json:"postId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type RunSummary struct {
	Message   string      `json:"message"`
	Processed int         `json:"processed"`
	Results   []RunResult `json:"results"`
}

// HandleSchedulePostTask processes a single post whose delayed task
// just fired. The claim below makes it safe to race with a batch sweep
// covering the same post.
func (p *Processor) HandleSchedulePostTask(ctx context.Context, task *asynq.Task) error {
	var payload SchedulePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := p.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusScheduled {
		slog.Info("skipping task for post no longer scheduled", "post_id", payload.PostID)
		return nil
	}

	claimed, err := p.pr.ClaimForProcessing(ctx, post.ID)
	if err != nil {
		return err
	}
	if !claimed {
		slog.Info("post already claimed", "post_id", post.ID)
		return nil
	}

	return p.processPost(ctx, post)
}

// Run sweeps due posts in one batch. Each post is claimed before
// processing, and one post failing never stops the rest of the batch.
func (p *Processor) Run(ctx context.Context) (*RunSummary, error) {
	due, err := p.pr.ListDue(ctx, time.Now(), p.batchSize)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Message: "Processed scheduled posts",
		Results: []RunResult{},
	}

	for _, post := range due {
		claimed, err := p.pr.ClaimForProcessing(ctx, post.ID)
		if err != nil {
			slog.Info(err.Error(), "post_id", post.ID)
			continue
		}
		if !claimed {
			slog.Info("post already claimed", "post_id", post.ID)
			continue
		}

		summary.Processed++
		result := RunResult{PostID: post.ID, Success: true}
		if err := p.processPost(ctx, post); err != nil {
			result.Success = false
			result.Error = err.Error()
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// processPost publishes a claimed post to each of its platforms. Media
// is resolved once, and only when some platform actually needs the
// bytes. A failing platform marks its own row failed and the loop goes
// on, so one dead integration never blocks the others.
func (p *Processor) processPost(ctx context.Context, post *models.Post) error {
	var media []byte
	if p.needsMedia(post) {
		var err error
		media, err = p.resolveMedia(ctx, post)
		if err != nil {
			slog.Info(err.Error(), "post_id", post.ID)
			if ppErr := p.pp.FailAllForPost(ctx, post.ID, err.Error()); ppErr != nil {
				slog.Info(ppErr.Error(), "post_id", post.ID)
			}
			if prErr := p.pr.MarkFailed(ctx, post.ID); prErr != nil {
				slog.Info(prErr.Error(), "post_id", post.ID)
			}
			return err
		}
	}

	var firstErr error
	for _, platform := range post.Platforms {
		if err := p.publishToPlatform(ctx, post, platform, media); err != nil {
			slog.Info(err.Error(), "post_id", post.ID, "platform", platform)
			if ppErr := p.pp.SetFailed(ctx, post.ID, platform, err.Error()); ppErr != nil {
				slog.Info(ppErr.Error(), "post_id", post.ID, "platform", platform)
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		if err := p.pr.MarkFailed(ctx, post.ID); err != nil {
			slog.Info(err.Error(), "post_id", post.ID)
		}
		return firstErr
	}

	if err := p.pr.MarkPublished(ctx, post.ID, time.Now()); err != nil {
		slog.Info(err.Error(), "post_id", post.ID)
		return err
	}
	return nil
}

func (p *Processor) publishToPlatform(ctx context.Context, post *models.Post, platform string, media []byte) error {
	publisher, ok := p.publishers[platform]
	if !ok {
		return fmt.Errorf("no publisher registered for platform %s", platform)
	}

	var acc *models.ConnectedAccount
	if !publisher.Simulated() {
		var err error
		acc, err = p.sa.GetActive(ctx, post.UserID, platform)
		if err != nil {
			return err
		}
		if acc == nil {
			return service.ErrNoActiveAccount
		}
	}

	outcome, err := publisher.Publish(ctx, acc, post, media, nil)
	if err != nil {
		return err
	}

	if outcome.Status == models.PlatformPostStatusPublished {
		return p.pp.SetPublished(ctx, post.ID, platform, outcome.PlatformPostID, time.Now())
	}
	return p.pp.UpsertPending(ctx, post.ID, platform, outcome.PlatformPostID)
}

func (p *Processor) needsMedia(post *models.Post) bool {
	if len(post.MediaIDs) == 0 {
		return false
	}
	for _, platform := range post.Platforms {
		if publisher, ok := p.publishers[platform]; ok && !publisher.Simulated() {
			return true
		}
	}
	return false
}

// resolveMedia loads the bytes for the post's primary asset, preferring
// the first video since every real integration today uploads video.
func (p *Processor) resolveMedia(ctx context.Context, post *models.Post) ([]byte, error) {
	var primary *models.MediaAsset
	for _, mediaID := range post.MediaIDs {
		asset, err := p.ma.GetByID(ctx, mediaID)
		if err != nil {
			return nil, err
		}
		if asset == nil {
			continue
		}
		if asset.FileType == models.MediaTypeVideo {
			primary = asset
			break
		}
		if primary == nil {
			primary = asset
		}
	}
	if primary == nil {
		return nil, fmt.Errorf("no media assets found for post %d", post.ID)
	}

	return p.media.Resolve(ctx, primary)
}
