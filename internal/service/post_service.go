package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

var knownPlatforms = map[string]bool{
	models.PlatformYoutube:   true,
	models.PlatformInstagram: true,
	models.PlatformTiktok:    true,
}

type PostService interface {
	// Create persists the post and its per-platform rows. The returned
	// delay is how long until the post is due; the caller enqueues the
	// publish task with it when the post status is scheduled.
	Create(ctx context.Context, userID int64, creation *transfer.PostCreation) (*models.Post, time.Duration, error)
	Get(ctx context.Context, userID, postID int64) (*models.Post, []*models.PlatformPost, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	Update(ctx context.Context, userID, postID int64, update *transfer.PostUpdate) error
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db *sql.DB
	p  repository.PostRepository
	pp repository.PlatformPostRepository
	ma repository.MediaAssetRepository
	sa repository.ConnectedAccountRepository
}

func NewPostService(db *sql.DB, p repository.PostRepository, pp repository.PlatformPostRepository, ma repository.MediaAssetRepository, sa repository.ConnectedAccountRepository) PostService {
	return &postService{db: db, p: p, pp: pp, ma: ma, sa: sa}
}

func (s *postService) Create(ctx context.Context, userID int64, creation *transfer.PostCreation) (*models.Post, time.Duration, error) {
	if creation.Title == "" {
		return nil, 0, errors.New("title is required")
	}
	if len(creation.Platforms) == 0 {
		return nil, 0, errors.New("at least one platform is required")
	}
	for _, platform := range creation.Platforms {
		if !knownPlatforms[platform] {
			return nil, 0, fmt.Errorf("unsupported platform %s", platform)
		}
	}

	for _, mediaID := range creation.MediaIDs {
		owned, err := s.ma.CheckByUserID(ctx, mediaID, userID)
		if err != nil {
			return nil, 0, err
		}
		if !owned {
			return nil, 0, fmt.Errorf("media asset %d not found", mediaID)
		}
	}

	// Every non-simulated platform needs an active connected account
	// before the post is accepted, so failures surface at compose time
	// instead of in the queue.
	for _, platform := range creation.Platforms {
		acc, err := s.sa.GetActive(ctx, userID, platform)
		if err != nil {
			return nil, 0, err
		}
		if acc == nil {
			return nil, 0, fmt.Errorf("no connected %s account", platform)
		}
	}

	now := time.Now()
	post := &models.Post{
		UserID:      userID,
		Title:       creation.Title,
		Description: creation.Description,
		Tags:        creation.Tags,
		MediaIDs:    creation.MediaIDs,
		Platforms:   creation.Platforms,
	}

	var delay time.Duration
	switch {
	case creation.Draft:
		post.Status = models.PostStatusDraft

	case creation.ScheduledFor != "":
		scheduledFor, err := time.Parse(time.RFC3339, creation.ScheduledFor)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid scheduled_for: %w", err)
		}
		if scheduledFor.Before(now) {
			return nil, 0, errors.New("scheduled_for must be in the future")
		}
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = &scheduledFor
		delay = time.Until(scheduledFor)

	default:
		// Immediate publish is a schedule for right now; the queue
		// picks it up on the first sweep.
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = &now
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer tx.Rollback()

	postID, err := s.p.Create(ctx, tx, post)
	if err != nil {
		return nil, 0, err
	}
	post.ID = postID

	for _, platform := range post.Platforms {
		_, err := s.pp.Create(ctx, tx, &models.PlatformPost{
			PostID:   postID,
			Platform: platform,
			Status:   models.PlatformPostStatusPending,
		})
		if err != nil {
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return post, delay, nil
}

func (s *postService) Get(ctx context.Context, userID, postID int64) (*models.Post, []*models.PlatformPost, error) {
	post, err := s.p.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, nil, errors.New("post not found")
	}

	platformPosts, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, platformPosts, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.p.GetByUserID(ctx, userID)
}

// Update edits drafts and not-yet-due scheduled posts. Anything already
// processing, published or failed is immutable.
func (s *postService) Update(ctx context.Context, userID, postID int64, update *transfer.PostUpdate) error {
	post, err := s.p.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.UserID != userID {
		return errors.New("post not found")
	}
	if post.Status != models.PostStatusDraft && post.Status != models.PostStatusScheduled {
		return fmt.Errorf("post in status %s cannot be edited", post.Status)
	}

	if update.Title != "" {
		post.Title = update.Title
	}
	if update.Description != "" {
		post.Description = update.Description
	}
	if update.Tags != nil {
		post.Tags = update.Tags
	}
	if update.ScheduledFor != "" {
		scheduledFor, err := time.Parse(time.RFC3339, update.ScheduledFor)
		if err != nil {
			return fmt.Errorf("invalid scheduled_for: %w", err)
		}
		if scheduledFor.Before(time.Now()) {
			return errors.New("scheduled_for must be in the future")
		}
		post.ScheduledFor = &scheduledFor
		post.Status = models.PostStatusScheduled
	}

	return s.p.Update(ctx, post)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	exists, err := s.p.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("post not found")
	}
	return s.p.Remove(ctx, postID)
}
