package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

type PlatformPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error)
	UpsertPending(ctx context.Context, postID int64, platform, platformPostID string) error
	SetPublished(ctx context.Context, postID int64, platform, platformPostID string, publishedAt time.Time) error
	SetFailed(ctx context.Context, postID int64, platform, errorMessage string) error
	FailAllForPost(ctx context.Context, postID int64, errorMessage string) error
}

type platformPostRepository struct {
	db *sql.DB
}

func NewPlatformPostRepository(db *sql.DB) PlatformPostRepository {
	return &platformPostRepository{db: db}
}

func (r *platformPostRepository) Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error) {
	query := `
		INSERT INTO platform_posts (post_id, platform, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, pp.PostID, pp.Platform, pp.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, pp.PostID, pp.Platform, pp.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *platformPostRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error) {
	query := `
		SELECT id, post_id, platform, COALESCE(platform_post_id, ''), status, COALESCE(error_message, ''),
			views, likes, comments, shares, published_at, created_at
		FROM platform_posts
		WHERE post_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.PlatformPost
	for rows.Next() {
		var pp models.PlatformPost
		err := rows.Scan(&pp.ID, &pp.PostID, &pp.Platform, &pp.PlatformPostID, &pp.Status, &pp.ErrorMessage,
			&pp.Views, &pp.Likes, &pp.Comments, &pp.Shares, &pp.PublishedAt, &pp.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &pp)
	}
	return posts, rows.Err()
}

// UpsertPending records a placeholder row for a platform that defers
// publication (simulated integrations, or a platform-side scheduled
// release). The row may or may not exist yet, hence the upsert.
func (r *platformPostRepository) UpsertPending(ctx context.Context, postID int64, platform, platformPostID string) error {
	query := `
		INSERT INTO platform_posts (post_id, platform, platform_post_id, status)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (post_id, platform) DO UPDATE
		SET platform_post_id = COALESCE(NULLIF($3, ''), platform_posts.platform_post_id),
			status = $4,
			error_message = NULL
	`
	_, err := r.db.ExecContext(ctx, query, postID, platform, platformPostID, models.PlatformPostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformPostRepository) SetPublished(ctx context.Context, postID int64, platform, platformPostID string, publishedAt time.Time) error {
	query := `
		INSERT INTO platform_posts (post_id, platform, platform_post_id, status, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, platform) DO UPDATE
		SET platform_post_id = $3,
			status = $4,
			published_at = $5,
			error_message = NULL
	`
	_, err := r.db.ExecContext(ctx, query, postID, platform, platformPostID, models.PlatformPostStatusPublished, publishedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformPostRepository) SetFailed(ctx context.Context, postID int64, platform, errorMessage string) error {
	query := `
		INSERT INTO platform_posts (post_id, platform, status, error_message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, platform) DO UPDATE
		SET status = $3,
			error_message = $4
	`
	_, err := r.db.ExecContext(ctx, query, postID, platform, models.PlatformPostStatusFailed, errorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// FailAllForPost marks every platform row of a post failed with the
// same message. Used when the failure happened before any platform was
// reached (media resolution, for example).
func (r *platformPostRepository) FailAllForPost(ctx context.Context, postID int64, errorMessage string) error {
	query := `
		UPDATE platform_posts
		SET status = $1, error_message = $2
		WHERE post_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformPostStatusFailed, errorMessage, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
