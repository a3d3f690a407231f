package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

type composePostRepo struct {
	created *models.Post
	stored  map[int64]*models.Post
}

func (r *composePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	r.created = post
	return 11, nil
}

func (r *composePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if r.stored == nil {
		return nil, nil
	}
	return r.stored[id], nil
}

func (r *composePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (r *composePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	return nil, nil
}

func (r *composePostRepo) ClaimForProcessing(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (r *composePostRepo) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	return nil
}

func (r *composePostRepo) MarkFailed(ctx context.Context, id int64) error { return nil }

func (r *composePostRepo) Update(ctx context.Context, post *models.Post) error { return nil }

func (r *composePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (r *composePostRepo) Remove(ctx context.Context, id int64) error { return nil }

type composePlatformRepo struct {
	created []string
}

func (r *composePlatformRepo) Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error) {
	r.created = append(r.created, pp.Platform)
	return 0, nil
}

func (r *composePlatformRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error) {
	return nil, nil
}

func (r *composePlatformRepo) UpsertPending(ctx context.Context, postID int64, platform, platformPostID string) error {
	return nil
}

func (r *composePlatformRepo) SetPublished(ctx context.Context, postID int64, platform, platformPostID string, publishedAt time.Time) error {
	return nil
}

func (r *composePlatformRepo) SetFailed(ctx context.Context, postID int64, platform, errorMessage string) error {
	return nil
}

func (r *composePlatformRepo) FailAllForPost(ctx context.Context, postID int64, errorMessage string) error {
	return nil
}

type composeMediaRepo struct {
	owned map[int64]bool
}

func (r *composeMediaRepo) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	return 0, nil
}

func (r *composeMediaRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return nil, nil
}

func (r *composeMediaRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (r *composeMediaRepo) CheckByUserID(ctx context.Context, assetID, userID int64) (bool, error) {
	return r.owned[assetID], nil
}

func (r *composeMediaRepo) Remove(ctx context.Context, id int64) error { return nil }

type composeAccountRepo struct {
	recordingAccountRepo
	active map[string]*models.ConnectedAccount
}

func (r *composeAccountRepo) GetActive(ctx context.Context, userID int64, platform string) (*models.ConnectedAccount, error) {
	return r.active[platform], nil
}

func newComposeService(t *testing.T) (PostService, *composePostRepo, *composePlatformRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pr := &composePostRepo{}
	pp := &composePlatformRepo{}
	ma := &composeMediaRepo{owned: map[int64]bool{1: true}}
	sa := &composeAccountRepo{active: map[string]*models.ConnectedAccount{
		models.PlatformYoutube: {ID: 1, Platform: models.PlatformYoutube},
	}}

	return NewPostService(db, pr, pp, ma, sa), pr, pp, mock
}

func TestCreateScheduledPost(t *testing.T) {
	s, pr, pp, mock := newComposeService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	scheduledFor := time.Now().Add(time.Hour)
	post, delay, err := s.Create(context.Background(), 7, &transfer.PostCreation{
		Title:        "Release day",
		Platforms:    []string{models.PlatformYoutube},
		MediaIDs:     []int64{1},
		ScheduledFor: scheduledFor.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID != 11 || post.Status != models.PostStatusScheduled {
		t.Fatalf("unexpected post %+v", post)
	}
	if delay < 55*time.Minute || delay > time.Hour {
		t.Fatalf("unexpected delay %v", delay)
	}
	if pr.created == nil {
		t.Fatal("post row was not created")
	}
	if len(pp.created) != 1 || pp.created[0] != models.PlatformYoutube {
		t.Fatalf("unexpected platform rows %v", pp.created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateImmediatePost(t *testing.T) {
	s, pr, _, mock := newComposeService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	post, delay, err := s.Create(context.Background(), 7, &transfer.PostCreation{
		Title:     "Out now",
		Platforms: []string{models.PlatformYoutube},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Status != models.PostStatusScheduled {
		t.Fatalf("immediate post should be scheduled for now, got %q", post.Status)
	}
	if delay != 0 {
		t.Fatalf("expected zero delay, got %v", delay)
	}
	if pr.created.ScheduledFor == nil {
		t.Fatal("immediate post is missing its scheduled time")
	}
}

func TestCreateDraft(t *testing.T) {
	s, _, _, mock := newComposeService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	post, _, err := s.Create(context.Background(), 7, &transfer.PostCreation{
		Title:     "Work in progress",
		Platforms: []string{models.PlatformYoutube},
		Draft:     true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Status != models.PostStatusDraft {
		t.Fatalf("expected draft, got %q", post.Status)
	}
	if post.ScheduledFor != nil {
		t.Fatal("draft must not carry a schedule")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	s, _, _, _ := newComposeService(t)

	tests := []struct {
		name     string
		creation transfer.PostCreation
	}{
		{"missing title", transfer.PostCreation{Platforms: []string{models.PlatformYoutube}}},
		{"no platforms", transfer.PostCreation{Title: "x"}},
		{"unknown platform", transfer.PostCreation{Title: "x", Platforms: []string{"myspace"}}},
		{"unowned media", transfer.PostCreation{Title: "x", Platforms: []string{models.PlatformYoutube}, MediaIDs: []int64{99}}},
		{"past schedule", transfer.PostCreation{Title: "x", Platforms: []string{models.PlatformYoutube}, ScheduledFor: time.Now().Add(-time.Hour).Format(time.RFC3339)}},
		{"no connected account", transfer.PostCreation{Title: "x", Platforms: []string{models.PlatformTiktok}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Create(context.Background(), 7, &tt.creation); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestUpdateRejectsPublishedPost(t *testing.T) {
	s, pr, _, _ := newComposeService(t)
	pr.stored = map[int64]*models.Post{
		5: {ID: 5, UserID: 7, Status: models.PostStatusPublished},
	}

	err := s.Update(context.Background(), 7, 5, &transfer.PostUpdate{Title: "new title"})
	if err == nil {
		t.Fatal("expected published post to be immutable")
	}
}
