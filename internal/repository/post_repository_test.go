package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

func postRows(t *testing.T, scheduledFor time.Time) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "tags", "media_ids", "platforms",
		"status", "scheduled_for", "published_at", "created_at", "updated_at",
	}).AddRow(
		int64(1), int64(7), "Release day", "It's out", "{music}", "{1}", "{youtube}",
		models.PostStatusScheduled, scheduledFor, nil, now, now,
	)
}

func TestListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewPostRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM posts\s+WHERE status = \$1 AND scheduled_for IS NOT NULL AND scheduled_for <= \$2\s+ORDER BY scheduled_for ASC\s+LIMIT \$3`).
		WithArgs(models.PostStatusScheduled, sqlmock.AnyArg(), 10).
		WillReturnRows(postRows(t, now.Add(-time.Minute)))

	posts, err := r.ListDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected one due post, got %d", len(posts))
	}
	if posts[0].ID != 1 || posts[0].Platforms[0] != "youtube" {
		t.Fatalf("unexpected post %+v", posts[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestClaimForProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewPostRepository(db)

	mock.ExpectExec(`UPDATE posts\s+SET status = \$1, updated_at = \$2\s+WHERE id = \$3 AND status = \$4`).
		WithArgs(models.PostStatusProcessing, sqlmock.AnyArg(), int64(1), models.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := r.ClaimForProcessing(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClaimForProcessing: %v", err)
	}
	if !claimed {
		t.Fatal("expected the claim to succeed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestClaimForProcessingAlreadyTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewPostRepository(db)

	mock.ExpectExec(`UPDATE posts\s+SET status = \$1, updated_at = \$2\s+WHERE id = \$3 AND status = \$4`).
		WithArgs(models.PostStatusProcessing, sqlmock.AnyArg(), int64(1), models.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := r.ClaimForProcessing(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClaimForProcessing: %v", err)
	}
	if claimed {
		t.Fatal("claim must fail when the row was already taken")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
