package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSetToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewConnectedAccountRepository(db)
	expiresAt := time.Now().Add(time.Hour)

	mock.ExpectExec(`UPDATE connected_accounts\s+SET access_token = \$1,\s+expires_at = \$2,\s+updated_at = CURRENT_TIMESTAMP\s+WHERE id = \$3 AND access_token = \$4`).
		WithArgs("new-encrypted", expiresAt, int64(1), "old-encrypted").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := r.SetToken(context.Background(), 1, "old-encrypted", "new-encrypted", expiresAt); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSetTokenConcurrentRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewConnectedAccountRepository(db)

	// Another writer already replaced the token, so the predicate on
	// the old value matches nothing.
	mock.ExpectExec(`UPDATE connected_accounts`).
		WithArgs("new-encrypted", sqlmock.AnyArg(), int64(1), "stale-encrypted").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = r.SetToken(context.Background(), 1, "stale-encrypted", "new-encrypted", time.Now())
	if err == nil {
		t.Fatal("expected an error when the old token no longer matches")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetActiveNoAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewConnectedAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM connected_accounts\s+WHERE user_id = \$1 AND platform = \$2 AND is_active = TRUE`).
		WithArgs(int64(7), "youtube").
		WillReturnError(sql.ErrNoRows)

	acc, err := r.GetActive(context.Background(), 7, "youtube")
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if acc != nil {
		t.Fatalf("expected nil account, got %+v", acc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
