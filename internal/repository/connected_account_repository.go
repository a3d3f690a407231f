package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

type ConnectedAccountRepository interface {
	Upsert(ctx context.Context, acc *models.ConnectedAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error)
	GetActive(ctx context.Context, userID int64, platform string) (*models.ConnectedAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	SetToken(ctx context.Context, accountID int64, oldAccessToken, accessToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type connectedAccountRepository struct {
	db *sql.DB
}

func NewConnectedAccountRepository(db *sql.DB) ConnectedAccountRepository {
	return &connectedAccountRepository{db: db}
}

const accountColumns = `id, user_id, platform, account_id, account_name, access_token, COALESCE(refresh_token, ''), expires_at, is_active, created_at, updated_at`

// Upsert writes the account keyed by (user, platform, account id) and
// deactivates sibling accounts on the same platform in the same
// transaction, so auto-selection always finds at most one active row.
func (r *connectedAccountRepository) Upsert(ctx context.Context, acc *models.ConnectedAccount) (int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	deactivateQuery := `
		UPDATE connected_accounts
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND platform = $2 AND account_id <> $3
	`
	if _, err = tx.ExecContext(ctx, deactivateQuery, acc.UserID, acc.Platform, acc.AccountID); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	upsertQuery := `
		INSERT INTO connected_accounts (user_id, platform, account_id, account_name, access_token, refresh_token, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, TRUE)
		ON CONFLICT (user_id, platform, account_id) DO UPDATE
		SET account_name = $4,
			access_token = $5,
			refresh_token = COALESCE(NULLIF($6, ''), connected_accounts.refresh_token),
			expires_at = $7,
			is_active = TRUE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	var id int64
	err = tx.QueryRowContext(ctx, upsertQuery,
		acc.UserID,
		acc.Platform,
		acc.AccountID,
		acc.AccountName,
		acc.AccessToken,
		acc.RefreshToken,
		acc.ExpiresAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *connectedAccountRepository) GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM connected_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	acc, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return acc, nil
}

func (r *connectedAccountRepository) GetActive(ctx context.Context, userID int64, platform string) (*models.ConnectedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM connected_accounts
		WHERE user_id = $1 AND platform = $2 AND is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, userID, platform)

	acc, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return acc, nil
}

func scanAccount(row *sql.Row) (*models.ConnectedAccount, error) {
	var acc models.ConnectedAccount
	err := row.Scan(&acc.ID, &acc.UserID, &acc.Platform, &acc.AccountID, &acc.AccountName,
		&acc.AccessToken, &acc.RefreshToken, &acc.ExpiresAt, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *connectedAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	query := `SELECT id, platform, account_id, account_name, is_active FROM connected_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var acc models.ConnectedAccount
		err := rows.Scan(&acc.ID, &acc.Platform, &acc.AccountID, &acc.AccountName, &acc.IsActive)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

func (r *connectedAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM connected_accounts
		WHERE is_active = TRUE
		AND expires_at IS NOT NULL
		AND (expires_at BETWEEN $1 AND $2 OR expires_at < $1)
	`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var acc models.ConnectedAccount
		err := rows.Scan(&acc.ID, &acc.UserID, &acc.Platform, &acc.AccountID, &acc.AccountName,
			&acc.AccessToken, &acc.RefreshToken, &acc.ExpiresAt, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

func (r *connectedAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := "SELECT 1 FROM connected_accounts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// SetToken persists a refreshed access token. The predicate on the old
// token is the optimistic-concurrency guard: if another refresh landed
// first, zero rows match and the caller re-reads instead of clobbering.
func (r *connectedAccountRepository) SetToken(ctx context.Context, accountID int64, oldAccessToken, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE connected_accounts
		SET access_token = $1,
			expires_at = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND access_token = $4
	`
	result, err := r.db.ExecContext(ctx, query, accessToken, expiresAt, accountID, oldAccessToken)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("token already refreshed by a concurrent writer")
		return errors.New("token already refreshed by a concurrent writer")
	}
	return nil
}

func (r *connectedAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM connected_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
