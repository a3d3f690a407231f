package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type recordingAccountRepo struct {
	setTokenCalls int
	lastAccess    string
	lastExpires   time.Time
}

func (r *recordingAccountRepo) Upsert(ctx context.Context, acc *models.ConnectedAccount) (int64, error) {
	return 0, nil
}

func (r *recordingAccountRepo) GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *recordingAccountRepo) GetActive(ctx context.Context, userID int64, platform string) (*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *recordingAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *recordingAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *recordingAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return false, nil
}

func (r *recordingAccountRepo) SetToken(ctx context.Context, accountID int64, oldAccessToken, accessToken string, expiresAt time.Time) error {
	r.setTokenCalls++
	r.lastAccess = accessToken
	r.lastExpires = expiresAt
	return nil
}

func (r *recordingAccountRepo) Remove(ctx context.Context, id int64) error { return nil }

func mustEncrypt(t *testing.T, plaintext string) string {
	t.Helper()
	encrypted, err := utils.Encrypt([]byte(plaintext), []byte(testSecretKey))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return encrypted
}

func testAccount(t *testing.T, expiresAt time.Time, refreshToken string) *models.ConnectedAccount {
	t.Helper()
	acc := &models.ConnectedAccount{
		ID:          1,
		UserID:      7,
		Platform:    models.PlatformYoutube,
		AccessToken: mustEncrypt(t, "stored-token"),
		ExpiresAt:   &expiresAt,
	}
	if refreshToken != "" {
		acc.RefreshToken = mustEncrypt(t, refreshToken)
	}
	return acc
}

func TestGetValidAccessTokenReturnsStoredToken(t *testing.T) {
	cfg := config.Config{SecretKey: testSecretKey}
	repo := &recordingAccountRepo{}
	ts := NewTokenService(cfg, repo)

	acc := testAccount(t, time.Now().Add(time.Hour), "refresh")

	token, err := ts.GetValidAccessToken(context.Background(), acc)
	if err != nil {
		t.Fatalf("GetValidAccessToken: %v", err)
	}
	if token != "stored-token" {
		t.Fatalf("expected stored token, got %q", token)
	}
	if repo.setTokenCalls != 0 {
		t.Fatal("no refresh should happen for a valid token")
	}
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	cfg := config.Config{SecretKey: testSecretKey}
	ts := NewTokenService(cfg, &recordingAccountRepo{})

	acc := testAccount(t, time.Now().Add(-time.Hour), "")

	_, err := ts.GetValidAccessToken(context.Background(), acc)
	if !errors.Is(err, ErrTokenRefreshUnavailable) {
		t.Fatalf("expected ErrTokenRefreshUnavailable, got %v", err)
	}
}

func TestRefreshPersistsNewToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("unexpected grant_type %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "refresh-plain" {
			t.Errorf("unexpected refresh_token %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-token","expires_in":7200}`))
	}))
	defer server.Close()

	cfg := config.Config{SecretKey: testSecretKey, GoogleClientID: "cid", GoogleClientSecret: "cs"}
	repo := &recordingAccountRepo{}
	ts := NewTokenService(cfg, repo).(*tokenService)
	ts.endpoints[models.PlatformYoutube] = server.URL

	acc := testAccount(t, time.Now().Add(-time.Hour), "refresh-plain")

	token, err := ts.GetValidAccessToken(context.Background(), acc)
	if err != nil {
		t.Fatalf("GetValidAccessToken: %v", err)
	}
	if token != "new-token" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if repo.setTokenCalls != 1 {
		t.Fatalf("expected one SetToken call, got %d", repo.setTokenCalls)
	}

	persisted, err := utils.Decrypt(repo.lastAccess, []byte(testSecretKey))
	if err != nil {
		t.Fatalf("Decrypt persisted token: %v", err)
	}
	if persisted != "new-token" {
		t.Fatalf("persisted token mismatch: %q", persisted)
	}
	if !repo.lastExpires.After(time.Now().Add(time.Hour)) {
		t.Fatalf("expected expiry past one hour, got %v", repo.lastExpires)
	}
	if acc.ExpiresAt == nil || !acc.ExpiresAt.After(time.Now()) {
		t.Fatal("account expiry was not updated in memory")
	}
}

func TestRefreshRejectedByProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	cfg := config.Config{SecretKey: testSecretKey, GoogleClientID: "cid", GoogleClientSecret: "cs"}
	repo := &recordingAccountRepo{}
	ts := NewTokenService(cfg, repo).(*tokenService)
	ts.endpoints[models.PlatformYoutube] = server.URL

	acc := testAccount(t, time.Now().Add(-time.Hour), "refresh-plain")

	_, err := ts.GetValidAccessToken(context.Background(), acc)
	if !errors.Is(err, ErrTokenRefreshFailed) {
		t.Fatalf("expected ErrTokenRefreshFailed, got %v", err)
	}
	if repo.setTokenCalls != 0 {
		t.Fatal("failed refresh must not persist a token")
	}
}

func TestRefreshDefaultsExpiryToOneHour(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-token"}`))
	}))
	defer server.Close()

	cfg := config.Config{SecretKey: testSecretKey, GoogleClientID: "cid", GoogleClientSecret: "cs"}
	repo := &recordingAccountRepo{}
	ts := NewTokenService(cfg, repo).(*tokenService)
	ts.endpoints[models.PlatformYoutube] = server.URL

	acc := testAccount(t, time.Now().Add(-time.Hour), "refresh-plain")

	if _, err := ts.GetValidAccessToken(context.Background(), acc); err != nil {
		t.Fatalf("GetValidAccessToken: %v", err)
	}

	min := time.Now().Add(55 * time.Minute)
	max := time.Now().Add(65 * time.Minute)
	if repo.lastExpires.Before(min) || repo.lastExpires.After(max) {
		t.Fatalf("expected expiry around one hour out, got %v", repo.lastExpires)
	}
}
