package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/pkg/utils"
)

const tiktokUserInfoURL = "https://open.tiktokapis.com/v2/user/info/?fields=open_id,avatar_url,display_name,username"

type TiktokService interface {
	Callback(ctx context.Context, code string, userID int64) error
	PlatformPublisher
}

type tiktokService struct {
	cfg        config.Config
	sa         repository.ConnectedAccountRepository
	httpClient *http.Client
}

func NewTiktokService(cfg config.Config, sa repository.ConnectedAccountRepository) TiktokService {
	return &tiktokService{
		cfg:        cfg,
		sa:         sa,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Simulated: the content posting API integration is not built yet;
// Publish records a placeholder instead of calling TikTok.
func (s *tiktokService) Simulated() bool { return true }

func (s *tiktokService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	tokens, err := s.exchangeCode(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.fetchUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokens.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokens.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	expiresAt := GetExpiresAt(tokens.ExpiresIn)
	accountInfo := &models.ConnectedAccount{
		UserID:       userID,
		Platform:     models.PlatformTiktok,
		AccountID:    userInfo.OpenID,
		AccountName:  userInfo.DisplayName,
		AccessToken:  encryptedAccessToken,
		RefreshToken: encryptedRefreshToken,
		ExpiresAt:    &expiresAt,
	}

	_, err = s.sa.Upsert(ctx, accountInfo)
	return err
}

func (s *tiktokService) exchangeCode(ctx context.Context, code string) (*transfer.TiktokTokenResponse, error) {
	data := url.Values{}
	data.Add("client_key", s.cfg.TiktokClientKey)
	data.Add("client_secret", s.cfg.TiktokClientSecret)
	data.Add("code", code)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.TiktokRedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("token exchange returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	var tokens transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("token exchange returned no access token")
	}
	return &tokens, nil
}

func (s *tiktokService) fetchUserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tiktokUserInfoURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var body transfer.TikTokResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if body.Error.Code != "" && body.Error.Code != "ok" {
		return nil, fmt.Errorf("user info request failed: %s", body.Error.Message)
	}
	return &body.Data.User, nil
}

// Publish records a pending placeholder. The real content posting API
// call slots in here once the integration is approved.
func (s *tiktokService) Publish(ctx context.Context, acc *models.ConnectedAccount, post *models.Post, media []byte, scheduledFor *time.Time) (*PublishOutcome, error) {
	return &PublishOutcome{
		PlatformPostID: fmt.Sprintf("tt_%d", time.Now().Unix()),
		Status:         models.PlatformPostStatusPending,
	}, nil
}
