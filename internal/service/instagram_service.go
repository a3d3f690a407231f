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

const (
	instagramShortTokenURL = "https://api.instagram.com/oauth/access_token"
	instagramLongTokenURL  = "https://graph.instagram.com/access_token"
	instagramUserInfoURL   = "https://graph.instagram.com/v21.0/me?fields=id,username,name"
)

type InstagramService interface {
	Callback(ctx context.Context, code string, userID int64) error
	PlatformPublisher
}

type instagramService struct {
	cfg        config.Config
	sa         repository.ConnectedAccountRepository
	httpClient *http.Client
}

func NewInstagramService(cfg config.Config, sa repository.ConnectedAccountRepository) InstagramService {
	return &instagramService{
		cfg:        cfg,
		sa:         sa,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Simulated: the content publishing API integration is not built yet;
// Publish records a placeholder instead of calling the Graph API.
func (s *instagramService) Simulated() bool { return true }

// Callback exchanges the code for a short-lived token, trades it for a
// long-lived one, and upserts the connected account. The long-lived
// token doubles as the refresh token since Instagram refreshes tokens
// in place.
func (s *instagramService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	shortLived, err := s.exchangeCode(ctx, code)
	if err != nil {
		return err
	}

	longLived, err := s.exchangeLongLived(ctx, shortLived.AccessToken)
	if err != nil {
		return err
	}

	userInfo, err := s.fetchUserInfo(ctx, longLived.AccessToken)
	if err != nil {
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(longLived.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	expiresAt := GetExpiresAt(longLived.ExpiresIn)
	accountInfo := &models.ConnectedAccount{
		UserID:       userID,
		Platform:     models.PlatformInstagram,
		AccountID:    userInfo.UserID,
		AccountName:  userInfo.Username,
		AccessToken:  encryptedToken,
		RefreshToken: encryptedToken,
		ExpiresAt:    &expiresAt,
	}

	_, err = s.sa.Upsert(ctx, accountInfo)
	return err
}

func (s *instagramService) exchangeCode(ctx context.Context, code string) (*transfer.InstagramTokenResponse, error) {
	data := url.Values{}
	data.Add("client_id", s.cfg.InstagramClientID)
	data.Add("client_secret", s.cfg.InstagramClientSecret)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.InstagramRedirectURI)
	data.Add("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, instagramShortTokenURL, strings.NewReader(data.Encode()))
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

	var tokens transfer.InstagramTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("token exchange returned no access token")
	}
	return &tokens, nil
}

func (s *instagramService) exchangeLongLived(ctx context.Context, shortLivedToken string) (*transfer.InstagramTokenResponse, error) {
	exchange := fmt.Sprintf("%s?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		instagramLongTokenURL, s.cfg.InstagramClientSecret, shortLivedToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("long-lived token exchange returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("long-lived token exchange failed with status %d", resp.StatusCode)
	}

	var tokens transfer.InstagramTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &tokens, nil
}

func (s *instagramService) fetchUserInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instagramUserInfoURL, nil)
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

	if resp.StatusCode != http.StatusOK {
		slog.Info("user info request returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var userInfo transfer.InstagramUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

// Publish records a pending placeholder. The real Graph API container
// flow slots in here once the integration is approved.
func (s *instagramService) Publish(ctx context.Context, acc *models.ConnectedAccount, post *models.Post, media []byte, scheduledFor *time.Time) (*PublishOutcome, error) {
	return &PublishOutcome{
		PlatformPostID: fmt.Sprintf("ig_%d", time.Now().Unix()),
		Status:         models.PlatformPostStatusPending,
	}, nil
}
