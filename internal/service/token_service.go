package service

import (
	"context"
	"encoding/json"
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
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	tiktokTokenURL    = "https://open.tiktokapis.com/v2/oauth/token/"
	instagramTokenURL = "https://graph.instagram.com/refresh_access_token"
)

type TokenService interface {
	// GetValidAccessToken returns a usable plaintext access token for
	// the account, refreshing it first if the stored one has expired.
	GetValidAccessToken(ctx context.Context, acc *models.ConnectedAccount) (string, error)
	// Refresh forces a refresh regardless of the stored expiry.
	Refresh(ctx context.Context, acc *models.ConnectedAccount) (string, error)
}

type tokenService struct {
	cfg        config.Config
	sa         repository.ConnectedAccountRepository
	httpClient *http.Client
	endpoints  map[string]string
}

func NewTokenService(cfg config.Config, sa repository.ConnectedAccountRepository) TokenService {
	return &tokenService{
		cfg:        cfg,
		sa:         sa,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoints: map[string]string{
			models.PlatformYoutube:   googleTokenURL,
			models.PlatformTiktok:    tiktokTokenURL,
			models.PlatformInstagram: instagramTokenURL,
		},
	}
}

func (s *tokenService) GetValidAccessToken(ctx context.Context, acc *models.ConnectedAccount) (string, error) {
	if acc.ExpiresAt == nil || acc.ExpiresAt.After(time.Now()) {
		return utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	}
	return s.Refresh(ctx, acc)
}

func (s *tokenService) Refresh(ctx context.Context, acc *models.ConnectedAccount) (string, error) {
	if acc.RefreshToken == "" {
		slog.Info("refresh requested but no refresh token stored", "account_id", acc.ID, "platform", acc.Platform)
		return "", ErrTokenRefreshUnavailable
	}

	endpoint, ok := s.endpoints[acc.Platform]
	if !ok {
		return "", fmt.Errorf("no token endpoint for platform %s", acc.Platform)
	}

	data, err := s.refreshGrant(acc)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Info("token endpoint returned non-success status", "status", resp.StatusCode, "platform", acc.Platform)
		return "", fmt.Errorf("%w: status %d", ErrTokenRefreshFailed, resp.StatusCode)
	}

	var tokens transfer.OAuthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
	}
	if tokens.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrTokenRefreshFailed)
	}

	expiresIn := tokens.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	expiresAt := GetExpiresAt(expiresIn)

	encrypted, err := utils.Encrypt([]byte(tokens.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	if err := s.sa.SetToken(ctx, acc.ID, acc.AccessToken, encrypted, expiresAt); err != nil {
		return "", err
	}

	acc.AccessToken = encrypted
	acc.ExpiresAt = &expiresAt

	return tokens.AccessToken, nil
}

// refreshGrant builds the provider-specific refresh form. The redirect
// URI is deliberately absent: the refresh_token grant does not use it.
func (s *tokenService) refreshGrant(acc *models.ConnectedAccount) (url.Values, error) {
	data := url.Values{}

	switch acc.Platform {
	case models.PlatformYoutube:
		refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		data.Add("grant_type", "refresh_token")
		data.Add("refresh_token", refreshToken)
		data.Add("client_id", s.cfg.GoogleClientID)
		data.Add("client_secret", s.cfg.GoogleClientSecret)

	case models.PlatformTiktok:
		refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		data.Add("grant_type", "refresh_token")
		data.Add("refresh_token", refreshToken)
		data.Add("client_key", s.cfg.TiktokClientKey)
		data.Add("client_secret", s.cfg.TiktokClientSecret)

	case models.PlatformInstagram:
		// Instagram long-lived tokens refresh themselves; the stored
		// refresh token is the long-lived token.
		token, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		data.Add("grant_type", "ig_refresh_token")
		data.Add("access_token", token)

	default:
		return nil, fmt.Errorf("unsupported platform %s", acc.Platform)
	}

	return data, nil
}
