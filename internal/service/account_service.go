package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/pkg/utils"
)

const (
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	tiktokAuthURL = "https://www.tiktok.com/v2/auth/authorize/"
	igAuthURL     = "https://www.instagram.com/oauth/authorize"
)

type AccountService interface {
	GetAuthURL(platform, state string) (string, error)
	List(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	cfg config.Config
	sa  repository.ConnectedAccountRepository
}

func NewAccountService(cfg config.Config, sa repository.ConnectedAccountRepository) AccountService {
	return &accountService{cfg: cfg, sa: sa}
}

// GetAuthURL builds the provider consent URL. The state parameter is
// the caller's session token; the callback validates it to attribute
// the account.
func (s *accountService) GetAuthURL(platform, state string) (string, error) {
	switch platform {
	case models.PlatformYoutube:
		params := url.Values{}
		params.Add("client_id", s.cfg.GoogleClientID)
		params.Add("redirect_uri", s.cfg.GoogleRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", strings.Join(youtubeScopes, " "))
		// offline access plus forced consent, so Google always returns
		// a refresh token even on reconnects.
		params.Add("access_type", "offline")
		params.Add("prompt", "consent")
		params.Add("state", state)
		return googleAuthURL + "?" + params.Encode(), nil

	case models.PlatformTiktok:
		params := url.Values{}
		params.Add("client_key", s.cfg.TiktokClientKey)
		params.Add("redirect_uri", s.cfg.TiktokRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", "user.info.basic,video.publish,video.upload")
		params.Add("state", state)
		return tiktokAuthURL + "?" + params.Encode(), nil

	case models.PlatformInstagram:
		params := url.Values{}
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		params.Add("state", state)
		return igAuthURL + "?" + params.Encode(), nil

	default:
		return "", fmt.Errorf("unsupported platform %s", platform)
	}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	return s.sa.ListInfoByUserID(ctx, userID)
}

// Delete revokes provider access where a revoke endpoint exists, then
// removes the row. Revocation failures are logged and skipped so a
// dead token never blocks disconnection.
func (s *accountService) Delete(ctx context.Context, userID, accountID int64) error {
	exists, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("connected account not found")
	}

	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return errors.New("connected account not found")
	}

	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err == nil {
		switch acc.Platform {
		case models.PlatformYoutube:
			if err := RevokeGoogleAccess(accessToken); err != nil {
				slog.Info(err.Error())
			}
		case models.PlatformTiktok:
			if err := RevokeTiktokAccess(s.cfg.TiktokClientKey, s.cfg.TiktokClientSecret, accessToken); err != nil {
				slog.Info(err.Error())
			}
		}
	} else {
		slog.Info(err.Error())
	}

	return s.sa.Remove(ctx, accountID)
}
