package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/pkg/utils"
)

const youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
	"https://www.googleapis.com/auth/yt-analytics.readonly",
}

type YoutubeService interface {
	Callback(ctx context.Context, code string, userID int64) error
	PlatformPublisher
}

type youtubeService struct {
	cfg        config.Config
	sa         repository.ConnectedAccountRepository
	ts         TokenService
	httpClient *http.Client
	uploadURL  string
	// apiEndpoint overrides the YouTube Data API base URL. Empty in
	// production; tests point it at a local server.
	apiEndpoint string
}

func NewYoutubeService(cfg config.Config, sa repository.ConnectedAccountRepository, ts TokenService) YoutubeService {
	return &youtubeService{
		cfg:        cfg,
		sa:         sa,
		ts:         ts,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		uploadURL:  youtubeUploadURL,
	}
}

func (s *youtubeService) Simulated() bool { return false }

func (s *youtubeService) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       youtubeScopes,
		Endpoint:     google.Endpoint,
	}
}

// Callback exchanges the authorization code, looks up the channel the
// account owns, and upserts the connected account.
func (s *youtubeService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	oauth2Config := s.oauth2Config()
	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	channelID, channelName, err := s.channelIdentity(ctx, token.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		// An account without a channel can still be connected; the
		// publisher rejects it at publish time with a clearer error.
		channelID = fmt.Sprintf("user_%d", userID)
		channelName = "YouTube Channel"
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	var encryptedRefreshToken string
	if token.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	expiry := token.Expiry
	accountInfo := &models.ConnectedAccount{
		UserID:       userID,
		Platform:     models.PlatformYoutube,
		AccountID:    channelID,
		AccountName:  channelName,
		AccessToken:  encryptedAccessToken,
		RefreshToken: encryptedRefreshToken,
		ExpiresAt:    &expiry,
	}

	_, err = s.sa.Upsert(ctx, accountInfo)
	return err
}

func (s *youtubeService) youtubeClient(ctx context.Context, accessToken string) (*youtube.Service, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.apiEndpoint))
	}
	return youtube.NewService(ctx, opts...)
}

func (s *youtubeService) channelIdentity(ctx context.Context, accessToken string) (id, name string, err error) {
	yt, err := s.youtubeClient(ctx, accessToken)
	if err != nil {
		return "", "", err
	}

	resp, err := yt.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", "", err
	}
	if len(resp.Items) == 0 {
		return "", "", ErrNoChannelProvisioned
	}
	return resp.Items[0].Id, resp.Items[0].Snippet.Title, nil
}

// Publish uploads the media through the resumable upload protocol:
// session init with metadata, then a single full-payload transfer.
// A non-nil scheduledFor makes the video private with a platform-side
// publish time, so the outcome stays pending until YouTube releases it.
func (s *youtubeService) Publish(ctx context.Context, acc *models.ConnectedAccount, post *models.Post, media []byte, scheduledFor *time.Time) (*PublishOutcome, error) {
	accessToken, err := s.ts.GetValidAccessToken(ctx, acc)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.channelIdentity(ctx, accessToken); err != nil {
		return nil, err
	}

	sessionURL, err := s.initUpload(ctx, accessToken, post, scheduledFor)
	if err != nil {
		return nil, err
	}

	videoID, err := s.transferUpload(ctx, sessionURL, media)
	if err != nil {
		return nil, err
	}

	status := models.PlatformPostStatusPublished
	if scheduledFor != nil {
		status = models.PlatformPostStatusPending
	}
	return &PublishOutcome{PlatformPostID: videoID, Status: status}, nil
}

func (s *youtubeService) initUpload(ctx context.Context, accessToken string, post *models.Post, scheduledFor *time.Time) (string, error) {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       post.Title,
			Description: post.Description,
			Tags:        post.Tags,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}
	if scheduledFor != nil {
		video.Status.PrivacyStatus = "private"
		video.Status.PublishAt = scheduledFor.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(video)
	if err != nil {
		return "", err
	}

	initURL := s.uploadURL + "?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, initURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrUploadInitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorText, _ := io.ReadAll(resp.Body)
		slog.Info("upload init returned non-success status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %s", ErrUploadInitFailed, string(errorText))
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", fmt.Errorf("%w: no upload URL received", ErrUploadInitFailed)
	}
	return sessionURL, nil
}

func (s *youtubeService) transferUpload(ctx context.Context, sessionURL string, media []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, bytes.NewReader(media))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "video/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrUploadTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorText, _ := io.ReadAll(resp.Body)
		slog.Info("upload transfer returned non-success status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %s", ErrUploadTransferFailed, string(errorText))
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrUploadTransferFailed, err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("%w: response carried no video id", ErrUploadTransferFailed)
	}
	return uploaded.ID, nil
}
