package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
)

type MediaService interface {
	MediaResolver
	Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]*models.MediaAsset, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	Delete(ctx context.Context, userID, assetID int64) error
}

type mediaService struct {
	cfg        config.Config
	ma         repository.MediaAssetRepository
	httpClient *http.Client
}

func NewMediaService(cfg config.Config, ma repository.MediaAssetRepository) MediaService {
	return &mediaService{
		cfg:        cfg,
		ma:         ma,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (s *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.R2.AccessKey, s.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.cfg.R2.AccountID))
	}), nil
}

// Resolve returns the asset bytes. Assets carry a canonical storage
// path since upload; for older rows the path is derived from the
// public URL, and a plain HTTP fetch is the last resort.
func (s *mediaService) Resolve(ctx context.Context, asset *models.MediaAsset) ([]byte, error) {
	key := asset.StoragePath
	if key == "" {
		derived, err := s.StoragePathFromURL(asset.FileURL)
		if err == nil {
			key = derived
		}
	}

	if key != "" {
		return s.downloadFromBucket(ctx, key)
	}
	return s.fetchFromURL(ctx, asset.FileURL)
}

func (s *mediaService) downloadFromBucket(ctx context.Context, key string) ([]byte, error) {
	client, err := s.r2Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaDownloadFailed, err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.R2.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMediaDownloadFailed, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMediaDownloadFailed, err)
	}
	return data, nil
}

func (s *mediaService) fetchFromURL(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMediaFetchFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMediaFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Info("media fetch returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrMediaFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMediaFetchFailed, err)
	}
	return data, nil
}

// StoragePathFromURL reconstructs the object key from a public URL by
// locating the bucket-name path segment. Only used for rows written
// before storage_path existed; new uploads persist the key directly.
func (s *mediaService) StoragePathFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaPathUnresolvable, err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, part := range parts {
		if part == s.cfg.R2.BucketName && i < len(parts)-1 {
			return strings.Join(parts[i+1:], "/"), nil
		}
	}
	return "", ErrMediaPathUnresolvable
}

var allowedExtensions = map[string]string{
	"mp4":  models.MediaTypeVideo,
	"mov":  models.MediaTypeVideo,
	"jpg":  models.MediaTypeImage,
	"jpeg": models.MediaTypeImage,
	"png":  models.MediaTypeImage,
}

func (s *mediaService) Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]*models.MediaAsset, error) {
	if len(files) == 0 {
		return nil, errors.New("no files provided")
	}

	client, err := s.r2Client(ctx)
	if err != nil {
		return nil, err
	}

	var assets []*models.MediaAsset
	for _, file := range files {
		content, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}

		fileBytes, err := io.ReadAll(content)
		content.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %w", err)
		}

		kind, err := filetype.Match(fileBytes)
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("unable to detect file type: %w", err)
		}

		mediaType, ok := allowedExtensions[kind.Extension]
		if !ok {
			return nil, fmt.Errorf("unsupported file type: %s", kind.Extension)
		}

		suffix, err := gonanoid.New(12)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%d/%s.%s", userID, suffix, kind.Extension)

		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.R2.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(fileBytes),
			ContentType: aws.String(kind.MIME.Value),
		})
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("error uploading file to storage: %w", err)
		}

		asset := &models.MediaAsset{
			UserID:      userID,
			FileName:    file.Filename,
			FileType:    mediaType,
			FileSize:    int64(len(fileBytes)),
			FileURL:     fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", s.cfg.R2.AccountID, s.cfg.R2.BucketName, key),
			StoragePath: key,
		}

		id, err := s.ma.Create(ctx, nil, asset)
		if err != nil {
			return nil, err
		}
		asset.ID = id
		assets = append(assets, asset)
	}

	return assets, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return s.ma.ListByUserID(ctx, userID)
}

// Delete removes the stored object and the row. Posts referencing the
// asset keep their media ids; the reference simply dangles, matching
// the no-cascade model.
func (s *mediaService) Delete(ctx context.Context, userID, assetID int64) error {
	asset, err := s.ma.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil || asset.UserID != userID {
		return errors.New("media asset not found")
	}

	key := asset.StoragePath
	if key == "" {
		key, err = s.StoragePathFromURL(asset.FileURL)
		if err != nil {
			slog.Info("skipping object deletion", "reason", err.Error())
			key = ""
		}
	}

	if key != "" {
		client, err := s.r2Client(ctx)
		if err != nil {
			return err
		}
		_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.R2.BucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			slog.Info(err.Error())
		}
	}

	return s.ma.Remove(ctx, assetID)
}
