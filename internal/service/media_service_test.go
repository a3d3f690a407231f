package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

func newTestMediaService(bucket string) *mediaService {
	cfg := config.Config{R2: config.R2{BucketName: bucket, AccountID: "acct"}}
	return NewMediaService(cfg, nil).(*mediaService)
}

func TestStoragePathFromURL(t *testing.T) {
	s := newTestMediaService("media")

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "bucket in path",
			url:  "https://acct.r2.cloudflarestorage.com/media/7/abc.mp4",
			want: "7/abc.mp4",
		},
		{
			name: "nested key",
			url:  "https://cdn.example.com/media/7/nested/dir/abc.jpg",
			want: "7/nested/dir/abc.jpg",
		},
		{
			name:    "no bucket segment",
			url:     "https://cdn.example.com/files/abc.mp4",
			wantErr: true,
		},
		{
			name:    "bucket is last segment",
			url:     "https://cdn.example.com/media",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.StoragePathFromURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrMediaPathUnresolvable) {
					t.Fatalf("expected ErrMediaPathUnresolvable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("StoragePathFromURL: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFallsBackToPublicURL(t *testing.T) {
	payload := []byte("video bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	s := newTestMediaService("media")

	// No storage path and no bucket segment in the URL, so the only
	// route left is the plain HTTP fetch.
	asset := &models.MediaAsset{FileURL: server.URL + "/video.mp4"}

	data, err := s.Resolve(context.Background(), asset)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("got %q want %q", data, payload)
	}
}

func TestResolveFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestMediaService("media")
	asset := &models.MediaAsset{FileURL: server.URL + "/missing.mp4"}

	_, err := s.Resolve(context.Background(), asset)
	if !errors.Is(err, ErrMediaFetchFailed) {
		t.Fatalf("expected ErrMediaFetchFailed, got %v", err)
	}
}
