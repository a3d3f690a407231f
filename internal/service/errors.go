package service

import "errors"

// Publishing pipeline failures. Each one is scoped to a single
// post/platform attempt; the queue processor records it and moves on.
var (
	ErrTokenRefreshUnavailable = errors.New("access token expired and no refresh token is stored")
	ErrTokenRefreshFailed      = errors.New("token refresh rejected by the provider")
	ErrMediaFetchFailed        = errors.New("media fetch from public URL failed")
	ErrMediaDownloadFailed     = errors.New("media download from storage failed")
	ErrMediaPathUnresolvable   = errors.New("could not extract storage path from media URL")
	ErrNoChannelProvisioned    = errors.New("account has no channel provisioned on the platform")
	ErrUploadInitFailed        = errors.New("upload session initialization failed")
	ErrUploadTransferFailed    = errors.New("upload transfer failed")
	ErrNoActiveAccount         = errors.New("no active connected account for platform")
)
