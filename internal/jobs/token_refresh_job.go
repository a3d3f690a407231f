package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

// TokenRefreshJob proactively refreshes access tokens that are expired
// or about to expire, so the queue rarely has to refresh inline.
type TokenRefreshJob struct {
	sa repository.ConnectedAccountRepository
	ts service.TokenService
}

func NewTokenRefreshJob(sa repository.ConnectedAccountRepository, ts service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sa: sa,
		ts: ts,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sa.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.ConnectedAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.ts.Refresh(ctx, acc); err != nil {
				slog.Info("unable to refresh token", "account_id", acc.ID, "platform", acc.Platform, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}
