package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
)

type VoiceProfileService interface {
	Create(ctx context.Context, userID int64, profile *models.VoiceProfile) (int64, error)
	Get(ctx context.Context, userID, profileID int64) (*models.VoiceProfile, error)
	List(ctx context.Context, userID int64) ([]*models.VoiceProfile, error)
	Remove(ctx context.Context, userID, profileID int64) error
}

type voiceProfileService struct {
	vp repository.VoiceProfileRepository
}

func NewVoiceProfileService(vp repository.VoiceProfileRepository) VoiceProfileService {
	return &voiceProfileService{vp: vp}
}

func (s *voiceProfileService) Create(ctx context.Context, userID int64, profile *models.VoiceProfile) (int64, error) {
	if profile.Name == "" {
		err := errors.New("profile name is required")
		slog.Info(err.Error())
		return 0, err
	}

	profile.UserID = userID
	return s.vp.Create(ctx, profile)
}

func (s *voiceProfileService) Get(ctx context.Context, userID, profileID int64) (*models.VoiceProfile, error) {
	profile, err := s.vp.GetByID(ctx, profileID, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("voice profile not found")
	}
	return profile, nil
}

func (s *voiceProfileService) List(ctx context.Context, userID int64) ([]*models.VoiceProfile, error) {
	return s.vp.ListByUserID(ctx, userID)
}

func (s *voiceProfileService) Remove(ctx context.Context, userID, profileID int64) error {
	profile, err := s.vp.GetByID(ctx, profileID, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.New("voice profile not found")
	}
	return s.vp.Remove(ctx, profileID, userID)
}
