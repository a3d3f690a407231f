package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
)

type VoiceProfileRepository interface {
	Create(ctx context.Context, vp *models.VoiceProfile) (int64, error)
	GetByID(ctx context.Context, id, userID int64) (*models.VoiceProfile, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.VoiceProfile, error)
	Remove(ctx context.Context, id, userID int64) error
}

type voiceProfileRepository struct {
	db *sql.DB
}

func NewVoiceProfileRepository(db *sql.DB) VoiceProfileRepository {
	return &voiceProfileRepository{db: db}
}

const voiceProfileColumns = `id, user_id, name, tone_style, emoji_usage, language_style, include_slang, avoid_cringe_hashtags, use_trending_hashtags, include_artist_name, created_at`

func (r *voiceProfileRepository) Create(ctx context.Context, vp *models.VoiceProfile) (int64, error) {
	query := `
		INSERT INTO voice_profiles (user_id, name, tone_style, emoji_usage, language_style, include_slang, avoid_cringe_hashtags, use_trending_hashtags, include_artist_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		vp.UserID,
		vp.Name,
		pq.Array(vp.ToneStyle),
		vp.EmojiUsage,
		pq.Array(vp.LanguageStyle),
		vp.IncludeSlang,
		vp.AvoidCringeHashtags,
		vp.UseTrendingHashtags,
		vp.IncludeArtistName,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *voiceProfileRepository) GetByID(ctx context.Context, id, userID int64) (*models.VoiceProfile, error) {
	query := `SELECT ` + voiceProfileColumns + ` FROM voice_profiles WHERE id = $1 AND user_id = $2`

	var vp models.VoiceProfile
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&vp.ID,
		&vp.UserID,
		&vp.Name,
		pq.Array(&vp.ToneStyle),
		&vp.EmojiUsage,
		pq.Array(&vp.LanguageStyle),
		&vp.IncludeSlang,
		&vp.AvoidCringeHashtags,
		&vp.UseTrendingHashtags,
		&vp.IncludeArtistName,
		&vp.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &vp, nil
}

func (r *voiceProfileRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.VoiceProfile, error) {
	query := `SELECT ` + voiceProfileColumns + ` FROM voice_profiles WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.VoiceProfile
	for rows.Next() {
		var vp models.VoiceProfile
		err := rows.Scan(
			&vp.ID,
			&vp.UserID,
			&vp.Name,
			pq.Array(&vp.ToneStyle),
			&vp.EmojiUsage,
			pq.Array(&vp.LanguageStyle),
			&vp.IncludeSlang,
			&vp.AvoidCringeHashtags,
			&vp.UseTrendingHashtags,
			&vp.IncludeArtistName,
			&vp.CreatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, &vp)
	}
	return profiles, rows.Err()
}

func (r *voiceProfileRepository) Remove(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM voice_profiles WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
