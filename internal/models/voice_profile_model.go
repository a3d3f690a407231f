package models

import "time"

// VoiceProfile is a user-defined tone/style configuration consumed by
// the AI content generator.
type VoiceProfile struct {
	ID                  int64     `db:"id" json:"id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	Name                string    `db:"name" json:"name"`
	ToneStyle           []string  `db:"tone_style" json:"tone_style"`
	EmojiUsage          string    `db:"emoji_usage" json:"emoji_usage"`
	LanguageStyle       []string  `db:"language_style" json:"language_style"`
	IncludeSlang        bool      `db:"include_slang" json:"include_slang"`
	AvoidCringeHashtags bool      `db:"avoid_cringe_hashtags" json:"avoid_cringe_hashtags"`
	UseTrendingHashtags bool      `db:"use_trending_hashtags" json:"use_trending_hashtags"`
	IncludeArtistName   bool      `db:"include_artist_name" json:"include_artist_name"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
