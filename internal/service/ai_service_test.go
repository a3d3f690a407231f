package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

type stubVoiceProfileRepo struct {
	profile *models.VoiceProfile
}

func (r *stubVoiceProfileRepo) Create(ctx context.Context, vp *models.VoiceProfile) (int64, error) {
	return 0, nil
}

func (r *stubVoiceProfileRepo) GetByID(ctx context.Context, id, userID int64) (*models.VoiceProfile, error) {
	return r.profile, nil
}

func (r *stubVoiceProfileRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.VoiceProfile, error) {
	return nil, nil
}

func (r *stubVoiceProfileRepo) Remove(ctx context.Context, id, userID int64) error { return nil }

func TestParseGeneratedFencedJSON(t *testing.T) {
	text := "```json\n{\"titles\":[\"First title\",\"Second title\"]}\n```"

	result := parseGenerated(text, "title")
	if len(result.Titles) != 2 || result.Titles[0] != "First title" {
		t.Fatalf("unexpected titles %v", result.Titles)
	}
}

func TestParseGeneratedPlainJSON(t *testing.T) {
	text := `{"hashtags":["#indie","#newmusic"],"tags":["indie","new music"]}`

	result := parseGenerated(text, "all")
	if len(result.Hashtags) != 2 || result.Hashtags[1] != "#newmusic" {
		t.Fatalf("unexpected hashtags %v", result.Hashtags)
	}
	if len(result.Tags) != 2 {
		t.Fatalf("unexpected tags %v", result.Tags)
	}
}

func TestParseGeneratedLineFallback(t *testing.T) {
	text := "1. First option\n2. Second option\n\n3. Third option"

	result := parseGenerated(text, "title")
	want := []string{"First option", "Second option", "Third option"}
	if len(result.Titles) != len(want) {
		t.Fatalf("unexpected titles %v", result.Titles)
	}
	for i := range want {
		if result.Titles[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q", i, result.Titles[i], want[i])
		}
	}
}

func TestParseGeneratedHashtagFallback(t *testing.T) {
	text := "- #one\n- #two"

	result := parseGenerated(text, "hashtags")
	if len(result.Hashtags) != 2 || result.Hashtags[0] != "#one" {
		t.Fatalf("unexpected hashtags %v", result.Hashtags)
	}
}

func TestBuildPromptIncludesVoiceProfile(t *testing.T) {
	request := &transfer.GenerateRequest{
		Platform:    models.PlatformYoutube,
		ContentType: "title",
		VideoTitle:  "Tour recap",
		Keywords:    []string{"live", "tour"},
	}
	profile := &models.VoiceProfile{
		ToneStyle:           []string{"casual", "energetic"},
		EmojiUsage:          "minimal",
		UseTrendingHashtags: true,
	}

	prompt := buildPrompt(request, profile)
	for _, want := range []string{"casual, energetic", "minimal", "trending hashtags", "Tour recap", "live, tour"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	s := NewAIService(config.Config{}, &stubVoiceProfileRepo{})

	_, err := s.Generate(context.Background(), 7, &transfer.GenerateRequest{Platform: models.PlatformYoutube})
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestGenerateCallsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "gemini-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"titles\":[\"Generated\"]}"}]}}]}`))
	}))
	defer server.Close()

	s := &aiService{
		cfg:         config.Config{GeminiAPIKey: "gemini-key"},
		vp:          &stubVoiceProfileRepo{},
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		generateURL: server.URL,
	}

	result, err := s.Generate(context.Background(), 7, &transfer.GenerateRequest{
		Platform:    models.PlatformYoutube,
		ContentType: "title",
		VideoTitle:  "Tour recap",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Titles) != 1 || result.Titles[0] != "Generated" {
		t.Fatalf("unexpected result %+v", result)
	}
}
