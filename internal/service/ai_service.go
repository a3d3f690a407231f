package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

const geminiGenerateURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

type AIService interface {
	Generate(ctx context.Context, userID int64, request *transfer.GenerateRequest) (*transfer.GenerateResult, error)
}

type aiService struct {
	cfg        config.Config
	vp         repository.VoiceProfileRepository
	httpClient *http.Client
	// generateURL is overridable so tests can point at a local server.
	generateURL string
}

func NewAIService(cfg config.Config, vp repository.VoiceProfileRepository) AIService {
	return &aiService{
		cfg:         cfg,
		vp:          vp,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		generateURL: geminiGenerateURL,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *aiService) Generate(ctx context.Context, userID int64, request *transfer.GenerateRequest) (*transfer.GenerateResult, error) {
	if s.cfg.GeminiAPIKey == "" {
		return nil, errors.New("AI generation is not configured")
	}

	var profile *models.VoiceProfile
	if request.VoiceProfileID != 0 {
		var err error
		profile, err = s.vp.GetByID(ctx, request.VoiceProfileID, userID)
		if err != nil {
			return nil, err
		}
	}

	prompt := buildPrompt(request, profile)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.generateURL, bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.cfg.GeminiAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("generation request returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("generation request failed with status %d", resp.StatusCode)
	}

	var generated geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("generation returned no candidates")
	}

	return parseGenerated(generated.Candidates[0].Content.Parts[0].Text, request.ContentType), nil
}

func buildPrompt(request *transfer.GenerateRequest, profile *models.VoiceProfile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You are a social media content expert for %s.\n", request.Platform))

	switch request.Platform {
	case models.PlatformYoutube:
		b.WriteString("Titles must be under 100 characters and optimized for search. Tags are plain keywords without the # symbol.\n")
	case models.PlatformInstagram:
		b.WriteString("Captions should be engaging with a hook in the first line. Hashtags start with # and mix broad and niche terms.\n")
	case models.PlatformTiktok:
		b.WriteString("Keep text short and punchy. Hashtags start with # and lean on current trends.\n")
	}

	if profile != nil {
		b.WriteString("Voice profile:\n")
		if len(profile.ToneStyle) > 0 {
			b.WriteString(fmt.Sprintf("- Tone: %s\n", strings.Join(profile.ToneStyle, ", ")))
		}
		if profile.EmojiUsage != "" {
			b.WriteString(fmt.Sprintf("- Emoji usage: %s\n", profile.EmojiUsage))
		}
		if len(profile.LanguageStyle) > 0 {
			b.WriteString(fmt.Sprintf("- Language style: %s\n", strings.Join(profile.LanguageStyle, ", ")))
		}
		if profile.IncludeSlang {
			b.WriteString("- Casual slang is welcome\n")
		}
		if profile.AvoidCringeHashtags {
			b.WriteString("- Avoid overused or cringe hashtags\n")
		}
		if profile.UseTrendingHashtags {
			b.WriteString("- Prefer trending hashtags\n")
		}
		if profile.IncludeArtistName {
			b.WriteString("- Mention the creator's name where natural\n")
		}
	}

	b.WriteString("\nSource material:\n")
	if request.VideoTitle != "" {
		b.WriteString(fmt.Sprintf("Title: %s\n", request.VideoTitle))
	}
	if request.VideoDesc != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", request.VideoDesc))
	}
	if len(request.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(request.Keywords, ", ")))
	}

	switch request.ContentType {
	case "title":
		b.WriteString("\nGenerate 5 title options. Respond with JSON: {\"titles\": [...]}")
	case "description":
		b.WriteString("\nGenerate 3 description options. Respond with JSON: {\"descriptions\": [...]}")
	case "hashtags":
		b.WriteString("\nGenerate 15 hashtags. Respond with JSON: {\"hashtags\": [...]}")
	case "tags":
		b.WriteString("\nGenerate 15 tags. Respond with JSON: {\"tags\": [...]}")
	default:
		b.WriteString("\nGenerate 5 titles, 3 descriptions, 15 hashtags and 15 tags. Respond with JSON: {\"titles\": [...], \"descriptions\": [...], \"hashtags\": [...], \"tags\": [...]}")
	}

	return b.String()
}

// parseGenerated tries the structured JSON the prompt asks for, after
// stripping a markdown code fence if the model wrapped its answer in
// one. When the output is not valid JSON, plain lines are salvaged
// into the requested field instead of failing the request.
func parseGenerated(text, contentType string) *transfer.GenerateResult {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var result transfer.GenerateResult
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return &result
	}

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	switch contentType {
	case "description":
		result.Descriptions = lines
	case "hashtags":
		result.Hashtags = lines
	case "tags":
		result.Tags = lines
	default:
		result.Titles = lines
	}
	return &result
}
