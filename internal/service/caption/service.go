// Package caption analyzes uploaded photos through an OpenAI-compatible
// vision endpoint and stores the result for the interview to draw on.
package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/config"
	"github.com/photorabbit/backend/internal/model/photo"
	"github.com/photorabbit/backend/internal/store"
)

const systemPrompt = `You describe pet photos for a storybook app.
Respond with strict JSON only, no prose, matching:
{"scene_summary": string, "subject_type": string, "subject_mood": string, "notable_details": [string]}`

// Service captions photos and persists the analyses.
type Service struct {
	client *openai.Client
	model  string
	photos store.PhotoStore
	logger chainlog.Logger
}

// NewService builds a captioning service from config. The caller decides
// whether captioning is enabled before constructing it.
func NewService(cfg config.CaptionConfig, photos store.PhotoStore, logger chainlog.Logger) *Service {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Service{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		photos: photos,
		logger: chainlog.OrNop(logger),
	}
}

type captionPayload struct {
	SceneSummary   string   `json:"scene_summary"`
	SubjectType    string   `json:"subject_type"`
	SubjectMood    string   `json:"subject_mood"`
	NotableDetails []string `json:"notable_details"`
}

// Analyze captions one photo and saves the analysis for the project.
func (s *Service) Analyze(ctx context.Context, projectID, imageURL string) (photo.Analysis, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Describe this photo."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	})
	if err != nil {
		return photo.Analysis{}, fmt.Errorf("caption request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return photo.Analysis{}, fmt.Errorf("caption request: empty response")
	}

	payload, err := parsePayload(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Event("caption", "unparseable response", map[string]any{
			"project": projectID,
			"error":   err.Error(),
		})
		return photo.Analysis{}, err
	}

	saved, err := s.photos.SaveAnalysis(ctx, photo.Analysis{
		ProjectID:      projectID,
		SceneSummary:   payload.SceneSummary,
		SubjectType:    payload.SubjectType,
		SubjectMood:    payload.SubjectMood,
		NotableDetails: payload.NotableDetails,
	})
	if err != nil {
		return photo.Analysis{}, fmt.Errorf("save analysis: %w", err)
	}
	return saved, nil
}

// parsePayload tolerates a fenced code block around the JSON, which some
// models emit despite the strict-JSON instruction.
func parsePayload(content string) (captionPayload, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var payload captionPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return captionPayload{}, fmt.Errorf("parse caption payload: %w", err)
	}
	return payload, nil
}
