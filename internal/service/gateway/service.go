// Package gateway implements the upstream interview completion endpoint: an
// eino chain that streams the interviewer's next reply.
package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/config"
	"github.com/photorabbit/backend/internal/model/interview"
)

// Message is one transcript entry as submitted by the streaming client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the wire shape accepted by the completion endpoint.
type CompletionRequest struct {
	Messages          []Message `json:"messages"`
	PetName           string    `json:"petName"`
	PetType           string    `json:"petType"`
	UserMessageCount  int       `json:"userMessageCount"`
	PhotoCaptions     []string  `json:"photoCaptions,omitempty"`
	PhotoContextBrief string    `json:"photoContextBrief,omitempty"`
}

// Service drives interview completions through a compiled eino chain.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger chainlog.Logger
}

// NewService compiles the interview chain against the configured ark model.
func NewService(ctx context.Context, cfg config.AIConfig, logger chainlog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile interview chain: %w", err)
	}

	return &Service{chain: runnable, logger: chainlog.OrNop(logger)}, nil
}

// Stream produces the interviewer's next reply as a delta stream.
func (s *Service) Stream(ctx context.Context, req CompletionRequest) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, s.buildChainInput(req))
	if err != nil {
		return nil, fmt.Errorf("stream interview chain: %w", err)
	}

	s.logger.Event("gateway", "stream opened", map[string]any{
		"petName":   req.PetName,
		"userTurns": req.UserMessageCount,
	})
	return stream, nil
}

func (s *Service) buildChainInput(req CompletionRequest) map[string]any {
	query := ""
	msgs := req.Messages
	if n := len(msgs); n > 0 && msgs[n-1].Role == interview.RoleUser {
		query = msgs[n-1].Content
		msgs = msgs[:n-1]
	}

	history := make([]*schema.Message, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case interview.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case interview.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  buildSystemPrompt(req),
		"history": history,
		"query":   query,
	}
}
