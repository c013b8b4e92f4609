package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chat-ai-api/internal/config"
)

// systemPrompt is the fixed instruction sent with every completion request.
const systemPrompt = "You are a helpful AI assistant. Answer the user's question clearly and concisely."

// Service wraps the completion provider behind a compiled prompt chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the completion service from the configured model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Complete generates a reply for the user's message. The raw model text is
// returned as-is; callers decide what to do with an empty candidate.
func (s *Service) Complete(ctx context.Context, message string) (string, error) {
	input := map[string]any{
		"system": systemPrompt,
		"query":  message,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run completion chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}
