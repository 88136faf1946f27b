package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Message is one chat turn handed to the completion model.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer produces a text completion for a chat-style prompt.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type openAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewCompleter builds a Completer backed by an OpenAI-compatible endpoint.
func NewCompleter(cfg config.AIConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "ai.api_key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.CompletionModel,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *openAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New(errors.ErrCodeValidation, "no messages to complete")
	}
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeLLMUnavailable, "chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New(errors.ErrCodeLLMBadResponse, "completion returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}
