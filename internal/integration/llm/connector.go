package llm

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/config"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Connector wraps the OpenAI chat completion API
type Connector struct {
	config config.OpenAIConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config: cfg,
		client: openai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

// Complete sends a single-turn chat completion request and returns the raw model output
func (c *Connector) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctxzap.Info(ctx, "requesting completion",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(userPrompt)),
	)

	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("invalid completion response: no choices returned")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("invalid completion response: empty content")
	}

	ctxzap.Info(ctx, "completion received", zap.Int("result_length", len(content)))

	return content, nil
}
