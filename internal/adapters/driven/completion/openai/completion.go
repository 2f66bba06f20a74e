// Package openai provides a completion service adapter using the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/custodia-labs/filings-cli/internal/adapters/driven/completion"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI completion service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService provides completions using the OpenAI Chat Completions API.
type CompletionService struct {
	client openai.Client
	model  string
}

// New creates a new OpenAI completion service.
func New(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	)
	return &CompletionService{client: client, model: cfg.Model}, nil
}

// Complete sends the history summary as a system message followed by prompt.
func (s *CompletionService) Complete(ctx context.Context, prompt, history string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if sys := completion.SystemContext(history); sys != "" {
		messages = append(messages, openai.SystemMessage(sys))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    messages,
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models without running inference.
func (s *CompletionService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *CompletionService) Close() error {
	return nil
}
