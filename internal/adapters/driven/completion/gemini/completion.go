// Package gemini provides a completion service adapter using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/filings-cli/internal/adapters/driven/completion"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini completion service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string

	// Endpoint overrides the API endpoint. Empty uses the public endpoint.
	Endpoint string
}

// CompletionService provides completions using the Gemini API.
type CompletionService struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini completion service.
func New(ctx context.Context, cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &CompletionService{client: client, model: cfg.Model}, nil
}

// generativeModel returns a per-call model so system instructions never leak
// between concurrent requests.
func (s *CompletionService) generativeModel(history string) *genai.GenerativeModel {
	m := s.client.GenerativeModel(s.model)
	m.SetTemperature(0)
	if sys := completion.SystemContext(history); sys != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}
	}
	return m
}

// Complete generates a reply to prompt with history as the system instruction.
func (s *CompletionService) Complete(ctx context.Context, prompt, history string) (string, error) {
	resp, err := s.generativeModel(history).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini: no response content returned")
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// ModelName returns the name of the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates the key and model by counting tokens without running inference.
func (s *CompletionService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *CompletionService) Close() error {
	return s.client.Close()
}
