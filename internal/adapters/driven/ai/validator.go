package ai

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// ConfigValidator validates provider configurations by creating a service
// and pinging it. Unconfigured providers are valid.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateCompletion validates the completion provider.
func (v *ConfigValidator) ValidateCompletion(ctx context.Context, settings domain.CompletionSettings) error {
	svc, err := CreateAndValidateCompletionService(ctx, settings)
	if err != nil {
		return err
	}
	if svc != nil {
		svc.Close()
	}
	return nil
}

// ValidateEmbedding validates the embedding provider.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	if svc != nil {
		svc.Close()
	}
	return nil
}
