// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/embedding/openai"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Settings selects and configures the embedding provider.
type Settings struct {
	// Provider is "ollama" (default) or "openai".
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey authenticates remote providers; unused by ollama.
	APIKey string

	// Dimensions is the embedding vector size; providers fall back to
	// their model default when zero.
	Dimensions int

	// Timeout bounds each embedding request.
	Timeout time.Duration
}

// CreateEmbeddingService creates the configured embedding service.
func CreateEmbeddingService(settings Settings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "", "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		}), nil
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity before any passage is embedded with it.
func CreateAndValidateEmbeddingService(settings Settings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %w", domain.ErrModelUnavailable, err)
	}

	return svc, nil
}
