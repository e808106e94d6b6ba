package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/studypack/internal/config"
	"github.com/amishk599/studypack/internal/model"
)

// NewGenerator builds the provider named by cfg.Provider.
func NewGenerator(ctx context.Context, cfg *config.LLMConfig, httpClient *http.Client) (model.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg, httpClient), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg, httpClient)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
