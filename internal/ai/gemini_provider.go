package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/amishk599/studypack/internal/config"
	"github.com/amishk599/studypack/internal/model"
)

// Ensure GeminiProvider implements model.Generator.
var _ model.Generator = (*GeminiProvider)(nil)

// GeminiProvider generates text with the Gemini API through the genai SDK.
type GeminiProvider struct {
	client *genai.Client
	cfg    *config.LLMConfig
}

// NewGeminiProvider creates a genai client from the LLM section of the config.
// httpClient may be nil to use the SDK default.
func NewGeminiProvider(ctx context.Context, cfg *config.LLMConfig, httpClient *http.Client) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{client: client, cfg: cfg}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(p.cfg.Temperature)),
		MaxOutputTokens:   int32(p.cfg.MaxTokens),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &model.HTTPError{StatusCode: apiErr.Code, Err: fmt.Errorf("gemini: %s", apiErr.Message)}
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			return "", fmt.Errorf("gemini: %w", &model.FinishError{Reason: string(resp.Candidates[0].FinishReason)})
		}
		return "", model.ErrEmptyResponse
	}
	return text, nil
}
