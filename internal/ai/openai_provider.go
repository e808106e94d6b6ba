package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amishk599/studypack/internal/config"
	"github.com/amishk599/studypack/internal/model"
)

// Ensure OpenAIProvider implements model.Generator.
var _ model.Generator = (*OpenAIProvider)(nil)

// systemPrompt keeps chat models from wrapping answers in conversation.
const systemPrompt = "You are a precise study assistant. Follow the output format exactly."

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint and
// returns the raw message content. No response_format is requested: the reply
// is repaired downstream, which keeps the provider usable with local servers
// that lack structured outputs.
type OpenAIProvider struct {
	cfg        *config.LLMConfig
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider from the LLM section of the config.
func NewOpenAIProvider(cfg *config.LLMConfig, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Generate sends prompt as a single user turn and returns the first choice.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("llm returned: %s", truncate(string(respBytes), 300)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", fmt.Errorf("parse llm response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices: %w", model.ErrEmptyResponse)
	}

	choice := chatResp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		if choice.FinishReason != "" && choice.FinishReason != "stop" {
			return "", &model.FinishError{Reason: choice.FinishReason}
		}
		return "", model.ErrEmptyResponse
	}
	content := choice.Message.Content
	return content, nil
}
