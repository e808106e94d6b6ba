package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/studypack/internal/config"
	"github.com/amishk599/studypack/internal/model"
)

func newGeminiTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.LLMConfig{
		Provider:  config.ProviderGemini,
		BaseURL:   srv.URL + "/",
		Model:     "gemini-test",
		APIKey:    "g-key",
		Timeout:   5 * time.Second,
		MaxTokens: 1024,
	}
	p, err := NewGeminiProvider(context.Background(), cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	return p
}

func TestGemini_Generate(t *testing.T) {
	var gotPath, gotKey, gotBody string
	p := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"topic\": \"Heaps\"}"}]},"finishReason":"STOP"}]}`))
	})

	got, err := p.Generate(context.Background(), "extract concepts")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"topic": "Heaps"}` {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(gotPath, "models/gemini-test:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "g-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if !strings.Contains(gotBody, "extract concepts") {
		t.Errorf("request body does not carry the prompt: %s", gotBody)
	}
}

func TestGemini_EmptyCandidate(t *testing.T) {
	p := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"SAFETY"}]}`))
	})

	_, err := p.Generate(context.Background(), "prompt")
	if !errors.Is(err, model.ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
	var finish *model.FinishError
	if !errors.As(err, &finish) || finish.Reason != "SAFETY" {
		t.Fatalf("err = %v, want FinishError with reason SAFETY", err)
	}
}

func TestGemini_ServerError(t *testing.T) {
	p := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})

	if _, err := p.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), &config.LLMConfig{Provider: config.ProviderGemini}, nil)
	if err == nil {
		t.Fatal("expected error without API key")
	}
}
