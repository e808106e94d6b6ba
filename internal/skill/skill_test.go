package skill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/studypack/internal/model"
)

// mockGenerator is a stub model.Generator that records the prompts it receives.
type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_RepairsFencedResponse(t *testing.T) {
	gen := &mockGenerator{response: "```json\n{\"title\": \"Recursion\", \"summary\": \"s\", \"steps\": []}\n```"}
	s := NewSummaryGenerator(gen, discardLogger())

	got := s.Run(context.Background(), "lecture text")
	if got.Failed() {
		t.Fatalf("unexpected failure: %v", got.Err)
	}
	if got.Text != `{"title": "Recursion", "summary": "s", "steps": []}` {
		t.Errorf("Text = %q", got.Text)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
}

func TestRun_EmbedsInputInPrompt(t *testing.T) {
	gen := &mockGenerator{response: "{}"}
	s := NewConceptExtractor(gen, discardLogger())

	s.Run(context.Background(), "Binary search halves the interval.")

	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "Text:\nBinary search halves the interval.\n") {
		t.Errorf("prompt does not embed the notes:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"extracted_concepts": [`) {
		t.Error("prompt is missing the target structure")
	}
}

func TestRun_InputIsNotTemplateExpanded(t *testing.T) {
	gen := &mockGenerator{response: "{}"}
	s := NewRoadmapGenerator(gen, discardLogger())

	input := `{"topic": "{{.Input}}", "html": "<b>&</b>"}`
	s.Run(context.Background(), input)

	if !strings.Contains(gen.prompts[0], input) {
		t.Errorf("prompt altered the input:\n%s", gen.prompts[0])
	}
}

func TestRun_GeneratorErrorIsUpstreamFailure(t *testing.T) {
	gen := &mockGenerator{err: errors.New("dial tcp: connection refused")}
	s := NewConceptExtractor(gen, discardLogger())

	got := s.Run(context.Background(), "notes")
	if !got.Failed() {
		t.Fatal("expected failure")
	}
	if got.Err.Kind != model.KindUpstream {
		t.Errorf("Kind = %v, want upstream", got.Err.Kind)
	}
	if !strings.HasPrefix(got.String(), "Error") {
		t.Errorf("String() = %q, want Error prefix", got.String())
	}
}

func TestRun_EmptyResponseMessage(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("gemini: %w", model.ErrEmptyResponse)}
	s := NewSummaryGenerator(gen, discardLogger())

	got := s.Run(context.Background(), "notes")
	if got.String() != "Error: Empty response from generation service" {
		t.Errorf("String() = %q", got.String())
	}
}

func TestRun_ProseWithoutObjectPassesThrough(t *testing.T) {
	gen := &mockGenerator{response: "I cannot help with that."}
	s := NewConceptMapDescriber(gen, discardLogger())

	got := s.Run(context.Background(), "{}")
	if got.Failed() || got.Text != "I cannot help with that." {
		t.Errorf("got %+v", got)
	}
}

func TestTemplates_RenderEveryPrompt(t *testing.T) {
	gen := &mockGenerator{}
	skills := []*Skill{
		NewConceptExtractor(gen, discardLogger()),
		NewRoadmapGenerator(gen, discardLogger()),
		NewSummaryGenerator(gen, discardLogger()),
		NewConceptMapDescriber(gen, discardLogger()),
	}
	for _, s := range skills {
		prompt, err := s.Prompt("INPUT-MARKER")
		if err != nil {
			t.Fatalf("%s: %v", s.Name(), err)
		}
		if !strings.Contains(prompt, "INPUT-MARKER") {
			t.Errorf("%s: prompt does not contain input", s.Name())
		}
		if !strings.Contains(prompt, "Output ONLY valid JSON") {
			t.Errorf("%s: prompt is missing the JSON rule", s.Name())
		}
	}
}
