// Package skill holds the prompt-driven steps of the study pack pipeline.
package skill

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/repair"
)

// Skill names, used in logs and task routing.
const (
	NameExtractConcepts    = "extract_concepts"
	NameGenerateRoadmap    = "generate_roadmap"
	NameCreateSummary      = "create_summary"
	NameDescribeConceptMap = "describe_concept_map"
)

// Skill renders one instruction prompt, sends it to the generator and repairs
// the reply into JSON. It makes exactly one generator call per Run.
type Skill struct {
	name      string
	tmpl      *template.Template
	generator model.Generator
	logger    *slog.Logger
}

// New creates a skill from an arbitrary prompt template.
func New(name string, tmpl *template.Template, generator model.Generator, logger *slog.Logger) *Skill {
	return &Skill{
		name:      name,
		tmpl:      tmpl,
		generator: generator,
		logger:    logger,
	}
}

// NewConceptExtractor pulls topic metadata and concepts out of lecture notes.
func NewConceptExtractor(generator model.Generator, logger *slog.Logger) *Skill {
	return New(NameExtractConcepts, ExtractConceptsTemplate, generator, logger)
}

// NewRoadmapGenerator turns extracted concepts into a seven-day study plan.
func NewRoadmapGenerator(generator model.Generator, logger *slog.Logger) *Skill {
	return New(NameGenerateRoadmap, GenerateRoadmapTemplate, generator, logger)
}

// NewSummaryGenerator condenses lecture notes into a title, summary and steps.
func NewSummaryGenerator(generator model.Generator, logger *slog.Logger) *Skill {
	return New(NameCreateSummary, CreateSummaryTemplate, generator, logger)
}

// NewConceptMapDescriber asks for the relationships between extracted concepts.
func NewConceptMapDescriber(generator model.Generator, logger *slog.Logger) *Skill {
	return New(NameDescribeConceptMap, DescribeConceptMapTemplate, generator, logger)
}

// Name returns the skill name.
func (s *Skill) Name() string {
	return s.name
}

// Prompt renders the instruction string for input without calling the generator.
func (s *Skill) Prompt(input string) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, promptData{Input: input}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", s.name, err)
	}
	return buf.String(), nil
}

// Run executes the skill. Generator failures come back as an upstream
// outcome and are not repaired.
func (s *Skill) Run(ctx context.Context, input string) model.Outcome {
	prompt, err := s.Prompt(input)
	if err != nil {
		return model.Failure(&model.StageError{
			Kind:    model.KindInput,
			Message: fmt.Sprintf("Error preparing prompt: %v", err),
		})
	}

	s.logger.Debug("calling generator", "skill", s.name, "prompt_chars", len(prompt))

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generation failed", "skill", s.name, "error", err)
		return model.Failure(model.UpstreamError(err))
	}

	out := repair.Outcome(model.Success(raw))
	s.logger.Debug("repaired response", "skill", s.name, "raw_chars", len(raw), "json_chars", len(out.Text))
	return out
}
