// Package orchestrator sequences the prompt skills into a study pack and
// routes single-task requests.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/search"
	"github.com/amishk599/studypack/internal/skill"
)

// Task names a request the orchestrator can route.
type Task string

const (
	TaskStudyPack     Task = "Generate Study Pack"
	TaskConcepts      Task = "Extract Concepts"
	TaskRoadmap       Task = "Generate Roadmap"
	TaskSummary       Task = "Create Summary"
	TaskVisualSummary Task = "Visual Summary"
	TaskSearchPDFs    Task = "Search PDFs"
)

// Tasks lists every routable task.
var Tasks = []Task{TaskStudyPack, TaskConcepts, TaskRoadmap, TaskSummary, TaskVisualSummary, TaskSearchPDFs}

const (
	emptyTextMessage   = "Please provide text content to process."
	unknownTaskMessage = "Unknown task type."
)

// ParseTask accepts a display name ("Extract Concepts") or a slug
// ("extract-concepts"), case-insensitively. Unknown names are returned as-is
// so HandleRequest can report them.
func ParseTask(name string) Task {
	norm := normalizeTask(name)
	for _, t := range Tasks {
		if normalizeTask(string(t)) == norm {
			return t
		}
	}
	return Task(name)
}

func normalizeTask(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// relationRenderer is implemented by renderers that can also draw
// concept-to-concept edges.
type relationRenderer interface {
	RenderWithRelations(concepts, relationships string) model.Outcome
}

// Orchestrator owns the four skills and the visualization collaborator.
type Orchestrator struct {
	concepts   *skill.Skill
	roadmap    *skill.Skill
	summary    *skill.Skill
	describer  *skill.Skill
	renderer   model.Renderer
	searchRoot string
	logger     *slog.Logger
}

// New wires the skills to one generator. searchRoot is where the PDF search
// task looks.
func New(gen model.Generator, renderer model.Renderer, searchRoot string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		concepts:   skill.NewConceptExtractor(gen, logger),
		roadmap:    skill.NewRoadmapGenerator(gen, logger),
		summary:    skill.NewSummaryGenerator(gen, logger),
		describer:  skill.NewConceptMapDescriber(gen, logger),
		renderer:   renderer,
		searchRoot: searchRoot,
		logger:     logger,
	}
}

// GenerateStudyPack runs concepts, roadmap, summary and visualization in that
// order. Every slot is filled; a failed step never stops the next one, and the
// roadmap is built from whatever the concept step produced.
func (o *Orchestrator) GenerateStudyPack(ctx context.Context, text string) model.StudyPack {
	start := time.Now()
	var pack model.StudyPack

	pack.Concepts = o.step("concepts", func() model.Outcome { return o.concepts.Run(ctx, text) })
	pack.Roadmap = o.step("roadmap", func() model.Outcome { return o.roadmap.Run(ctx, pack.Concepts.String()) })
	pack.Summary = o.step("summary", func() model.Outcome { return o.summary.Run(ctx, text) })
	pack.Visualization = o.step("visualization", func() model.Outcome { return o.renderer.Render(pack.Concepts.String()) })

	o.logger.Info("study pack generated", "duration", time.Since(start).Round(time.Millisecond))
	return pack
}

func (o *Orchestrator) step(name string, fn func() model.Outcome) model.Outcome {
	start := time.Now()
	out := fn()
	attrs := []any{"step", name, "duration", time.Since(start).Round(time.Millisecond)}
	if out.Failed() {
		o.logger.Warn("pipeline step failed", append(attrs, "kind", out.Err.Kind, "error", out.Err.Message)...)
	} else {
		o.logger.Debug("pipeline step done", append(attrs, "chars", len(out.Text))...)
	}
	return out
}

// Response is the result of HandleRequest: a full pack for TaskStudyPack,
// a single outcome otherwise.
type Response struct {
	Task    Task
	Pack    *model.StudyPack
	Outcome model.Outcome
}

// HandleRequest routes one task. text is the notes, or the query for
// TaskSearchPDFs.
func (o *Orchestrator) HandleRequest(ctx context.Context, task Task, text string) Response {
	resp := Response{Task: task}
	if text == "" {
		resp.Outcome = model.Failure(&model.StageError{Kind: model.KindInput, Message: emptyTextMessage})
		return resp
	}

	o.logger.Info("handling request", "task", string(task), "chars", len(text))

	switch task {
	case TaskStudyPack:
		pack := o.GenerateStudyPack(ctx, text)
		resp.Pack = &pack
	case TaskConcepts:
		resp.Outcome = o.concepts.Run(ctx, text)
	case TaskRoadmap:
		resp.Outcome = o.roadmap.Run(ctx, text)
	case TaskSummary:
		resp.Outcome = o.summary.Run(ctx, text)
	case TaskVisualSummary:
		resp.Outcome = o.visualSummary(ctx, text)
	case TaskSearchPDFs:
		resp.Outcome = model.Success(search.PDFs(o.searchRoot, text).JSON())
	default:
		resp.Outcome = model.Failure(&model.StageError{Kind: model.KindInput, Message: unknownTaskMessage})
	}
	return resp
}

// visualSummary extracts concepts and draws them. When the renderer can draw
// relationships, the describer is asked for them first; a failed description
// still yields the plain map.
func (o *Orchestrator) visualSummary(ctx context.Context, text string) model.Outcome {
	concepts := o.step("concepts", func() model.Outcome { return o.concepts.Run(ctx, text) })

	rr, ok := o.renderer.(relationRenderer)
	if !ok || concepts.Failed() {
		return o.step("visualization", func() model.Outcome { return o.renderer.Render(concepts.String()) })
	}

	rels := o.step("relationships", func() model.Outcome { return o.describer.Run(ctx, concepts.Text) })
	var relText string
	if !rels.Failed() {
		relText = rels.Text
	}
	return o.step("visualization", func() model.Outcome { return rr.RenderWithRelations(concepts.Text, relText) })
}
