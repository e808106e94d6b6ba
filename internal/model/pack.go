package model

import (
	"context"
	"time"
)

// Outcome is the result of one pipeline step: either Text or Err, never both.
type Outcome struct {
	Text string
	Err  *StageError
}

// Success wraps text as a successful outcome.
func Success(text string) Outcome {
	return Outcome{Text: text}
}

// Failure wraps err as a failed outcome.
func Failure(err *StageError) Outcome {
	return Outcome{Err: err}
}

// Failed reports whether the outcome is the error variant.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// String returns the text, or the error message for a failed outcome.
func (o Outcome) String() string {
	if o.Err != nil {
		return o.Err.Message
	}
	return o.Text
}

// Section keys of the aggregate result.
const (
	SectionConcepts      = "concepts"
	SectionRoadmap       = "roadmap"
	SectionSummary       = "summary"
	SectionVisualization = "visualization"
)

// Sections lists the aggregate keys in pipeline order.
var Sections = []string{SectionConcepts, SectionRoadmap, SectionSummary, SectionVisualization}

// StudyPack is the aggregate produced by one orchestrator run. Every slot is
// always populated, with either repaired JSON text or an error.
type StudyPack struct {
	Concepts      Outcome
	Roadmap       Outcome
	Summary       Outcome
	Visualization Outcome
}

// Map returns the four-key string mapping handed to the presentation layer.
func (p StudyPack) Map() map[string]string {
	return map[string]string{
		SectionConcepts:      p.Concepts.String(),
		SectionRoadmap:       p.Roadmap.String(),
		SectionSummary:       p.Summary.String(),
		SectionVisualization: p.Visualization.String(),
	}
}

// Section returns the outcome stored under key, and false for an unknown key.
func (p StudyPack) Section(key string) (Outcome, bool) {
	switch key {
	case SectionConcepts:
		return p.Concepts, true
	case SectionRoadmap:
		return p.Roadmap, true
	case SectionSummary:
		return p.Summary, true
	case SectionVisualization:
		return p.Visualization, true
	}
	return Outcome{}, false
}

// PackRecord is an archived study pack.
type PackRecord struct {
	ID          string
	Source      string // file name the notes came from
	ContentHash string // sha256 of the extracted text, hex
	CreatedAt   time.Time
	Pack        StudyPack
}

// Document is a notes file discovered by a DocumentSource.
type Document struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Generator sends one prompt to the hosted model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor turns a notes file into plain text.
type Extractor interface {
	Extract(path string) Outcome
}

// Renderer draws a concept map from the concept-extraction output. The
// outcome text is the status line "Visualization generated successfully: <path>".
type Renderer interface {
	Render(concepts string) Outcome
}

// PackStore archives study packs and remembers which documents were processed.
type PackStore interface {
	Save(rec PackRecord) (PackRecord, error)
	Get(id string) (PackRecord, error)
	List(limit int) ([]PackRecord, error)
	HasProcessed(contentHash string) (bool, error)
	Cleanup(olderThan time.Duration) error
}

// Notifier announces freshly generated study packs.
type Notifier interface {
	Notify(records []PackRecord) error
}

// DocumentSource lists candidate notes files.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]Document, error)
}

// DocumentFilter decides whether a document should be processed.
type DocumentFilter interface {
	Match(doc Document) bool
}
