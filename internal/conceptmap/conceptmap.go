// Package conceptmap draws concept-extraction output as a left-to-right PNG map.
package conceptmap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
)

// Ensure Renderer implements model.Renderer.
var _ model.Renderer = (*Renderer)(nil)

const (
	maxDefinitionRunes = 50
	fontSize           = 14

	margin     = 40.0
	padding    = 10.0
	columnGap  = 80.0
	rowGap     = 24.0
	arcReach   = 60.0
	lineFactor = 1.4
)

// Palette.
const (
	rootFill   = "#4A90E2"
	rootText   = "#FFFFFF"
	nodeFill   = "#E6F3FF"
	nodeBorder = "#4A90E2"
	noteFill   = "#FFF2CC"
	noteBorder = "#D6B656"
	edgeColor  = "#999999"
	linkColor  = "#7B68EE"
	textColor  = "#222222"
	background = "#FFFFFF"
)

const invalidJSON = "Error: Invalid JSON string provided for visualization."

// Renderer writes concept maps into a directory.
type Renderer struct {
	dir    string
	face   font.Face // nil uses the gg built-in face
	logger *slog.Logger
}

// New creates a renderer writing into dir. fontPath is optional; when set it
// must point at a TrueType font.
func New(dir, fontPath string, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{dir: dir, logger: logger}
	if fontPath != "" {
		face, err := loadFontFace(fontPath, fontSize)
		if err != nil {
			return nil, err
		}
		r.face = face
	}
	return r, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Render draws the concept map for a concept-extraction document.
func (r *Renderer) Render(concepts string) model.Outcome {
	return r.RenderWithRelations(concepts, "")
}

// RenderWithRelations also draws labelled edges between concepts from a
// relationships document. A relationships document that does not parse is
// ignored and the plain map is drawn.
func (r *Renderer) RenderWithRelations(concepts, relationships string) model.Outcome {
	if !json.Valid([]byte(concepts)) {
		return model.Failure(&model.StageError{Kind: model.KindRender, Message: invalidJSON})
	}
	doc, err := studypack.ParseConcepts(concepts)
	if err != nil {
		return renderFailure(err)
	}

	var links []studypack.Relationship
	if strings.TrimSpace(relationships) != "" {
		rels, err := studypack.ParseRelationships(relationships)
		if err != nil {
			r.logger.Warn("ignoring concept relationships", "error", err)
		} else {
			links = rels.Links
		}
	}

	path, err := r.Draw(doc, links)
	if err != nil {
		return renderFailure(err)
	}
	r.logger.Info("concept map written", "path", path, "concepts", len(doc.Items), "links", len(links))
	return model.Success(successPrefix + path)
}

const successPrefix = "Visualization generated successfully: "

// ImagePath returns the PNG path named by a successful render outcome.
func ImagePath(o model.Outcome) (string, bool) {
	if o.Failed() {
		return "", false
	}
	path, ok := strings.CutPrefix(o.Text, successPrefix)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

func renderFailure(err error) model.Outcome {
	return model.Failure(&model.StageError{
		Kind:    model.KindRender,
		Message: fmt.Sprintf("Error generating visualization: %v", err),
	})
}

// FileName returns the PNG name used for a topic.
func FileName(topic string) string {
	name := strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(topic)
	return "concept_map_" + name + ".png"
}

// Label returns the text drawn inside a concept box.
func Label(c studypack.Concept, index int) string {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Concept %d", index+1)
	}
	return name + "\n(" + truncate(c.Definition, maxDefinitionRunes) + ")"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
