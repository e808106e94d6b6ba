package conceptmap

import (
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const concepts = `{
  "document_metadata": {"topic": "Binary Search"},
  "extracted_concepts": [
    {"concept_name": "Sorted array", "definition": "A sequence whose elements appear in non-decreasing order by key value.", "mathematical_formula": "null"},
    {"concept_name": "Midpoint", "definition": "Index halfway between bounds.", "mathematical_formula": "m = \\lfloor (l + r) / 2 \\rfloor"}
  ]
}`

func newRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "visualizations")
	r, err := New(dir, "", discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, dir
}

func TestRender_WritesPNG(t *testing.T) {
	r, dir := newRenderer(t)

	out := r.Render(concepts)
	if out.Failed() {
		t.Fatalf("Render failed: %s", out)
	}
	want := filepath.Join(dir, "concept_map_Binary_Search.png")
	if out.String() != "Visualization generated successfully: "+want {
		t.Errorf("status = %q", out.String())
	}

	f, err := os.Open(want)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() < 200 || b.Dy() < 100 {
		t.Errorf("image unexpectedly small: %v", b)
	}
}

func TestRender_InvalidJSON(t *testing.T) {
	r, _ := newRenderer(t)

	out := r.Render("Error connecting to generation service: timeout")
	if !out.Failed() {
		t.Fatal("expected failure")
	}
	if out.String() != "Error: Invalid JSON string provided for visualization." {
		t.Errorf("status = %q", out.String())
	}
	if out.Err.Kind != model.KindRender {
		t.Errorf("kind = %v, want render", out.Err.Kind)
	}
}

func TestRender_WrongShape(t *testing.T) {
	r, _ := newRenderer(t)

	out := r.Render(`["not", "an", "object"]`)
	if !out.Failed() || !strings.HasPrefix(out.String(), "Error generating visualization: ") {
		t.Errorf("status = %q", out.String())
	}
}

func TestRender_DefaultTopic(t *testing.T) {
	r, dir := newRenderer(t)

	out := r.Render(`{"extracted_concepts": []}`)
	if out.Failed() {
		t.Fatalf("Render failed: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "concept_map_Main_Topic.png")); err != nil {
		t.Errorf("expected default topic file: %v", err)
	}
}

func TestRenderWithRelations(t *testing.T) {
	r, dir := newRenderer(t)

	rels := `{"relationships": [
	  {"from": "Sorted array", "to": "Midpoint", "label": "enables"},
	  {"from": "Ghost", "to": "Midpoint", "label": "ignored"}
	]}`
	out := r.RenderWithRelations(concepts, rels)
	if out.Failed() {
		t.Fatalf("RenderWithRelations failed: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "concept_map_Binary_Search.png")); err != nil {
		t.Errorf("png missing: %v", err)
	}
}

func TestRenderWithRelations_BadRelationsIgnored(t *testing.T) {
	r, _ := newRenderer(t)

	out := r.RenderWithRelations(concepts, "no relationships here")
	if out.Failed() {
		t.Fatalf("bad relationships should not fail the render: %s", out)
	}
}

func TestNew_BadFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(t.TempDir(), path, discardLogger()); err == nil {
		t.Fatal("expected error for invalid font")
	}
	if _, err := New(t.TempDir(), filepath.Join(t.TempDir(), "missing.ttf"), discardLogger()); err == nil {
		t.Fatal("expected error for missing font")
	}
}

func TestLabel(t *testing.T) {
	long := strings.Repeat("é", 60)
	tests := []struct {
		name    string
		concept studypack.Concept
		index   int
		want    string
	}{
		{"short", studypack.Concept{Name: "Heap", Definition: "A tree."}, 0, "Heap\n(A tree.)"},
		{"exactly fifty", studypack.Concept{Name: "X", Definition: strings.Repeat("a", 50)}, 0, "X\n(" + strings.Repeat("a", 50) + ")"},
		{"truncated runes", studypack.Concept{Name: "Y", Definition: long}, 0, "Y\n(" + strings.Repeat("é", 50) + "...)"},
		{"unnamed", studypack.Concept{Definition: "d"}, 2, "Concept 3\n(d)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.concept, tt.index); got != tt.want {
				t.Errorf("Label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("Divide and Conquer"); got != "concept_map_Divide_and_Conquer.png" {
		t.Errorf("FileName = %q", got)
	}
	if got := FileName("I/O models"); strings.ContainsRune(got, '/') {
		t.Errorf("FileName kept a path separator: %q", got)
	}
}

func TestImagePath(t *testing.T) {
	tests := []struct {
		name   string
		in     model.Outcome
		want   string
		wantOK bool
	}{
		{"success", model.Success("Visualization generated successfully: out/concept_map_X.png"), "out/concept_map_X.png", true},
		{"failure", model.Failure(&model.StageError{Kind: model.KindRender, Message: "Error generating visualization: boom"}), "", false},
		{"other text", model.Success("done"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ImagePath(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ImagePath = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
