package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/studypack/internal/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleRecord() model.PackRecord {
	return model.PackRecord{
		ID:        "pack-1",
		Source:    "graphs.pdf",
		CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Pack: model.StudyPack{
			Concepts: model.Success(`{"document_metadata":{"topic":"Graph Theory"},"extracted_concepts":[{"concept_name":"BFS","definition":"Level order traversal."}]}`),
			Roadmap:  model.Success(`{"day1":{"topic":"Basics","activities":"read","time_estimate":"1h"}}`),
			Summary: model.Failure(&model.StageError{
				Kind:    model.KindUpstream,
				Message: "Error in summary generation: boom",
			}),
			Visualization: model.Success("Visualization generated successfully: visualizations/concept_map_Graph_Theory.png"),
		},
	}
}

func sized(t *testing.T, m packModel) packModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(packModel)
}

func press(m packModel, keys ...string) packModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(packModel)
	}
	return m
}

func TestPackModel_InitialTabShowsConcepts(t *testing.T) {
	m := sized(t, newPackModel(sampleRecord()))

	if m.tab != 0 {
		t.Fatalf("tab = %d, want 0", m.tab)
	}
	if !strings.Contains(m.content, "BFS") {
		t.Errorf("content missing concept name:\n%s", m.content)
	}
	view := m.View()
	for _, want := range []string{"Graph Theory", "graphs.pdf", "Key Concepts", "7-Day Roadmap"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPackModel_TabNavigationWraps(t *testing.T) {
	m := sized(t, newPackModel(sampleRecord()))

	m = press(m, "tab")
	if m.tab != 1 || !strings.Contains(m.content, "Basics") {
		t.Errorf("after tab: tab=%d content=%q", m.tab, m.content)
	}

	m = press(m, "shift+tab", "shift+tab")
	if m.tab != 3 {
		t.Errorf("shift+tab from 0 should wrap to 3, got %d", m.tab)
	}
	if !strings.Contains(m.content, "concept_map_Graph_Theory.png") {
		t.Errorf("visualization content = %q", m.content)
	}

	m = press(m, "l")
	if m.tab != 0 {
		t.Errorf("tab from last should wrap to 0, got %d", m.tab)
	}
}

func TestPackModel_NumberKeysJump(t *testing.T) {
	m := sized(t, newPackModel(sampleRecord()))

	m = press(m, "3")
	if m.tab != 2 {
		t.Fatalf("tab = %d, want 2", m.tab)
	}
	if !strings.Contains(m.content, "Error in summary generation: boom") {
		t.Errorf("failed section should show its error, got %q", m.content)
	}
}

func TestPackModel_RawToggle(t *testing.T) {
	m := sized(t, newPackModel(sampleRecord()))

	m = press(m, "2", "r")
	if !m.showRaw {
		t.Fatal("r should enable raw mode")
	}
	if !strings.Contains(m.content, `"day1"`) {
		t.Errorf("raw mode should show JSON keys, got %q", m.content)
	}

	m = press(m, "r")
	if m.showRaw || strings.Contains(m.content, `"day1"`) {
		t.Errorf("second r should leave raw mode, content %q", m.content)
	}
}

func TestPackModel_OpenWithoutMap(t *testing.T) {
	rec := sampleRecord()
	rec.Pack.Visualization = model.Failure(&model.StageError{Kind: model.KindRender, Message: "Error generating visualization: x"})
	m := sized(t, newPackModel(rec))

	m = press(m, "o")
	if m.notice != "no concept map for this pack" {
		t.Errorf("notice = %q", m.notice)
	}
	if !strings.Contains(m.View(), "no concept map for this pack") {
		t.Error("status bar should show the notice")
	}
}

func TestPackModel_QuitVersusBack(t *testing.T) {
	m := sized(t, newPackModel(sampleRecord()))

	next, cmd := m.Update(key("q"))
	if !next.(packModel).wantQuit || cmd == nil {
		t.Error("q should quit the program")
	}

	next, cmd = m.Update(key("esc"))
	if next.(packModel).wantQuit || cmd == nil {
		t.Error("esc should return to the picker without quitting")
	}
}

func TestPackModel_NotReady(t *testing.T) {
	m := newPackModel(sampleRecord())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}
}

func TestPickerModel(t *testing.T) {
	older := sampleRecord()
	older.Source = "older.txt"
	older.Pack.Concepts = model.Success("not json")
	m := pickerModel{records: []model.PackRecord{sampleRecord(), older}, chosen: -1}

	next, _ := m.Update(key("down"))
	next, _ = next.Update(key("down"))
	if next.(pickerModel).cursor != 1 {
		t.Errorf("cursor should stop at the last record, got %d", next.(pickerModel).cursor)
	}

	view := next.View()
	if !strings.Contains(view, "graphs.pdf · Graph Theory") {
		t.Errorf("picker should label packs with their topic:\n%s", view)
	}
	if !strings.Contains(view, "> ") || !strings.Contains(view, "older.txt") {
		t.Errorf("picker view:\n%s", view)
	}

	next, cmd := next.Update(key("enter"))
	if next.(pickerModel).chosen != 1 || cmd == nil {
		t.Errorf("enter should choose the cursor, chosen = %d", next.(pickerModel).chosen)
	}
}

func TestPickerModel_EmptyAndQuit(t *testing.T) {
	m := pickerModel{chosen: -1}

	next, cmd := m.Update(key("enter"))
	if next.(pickerModel).chosen != -1 || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "no study packs yet") {
		t.Error("empty picker should say so")
	}

	next, _ = m.Update(key("q"))
	if next.(pickerModel).chosen != -2 {
		t.Errorf("q should mark quit, chosen = %d", next.(pickerModel).chosen)
	}
}

func TestLoaderModel(t *testing.T) {
	want := sampleRecord().Pack
	m := loaderModel{
		label: "graphs.pdf",
		generateFn: func(ctx context.Context) (model.StudyPack, error) {
			return want, nil
		},
		ctx:    context.Background(),
		cancel: func() {},
	}

	if !strings.Contains(m.View(), "Generating study pack for graphs.pdf") {
		t.Errorf("loader view = %q", m.View())
	}

	msg := m.doGenerate()()
	next, _ := m.Update(msg)
	final := next.(loaderModel)
	if !final.done || final.err != nil {
		t.Fatalf("done=%v err=%v", final.done, final.err)
	}
	if final.result.Concepts != want.Concepts {
		t.Errorf("result not carried through")
	}
	if final.View() != "" {
		t.Error("finished loader should render nothing")
	}
}

func TestLoaderModel_CtrlCCancels(t *testing.T) {
	cancelled := false
	m := loaderModel{label: "x", cancel: func() { cancelled = true }}

	next, _ := m.Update(key("ctrl+c"))
	final := next.(loaderModel)
	if !cancelled {
		t.Error("ctrl+c should cancel the generation context")
	}
	if !errors.Is(final.err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", final.err)
	}
}

func TestWrapLines(t *testing.T) {
	got := wrapLines("short\n    alpha beta gamma delta\n", 14)
	want := "short\n    alpha beta\n    gamma\n    delta\n"
	if got != want {
		t.Errorf("wrapLines =\n%q\nwant\n%q", got, want)
	}
}
